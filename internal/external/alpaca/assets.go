package alpaca

import (
	"context"
	"net/url"

	"github.com/wonny/aegis-picker/backend/internal/contracts"
)

// Asset is one entry of the provider's asset listing
type Asset struct {
	ID       string `json:"id"`
	Class    string `json:"class"`
	Exchange string `json:"exchange"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Tradable bool   `json:"tradable"`
}

// Eligible reports whether the source flags the asset tradable and active
func (a Asset) Eligible() bool {
	return a.Tradable && a.Status == "active"
}

// ListAssets fetches active US equities and keeps only tradable ones
func (c *Client) ListAssets(ctx context.Context) ([]contracts.CandidateAsset, error) {
	params := url.Values{}
	params.Set("status", "active")
	params.Set("asset_class", "us_equity")

	var assets []Asset
	if err := c.getJSON(ctx, c.httpClient, "list assets", c.baseURL, "/v2/assets", params, &assets); err != nil {
		return nil, err
	}

	result := make([]contracts.CandidateAsset, 0, len(assets))
	for _, a := range assets {
		if !a.Eligible() {
			continue
		}
		result = append(result, contracts.CandidateAsset{
			Symbol:   a.Symbol,
			Name:     a.Name,
			Exchange: a.Exchange,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"listed":   len(assets),
		"eligible": len(result),
	}).Debug("Fetched asset listing")

	return result, nil
}

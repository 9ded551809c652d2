package alpaca

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/wonny/aegis-picker/backend/internal/contracts"
)

// maxPages guards against a provider that never stops paginating
const maxPages = 50

type barJSON struct {
	T time.Time `json:"t"`
	O float64   `json:"o"`
	H float64   `json:"h"`
	L float64   `json:"l"`
	C float64   `json:"c"`
	V float64   `json:"v"`
}

type barsResponse struct {
	Bars          []barJSON `json:"bars"`
	Symbol        string    `json:"symbol"`
	NextPageToken *string   `json:"next_page_token"`
}

// GetBars fetches the symbol's bars over the window, following pagination
// until the provider runs out of pages or Limit bars are collected.
func (c *Client) GetBars(ctx context.Context, req contracts.BarsRequest) ([]contracts.Bar, error) {
	params := url.Values{}
	params.Set("timeframe", string(req.Window.Resolution))
	params.Set("start", req.Window.Start.UTC().Format(time.RFC3339))
	params.Set("end", req.Window.End.UTC().Format(time.RFC3339))
	params.Set("adjustment", "raw")
	if req.Limit > 0 {
		params.Set("limit", strconv.Itoa(req.Limit))
	}
	if c.feed != "" {
		params.Set("feed", c.feed)
	}

	path := fmt.Sprintf("/v2/stocks/%s/bars", url.PathEscape(req.Symbol))

	var bars []contracts.Bar
	for page := 0; page < maxPages; page++ {
		var resp barsResponse
		if err := c.getJSON(ctx, c.barsHTTP, "get bars "+req.Symbol, c.dataURL, path, params, &resp); err != nil {
			return nil, err
		}

		for _, b := range resp.Bars {
			bars = append(bars, contracts.Bar{
				Time:   b.T,
				Open:   b.O,
				High:   b.H,
				Low:    b.L,
				Close:  b.C,
				Volume: b.V,
			})
		}

		if req.Limit > 0 && len(bars) >= req.Limit {
			bars = bars[:req.Limit]
			break
		}
		if resp.NextPageToken == nil || *resp.NextPageToken == "" {
			break
		}
		params.Set("page_token", *resp.NextPageToken)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": req.Symbol,
		"bars":   len(bars),
	}).Debug("Fetched bars")

	return bars, nil
}

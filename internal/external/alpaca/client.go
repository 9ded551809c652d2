package alpaca

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/aegis-picker/backend/internal/contracts"
	"github.com/wonny/aegis-picker/backend/pkg/config"
	"github.com/wonny/aegis-picker/backend/pkg/httputil"
	"github.com/wonny/aegis-picker/backend/pkg/logger"
)

const (
	headerKeyID     = "APCA-API-KEY-ID"
	headerSecretKey = "APCA-API-SECRET-KEY"
)

// Client handles communication with the Alpaca trading and market-data APIs
// ⭐ SSOT: 시장 데이터 제공자 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	barsHTTP   *httputil.Client // 재시도 없음: 실패한 종목은 그대로 탈락
	logger     *logger.Logger
	baseURL    string
	dataURL    string
	feed       string
}

// NewClient creates a new Alpaca client.
// Credentials are attached to the shared HTTP client as headers.
func NewClient(httpClient *httputil.Client, cfg config.AlpacaConfig, log *logger.Logger) *Client {
	if cfg.APIKey != "" {
		httpClient.WithHeader(headerKeyID, cfg.APIKey)
		httpClient.WithHeader(headerSecretKey, cfg.APISecret)
	}

	return &Client{
		httpClient: httpClient,
		barsHTTP:   httpClient.WithoutRetry(),
		logger:     log,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		dataURL:    strings.TrimRight(cfg.DataURL, "/"),
		feed:       cfg.Feed,
	}
}

// getJSON issues a GET on hc and converts provider failures into UpstreamError
func (c *Client) getJSON(ctx context.Context, hc *httputil.Client, op, base, path string, params url.Values, dest interface{}) error {
	fullURL := base + path
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	if err := hc.GetJSON(ctx, fullURL, dest); err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) {
			return &contracts.UpstreamError{Op: op, StatusCode: statusErr.StatusCode, Err: err}
		}
		return &contracts.UpstreamError{Op: op, Err: err}
	}
	return nil
}

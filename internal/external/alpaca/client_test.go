package alpaca

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-picker/backend/internal/contracts"
	"github.com/wonny/aegis-picker/backend/pkg/config"
	"github.com/wonny/aegis-picker/backend/pkg/httputil"
	"github.com/wonny/aegis-picker/backend/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	return newTestClientWith(t, httputil.New(logger.Nop()).WithoutRetry(), handler)
}

func newTestClientWith(t *testing.T, hc *httputil.Client, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logger.Nop()
	return NewClient(hc, config.AlpacaConfig{
		APIKey:    "key",
		APISecret: "secret",
		BaseURL:   srv.URL,
		DataURL:   srv.URL + "/",
		Feed:      "iex",
	}, log)
}

func TestListAssets(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/assets", r.URL.Path)
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		assert.Equal(t, "us_equity", r.URL.Query().Get("asset_class"))
		assert.Equal(t, "key", r.Header.Get("APCA-API-KEY-ID"))
		assert.Equal(t, "secret", r.Header.Get("APCA-API-SECRET-KEY"))

		fmt.Fprint(w, `[
			{"symbol":"NVDA","name":"NVIDIA Corporation","exchange":"NASDAQ","status":"active","tradable":true},
			{"symbol":"OLD","name":"Delisted Inc","exchange":"NYSE","status":"inactive","tradable":true},
			{"symbol":"NOTR","name":"Not Tradable Corp","exchange":"NYSE","status":"active","tradable":false}
		]`)
	}))

	assets, err := client.ListAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, contracts.CandidateAsset{Symbol: "NVDA", Name: "NVIDIA Corporation", Exchange: "NASDAQ"}, assets[0])
}

func TestListAssets_UpstreamFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))

	_, err := client.ListAssets(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrUpstreamUnavailable))

	var upErr *contracts.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusForbidden, upErr.StatusCode)
}

func TestGetBars_Pagination(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/v2/stocks/AAPL/bars", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "1Day", q.Get("timeframe"))
		assert.Equal(t, "raw", q.Get("adjustment"))
		assert.Equal(t, "iex", q.Get("feed"))

		if q.Get("page_token") == "" {
			fmt.Fprint(w, `{"symbol":"AAPL","bars":[
				{"t":"2025-01-02T05:00:00Z","o":1,"h":2,"l":1,"c":100,"v":1000},
				{"t":"2025-01-03T05:00:00Z","o":1,"h":2,"l":1,"c":105,"v":2000}
			],"next_page_token":"p2"}`)
			return
		}
		assert.Equal(t, "p2", q.Get("page_token"))
		fmt.Fprint(w, `{"symbol":"AAPL","bars":[
			{"t":"2025-01-06T05:00:00Z","o":1,"h":2,"l":1,"c":110,"v":3000}
		],"next_page_token":null}`)
	}))

	end := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	bars, err := client.GetBars(context.Background(), contracts.BarsRequest{
		Symbol: "AAPL",
		Window: contracts.TimeWindow{Start: end.AddDate(0, -1, 0), End: end, Resolution: contracts.ResolutionDay},
		Limit:  10000,
	})
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 100.0, bars[0].Close)
	assert.Equal(t, 110.0, bars[2].Close)
	assert.Equal(t, 3000.0, bars[2].Volume)
}

func TestGetBars_LimitStopsPaging(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `{"bars":[
			{"t":"2025-01-02T05:00:00Z","c":100,"v":1},
			{"t":"2025-01-03T05:00:00Z","c":101,"v":1}
		],"next_page_token":"more"}`)
	}))

	bars, err := client.GetBars(context.Background(), contracts.BarsRequest{Symbol: "X", Limit: 3})
	require.NoError(t, err)
	assert.Len(t, bars, 3)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetBars_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	}))

	_, err := client.GetBars(context.Background(), contracts.BarsRequest{Symbol: "NOPE"})
	require.Error(t, err)

	var upErr *contracts.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusNotFound, upErr.StatusCode)
}

func TestRetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		call      func(c *Client) error
		wantCalls int32
	}{
		{
			name: "bars sent once",
			path: "/v2/stocks/NVDA/bars",
			call: func(c *Client) error {
				_, err := c.GetBars(context.Background(), contracts.BarsRequest{Symbol: "NVDA"})
				return err
			},
			wantCalls: 1,
		},
		{
			name: "assets retried",
			path: "/v2/assets",
			call: func(c *Client) error {
				_, err := c.ListAssets(context.Background())
				return err
			},
			wantCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			hc := httputil.New(logger.Nop()).WithRetry(2, time.Millisecond)
			client := newTestClientWith(t, hc, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.path, r.URL.Path)
				assert.Equal(t, "key", r.Header.Get("APCA-API-KEY-ID"))
				atomic.AddInt32(&calls, 1)
				http.Error(w, `{"message":"unavailable"}`, http.StatusServiceUnavailable)
			}))

			err := tt.call(client)

			var upErr *contracts.UpstreamError
			require.True(t, errors.As(err, &upErr))
			assert.Equal(t, http.StatusServiceUnavailable, upErr.StatusCode)
			assert.True(t, contracts.IsTransient(err))
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

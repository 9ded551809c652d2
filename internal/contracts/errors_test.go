package contracts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"service unavailable", &UpstreamError{Op: "get bars", StatusCode: http.StatusServiceUnavailable}, true},
		{"bad gateway", &UpstreamError{Op: "get bars", StatusCode: http.StatusBadGateway}, true},
		{"rate limited", &UpstreamError{Op: "get bars", StatusCode: http.StatusTooManyRequests}, true},
		{"transport", &UpstreamError{Op: "get bars", Err: errors.New("connection refused")}, true},
		{"wrapped", fmt.Errorf("fetch NVDA: %w", &UpstreamError{StatusCode: http.StatusInternalServerError}), true},
		{"deadline", context.DeadlineExceeded, true},
		{"not found", &UpstreamError{Op: "get bars", StatusCode: http.StatusNotFound}, false},
		{"forbidden", &UpstreamError{Op: "get bars", StatusCode: http.StatusForbidden}, false},
		{"plain", errors.New("decode"), false},
		{"cancelled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

package contracts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUpstreamUnavailable means the universe listing could not be obtained.
	// Fatal to the request: there is no meaningful partial universe.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidCriteria is returned when the brief fails validation
	ErrInvalidCriteria = errors.New("invalid criteria")
)

// UpstreamError carries the failed provider operation
type UpstreamError struct {
	Op         string
	StatusCode int // 0 for transport failures
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap lets errors.Is match both ErrUpstreamUnavailable and the cause
func (e *UpstreamError) Unwrap() []error {
	return []error{ErrUpstreamUnavailable, e.Err}
}

// FailureReason classifies a dropped symbol
type FailureReason string

const (
	FailureFetch        FailureReason = "fetch_failed" // provider answered, but not with a series (4xx)
	FailureUnavailable  FailureReason = "provider_unavailable"
	FailureInsufficient FailureReason = "insufficient_data"
	FailureBadSeries    FailureReason = "unusable_series"
	FailureCancelled    FailureReason = "cancelled"
)

// IsTransient reports whether a fetch error points at the provider rather than
// the symbol: transport failures, timeouts, 429 and 5xx.
func IsTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.StatusCode == 0 ||
			upstream.StatusCode == http.StatusTooManyRequests ||
			upstream.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// EnrichmentFailure records one symbol dropped during enrichment.
// It is contained at the symbol and never surfaced as an error; Detail is for logs only.
type EnrichmentFailure struct {
	Symbol string        `json:"symbol"`
	Reason FailureReason `json:"reason"`
	Detail string        `json:"-"`
}

package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	errx "github.com/nbowman189/vitruvian-developer-sub000/internal/core/error"
)

// quotaKeywords backs the keyword classification when the backend error does
// not expose a structured status.
var quotaKeywords = []string{
	"rate limit",
	"too many requests",
	"resource exhausted",
	"resource_exhausted",
	"quota exceeded",
}

// isQuotaError reports whether err carries a rate-limit/resource-exhausted
// signal. Authentication, validation, and transport errors are never quota
// errors and must not be retried across the chain.
func isQuotaError(err error) bool {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED" {
			return true
		}
		// status mismatch wins over keyword noise in the message
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, kw := range quotaKeywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// retryHint extracts the backend's "seconds until reset" hint from a quota
// error, when present (google.rpc.RetryInfo detail with a retryDelay like
// "34s").
func retryHint(err error) (time.Duration, bool) {
	var apiErr *genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}
	for _, detail := range apiErr.Details {
		t, _ := detail["@type"].(string)
		if !strings.HasSuffix(t, "RetryInfo") {
			continue
		}
		raw, ok := detail["retryDelay"].(string)
		if !ok {
			continue
		}
		if d, perr := time.ParseDuration(raw); perr == nil && d >= 0 {
			return d, true
		}
	}
	return 0, false
}

// classifyUpstream wraps a non-quota backend failure, separating transport
// errors from API-level rejections for the external error codes.
func classifyUpstream(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &errx.UpstreamError{Class: "transport", Network: true, Err: err}
	}

	class := "unknown"
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status != "" {
			class = apiErr.Status
		} else if apiErr.Code != 0 {
			class = http.StatusText(apiErr.Code)
		}
	}
	return &errx.UpstreamError{Class: class, Err: err}
}

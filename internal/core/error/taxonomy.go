package errx

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// External error codes returned to the surrounding application.
const (
	CodeValidation     = "validation"
	CodeQuotaExhausted = "quota_exhausted"
	CodeAPIError       = "api_error"
	CodeNetworkError   = "network_error"
	CodePersistence    = "persistence_error"
	CodeUnknown        = "internal_error"
)

// FieldError describes a single failing field during shape validation.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError enumerates every failing field, not just the first.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Reason))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UnknownCapabilityError marks a structured call whose name is not in the
// capability catalog. A backend-contract violation, surfaced but recoverable.
type UnknownCapabilityError struct {
	Name string
}

func (e *UnknownCapabilityError) Error() string {
	return fmt.Sprintf("unknown capability %q", e.Name)
}

// QuotaExhaustedError means every identity in the fallback chain reported a
// rate-limit/resource-exhausted failure for the current turn.
type QuotaExhaustedError struct {
	RetryAfter time.Duration
}

func (e *QuotaExhaustedError) Error() string {
	return fmt.Sprintf("model quota exhausted across fallback chain, retry in %s", e.RetryAfter)
}

// SecondsUntilReset returns the retry hint in whole seconds, never negative.
func (e *QuotaExhaustedError) SecondsUntilReset() int {
	s := int(e.RetryAfter / time.Second)
	if s < 0 {
		return 0
	}
	return s
}

// UpstreamError is a non-quota backend failure: transport, auth, policy
// rejection. Never retried across the fallback chain.
type UpstreamError struct {
	Class   string // opaque upstream class name, for diagnostics only
	Network bool   // true when the failure is a transport-level one
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream failure (%s): %v", e.Class, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// PersistenceError means a domain write failed after validation passed.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Classify maps any engine error to one of the external error codes.
func Classify(err error) string {
	var (
		ve *ValidationError
		uc *UnknownCapabilityError
		qe *QuotaExhaustedError
		ue *UpstreamError
		pe *PersistenceError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &uc):
		return CodeValidation
	case errors.As(err, &qe):
		return CodeQuotaExhausted
	case errors.As(err, &ue):
		if ue.Network {
			return CodeNetworkError
		}
		return CodeAPIError
	case errors.As(err, &pe):
		return CodePersistence
	default:
		return CodeUnknown
	}
}

// Response is the classified error object handed to the surrounding
// application. It never leaks upstream implementation details.
type Response struct {
	Code              string       `json:"code"`
	Message           string       `json:"message"`
	Fields            []FieldError `json:"fields,omitempty"`
	SecondsUntilReset int          `json:"secondsUntilReset,omitempty"`
	UpstreamClass     string       `json:"upstreamClass,omitempty"`
}

// ToResponse converts an engine error into its external representation.
func ToResponse(err error) Response {
	resp := Response{Code: Classify(err)}
	switch resp.Code {
	case CodeValidation:
		var ve *ValidationError
		if errors.As(err, &ve) {
			resp.Fields = ve.Fields
		}
		resp.Message = err.Error()
	case CodeQuotaExhausted:
		var qe *QuotaExhaustedError
		if errors.As(err, &qe) {
			resp.SecondsUntilReset = qe.SecondsUntilReset()
		}
		resp.Message = "the assistant is temporarily over capacity, please retry later"
	case CodeAPIError, CodeNetworkError:
		var ue *UpstreamError
		if errors.As(err, &ue) {
			resp.UpstreamClass = ue.Class
		}
		resp.Message = "the assistant could not be reached, please retry"
	case CodePersistence:
		resp.Message = "saving records failed, nothing was stored"
	default:
		resp.Message = SystemErrorMessage
	}
	return resp
}

package errx

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", &ValidationError{Fields: []FieldError{{Field: "rating", Reason: "must be at most 10"}}}, CodeValidation},
		{"unknown capability", &UnknownCapabilityError{Name: "create_unicorn"}, CodeValidation},
		{"quota", &QuotaExhaustedError{RetryAfter: time.Minute}, CodeQuotaExhausted},
		{"upstream api", &UpstreamError{Class: "UNAUTHENTICATED", Err: errors.New("401")}, CodeAPIError},
		{"upstream network", &UpstreamError{Class: "transport", Network: true, Err: errors.New("refused")}, CodeNetworkError},
		{"persistence", &PersistenceError{Err: errors.New("disk full")}, CodePersistence},
		{"wrapped", fmt.Errorf("send: %w", &QuotaExhaustedError{RetryAfter: time.Minute}), CodeQuotaExhausted},
		{"unclassified", errors.New("boom"), CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestToResponseQuota(t *testing.T) {
	resp := ToResponse(&QuotaExhaustedError{RetryAfter: 90 * time.Second})
	assert.Equal(t, CodeQuotaExhausted, resp.Code)
	assert.Equal(t, 90, resp.SecondsUntilReset)
}

func TestToResponseValidationListsFields(t *testing.T) {
	resp := ToResponse(&ValidationError{Fields: []FieldError{
		{Field: "rating", Reason: "must be at most 10"},
		{Field: "date", Reason: "required"},
	}})
	assert.Equal(t, CodeValidation, resp.Code)
	assert.Len(t, resp.Fields, 2)
}

func TestToResponseHidesUpstreamDetail(t *testing.T) {
	resp := ToResponse(&UpstreamError{Class: "INTERNAL", Err: errors.New("stack trace: goroutine 12")})
	assert.Equal(t, CodeAPIError, resp.Code)
	assert.NotContains(t, resp.Message, "goroutine")
	assert.Equal(t, "INTERNAL", resp.UpstreamClass)
}

func TestQuotaSecondsNeverNegative(t *testing.T) {
	qe := &QuotaExhaustedError{RetryAfter: -time.Second}
	assert.Equal(t, 0, qe.SecondsUntilReset())
}

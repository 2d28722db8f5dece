package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	errx "github.com/nbowman189/vitruvian-developer-sub000/internal/core/error"
)

// fakeModel records every message sequence it was handed and replays a
// scripted outcome.
type fakeModel struct {
	reply *schema.Message
	err   error
	seen  [][]*schema.Message
}

func (f *fakeModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.seen = append(f.seen, input)
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func quotaErr() error {
	return &genai.APIError{Code: 429, Message: "quota exceeded", Status: "RESOURCE_EXHAUSTED"}
}

func quotaErrWithHint(delay string) error {
	return &genai.APIError{
		Code:    429,
		Message: "quota exceeded",
		Status:  "RESOURCE_EXHAUSTED",
		Details: []map[string]any{
			{"@type": "type.googleapis.com/google.rpc.RetryInfo", "retryDelay": delay},
		},
	}
}

func testHistory() []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage("system"),
		schema.UserMessage("I weighed 176 lbs today"),
	}
}

func TestSendFallsBackOnQuotaErrors(t *testing.T) {
	first := &fakeModel{err: quotaErr()}
	second := &fakeModel{err: quotaErr()}
	third := &fakeModel{reply: schema.AssistantMessage("done", nil)}

	client, err := NewClient([]Identity{
		{Name: "model-a", Model: first},
		{Name: "model-b", Model: second},
		{Name: "model-c", Model: third},
	}, time.Hour)
	require.NoError(t, err)

	history := testHistory()
	reply, err := client.Send(context.Background(), history)
	require.NoError(t, err)

	assert.Equal(t, "model-c", reply.Identity)
	assert.Equal(t, "done", reply.Message.Content)

	// every attempt received the identical, unmutated history
	require.Len(t, first.seen, 1)
	require.Len(t, second.seen, 1)
	require.Len(t, third.seen, 1)
	assert.Equal(t, history, first.seen[0])
	assert.Equal(t, history, second.seen[0])
	assert.Equal(t, history, third.seen[0])
}

func TestSendStopsOnNonQuotaError(t *testing.T) {
	first := &fakeModel{err: &genai.APIError{Code: 401, Message: "invalid api key", Status: "UNAUTHENTICATED"}}
	second := &fakeModel{reply: schema.AssistantMessage("should not be reached", nil)}

	client, err := NewClient([]Identity{
		{Name: "model-a", Model: first},
		{Name: "model-b", Model: second},
	}, time.Hour)
	require.NoError(t, err)

	_, err = client.Send(context.Background(), testHistory())
	require.Error(t, err)

	var ue *errx.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "UNAUTHENTICATED", ue.Class)
	assert.False(t, ue.Network)
	assert.Empty(t, second.seen, "non-quota errors are not retried across the chain")
}

func TestSendExhaustionUsesDefaultHint(t *testing.T) {
	client, err := NewClient([]Identity{
		{Name: "model-a", Model: &fakeModel{err: quotaErr()}},
		{Name: "model-b", Model: &fakeModel{err: quotaErr()}},
	}, 30*time.Minute)
	require.NoError(t, err)

	_, err = client.Send(context.Background(), testHistory())
	var qe *errx.QuotaExhaustedError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 30*time.Minute, qe.RetryAfter)
	assert.GreaterOrEqual(t, qe.SecondsUntilReset(), 0)
}

func TestSendExhaustionUsesMinimumObservedHint(t *testing.T) {
	client, err := NewClient([]Identity{
		{Name: "model-a", Model: &fakeModel{err: quotaErrWithHint("90s")}},
		{Name: "model-b", Model: &fakeModel{err: quotaErrWithHint("34s")}},
		{Name: "model-c", Model: &fakeModel{err: quotaErr()}},
	}, time.Hour)
	require.NoError(t, err)

	_, err = client.Send(context.Background(), testHistory())
	var qe *errx.QuotaExhaustedError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 34*time.Second, qe.RetryAfter)
	assert.Equal(t, 34, qe.SecondsUntilReset())
}

func TestNewClientRejectsEmptyChain(t *testing.T) {
	_, err := NewClient(nil, time.Hour)
	assert.Error(t, err)
}

func TestIsQuotaError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"429 api error", &genai.APIError{Code: 429, Message: "slow down"}, true},
		{"resource exhausted status", &genai.APIError{Code: 400, Status: "RESOURCE_EXHAUSTED"}, true},
		{"auth api error", &genai.APIError{Code: 401, Status: "UNAUTHENTICATED"}, false},
		{"keyword rate limit", errors.New("upstream said: rate limit hit"), true},
		{"keyword too many requests", fmt.Errorf("wrap: %w", errors.New("too many requests")), true},
		{"plain transport error", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isQuotaError(tt.err))
		})
	}
}

func TestRetryHint(t *testing.T) {
	d, ok := retryHint(quotaErrWithHint("34s"))
	require.True(t, ok)
	assert.Equal(t, 34*time.Second, d)

	_, ok = retryHint(quotaErr())
	assert.False(t, ok)

	_, ok = retryHint(errors.New("rate limit"))
	assert.False(t, ok)
}

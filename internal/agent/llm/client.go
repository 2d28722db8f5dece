package llm

import (
	"context"
	"fmt"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	errx "github.com/nbowman189/vitruvian-developer-sub000/internal/core/error"
	logx "github.com/nbowman189/vitruvian-developer-sub000/pkg/logger"
)

// ChatModel is the minimal surface the client needs from an eino chat model.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
}

// Identity is one backend identity in the fallback chain.
type Identity struct {
	Name  string
	Model ChatModel
}

// Reply is a successful backend response plus the identity that produced it.
type Reply struct {
	Message  *schema.Message
	Identity string
}

// Client owns an ordered fallback chain of backend identities. Send walks the
// chain sequentially, retrying only on classified quota errors; any other
// failure is returned immediately since retrying would not help.
type Client struct {
	chain        []Identity
	retryDefault time.Duration
}

// NewClient builds a client over a non-empty fallback chain. retryDefault is
// the conservative "seconds until reset" used when the backend's quota error
// does not supply a hint.
func NewClient(chain []Identity, retryDefault time.Duration) (*Client, error) {
	if len(chain) == 0 {
		return nil, fmt.Errorf("fallback chain is empty")
	}
	for i, id := range chain {
		if id.Name == "" || id.Model == nil {
			return nil, fmt.Errorf("fallback chain entry %d is incomplete", i)
		}
	}
	if retryDefault <= 0 {
		retryDefault = time.Hour
	}
	return &Client{chain: chain, retryDefault: retryDefault}, nil
}

// Send forwards the exact same message sequence to each identity in chain
// order until one succeeds. Quota errors advance the chain; non-quota errors
// stop immediately. If every identity is quota-limited, the returned
// QuotaExhaustedError carries the minimum reset hint observed across
// attempts, or the configured default when none supplied one.
func (c *Client) Send(ctx context.Context, messages []*schema.Message) (*Reply, error) {
	var (
		minHint time.Duration
		hinted  bool
	)

	for _, id := range c.chain {
		out, err := id.Model.Generate(ctx, messages)
		if err == nil {
			logUsage(id.Name, out)
			return &Reply{Message: out, Identity: id.Name}, nil
		}

		if !isQuotaError(err) {
			logx.Error().Err(err).Str("identity", id.Name).Msg("backend call failed")
			return nil, classifyUpstream(err)
		}

		if hint, ok := retryHint(err); ok && (!hinted || hint < minHint) {
			minHint = hint
			hinted = true
		}
		logx.Warn().Err(err).Str("identity", id.Name).Msg("quota exhausted, advancing fallback chain")
	}

	retryAfter := c.retryDefault
	if hinted {
		retryAfter = minHint
	}
	logx.Error().Dur("retry_after", retryAfter).Int("chain_len", len(c.chain)).Msg("fallback chain exhausted")
	return nil, &errx.QuotaExhaustedError{RetryAfter: retryAfter}
}

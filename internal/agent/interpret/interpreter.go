package interpret

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/catalog"
	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/model"
	logx "github.com/nbowman189/vitruvian-developer-sub000/pkg/logger"
)

const (
	// PlaceholderText substitutes an empty text-only reply so emptiness is
	// never propagated to the user.
	PlaceholderText = "I've processed that."
	// DefaultConfirmText is the fallback phrase for a single call whose
	// capability declares no confirm phrase of its own.
	DefaultConfirmText = "Here's what I'd like to record:"
)

// Interpreter classifies raw backend replies into the tagged variant
// consumed downstream: plain text, one structured call, or an ordered call
// group. Calls are surfaced, never executed; confirmation is a separate,
// explicit step.
type Interpreter struct {
	catalog *catalog.Catalog
}

// NewInterpreter creates an Interpreter over the capability catalog, used
// only for default-text lookup.
func NewInterpreter(c *catalog.Catalog) *Interpreter {
	return &Interpreter{catalog: c}
}

// Interpret classifies one backend reply.
func (i *Interpreter) Interpret(msg *schema.Message) model.InterpretedReply {
	if msg == nil {
		return model.InterpretedReply{Kind: model.ReplyText, Text: PlaceholderText}
	}

	calls := extractCalls(msg.ToolCalls)
	text := strings.TrimSpace(msg.Content)

	switch len(calls) {
	case 0:
		if text == "" {
			text = PlaceholderText
		}
		return model.InterpretedReply{Kind: model.ReplyText, Text: text}
	case 1:
		if text == "" {
			text = i.confirmText(calls[0].Name)
		}
		return model.InterpretedReply{Kind: model.ReplySingleCall, Text: text, Calls: calls}
	default:
		if text == "" {
			text = fmt.Sprintf("I found %d things to record.", len(calls))
		}
		return model.InterpretedReply{Kind: model.ReplyCallGroup, Text: text, Calls: calls}
	}
}

func (i *Interpreter) confirmText(capability string) string {
	if cap, ok := i.catalog.Get(capability); ok && cap.ConfirmText != "" {
		return cap.ConfirmText
	}
	return DefaultConfirmText
}

// extractCalls maps backend tool calls onto structured calls in original
// order, preserving the raw argument JSON byte-for-byte.
func extractCalls(toolCalls []schema.ToolCall) []model.StructuredCall {
	if len(toolCalls) == 0 {
		return nil
	}
	calls := make([]model.StructuredCall, 0, len(toolCalls))
	for _, tc := range toolCalls {
		call := model.StructuredCall{
			ID:           tc.ID,
			Name:         tc.Function.Name,
			RawArguments: tc.Function.Arguments,
			Arguments:    map[string]any{},
		}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &call.Arguments); err != nil {
				logx.Warn().Err(err).Str("call", tc.Function.Name).Msg("malformed call arguments, keeping raw form only")
			}
		}
		calls = append(calls, call)
	}
	return calls
}

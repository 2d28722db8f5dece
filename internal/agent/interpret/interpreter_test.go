package interpret

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/catalog"
	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/model"
)

func toolCall(id, name, args string) schema.ToolCall {
	return schema.ToolCall{
		ID: id,
		Function: schema.FunctionCall{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestInterpretTextOnly(t *testing.T) {
	interp := NewInterpreter(catalog.Builtin())

	tests := []struct {
		name     string
		msg      *schema.Message
		wantText string
	}{
		{
			name:     "plain text",
			msg:      schema.AssistantMessage("You're making good progress this week.", nil),
			wantText: "You're making good progress this week.",
		},
		{
			name:     "empty text gets placeholder",
			msg:      schema.AssistantMessage("", nil),
			wantText: PlaceholderText,
		},
		{
			name:     "whitespace text gets placeholder",
			msg:      schema.AssistantMessage("   \n", nil),
			wantText: PlaceholderText,
		},
		{
			name:     "nil message gets placeholder",
			msg:      nil,
			wantText: PlaceholderText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := interp.Interpret(tt.msg)
			assert.Equal(t, model.ReplyText, reply.Kind)
			assert.Equal(t, tt.wantText, reply.Text)
			assert.NotEmpty(t, reply.Text)
			assert.Empty(t, reply.Calls)
		})
	}
}

func TestInterpretSingleCall(t *testing.T) {
	interp := NewInterpreter(catalog.Builtin())
	rawArgs := `{"weight":176,"date":"2026-08-23"}`

	msg := schema.AssistantMessage("", []schema.ToolCall{
		toolCall("call-1", "create_health_metric", rawArgs),
	})

	reply := interp.Interpret(msg)

	require.Equal(t, model.ReplySingleCall, reply.Kind)
	require.Len(t, reply.Calls, 1)

	call := reply.Calls[0]
	assert.Equal(t, "create_health_metric", call.Name)
	assert.Equal(t, rawArgs, call.RawArguments, "raw argument JSON must be preserved byte-for-byte")
	assert.Equal(t, float64(176), call.Arguments["weight"])
	assert.Equal(t, "2026-08-23", call.Arguments["date"])

	// backend sent no text: the capability's confirm phrase fills in
	assert.Equal(t, "Here's the health metric I'd like to record:", reply.Text)
}

func TestInterpretSingleCallKeepsBackendText(t *testing.T) {
	interp := NewInterpreter(catalog.Builtin())

	msg := schema.AssistantMessage("Logging that for you.", []schema.ToolCall{
		toolCall("call-1", "create_workout", `{"date":"2026-08-23","type":"cardio","duration_minutes":60}`),
	})

	reply := interp.Interpret(msg)
	assert.Equal(t, model.ReplySingleCall, reply.Kind)
	assert.Equal(t, "Logging that for you.", reply.Text)
}

func TestInterpretSingleCallUnknownCapabilityText(t *testing.T) {
	interp := NewInterpreter(catalog.Builtin())

	msg := schema.AssistantMessage("", []schema.ToolCall{
		toolCall("call-1", "create_unicorn", `{}`),
	})

	reply := interp.Interpret(msg)
	assert.Equal(t, model.ReplySingleCall, reply.Kind)
	assert.Equal(t, DefaultConfirmText, reply.Text)
}

func TestInterpretCallGroupKeepsOrder(t *testing.T) {
	interp := NewInterpreter(catalog.Builtin())

	msg := schema.AssistantMessage("", []schema.ToolCall{
		toolCall("call-1", "create_health_metric", `{"weight":176,"date":"2026-08-23"}`),
		toolCall("call-2", "create_workout", `{"date":"2026-08-23","type":"cardio","duration_minutes":60}`),
		toolCall("call-3", "create_meal", `{"date":"2026-08-23","name":"breakfast","calories":650}`),
	})

	reply := interp.Interpret(msg)

	require.Equal(t, model.ReplyCallGroup, reply.Kind, "multiple calls stay grouped, never flattened")
	require.Len(t, reply.Calls, 3)
	assert.Equal(t, "create_health_metric", reply.Calls[0].Name)
	assert.Equal(t, "create_workout", reply.Calls[1].Name)
	assert.Equal(t, "create_meal", reply.Calls[2].Name)
	assert.Equal(t, "I found 3 things to record.", reply.Text)
}

func TestInterpretMalformedArgumentsKeepRaw(t *testing.T) {
	interp := NewInterpreter(catalog.Builtin())

	msg := schema.AssistantMessage("", []schema.ToolCall{
		toolCall("call-1", "create_health_metric", `{"weight":`),
	})

	reply := interp.Interpret(msg)
	require.Len(t, reply.Calls, 1)
	assert.Equal(t, `{"weight":`, reply.Calls[0].RawArguments)
	assert.Empty(t, reply.Calls[0].Arguments)
}

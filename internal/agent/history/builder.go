package history

import (
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/model"
)

const systemInstruction = `You are a fitness coaching assistant. You help the user track body metrics, workouts, meals, coaching notes, behavior logs, and documents.

Today is %s, %s. Resolve relative dates like "today" or "this week" against that date.

When the user reports something worth recording, propose it through the declared functions. Never claim a record was saved: every proposal is reviewed and confirmed by the user before anything is stored.`

// Builder converts stored turns into the message sequence the backend
// expects. The system instruction carries the current date and is
// regenerated fresh on every call, never cached.
type Builder struct {
	maxTurns int
	now      func() time.Time
}

// NewBuilder creates a Builder keeping at most maxTurns of history.
func NewBuilder(maxTurns int) *Builder {
	if maxTurns <= 0 {
		maxTurns = 50
	}
	return &Builder{maxTurns: maxTurns, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build maps stored originators onto backend roles: user turns become user
// messages, assistant turns become assistant messages (rendered as the
// "model" role by the backend adapter). A new conversation yields only the
// system instruction.
func (b *Builder) Build(turns []model.Turn) []*schema.Message {
	now := b.now()
	messages := []*schema.Message{
		schema.SystemMessage(fmt.Sprintf(systemInstruction, now.Weekday(), now.Format("2006-01-02"))),
	}

	for _, t := range trimTail(turns, b.maxTurns) {
		if t.Text == "" {
			// purely structured-call turns carry nothing the model needs back
			continue
		}
		switch t.Originator {
		case model.OriginatorUser:
			messages = append(messages, schema.UserMessage(t.Text))
		case model.OriginatorAssistant:
			messages = append(messages, schema.AssistantMessage(t.Text, nil))
		}
	}

	return messages
}

// trimTail keeps the most recent maxTurns turns.
func trimTail(turns []model.Turn, maxTurns int) []model.Turn {
	if len(turns) <= maxTurns {
		return turns
	}
	return turns[len(turns)-maxTurns:]
}

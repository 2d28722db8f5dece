package model

import (
	"context"
	"time"
)

// Originator identifies who authored a turn.
type Originator string

const (
	OriginatorUser      Originator = "user"
	OriginatorAssistant Originator = "assistant"
)

// Turn is one message in a conversation. Turns are immutable once appended;
// edits happen only on drafts, which are not turns.
type Turn struct {
	ID             string           `json:"id"`
	ConversationID string           `json:"conversation_id,omitempty"`
	Originator     Originator       `json:"originator"`
	Text           string           `json:"text"`
	Calls          []StructuredCall `json:"calls,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Conversation holds an ordered, append-only sequence of turns plus counters.
type Conversation struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Title          string    `json:"title"`
	Turns          []Turn    `json:"turns"`
	TurnCount      int       `json:"turn_count"`
	RecordsCreated int       `json:"records_created"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ConversationSummary is the listing view of a conversation, without turns.
type ConversationSummary struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Title          string    `json:"title"`
	TurnCount      int       `json:"turn_count"`
	RecordsCreated int       `json:"records_created"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ConversationStore persists conversations and their ordered turns.
// Append creates the conversation implicitly when conversationID is empty
// and returns the identifier for subsequent turns. There is no update or
// delete operation; turns are append-only.
type ConversationStore interface {
	Append(ctx context.Context, userID, conversationID string, turns ...Turn) (string, error)
	Load(ctx context.Context, conversationID string) (*Conversation, error)
	ListSummaries(ctx context.Context, userID string) ([]ConversationSummary, error)
	AddRecordsCreated(ctx context.Context, conversationID string, n int) error
}

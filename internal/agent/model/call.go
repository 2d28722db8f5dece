package model

import (
	"context"
	"time"
)

// StructuredCall is a machine-readable intent proposed by the backend inside
// a reply: a capability name plus an argument map. RawArguments preserves the
// backend's argument JSON exactly as received.
type StructuredCall struct {
	ID           string         `json:"id,omitempty"`
	Name         string         `json:"name"`
	Arguments    map[string]any `json:"arguments"`
	RawArguments string         `json:"raw_arguments,omitempty"`
}

// ReplyKind tags the interpreted shape of a backend reply.
type ReplyKind int

const (
	ReplyText ReplyKind = iota
	ReplySingleCall
	ReplyCallGroup
)

// InterpretedReply is the tagged variant produced by the response
// interpreter: plain text, one structured call, or an ordered call group.
// Calls are surfaced here, never executed.
type InterpretedReply struct {
	Kind  ReplyKind
	Text  string
	Calls []StructuredCall
}

// Draft is an editable, not-yet-persisted rendering of a structured call
// awaiting human confirmation. It has no identity in the conversation.
type Draft struct {
	ID         string         `json:"id"`
	Capability string         `json:"capability"`
	Values     map[string]any `json:"values"`
}

// FieldEdits overrides individual draft values before commit.
type FieldEdits map[string]any

// Record is a persisted domain record produced from a confirmed draft.
type Record struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Capability     string         `json:"capability"`
	Fields         map[string]any `json:"fields"`
	CreatedAt      time.Time      `json:"created_at"`
}

// RecordStore is the generic key-indexed write target for domain records.
// SaveBatch writes all records in a single atomic unit: either every record
// persists or none do.
type RecordStore interface {
	SaveBatch(ctx context.Context, records []Record) error
	GetBatch(ctx context.Context, ids []string) ([]Record, error)
	ListByConversation(ctx context.Context, conversationID string) ([]Record, error)
}

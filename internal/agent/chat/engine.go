package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/catalog"
	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/history"
	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/interpret"
	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/llm"
	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/mediator"
	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/model"
	errx "github.com/nbowman189/vitruvian-developer-sub000/internal/core/error"
	logx "github.com/nbowman189/vitruvian-developer-sub000/pkg/logger"
)

// ModelSender is the narrow interface the engine needs from the model
// client: send conversation + declared functions, receive text and/or
// structured calls, fail with a classified error.
type ModelSender interface {
	Send(ctx context.Context, messages []*schema.Message) (*llm.Reply, error)
}

// Engine mediates between free-text chat and structured domain records.
// One chat turn is one synchronous operation: build history, call the
// backend, interpret, append, return. Structured calls are surfaced as
// drafts and persisted only through SaveRecords.
type Engine struct {
	sender        ModelSender
	history       *history.Builder
	interpreter   *interpret.Interpreter
	conversations model.ConversationStore
	mediator      *mediator.Mediator
}

// NewEngine wires the engine components.
func NewEngine(
	sender ModelSender,
	hb *history.Builder,
	cat *catalog.Catalog,
	conversations model.ConversationStore,
	med *mediator.Mediator,
) *Engine {
	return &Engine{
		sender:        sender,
		history:       hb,
		interpreter:   interpret.NewInterpreter(cat),
		conversations: conversations,
		mediator:      med,
	}
}

// SendInput is the "send message" external operation input.
type SendInput struct {
	UserID         string `json:"userID"`
	ConversationID string `json:"conversationID,omitempty"`
	Message        string `json:"message"`
}

// SendResult carries the assistant's reply: text always, plus any proposed
// drafts awaiting explicit confirmation.
type SendResult struct {
	ConversationID string                 `json:"conversationID"`
	ResponseText   string                 `json:"responseText"`
	Calls          []model.StructuredCall `json:"calls,omitempty"`
	Drafts         []model.Draft          `json:"drafts,omitempty"`
	Identity       string                 `json:"identity,omitempty"`
	Warnings       []string               `json:"warnings,omitempty"`
}

// SendMessage handles one user turn. On quota or upstream failure no turn is
// appended, so the user's message is never silently answered by nothing.
// Unknown or invalid structured calls are surfaced as warnings while the
// text portion of the turn is still appended.
func (e *Engine) SendMessage(ctx context.Context, in SendInput) (*SendResult, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, &errx.ValidationError{Fields: []errx.FieldError{{Field: "message", Reason: "required"}}}
	}

	var turns []model.Turn
	if in.ConversationID != "" {
		conv, err := e.conversations.Load(ctx, in.ConversationID)
		if err != nil {
			return nil, err
		}
		turns = conv.Turns
	}

	messages := append(e.history.Build(turns), schema.UserMessage(message))

	reply, err := e.sender.Send(ctx, messages)
	if err != nil {
		return nil, err
	}

	interpreted := e.interpreter.Interpret(reply.Message)

	drafts := make([]model.Draft, 0, len(interpreted.Calls))
	var warnings []string
	for _, call := range interpreted.Calls {
		draft, err := e.mediator.Validate(call)
		if err != nil {
			logx.Warn().Err(err).Str("call", call.Name).Msg("proposed call rejected")
			warnings = append(warnings, err.Error())
			continue
		}
		drafts = append(drafts, draft)
	}

	conversationID, err := e.conversations.Append(ctx, in.UserID, in.ConversationID,
		model.Turn{Originator: model.OriginatorUser, Text: message},
		model.Turn{Originator: model.OriginatorAssistant, Text: interpreted.Text, Calls: interpreted.Calls},
	)
	if err != nil {
		return nil, err
	}

	return &SendResult{
		ConversationID: conversationID,
		ResponseText:   interpreted.Text,
		Calls:          interpreted.Calls,
		Drafts:         drafts,
		Identity:       reply.Identity,
		Warnings:       warnings,
	}, nil
}

// RecordInput is one confirmed draft in a save request.
type RecordInput struct {
	CapabilityName string         `json:"capabilityName"`
	RecordData     map[string]any `json:"recordData"`
}

// SaveInput is the "save record(s)" external operation input. A single
// record and a batch share the same path; the batch is all-or-nothing.
type SaveInput struct {
	ConversationID string        `json:"conversationID"`
	IdempotencyKey string        `json:"idempotencyKey,omitempty"`
	Records        []RecordInput `json:"records"`
}

// SaveResult returns the persisted records with assigned identifiers.
type SaveResult struct {
	Records []model.Record `json:"records"`
}

// SaveRecords validates every submitted record and commits the batch
// atomically. On validation failure the error names every failing field
// (prefixed records[i] within a batch); on persistence failure no partial
// records are returned or retained.
func (e *Engine) SaveRecords(ctx context.Context, in SaveInput) (*SaveResult, error) {
	if len(in.Records) == 0 {
		return nil, &errx.ValidationError{Fields: []errx.FieldError{{Field: "records", Reason: "required"}}}
	}

	drafts := make([]model.Draft, 0, len(in.Records))
	var fails []errx.FieldError
	for i, rec := range in.Records {
		draft, err := e.mediator.Validate(model.StructuredCall{
			Name:      rec.CapabilityName,
			Arguments: rec.RecordData,
		})
		if err != nil {
			var ve *errx.ValidationError
			if len(in.Records) > 1 && errors.As(err, &ve) {
				for _, f := range ve.Fields {
					fails = append(fails, errx.FieldError{
						Field:  fmt.Sprintf("records[%d].%s", i, f.Field),
						Reason: f.Reason,
					})
				}
				continue
			}
			return nil, err
		}
		drafts = append(drafts, draft)
	}
	if len(fails) > 0 {
		return nil, &errx.ValidationError{Fields: fails}
	}

	records, err := e.mediator.Commit(ctx, drafts, nil, mediator.CommitOptions{
		ConversationID: in.ConversationID,
		IdempotencyKey: in.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}

	if in.ConversationID != "" {
		if err := e.conversations.AddRecordsCreated(ctx, in.ConversationID, len(records)); err != nil {
			// counter drift is tolerable, records are already safe
			logx.Warn().Err(err).Str("conversation_id", in.ConversationID).Msg("failed to bump records counter")
		}
	}

	return &SaveResult{Records: records}, nil
}

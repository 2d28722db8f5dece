package mediator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/catalog"
	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/model"
	errx "github.com/nbowman189/vitruvian-developer-sub000/internal/core/error"
	logx "github.com/nbowman189/vitruvian-developer-sub000/pkg/logger"
)

// Mediator validates structured calls against the capability catalog,
// renders them as editable drafts, and on explicit confirmation performs the
// domain write. Persistence is reachable only through a Draft: there is no
// path from an interpreted call to a record without Validate.
type Mediator struct {
	catalog *catalog.Catalog
	records model.RecordStore
	now     func() time.Time
}

// New creates a Mediator over the catalog and record store.
func New(c *catalog.Catalog, records model.RecordStore) *Mediator {
	return &Mediator{catalog: c, records: records, now: time.Now}
}

// WithClock overrides the time source used for relative-date coercion, for tests.
func (m *Mediator) WithClock(now func() time.Time) *Mediator {
	m.now = now
	return m
}

// Validate checks a structured call's arguments against its capability
// schema and returns a Draft carrying the validated (possibly coerced)
// values. Unknown capability names are rejected before reaching the user;
// a ValidationError enumerates every failing field, not just the first.
func (m *Mediator) Validate(call model.StructuredCall) (model.Draft, error) {
	cap, ok := m.catalog.Get(call.Name)
	if !ok {
		return model.Draft{}, &errx.UnknownCapabilityError{Name: call.Name}
	}

	values, fails := validateFields(cap, call.Arguments, m.now)
	if len(fails) > 0 {
		return model.Draft{}, &errx.ValidationError{Fields: fails}
	}

	return model.Draft{
		ID:         uuid.NewString(),
		Capability: call.Name,
		Values:     values,
	}, nil
}

// CommitOptions carries batch-level commit context.
type CommitOptions struct {
	ConversationID string
	// IdempotencyKey, when set, makes record identifiers deterministic so a
	// client retry of an already-applied commit returns the existing records
	// instead of duplicating them.
	IdempotencyKey string
}

// Commit applies user edits over the validated draft values, re-validates
// each merged result, and writes the whole batch as a single atomic unit:
// either every draft persists or none do. Edits to one draft never alter
// another draft's values.
func (m *Mediator) Commit(ctx context.Context, drafts []model.Draft, edits map[string]model.FieldEdits, opts CommitOptions) ([]model.Record, error) {
	if len(drafts) == 0 {
		return nil, &errx.ValidationError{Fields: []errx.FieldError{{Field: "records", Reason: "empty batch"}}}
	}

	records := make([]model.Record, 0, len(drafts))
	var fails []errx.FieldError
	createdAt := m.now().UTC()

	for i, draft := range drafts {
		cap, ok := m.catalog.Get(draft.Capability)
		if !ok {
			return nil, &errx.UnknownCapabilityError{Name: draft.Capability}
		}

		merged := make(map[string]any, len(draft.Values))
		for k, v := range draft.Values {
			merged[k] = v
		}
		for k, v := range edits[draft.ID] {
			merged[k] = v
		}

		values, draftFails := validateFields(cap, merged, m.now)
		for _, f := range draftFails {
			fails = append(fails, errx.FieldError{
				Field:  fmt.Sprintf("records[%d].%s", i, f.Field),
				Reason: f.Reason,
			})
		}
		if len(draftFails) > 0 {
			continue
		}

		records = append(records, model.Record{
			ID:             recordID(opts.IdempotencyKey, i),
			ConversationID: opts.ConversationID,
			Capability:     draft.Capability,
			Fields:         values,
			CreatedAt:      createdAt,
		})
	}

	if len(fails) > 0 {
		return nil, &errx.ValidationError{Fields: fails}
	}

	if opts.IdempotencyKey != "" {
		if existing, ok := m.alreadyApplied(ctx, records); ok {
			logx.Info().Str("idempotency_key", opts.IdempotencyKey).Int("records", len(existing)).Msg("commit replay detected, returning existing records")
			return existing, nil
		}
	}

	if err := m.records.SaveBatch(ctx, records); err != nil {
		logx.Error().Err(err).Int("records", len(records)).Msg("batch write failed, nothing persisted")
		return nil, &errx.PersistenceError{Err: err}
	}

	return records, nil
}

// alreadyApplied reports whether every record of an idempotent batch is
// already persisted, returning the stored copies when so.
func (m *Mediator) alreadyApplied(ctx context.Context, records []model.Record) ([]model.Record, bool) {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	existing, err := m.records.GetBatch(ctx, ids)
	if err != nil || len(existing) != len(records) {
		return nil, false
	}
	return existing, true
}

// recordID derives a deterministic identifier from the idempotency key, or a
// random one when no key is supplied.
func recordID(idempotencyKey string, index int) string {
	if idempotencyKey == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d", idempotencyKey, index))).String()
}

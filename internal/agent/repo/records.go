package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/model"
)

// SQLiteRecordStore is the generic key-indexed write target for confirmed
// domain records. Each batch is written inside one transaction, so a
// partially-saved batch is never observable.
type SQLiteRecordStore struct {
	db *sql.DB
}

func NewSQLiteRecordStore(dbPath string) (*SQLiteRecordStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteRecordStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteRecordStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteRecordStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS records (
        id TEXT PRIMARY KEY,
        conversation_id TEXT NOT NULL,
        capability TEXT NOT NULL,
        fields TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_records_conversation ON records(conversation_id);
    CREATE INDEX IF NOT EXISTS idx_records_capability ON records(capability);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SaveBatch writes every record in one transaction; on any failure the
// transaction rolls back and nothing persists.
func (s *SQLiteRecordStore) SaveBatch(ctx context.Context, records []model.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO records (id, conversation_id, capability, fields, created_at)
        VALUES (?, ?, ?, ?, ?)
    `
	for _, rec := range records {
		fields, err := json.Marshal(rec.Fields)
		if err != nil {
			return fmt.Errorf("failed to marshal record fields: %w", err)
		}
		_, err = tx.ExecContext(ctx, query,
			rec.ID, rec.ConversationID, rec.Capability, string(fields),
			rec.CreatedAt.Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("failed to insert record %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

// GetBatch returns the records with the given identifiers, in id-list order.
// Missing identifiers are simply absent from the result.
func (s *SQLiteRecordStore) GetBatch(ctx context.Context, ids []string) ([]model.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf(`
        SELECT id, conversation_id, capability, fields, created_at
        FROM records
        WHERE id IN (%s)
    `, placeholders)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]model.Record, len(ids))
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		byID[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	out := make([]model.Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ListByConversation returns every record saved from a conversation, oldest first.
func (s *SQLiteRecordStore) ListByConversation(ctx context.Context, conversationID string) ([]model.Record, error) {
	query := `
        SELECT id, conversation_id, capability, fields, created_at
        FROM records
        WHERE conversation_id = ?
        ORDER BY created_at, id
    `

	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (model.Record, error) {
	var (
		rec          model.Record
		fieldsJSON   string
		createdAtStr string
	)
	if err := rows.Scan(&rec.ID, &rec.ConversationID, &rec.Capability, &fieldsJSON, &createdAtStr); err != nil {
		return model.Record{}, fmt.Errorf("failed to scan record: %w", err)
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &rec.Fields); err != nil {
		return model.Record{}, fmt.Errorf("failed to parse record fields: %w", err)
	}
	var err error
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return model.Record{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return rec, nil
}

var _ model.RecordStore = (*SQLiteRecordStore)(nil)

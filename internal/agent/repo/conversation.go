package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/model"
	errx "github.com/nbowman189/vitruvian-developer-sub000/internal/core/error"
	logx "github.com/nbowman189/vitruvian-developer-sub000/pkg/logger"
)

const maxTitleLen = 64

// RedisConversationStore keeps each conversation as a list of JSON turns
// plus a meta hash, with a per-user sorted index for summaries. TTL is
// extended on every touch.
type RedisConversationStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisConversationStore(rdb redis.Cmdable, ttl time.Duration) *RedisConversationStore {
	return &RedisConversationStore{rdb: rdb, ttl: ttl}
}

func (r *RedisConversationStore) turnsKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:turns", conversationID)
}

func (r *RedisConversationStore) metaKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:meta", conversationID)
}

func (r *RedisConversationStore) userKey(userID string) string {
	return fmt.Sprintf("user:%s:conversations", userID)
}

// Append adds turns to a conversation, creating it implicitly when
// conversationID is empty. The (possibly new) identifier is returned.
func (r *RedisConversationStore) Append(ctx context.Context, userID, conversationID string, turns ...model.Turn) (string, error) {
	if len(turns) == 0 {
		return conversationID, fmt.Errorf("no turns to append")
	}

	now := time.Now().UTC()
	created := conversationID == ""
	if created {
		conversationID = uuid.NewString()
	}

	payloads := make([]any, 0, len(turns))
	for i := range turns {
		turns[i].ConversationID = conversationID
		if turns[i].ID == "" {
			turns[i].ID = uuid.NewString()
		}
		if turns[i].CreatedAt.IsZero() {
			turns[i].CreatedAt = now
		}
		b, err := json.Marshal(turns[i])
		if err != nil {
			logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to marshal turn")
			return conversationID, fmt.Errorf("marshal turn: %w", err)
		}
		payloads = append(payloads, b)
	}

	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, r.turnsKey(conversationID), payloads...)

	meta := map[string]any{"updated_at": now.Format(time.RFC3339)}
	if created {
		meta["id"] = conversationID
		meta["user_id"] = userID
		meta["title"] = deriveTitle(turns)
		meta["records_created"] = 0
		meta["created_at"] = now.Format(time.RFC3339)
	}
	pipe.HSet(ctx, r.metaKey(conversationID), meta)
	pipe.ZAdd(ctx, r.userKey(userID), redis.Z{Score: float64(now.Unix()), Member: conversationID})

	if r.ttl > 0 {
		pipe.Expire(ctx, r.turnsKey(conversationID), r.ttl)
		pipe.Expire(ctx, r.metaKey(conversationID), r.ttl)
		pipe.Expire(ctx, r.userKey(userID), r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to append turns")
		return conversationID, errx.WrapRedis(err)
	}
	return conversationID, nil
}

// Load retrieves a conversation with all its turns.
func (r *RedisConversationStore) Load(ctx context.Context, conversationID string) (*model.Conversation, error) {
	rows, err := r.rdb.LRange(ctx, r.turnsKey(conversationID), 0, -1).Result()
	if err != nil && err != redis.Nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to load turns")
		return nil, errx.WrapRedis(err)
	}

	turns := make([]model.Turn, 0, len(rows))
	for i, row := range rows {
		var t model.Turn
		if err := json.Unmarshal([]byte(row), &t); err != nil {
			logx.Error().Err(err).Str("conversation_id", conversationID).Int("index", i).Msg("failed to unmarshal turn")
			return nil, fmt.Errorf("unmarshal turn at index %d: %w", i, err)
		}
		turns = append(turns, t)
	}

	meta, err := r.rdb.HGetAll(ctx, r.metaKey(conversationID)).Result()
	if err != nil && err != redis.Nil {
		return nil, errx.WrapRedis(err)
	}
	if len(meta) == 0 {
		return nil, errx.New(redis.Nil, http.StatusNotFound, errx.RedisNotFoundMessage)
	}

	conv := &model.Conversation{
		ID:             conversationID,
		UserID:         meta["user_id"],
		Title:          meta["title"],
		Turns:          turns,
		TurnCount:      len(turns),
		RecordsCreated: atoiSafe(meta["records_created"]),
	}
	conv.CreatedAt, _ = time.Parse(time.RFC3339, meta["created_at"])
	conv.UpdatedAt, _ = time.Parse(time.RFC3339, meta["updated_at"])
	return conv, nil
}

// ListSummaries returns the user's conversations, most recently updated first.
func (r *RedisConversationStore) ListSummaries(ctx context.Context, userID string) ([]model.ConversationSummary, error) {
	ids, err := r.rdb.ZRevRange(ctx, r.userKey(userID), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, errx.WrapRedis(err)
	}

	summaries := make([]model.ConversationSummary, 0, len(ids))
	for _, id := range ids {
		meta, err := r.rdb.HGetAll(ctx, r.metaKey(id)).Result()
		if err != nil && err != redis.Nil {
			return nil, errx.WrapRedis(err)
		}
		if len(meta) == 0 {
			// meta expired ahead of the index entry
			continue
		}
		count, err := r.rdb.LLen(ctx, r.turnsKey(id)).Result()
		if err != nil && err != redis.Nil {
			return nil, errx.WrapRedis(err)
		}
		s := model.ConversationSummary{
			ID:             id,
			UserID:         userID,
			Title:          meta["title"],
			TurnCount:      int(count),
			RecordsCreated: atoiSafe(meta["records_created"]),
		}
		s.UpdatedAt, _ = time.Parse(time.RFC3339, meta["updated_at"])
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// AddRecordsCreated bumps the conversation's records-created counter.
func (r *RedisConversationStore) AddRecordsCreated(ctx context.Context, conversationID string, n int) error {
	if err := r.rdb.HIncrBy(ctx, r.metaKey(conversationID), "records_created", int64(n)).Err(); err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to bump records counter")
		return errx.WrapRedis(err)
	}
	return nil
}

func deriveTitle(turns []model.Turn) string {
	for _, t := range turns {
		if t.Originator == model.OriginatorUser && t.Text != "" {
			if len(t.Text) > maxTitleLen {
				return t.Text[:maxTitleLen]
			}
			return t.Text
		}
	}
	return "New conversation"
}

func atoiSafe(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

var _ model.ConversationStore = (*RedisConversationStore)(nil)

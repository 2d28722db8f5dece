package model

import "time"

// ================ Config ================

// ModelConfig configures the backend chat models and the fallback chain.
// FallbackChain is the ordered list of model identities tried in sequence
// when the current one reports exhausted quota.
type ModelConfig struct {
	FallbackChain     []string      `envconfig:"MODEL_FALLBACK_CHAIN" default:"gemini-2.5-flash,gemini-2.5-flash-lite,gemini-2.0-flash"`
	MaxTokens         int           `envconfig:"MODEL_MAX_TOKENS" default:"2048"`
	Temperature       float32       `envconfig:"MODEL_TEMPERATURE" default:"0.4"`
	QuotaRetryDefault time.Duration `envconfig:"MODEL_QUOTA_RETRY_DEFAULT" default:"1h"`
}

// ConversationConfig controls conversation persistence and the history
// window handed to the backend.
type ConversationConfig struct {
	TTL             time.Duration `envconfig:"CONVERSATION_TTL" default:"720h"`
	MaxHistoryTurns int           `envconfig:"CONVERSATION_MAX_HISTORY_TURNS" default:"50"`
}

// StorageConfig locates the domain record database.
type StorageConfig struct {
	RecordsPath string `envconfig:"RECORDS_DB_PATH" default:"records.db"`
}

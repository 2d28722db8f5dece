package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/catalog"
	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/chat"
	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/history"
	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/llm"
	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/mediator"
	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/model"
	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/repo"
	"github.com/nbowman189/vitruvian-developer-sub000/internal/core"
	errx "github.com/nbowman189/vitruvian-developer-sub000/internal/core/error"
	logx "github.com/nbowman189/vitruvian-developer-sub000/pkg/logger"
	pkgredis "github.com/nbowman189/vitruvian-developer-sub000/pkg/redis"
)

// AppConfig defines all configurable parameters for the mediation engine,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Redis   pkgredis.Config
	Storage model.StorageConfig

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Engine configs
	Model        model.ModelConfig
	Conversation model.ConversationConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	rdb, err := cfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	records, err := repo.NewSQLiteRecordStore(cfg.Storage.RecordsPath)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	defer records.Close()

	cat := catalog.Builtin()

	chain, err := llm.NewGeminiChain(ctx, cfg.APIKey, cfg.BaseURL, cfg.Model, cat.ToolInfos())
	if err != nil {
		log.Fatalf("Failed to build model fallback chain: %v", err)
	}
	client, err := llm.NewClient(chain, cfg.Model.QuotaRetryDefault)
	if err != nil {
		log.Fatalf("Failed to build model client: %v", err)
	}

	engine := chat.NewEngine(
		client,
		history.NewBuilder(cfg.Conversation.MaxHistoryTurns),
		cat,
		repo.NewRedisConversationStore(rdb, cfg.Conversation.TTL),
		mediator.New(cat, records),
	)

	testMessages := []string{
		"I weighed 176 lbs today",
		"I weighed 176, worked out 60 min of cardio, and had a 650-calorie breakfast",
		"How has my week been going?",
	}

	userID := "demo-user"
	conversationID := ""

	for i, message := range testMessages {
		fmt.Printf("\nTurn %d: %q\n", i+1, message)

		result, err := engine.SendMessage(ctx, chat.SendInput{
			UserID:         userID,
			ConversationID: conversationID,
			Message:        message,
		})
		if err != nil {
			resp := errx.ToResponse(err)
			log.Fatalf("Turn %d failed (%s): %s", i+1, resp.Code, resp.Message)
		}
		conversationID = result.ConversationID

		fmt.Printf("Assistant: %s\n", result.ResponseText)
		for _, d := range result.Drafts {
			fmt.Printf("  draft %s (%s): %v\n", d.ID, d.Capability, d.Values)
		}

		// Confirm every proposed draft, the way a user approving the review
		// screen would.
		if len(result.Drafts) > 0 {
			inputs := make([]chat.RecordInput, 0, len(result.Drafts))
			for _, d := range result.Drafts {
				inputs = append(inputs, chat.RecordInput{CapabilityName: d.Capability, RecordData: d.Values})
			}
			saved, err := engine.SaveRecords(ctx, chat.SaveInput{
				ConversationID: conversationID,
				Records:        inputs,
			})
			if err != nil {
				resp := errx.ToResponse(err)
				log.Fatalf("Save failed (%s): %s", resp.Code, resp.Message)
			}
			for _, rec := range saved.Records {
				fmt.Printf("  saved %s (%s)\n", rec.ID, rec.Capability)
			}
		}
	}

	fmt.Println("\nDone.")
}

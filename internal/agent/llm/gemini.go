package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/model"
	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/safety"
	logx "github.com/nbowman189/vitruvian-developer-sub000/pkg/logger"
)

// NewGeminiChain builds one chat model per identity in the configured
// fallback chain, all sharing a single Gemini client, with the capability
// declarations bound and the safety policy attached to every request.
func NewGeminiChain(ctx context.Context, apiKey, baseURL string, cfg model.ModelConfig, tools []*schema.ToolInfo) ([]Identity, error) {
	if len(cfg.FallbackChain) == 0 {
		return nil, fmt.Errorf("fallback chain is empty")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		clientCfg.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	chain := make([]Identity, 0, len(cfg.FallbackChain))
	for _, name := range cfg.FallbackChain {
		cm, err := gemini.NewChatModel(ctx, &gemini.Config{
			Client:         client,
			Model:          name,
			Temperature:    &cfg.Temperature,
			MaxTokens:      &cfg.MaxTokens,
			SafetySettings: safety.Settings(),
		})
		if err != nil {
			logx.Error().Err(err).Str("model", name).Msg("Error creating chat model")
			return nil, fmt.Errorf("error creating chat model %q: %w", name, err)
		}
		if err := cm.BindTools(tools); err != nil {
			logx.Error().Err(err).Str("model", name).Msg("Failed to bind tools")
			return nil, fmt.Errorf("failed to bind tools to %q: %w", name, err)
		}
		chain = append(chain, Identity{Name: name, Model: cm})
	}

	return chain, nil
}

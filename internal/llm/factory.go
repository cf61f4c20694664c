package llm

import (
	"fmt"
	"strings"
	"time"

	"ai-chat-bot/internal/config"
)

// New resolves the backend strategy once, at startup. An unknown selector or
// a missing credential is a configuration error the caller should treat as
// fatal — misconfiguration must never surface mid-conversation.
func New(cfg *config.Config) (Client, error) {
	timeout := time.Duration(cfg.LLMTimeoutSeconds) * time.Second

	switch config.Backend(strings.ToLower(strings.TrimSpace(string(cfg.LLMBackend)))) {
	case config.BackendOllama:
		return NewOllama(cfg.OllamaURL, cfg.OllamaModel, timeout), nil
	case config.BackendOpenAICompat:
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return nil, fmt.Errorf("OPENAI_COMPAT_API_KEY is required for the %s backend", config.BackendOpenAICompat)
		}
		return NewOpenAICompat(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, timeout), nil
	default:
		return nil, fmt.Errorf("unknown llm backend %q (use %q or %q)", cfg.LLMBackend, config.BackendOllama, config.BackendOpenAICompat)
	}
}

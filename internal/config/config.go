package config

import (
	"github.com/caarlos0/env/v6"
	"github.com/rs/zerolog/log"
)

type Backend string

const (
	BackendOllama       Backend = "ollama"
	BackendOpenAICompat Backend = "openai_compat"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`

	// Model backend selection
	LLMBackend        Backend `env:"LLM_BACKEND" envDefault:"ollama"`
	OllamaURL         string  `env:"OLLAMA_URL" envDefault:"http://127.0.0.1:11434"`
	OllamaModel       string  `env:"OLLAMA_MODEL" envDefault:"llama3.2:3b"`
	OpenAIBaseURL     string  `env:"OPENAI_COMPAT_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	OpenAIModel       string  `env:"OPENAI_COMPAT_MODEL" envDefault:"llama-3.1-8b-instant"`
	OpenAIAPIKey      string  `env:"OPENAI_COMPAT_API_KEY"`
	LLMTimeoutSeconds int     `env:"LLM_TIMEOUT_SECONDS" envDefault:"120"`

	// Contract metadata
	AssistantName string `env:"ASSISTANT_NAME" envDefault:"Bianca"`
	Timezone      string `env:"TIMEZONE" envDefault:"Europe/Brussels"`
	SchemaVersion string `env:"SCHEMA_VERSION" envDefault:"1.0"`
	HistoryLimit  int    `env:"HISTORY_LIMIT" envDefault:"8"`

	// Behavior policy markdown sent as system guidance
	PolicyPath string `env:"POLICY_PATH" envDefault:"./data/core_behavior.md"`

	// Storage
	SQLitePath string `env:"SQLITE_PATH" envDefault:"./data/messages.db"`

	LogLevel     string `env:"LOG_LEVEL" envDefault:"debug"`
	DebugUpdates bool   `env:"DEBUG_TELEGRAM_UPDATES"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to parse config")
	}
	return cfg
}

package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ai-chat-bot/internal/config"
	"ai-chat-bot/internal/llm"
	"ai-chat-bot/internal/pipeline"
	"ai-chat-bot/internal/policy"
	"ai-chat-bot/internal/store"
	"ai-chat-bot/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Warn().Err(err).Msg(".env file not found")
	}

	cfg := config.New()
	setupLogging(cfg.LogLevel)

	st, err := store.Open(cfg.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SQLitePath).Msg("failed to open event store")
	}
	if err := st.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate event store")
	}

	// Preload so a missing policy file fails at startup, not mid-request.
	pol := policy.NewLoader(cfg.PolicyPath)
	pol.Text()

	client, err := llm.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create llm client")
	}

	pipe := pipeline.New(st, pol, client, cfg)

	bot, err := telegram.New(cfg.TelegramBotToken, st, pipe, cfg.DebugUpdates)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}

	log.Info().Str("backend", string(cfg.LLMBackend)).Int("history_limit", cfg.HistoryLimit).Msg("bot started")
	bot.Start(context.Background())
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
}

// Package telegram is the chat-transport adapter: it polls for updates,
// drives the pipeline for each text message, and persists the exchange. The
// reply to the user is the critical path — every persistence step around it
// is best-effort and must never suppress or alter an already-computed reply.
package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"ai-chat-bot/internal/contract"
	"ai-chat-bot/internal/store"
)

const internalErrorReply = "Sorry, internal error."

// eventStore is the write surface the adapter needs.
type eventStore interface {
	UpsertChat(telegramChatID int64, chatType, title string) error
	UpsertUser(telegramUserID int64, isBot bool, firstName, lastName, languageCode string) error
	AppendEvent(chatID int64, userID *int64, role, text string, updateID, messageID, sourceDate *int64) error
	SetProfile(telegramUserID int64, description string) error
}

// turnHandler is the pipeline surface the adapter drives.
type turnHandler interface {
	HandleTurn(ctx context.Context, chatID, userID int64, userText string) (contract.Response, string, error)
}

type Bot struct {
	api          *tgbotapi.BotAPI
	s            sender
	store        eventStore
	pipe         turnHandler
	debugUpdates bool
}

func New(botToken string, st eventStore, pipe turnHandler, debugUpdates bool) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:          api,
		s:            botAPISender{api: api},
		store:        st,
		pipe:         pipe,
		debugUpdates: debugUpdates,
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 50

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message != nil {
			b.handleIncomingMessage(ctx, update)
		}
	}
}

func (b *Bot) handleIncomingMessage(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg.Chat == nil || msg.From == nil || msg.Text == "" || msg.IsCommand() {
		return
	}

	chatID := msg.Chat.ID
	userID := msg.From.ID

	if b.debugUpdates {
		log.Debug().Int("update_id", update.UpdateID).Int64("chat_id", chatID).
			Int64("user_id", userID).Str("text", msg.Text).Msg("incoming update")
	}

	// Best-effort metadata upserts.
	if err := b.store.UpsertChat(chatID, msg.Chat.Type, msg.Chat.Title); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("chat upsert failed (ignored)")
	}
	if err := b.store.UpsertUser(userID, msg.From.IsBot, msg.From.FirstName, msg.From.LastName, msg.From.LanguageCode); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("user upsert failed (ignored)")
	}

	// Inbound event; the unique update id makes re-delivery a no-op.
	updateID := int64(update.UpdateID)
	messageID := int64(msg.MessageID)
	sourceDate := int64(msg.Date)
	if err := b.store.AppendEvent(chatID, &userID, store.RoleUser, msg.Text, &updateID, &messageID, &sourceDate); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("append user event failed (ignored)")
	}

	resp, prompt, err := b.pipe.HandleTurn(ctx, chatID, userID, msg.Text)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("turn failed")
		resp = contract.Response{AssistantText: internalErrorReply}
	}
	if b.debugUpdates {
		log.Debug().Str("prompt_used", prompt).Str("assistant_text", resp.AssistantText).Msg("turn completed")
	}

	// Critical path: the user gets a reply before anything else is persisted.
	sent, err := b.s.Send(tgbotapi.NewMessage(chatID, resp.AssistantText))
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
		return
	}

	sentMessageID := int64(sent.MessageID)
	sentDate := int64(sent.Date)
	if err := b.store.AppendEvent(chatID, nil, store.RoleAssistant, resp.AssistantText, nil, &sentMessageID, &sentDate); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("append assistant event failed (ignored)")
	}

	// The model decides when the profile changes; empty means no change.
	if resp.UpdatedUserDescription != "" {
		if err := b.store.SetProfile(userID, resp.UpdatedUserDescription); err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("profile update failed (ignored)")
		}
	}
}

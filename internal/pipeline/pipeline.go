// Package pipeline wires the event store reads, the request builder, and the
// model client into one synchronous call per chat turn. It only reads state;
// persisting the exchange is the transport adapter's job, after the reply
// has been delivered.
package pipeline

import (
	"context"
	"time"

	"ai-chat-bot/internal/config"
	"ai-chat-bot/internal/contract"
	"ai-chat-bot/internal/llm"
	"ai-chat-bot/internal/policy"
)

// Store is the read surface the pipeline needs from the event store.
type Store interface {
	RecentTurns(chatID int64, limitTurns int) ([]contract.Turn, error)
	Profile(telegramUserID int64) (string, error)
}

type Pipeline struct {
	store  Store
	policy *policy.Loader
	client llm.Client

	assistantName string
	schemaVersion string
	timezone      string
	historyLimit  int
}

func New(store Store, pol *policy.Loader, client llm.Client, cfg *config.Config) *Pipeline {
	return &Pipeline{
		store:         store,
		policy:        pol,
		client:        client,
		assistantName: cfg.AssistantName,
		schemaVersion: cfg.SchemaVersion,
		timezone:      cfg.Timezone,
		historyLimit:  cfg.HistoryLimit,
	}
}

// HandleTurn assembles the bounded context for one inbound message and
// invokes the model. The returned error covers store read failures only; the
// model call itself cannot fail, it degrades to a diagnostic response.
func (p *Pipeline) HandleTurn(ctx context.Context, chatID, userID int64, userText string) (contract.Response, string, error) {
	policyText := p.policy.Text()

	profileText, err := p.store.Profile(userID)
	if err != nil {
		return contract.Response{}, "", err
	}

	turns, err := p.store.RecentTurns(chatID, p.historyLimit)
	if err != nil {
		return contract.Response{}, "", err
	}

	req := contract.BuildRequest(
		policyText,
		p.assistantName,
		p.schemaVersion,
		p.timezone,
		time.Now(),
		profileText,
		turns,
		userText,
	)

	resp, prompt := p.client.Invoke(ctx, req)
	return resp, prompt, nil
}

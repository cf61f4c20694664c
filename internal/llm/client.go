// Package llm holds the model backend strategies. Both implement the same
// total contract: Invoke never fails — every transport error, bad status, or
// malformed reply is folded into a diagnostic Response, so the caller's reply
// path is never blocked by a misbehaving backend.
package llm

import (
	"context"

	"ai-chat-bot/internal/contract"
)

type Client interface {
	// Invoke sends the request to the backend and returns the normalized
	// response plus the serialized prompt that was sent (for debugging).
	Invoke(ctx context.Context, req contract.Request) (contract.Response, string)
}

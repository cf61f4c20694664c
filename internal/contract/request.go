// Package contract defines the fixed JSON request/response shapes exchanged
// with the model backend, plus the tolerant parsing that recovers a usable
// response from model output that does not obey the contract.
package contract

import (
	"encoding/json"
	"time"
)

type Meta struct {
	SchemaVersion string `json:"schema_version"`
	AssistantName string `json:"assistant_name"`
	Policy        string `json:"policy"`
	Timezone      string `json:"timezone"`
	CurrentTime   string `json:"current_time"`
}

// Turn is one reconstructed (user message, assistant reply) pair,
// oldest-first in Request.RecentTurns.
type Turn struct {
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
}

// Request is the structured object sent to the model each turn. It is never
// persisted; its serialized form is kept only as a debugging artifact.
type Request struct {
	Meta        Meta   `json:"meta"`
	UserProfile string `json:"user_profile"`
	RecentTurns []Turn `json:"recent_turns"`
	NewMessage  string `json:"new_message"`
}

// BuildRequest assembles a Request from the conversational state. Pure: no
// I/O, no side effects, and it accepts any well-formed input including empty
// policy, profile and turns.
func BuildRequest(policyText, assistantName, schemaVersion, timezone string, now time.Time, profileText string, turns []Turn, userMessage string) Request {
	if turns == nil {
		turns = []Turn{}
	}
	return Request{
		Meta: Meta{
			SchemaVersion: schemaVersion,
			AssistantName: assistantName,
			Policy:        policyText,
			Timezone:      timezone,
			CurrentTime:   now.Format(time.RFC3339),
		},
		UserProfile: profileText,
		RecentTurns: turns,
		NewMessage:  userMessage,
	}
}

// Prompt serializes the request as indented JSON. This exact string is what
// gets sent to the backend as the user content, and what gets logged as the
// "prompt used".
func (r Request) Prompt() string {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

package contract

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequestIncludesTurnsProfileAndMessage(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	turns := []Turn{
		{Timestamp: now.Add(-2 * time.Minute), User: "hi", Assistant: "hello!"},
		{Timestamp: now.Add(-time.Minute), User: "what's 2+2", Assistant: "4"},
	}

	req := BuildRequest("be brief", "Bianca", "1.0", "Europe/Brussels", now, "likes cats", turns, "thanks")

	assert.Equal(t, "1.0", req.Meta.SchemaVersion)
	assert.Equal(t, "Bianca", req.Meta.AssistantName)
	assert.Equal(t, "be brief", req.Meta.Policy)
	assert.Equal(t, "Europe/Brussels", req.Meta.Timezone)
	assert.Equal(t, "2025-06-01T12:00:00Z", req.Meta.CurrentTime)
	assert.Equal(t, "likes cats", req.UserProfile)
	assert.Equal(t, "thanks", req.NewMessage)

	require.Len(t, req.RecentTurns, 2)
	assert.Equal(t, "hi", req.RecentTurns[0].User)
	assert.Equal(t, "hello!", req.RecentTurns[0].Assistant)
	assert.Equal(t, "what's 2+2", req.RecentTurns[1].User)
	assert.Equal(t, "4", req.RecentTurns[1].Assistant)
}

func TestBuildRequestAcceptsEmptyInputs(t *testing.T) {
	req := BuildRequest("", "", "", "", time.Now(), "", nil, "")
	assert.NotNil(t, req.RecentTurns)
	assert.Empty(t, req.RecentTurns)
	assert.Empty(t, req.Meta.Policy)
}

func TestPromptIsValidJSON(t *testing.T) {
	req := BuildRequest("rules", "Bianca", "1.0", "UTC", time.Now(), "", nil, "hi")
	prompt := req.Prompt()
	require.NotEmpty(t, prompt)

	var decoded Request
	require.NoError(t, json.Unmarshal([]byte(prompt), &decoded))
	assert.Equal(t, "hi", decoded.NewMessage)
	assert.Equal(t, "rules", decoded.Meta.Policy)
}

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "messages.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	return s
}

func ptr(v int64) *int64 { return &v }

func appendUser(t *testing.T, s *Store, chatID int64, text string, updateID *int64) {
	t.Helper()
	require.NoError(t, s.AppendEvent(chatID, ptr(7), RoleUser, text, updateID, nil, nil))
}

func appendAssistant(t *testing.T, s *Store, chatID int64, text string) {
	t.Helper()
	require.NoError(t, s.AppendEvent(chatID, nil, RoleAssistant, text, nil, nil, nil))
}

func TestAppendEventDeduplicatesOnUpdateID(t *testing.T) {
	s := newTestStore(t)

	appendUser(t, s, 1, "hello", ptr(100))
	appendUser(t, s, 1, "hello again", ptr(100))

	var count int64
	require.NoError(t, s.db.Model(&Event{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAppendEventNilUpdateIDsDoNotCollide(t *testing.T) {
	s := newTestStore(t)

	appendAssistant(t, s, 1, "a")
	appendAssistant(t, s, 1, "b")

	var count int64
	require.NoError(t, s.db.Model(&Event{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestRecentTurnsEmptyHistory(t *testing.T) {
	s := newTestStore(t)

	turns, err := s.RecentTurns(42, 8)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestRecentTurnsPairsUserWithNextAssistant(t *testing.T) {
	s := newTestStore(t)

	appendUser(t, s, 1, "hi", ptr(1))
	appendAssistant(t, s, 1, "hello!")
	appendUser(t, s, 1, "what's 2+2", ptr(2))
	appendAssistant(t, s, 1, "4")

	turns, err := s.RecentTurns(1, 8)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "hi", turns[0].User)
	assert.Equal(t, "hello!", turns[0].Assistant)
	assert.Equal(t, "what's 2+2", turns[1].User)
	assert.Equal(t, "4", turns[1].Assistant)
}

func TestRecentTurnsDropsTrailingUnansweredUser(t *testing.T) {
	s := newTestStore(t)

	appendUser(t, s, 1, "hi", ptr(1))
	appendAssistant(t, s, 1, "hello!")
	appendUser(t, s, 1, "in flight", ptr(2))

	turns, err := s.RecentTurns(1, 8)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "hi", turns[0].User)
}

func TestRecentTurnsBackToBackUserDropsEarlier(t *testing.T) {
	s := newTestStore(t)

	appendUser(t, s, 1, "first", ptr(1))
	appendUser(t, s, 1, "second", ptr(2))
	appendAssistant(t, s, 1, "reply")

	turns, err := s.RecentTurns(1, 8)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "second", turns[0].User)
	assert.Equal(t, "reply", turns[0].Assistant)
}

func TestRecentTurnsIgnoresUnknownRoles(t *testing.T) {
	s := newTestStore(t)

	appendUser(t, s, 1, "hi", ptr(1))
	require.NoError(t, s.AppendEvent(1, nil, "system", "noise", nil, nil, nil))
	appendAssistant(t, s, 1, "hello!")

	turns, err := s.RecentTurns(1, 8)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "hi", turns[0].User)
	assert.Equal(t, "hello!", turns[0].Assistant)
}

func TestRecentTurnsRespectsLimitKeepingNewest(t *testing.T) {
	s := newTestStore(t)

	for i := int64(0); i < 5; i++ {
		appendUser(t, s, 1, "q"+string(rune('0'+i)), ptr(i+1))
		appendAssistant(t, s, 1, "a"+string(rune('0'+i)))
	}

	turns, err := s.RecentTurns(1, 2)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "q3", turns[0].User)
	assert.Equal(t, "q4", turns[1].User)
}

func TestRecentTurnsScopedToChat(t *testing.T) {
	s := newTestStore(t)

	appendUser(t, s, 1, "chat one", ptr(1))
	appendAssistant(t, s, 1, "one")
	appendUser(t, s, 2, "chat two", ptr(2))
	appendAssistant(t, s, 2, "two")

	turns, err := s.RecentTurns(2, 8)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "chat two", turns[0].User)
}

func TestProfileLazyCreate(t *testing.T) {
	s := newTestStore(t)

	desc, err := s.Profile(99)
	require.NoError(t, err)
	assert.Equal(t, "", desc)

	// Idempotent: the lazily created row does not break a second read.
	desc, err = s.Profile(99)
	require.NoError(t, err)
	assert.Equal(t, "", desc)

	var count int64
	require.NoError(t, s.db.Model(&Profile{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSetProfileUpsert(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetProfile(7, "likes cats"))
	desc, err := s.Profile(7)
	require.NoError(t, err)
	assert.Equal(t, "likes cats", desc)

	require.NoError(t, s.SetProfile(7, "likes cats and tea"))
	desc, err = s.Profile(7)
	require.NoError(t, err)
	assert.Equal(t, "likes cats and tea", desc)
}

func TestUpsertChatAndUserIdempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpsertChat(10, "private", ""))
	require.NoError(t, s.UpsertChat(10, "private", "renamed"))
	require.NoError(t, s.UpsertUser(20, false, "Ada", "L", "en"))
	require.NoError(t, s.UpsertUser(20, false, "Ada", "Lovelace", "en"))

	var chats, users int64
	require.NoError(t, s.db.Model(&Chat{}).Count(&chats).Error)
	require.NoError(t, s.db.Model(&User{}).Count(&users).Error)
	assert.Equal(t, int64(1), chats)
	assert.Equal(t, int64(1), users)

	var chat Chat
	require.NoError(t, s.db.Where("telegram_chat_id = ?", int64(10)).First(&chat).Error)
	assert.Equal(t, "renamed", chat.Title)

	var user User
	require.NoError(t, s.db.Where("telegram_user_id = ?", int64(20)).First(&user).Error)
	assert.Equal(t, "Lovelace", user.LastName)
}

// Package store is the sqlite-backed event store: an append-only log of
// inbound/outbound message events per chat, plus one mutable profile row per
// user. Conversation turns are not stored; they are reconstructed on read
// from the event log.
package store

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Chat mirrors the transport-side chat metadata, upserted best-effort on
// every inbound message.
type Chat struct {
	ID             int64 `gorm:"primaryKey;autoIncrement"`
	TelegramChatID int64 `gorm:"uniqueIndex;not null"`
	Type           string
	Title          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Chat) TableName() string { return "chats" }

// User mirrors the transport-side sender metadata.
type User struct {
	ID             int64 `gorm:"primaryKey;autoIncrement"`
	TelegramUserID int64 `gorm:"uniqueIndex;not null"`
	IsBot          bool
	FirstName      string
	LastName       string
	LanguageCode   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (User) TableName() string { return "users" }

// Event is one immutable row per message observed by the system. UpdateID is
// the transport's delivery id and doubles as the dedup key: re-delivery of
// the same update must not create a second row. Assistant-authored events
// have no sender (UserID nil) and no UpdateID.
type Event struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	UpdateID   *int64 `gorm:"uniqueIndex"`
	MessageID  *int64
	ChatID     int64 `gorm:"not null;index:idx_events_chat_id"`
	UserID     *int64
	Role       string `gorm:"not null"`
	Text       string `gorm:"type:text"`
	SourceDate *int64
	CreatedAt  time.Time
}

func (Event) TableName() string { return "events" }

// Profile holds the free-text per-user memory the model maintains. The
// description is never null; the empty string is the default.
type Profile struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	TelegramUserID int64  `gorm:"uniqueIndex;not null"`
	Description    string `gorm:"type:text;not null;default:''"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Profile) TableName() string { return "profiles" }

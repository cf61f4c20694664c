package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"ai-chat-bot/internal/contract"
)

type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the sqlite database at path, creating the parent
// directory if needed, and applies the usual PRAGMAs.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory %s: %w", dir, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db at %s: %w", path, err)
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	return &Store{db: db}, nil
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Chat{}, &User{}, &Event{}, &Profile{})
}

// UpsertChat records chat metadata, updating type/title on re-delivery.
func (s *Store) UpsertChat(telegramChatID int64, chatType, title string) error {
	chat := Chat{TelegramChatID: telegramChatID, Type: chatType, Title: title}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "title", "updated_at"}),
	}).Create(&chat).Error
}

// UpsertUser records sender metadata, updating names on re-delivery.
func (s *Store) UpsertUser(telegramUserID int64, isBot bool, firstName, lastName, languageCode string) error {
	user := User{
		TelegramUserID: telegramUserID,
		IsBot:          isBot,
		FirstName:      firstName,
		LastName:       lastName,
		LanguageCode:   languageCode,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_bot", "first_name", "last_name", "language_code", "updated_at"}),
	}).Create(&user).Error
}

// AppendEvent appends one message event. When updateID is already present in
// the log the append is a silent no-op, so transport re-delivery never
// duplicates an event.
func (s *Store) AppendEvent(chatID int64, userID *int64, role, text string, updateID, messageID, sourceDate *int64) error {
	ev := Event{
		UpdateID:   updateID,
		MessageID:  messageID,
		ChatID:     chatID,
		UserID:     userID,
		Role:       role,
		Text:       text,
		SourceDate: sourceDate,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "update_id"}},
		DoNothing: true,
	}).Create(&ev).Error
}

// RecentTurns reconstructs up to limitTurns (user, assistant) pairs for a
// chat, oldest-first. It scans a bounded window of the most recent events:
// each user event opens a pending turn (overwriting any unanswered previous
// one, which is dropped), and the next assistant event closes it. A trailing
// unanswered user event yields no turn — that is the message currently being
// answered.
func (s *Store) RecentTurns(chatID int64, limitTurns int) ([]contract.Turn, error) {
	window := limitTurns * 4
	if window < 20 {
		window = 20
	}

	var events []Event
	err := s.db.
		Where("chat_id = ?", chatID).
		Order("id DESC").
		Limit(window).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent events for chat %d: %w", chatID, err)
	}

	// Newest-first from the query; chronological for the scan.
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}

	var turns []contract.Turn
	var pending *contract.Turn
	for _, ev := range events {
		text := strings.TrimSpace(ev.Text)
		switch strings.TrimSpace(ev.Role) {
		case RoleUser:
			pending = &contract.Turn{Timestamp: ev.CreatedAt, User: text}
		case RoleAssistant:
			if pending == nil {
				continue
			}
			pending.Assistant = text
			turns = append(turns, *pending)
			pending = nil
		}
	}

	if len(turns) > limitTurns {
		turns = turns[len(turns)-limitTurns:]
	}
	return turns, nil
}

// Profile returns the user's description, creating an empty profile row the
// first time the user is seen.
func (s *Store) Profile(telegramUserID int64) (string, error) {
	var p Profile
	err := s.db.Where("telegram_user_id = ?", telegramUserID).First(&p).Error
	if err == nil {
		return p.Description, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to fetch profile for user %d: %w", telegramUserID, err)
	}

	fresh := Profile{TelegramUserID: telegramUserID, Description: ""}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_user_id"}},
		DoNothing: true,
	}).Create(&fresh).Error
	if err != nil {
		return "", fmt.Errorf("failed to create profile for user %d: %w", telegramUserID, err)
	}
	return "", nil
}

// SetProfile replaces the user's description.
func (s *Store) SetProfile(telegramUserID int64, description string) error {
	p := Profile{TelegramUserID: telegramUserID, Description: description}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "updated_at"}),
	}).Create(&p).Error
}

// Package store persists subscribers, delivered newsletters, and generation
// logs in PostgreSQL. Persistence is optional: a nil *Store is a valid
// "no database configured" state and callers degrade around it.
package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: record not found")

// Subscriber is a registered newsletter recipient.
type Subscriber struct {
	ID              uint                        `gorm:"primaryKey" json:"id"`
	Email           string                      `gorm:"size:256;uniqueIndex" json:"email"`
	Topics          datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"topics"`
	PreferredSource string                      `gorm:"size:64" json:"preferred_source"`
	Active          bool                        `gorm:"index;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Newsletter is a record of a generated (and possibly delivered) issue.
type Newsletter struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	Email            string                      `gorm:"size:256;index" json:"email"`
	Subject          string                      `gorm:"size:512" json:"subject"`
	Content          string                      `gorm:"type:text" json:"content"`
	HTMLContent      string                      `gorm:"type:text" json:"html_content"`
	Topics           datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"topics"`
	SourcesUsed      datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"sources_used"`
	NewsCount        int                         `json:"news_count"`
	GenerationMethod string                      `gorm:"size:32" json:"generation_method"`
	GeneratedAt      time.Time                   `gorm:"index" json:"generated_at"`
	SentAt           *time.Time                  `json:"sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// GenerationLog records one aggregation or delivery attempt for diagnostics.
type GenerationLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:256;index" json:"email"`
	Operation string    `gorm:"size:64;index" json:"operation"` // "generate", "send", "test"
	Status    string    `gorm:"size:32;index" json:"status"`    // "ok", "error"
	Detail    string    `gorm:"size:1024" json:"detail"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// Stats summarizes stored activity.
type Stats struct {
	Subscribers       int64 `json:"subscribers"`
	ActiveSubscribers int64 `json:"active_subscribers"`
	NewslettersSent   int64 `json:"newsletters_sent"`
	GenerationErrors  int64 `json:"generation_errors"`
}

// Store wraps the database handle.
type Store struct {
	db *gorm.DB
}

// New opens a PostgreSQL store and migrates the schema.
func New(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := db.AutoMigrate(&Subscriber{}, &Newsletter{}, &GenerationLog{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing database handle, for tests.
func NewWithDB(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Subscriber{}, &Newsletter{}, &GenerationLog{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Subscribe registers a recipient, or updates topics and preferred source
// for an existing one and reactivates it.
func (s *Store) Subscribe(email string, topics []string, preferredSource string) (*Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("store: empty email")
	}

	sub := &Subscriber{}
	err := s.db.Where("email = ?", email).First(sub).Error
	switch {
	case err == nil:
		sub.Topics = topics
		sub.PreferredSource = preferredSource
		sub.Active = true
		if err := s.db.Save(sub).Error; err != nil {
			return nil, fmt.Errorf("store: update subscriber: %w", err)
		}
		return sub, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = &Subscriber{
			Email:           email,
			Topics:          topics,
			PreferredSource: preferredSource,
			Active:          true,
		}
		if err := s.db.Create(sub).Error; err != nil {
			return nil, fmt.Errorf("store: create subscriber: %w", err)
		}
		return sub, nil
	default:
		return nil, fmt.Errorf("store: lookup subscriber: %w", err)
	}
}

// Subscriber fetches one recipient by email.
func (s *Store) Subscriber(email string) (*Subscriber, error) {
	sub := &Subscriber{}
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: lookup subscriber: %w", err)
	}
	return sub, nil
}

// Subscribers lists all recipients, newest first.
func (s *Store) Subscribers() ([]Subscriber, error) {
	var subs []Subscriber
	if err := s.db.Order("created_at DESC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("store: list subscribers: %w", err)
	}
	return subs, nil
}

// ActiveSubscribers lists recipients due for scheduled delivery.
func (s *Store) ActiveSubscribers() ([]Subscriber, error) {
	var subs []Subscriber
	if err := s.db.Where("active = ?", true).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("store: list active subscribers: %w", err)
	}
	return subs, nil
}

// Unsubscribe removes a recipient entirely.
func (s *Store) Unsubscribe(email string) error {
	res := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Delete(&Subscriber{})
	if res.Error != nil {
		return fmt.Errorf("store: delete subscriber: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveNewsletter records a generated issue.
func (s *Store) SaveNewsletter(nl *Newsletter) error {
	if err := s.db.Create(nl).Error; err != nil {
		return fmt.Errorf("store: save newsletter: %w", err)
	}
	return nil
}

// MarkSent stamps a stored newsletter as delivered.
func (s *Store) MarkSent(id uint) error {
	now := time.Now().UTC()
	res := s.db.Model(&Newsletter{}).Where("id = ?", id).Update("sent_at", &now)
	if res.Error != nil {
		return fmt.Errorf("store: mark sent: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Newsletters lists the most recent issues for a recipient.
func (s *Store) Newsletters(email string, limit int) ([]Newsletter, error) {
	if limit <= 0 {
		limit = 20
	}
	var nls []Newsletter
	q := s.db.Order("generated_at DESC").Limit(limit)
	if email != "" {
		q = q.Where("email = ?", strings.ToLower(strings.TrimSpace(email)))
	}
	if err := q.Find(&nls).Error; err != nil {
		return nil, fmt.Errorf("store: list newsletters: %w", err)
	}
	return nls, nil
}

// Log records one operation outcome.
func (s *Store) Log(email, operation, status, detail string) {
	entry := &GenerationLog{
		Email:     email,
		Operation: operation,
		Status:    status,
		Detail:    truncateRunes(detail, 1024),
	}
	// Logging must never fail the operation it describes.
	_ = s.db.Create(entry).Error
}

// Stats summarizes stored activity.
func (s *Store) Stats() (*Stats, error) {
	st := &Stats{}
	if err := s.db.Model(&Subscriber{}).Count(&st.Subscribers).Error; err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}
	if err := s.db.Model(&Subscriber{}).Where("active = ?", true).Count(&st.ActiveSubscribers).Error; err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}
	if err := s.db.Model(&Newsletter{}).Where("sent_at IS NOT NULL").Count(&st.NewslettersSent).Error; err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}
	if err := s.db.Model(&GenerationLog{}).Where("status = ?", "error").Count(&st.GenerationErrors).Error; err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}
	return st, nil
}

// truncateRunes caps a string by rune count so oversized upstream text
// cannot overflow a varchar column.
func truncateRunes(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

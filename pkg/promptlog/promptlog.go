// Package promptlog persists prompt/answer exchanges and previously
// generated answers in a local SQLite database.
package promptlog

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one recorded prompt/answer exchange.
type Entry struct {
	ID            uint   `gorm:"primaryKey"`
	UnixTimestamp int64  `gorm:"index"`
	ISODate       string
	Model         string
	Prompt        string
	Answer        string
}

// cachedAnswer is one reusable answer keyed by request content.
type cachedAnswer struct {
	Key       string `gorm:"primaryKey"`
	Answer    string
	CreatedAt int64 `gorm:"index"`
}

// Log is a SQLite-backed prompt log. It satisfies the client's
// ExchangeRecorder interface.
type Log struct {
	db  *gorm.DB
	now func() time.Time
}

// Open creates or opens the log database at path. ":memory:" gives an
// ephemeral in-process database.
func Open(path string) (*Log, error) {
	if path == "" {
		return nil, errors.New("promptlog: database path is required")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("promptlog: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Entry{}, &cachedAnswer{}); err != nil {
		return nil, fmt.Errorf("promptlog: migrate: %w", err)
	}
	return &Log{db: db, now: time.Now}, nil
}

// RecordExchange appends one prompt/answer pair.
func (l *Log) RecordExchange(model, prompt, answer string) error {
	ts := l.now()
	entry := Entry{
		UnixTimestamp: ts.UnixMilli(),
		ISODate:       ts.UTC().Format(time.RFC3339),
		Model:         model,
		Prompt:        prompt,
		Answer:        answer,
	}
	if err := l.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("promptlog: record: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *Log) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	var entries []Entry
	err := l.db.Order("unix_timestamp desc").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("promptlog: recent: %w", err)
	}
	return entries, nil
}

// AnswerCache serves previously generated answers out of the log database.
// Entries older than the TTL are treated as absent; a zero TTL disables
// expiry. It satisfies the client's AnswerCache interface.
type AnswerCache struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewAnswerCache builds a cache sharing the log's database.
func (l *Log) NewAnswerCache(ttl time.Duration) *AnswerCache {
	return &AnswerCache{db: l.db, ttl: ttl, now: l.now}
}

// Fetch looks up a cached answer by key.
func (c *AnswerCache) Fetch(key string) (string, bool) {
	var cached cachedAnswer
	err := c.db.First(&cached, "key = ?", key).Error
	if err != nil {
		return "", false
	}
	if c.ttl > 0 && c.now().UnixMilli()-cached.CreatedAt > c.ttl.Milliseconds() {
		c.db.Delete(&cachedAnswer{}, "key = ?", key)
		return "", false
	}
	return cached.Answer, true
}

// Store saves an answer under key, replacing any prior value. Failures are
// dropped: the cache is an optimization, not a source of truth.
func (c *AnswerCache) Store(key, answer string) {
	cached := cachedAnswer{Key: key, Answer: answer, CreatedAt: c.now().UnixMilli()}
	c.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&cached)
}

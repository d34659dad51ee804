// Package model provides configuration and journal repositories
package model

import (
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v7"
)

// Record provides interface for persistable journal records
type Record interface {
	Scope() string
	Name() string
}

// Entry is journal record read back from repository
type Entry struct {
	ID      string          `json:"id"`
	Created time.Time       `json:"created"`
	Data    json.RawMessage `json:"data"`
}

// Config provides per-guild configuration overrides
type Config interface {
	ConfigGet(guildID, scope, key string) (string, error)
	ConfigSet(guildID, scope, key, value string) error
}

// Journal provides bounded append-only record log
type Journal interface {
	JournalAppend(record Record) error
	JournalRecent(scope, name string, count int64) ([]*Entry, error)
}

// NewRepository provides Repository instance
func NewRepository(client *redis.Client, journalLength int64) *Repository {
	return &Repository{
		Client:        client,
		JournalLength: journalLength,
	}
}

package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v7"
)

// Repository implements Config and Journal on top of redis
type Repository struct {
	Client        *redis.Client
	JournalLength int64
}

func configKey(guildID, scope, key string) string {
	return fmt.Sprintf("%s.%s.%s", guildID, scope, key)
}

func journalKey(scope, name string) string {
	return fmt.Sprintf("journal.%s.%s", scope, name)
}

// ConfigSet stores configuration value
func (repo *Repository) ConfigSet(guildID, scope, key, value string) error {
	return repo.Client.Set(configKey(guildID, scope, key), value, 0).Err()
}

// ConfigGet returns configuration value or empty string if none is set
func (repo *Repository) ConfigGet(guildID, scope, key string) (s string, err error) {
	s, err = repo.Client.Get(configKey(guildID, scope, key)).Result()

	if err == redis.Nil {
		err = nil
	}

	return
}

// JournalAppend appends record to its stream, trimming stream to approximate journal length
func (repo *Repository) JournalAppend(record Record) error {
	values, err := journalValues(record, time.Now())
	if err != nil {
		return err
	}

	return repo.Client.XAdd(&redis.XAddArgs{
		Stream:       journalKey(record.Scope(), record.Name()),
		MaxLenApprox: repo.JournalLength,
		Values:       values,
	}).Err()
}

// JournalRecent returns up to count newest records, newest first
func (repo *Repository) JournalRecent(scope, name string, count int64) (entries []*Entry, err error) {
	msgs, err := repo.Client.XRevRangeN(journalKey(scope, name), "+", "-", count).Result()
	if err == redis.Nil {
		err = nil
	}

	if err != nil {
		return nil, err
	}

	for i := range msgs {
		entry, err := journalEntry(&msgs[i])
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func journalValues(record Record, created time.Time) (map[string]interface{}, error) {
	bs, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"created": created.Unix(),
		"data":    string(bs),
	}, nil
}

func journalEntry(m *redis.XMessage) (entry *Entry, err error) {
	entry = &Entry{
		ID: m.ID,
	}

	if raw, ok := m.Values["created"].(string); ok {
		created, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}

		entry.Created = time.Unix(created, 0).UTC()
	}

	if raw, ok := m.Values["data"].(string); ok {
		if !json.Valid([]byte(raw)) {
			return nil, fmt.Errorf("journal entry %s: invalid data", m.ID)
		}

		entry.Data = json.RawMessage(raw)
	}

	return entry, nil
}

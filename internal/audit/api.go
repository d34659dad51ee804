// Package audit provides persistent log of moderation actions
package audit

import (
	"context"
	"time"
)

// Moderation actions
const (
	ActionKick       = "kick"
	ActionAddRole    = "add_role"
	ActionRemoveRole = "remove_role"
	ActionSoftBan    = "soft_ban"
	ActionTimeout    = "timeout"
	ActionRestore    = "restore"
)

// Entry is single recorded action
type Entry struct {
	ID         int64     `db:"id" json:"id"`
	Action     string    `db:"action" json:"action"`
	GuildID    string    `db:"guild_id" json:"guild_id"`
	TargetID   string    `db:"target_id" json:"target_id"`
	TargetName string    `db:"target_name" json:"target_name"`
	Detail     string    `db:"detail" json:"detail"`
	Actor      string    `db:"actor" json:"actor"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Recorder stores and lists action entries
type Recorder interface {
	Record(ctx context.Context, entry *Entry) error
	Recent(ctx context.Context, limit int) ([]*Entry, error)
	Close() error
}

// Nop discards all entries
type Nop struct{}

// Record implementation
func (Nop) Record(ctx context.Context, entry *Entry) error {
	return nil
}

// Recent implementation
func (Nop) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	return nil, nil
}

// Close implementation
func (Nop) Close() error {
	return nil
}

// Package directory provides access to members, roles and channels of the moderated guild
package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrNotFound is returned when member, role or channel does not exist
	ErrNotFound = errors.New("not found")
	// ErrUninitialized is returned when guild connection is not established yet
	ErrUninitialized = errors.New("guild not initialized")
)

// Member describes guild member
type Member struct {
	ID            string
	Username      string
	Discriminator string
	DisplayName   string
	RoleIDs       []string
}

// HasRole returns true if member has role with given id
func (m *Member) HasRole(roleID string) bool {
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}

	return false
}

// Tag returns legacy username#discriminator form, or bare username for migrated accounts
func (m *Member) Tag() string {
	if m.Discriminator == "" || m.Discriminator == "0" {
		return m.Username
	}

	return m.Username + "#" + m.Discriminator
}

// Role describes guild role
type Role struct {
	ID          string
	Name        string
	Permissions int64
	Position    int
	Managed     bool
}

// IsAdministrator returns true if role grants administrator permission
func (r *Role) IsAdministrator() bool {
	return r.Permissions&discordgo.PermissionAdministrator != 0
}

// Message is a message to be posted into a channel
type Message struct {
	Content string
	Color   int
	Embed   bool
}

// Directory provides guild capabilities used by moderation
type Directory interface {
	GuildID() string
	Member(ctx context.Context, memberID string) (*Member, error)
	Members(ctx context.Context) ([]*Member, error)
	Roles(ctx context.Context) ([]*Role, error)
	RoleByName(ctx context.Context, name string) (*Role, error)
	Kick(ctx context.Context, memberID, reason string) error
	AddRole(ctx context.Context, memberID, roleID string) error
	RemoveRole(ctx context.Context, memberID, roleID string) error
	ReplaceRoles(ctx context.Context, memberID string, roleIDs []string) error
	SendMessage(ctx context.Context, channelName string, msg *Message) error
	SendDirect(ctx context.Context, userID, content string) error
}

// FindRole returns first role with exactly matching name
func FindRole(roles []*Role, name string) *Role {
	if name == "" {
		return nil
	}

	for _, r := range roles {
		if r.Name == name {
			return r
		}
	}

	return nil
}

// IsEveryone returns true for implicit default role of the guild
func IsEveryone(guildID string, role *Role) bool {
	return role.ID == guildID || strings.EqualFold(role.Name, "@everyone")
}

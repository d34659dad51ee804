// Package directorytest provides in-memory guild directory for tests
package directorytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/eientei/eagle/internal/directory"
)

// Memory is an in-memory directory.Directory
type Memory struct {
	KickFunc         func(memberID string) error
	ReplaceRolesFunc func(memberID string, roleIDs []string) error
	SendMessageFunc  func(channelName string, msg *directory.Message) error

	guildID  string
	members  []*directory.Member
	roles    []*directory.Role
	channels map[string][]*directory.Message
	direct   map[string][]string
	calls    []string
	m        sync.Mutex
}

// New returns empty guild with @everyone role
func New(guildID string) *Memory {
	return &Memory{
		guildID: guildID,
		roles: []*directory.Role{
			{ID: guildID, Name: "@everyone"},
		},
		channels: make(map[string][]*directory.Message),
		direct:   make(map[string][]string),
	}
}

// CreateRole adds role to the guild
func (mem *Memory) CreateRole(id, name string) *directory.Role {
	mem.m.Lock()
	defer mem.m.Unlock()

	r := &directory.Role{ID: id, Name: name, Position: len(mem.roles)}
	mem.roles = append(mem.roles, r)

	return r
}

// DeleteRole removes role from the guild and from all members
func (mem *Memory) DeleteRole(id string) {
	mem.m.Lock()
	defer mem.m.Unlock()

	for i, r := range mem.roles {
		if r.ID == id {
			mem.roles = append(mem.roles[:i], mem.roles[i+1:]...)
			break
		}
	}

	for _, m := range mem.members {
		m.RoleIDs = without(m.RoleIDs, id)
	}
}

// Join adds member to the guild
func (mem *Memory) Join(member *directory.Member) {
	mem.m.Lock()
	defer mem.m.Unlock()

	mem.members = append(mem.members, member)
}

// Leave removes member from the guild
func (mem *Memory) Leave(memberID string) {
	mem.m.Lock()
	defer mem.m.Unlock()

	mem.remove(memberID)
}

// CreateChannel adds text channel to the guild
func (mem *Memory) CreateChannel(name string) {
	mem.m.Lock()
	defer mem.m.Unlock()

	mem.channels[name] = nil
}

// Sent returns messages posted into channel
func (mem *Memory) Sent(channelName string) []*directory.Message {
	mem.m.Lock()
	defer mem.m.Unlock()

	return append([]*directory.Message(nil), mem.channels[channelName]...)
}

// Direct returns direct messages sent to user
func (mem *Memory) Direct(userID string) []string {
	mem.m.Lock()
	defer mem.m.Unlock()

	return append([]string(nil), mem.direct[userID]...)
}

// RolesOf returns role ids currently held by member
func (mem *Memory) RolesOf(memberID string) []string {
	mem.m.Lock()
	defer mem.m.Unlock()

	if m := mem.find(memberID); m != nil {
		return append([]string(nil), m.RoleIDs...)
	}

	return nil
}

// Calls returns names of invoked directory methods in order
func (mem *Memory) Calls() []string {
	mem.m.Lock()
	defer mem.m.Unlock()

	return append([]string(nil), mem.calls...)
}

// GuildID implementation
func (mem *Memory) GuildID() string {
	return mem.guildID
}

// Member implementation
func (mem *Memory) Member(_ context.Context, memberID string) (*directory.Member, error) {
	mem.m.Lock()
	defer mem.m.Unlock()

	mem.calls = append(mem.calls, "Member")

	m := mem.find(memberID)
	if m == nil {
		return nil, fmt.Errorf("member %s: %w", memberID, directory.ErrNotFound)
	}

	return clone(m), nil
}

// Members implementation
func (mem *Memory) Members(context.Context) (members []*directory.Member, err error) {
	mem.m.Lock()
	defer mem.m.Unlock()

	mem.calls = append(mem.calls, "Members")

	for _, m := range mem.members {
		members = append(members, clone(m))
	}

	return members, nil
}

// Roles implementation
func (mem *Memory) Roles(context.Context) (roles []*directory.Role, err error) {
	mem.m.Lock()
	defer mem.m.Unlock()

	mem.calls = append(mem.calls, "Roles")

	for _, r := range mem.roles {
		c := *r
		roles = append(roles, &c)
	}

	return roles, nil
}

// RoleByName implementation
func (mem *Memory) RoleByName(ctx context.Context, name string) (*directory.Role, error) {
	roles, err := mem.Roles(ctx)
	if err != nil {
		return nil, err
	}

	if r := directory.FindRole(roles, name); r != nil {
		return r, nil
	}

	return nil, fmt.Errorf("role %q: %w", name, directory.ErrNotFound)
}

// Kick implementation
func (mem *Memory) Kick(_ context.Context, memberID, _ string) error {
	if mem.KickFunc != nil {
		if err := mem.KickFunc(memberID); err != nil {
			return err
		}
	}

	mem.m.Lock()
	defer mem.m.Unlock()

	mem.calls = append(mem.calls, "Kick")

	if mem.find(memberID) == nil {
		return directory.ErrNotFound
	}

	mem.remove(memberID)

	return nil
}

// AddRole implementation
func (mem *Memory) AddRole(_ context.Context, memberID, roleID string) error {
	mem.m.Lock()
	defer mem.m.Unlock()

	mem.calls = append(mem.calls, "AddRole")

	m := mem.find(memberID)
	if m == nil {
		return directory.ErrNotFound
	}

	if !m.HasRole(roleID) {
		m.RoleIDs = append(m.RoleIDs, roleID)
	}

	return nil
}

// RemoveRole implementation
func (mem *Memory) RemoveRole(_ context.Context, memberID, roleID string) error {
	mem.m.Lock()
	defer mem.m.Unlock()

	mem.calls = append(mem.calls, "RemoveRole")

	m := mem.find(memberID)
	if m == nil {
		return directory.ErrNotFound
	}

	m.RoleIDs = without(m.RoleIDs, roleID)

	return nil
}

// ReplaceRoles implementation
func (mem *Memory) ReplaceRoles(_ context.Context, memberID string, roleIDs []string) error {
	if mem.ReplaceRolesFunc != nil {
		if err := mem.ReplaceRolesFunc(memberID, roleIDs); err != nil {
			return err
		}
	}

	mem.m.Lock()
	defer mem.m.Unlock()

	mem.calls = append(mem.calls, "ReplaceRoles")

	m := mem.find(memberID)
	if m == nil {
		return directory.ErrNotFound
	}

	m.RoleIDs = append([]string(nil), roleIDs...)

	return nil
}

// SendMessage implementation
func (mem *Memory) SendMessage(_ context.Context, channelName string, msg *directory.Message) error {
	mem.m.Lock()
	_, ok := mem.channels[channelName]
	mem.m.Unlock()

	if !ok {
		return fmt.Errorf("channel %q: %w", channelName, directory.ErrNotFound)
	}

	if mem.SendMessageFunc != nil {
		if err := mem.SendMessageFunc(channelName, msg); err != nil {
			return err
		}
	}

	mem.m.Lock()
	defer mem.m.Unlock()

	mem.calls = append(mem.calls, "SendMessage")
	mem.channels[channelName] = append(mem.channels[channelName], msg)

	return nil
}

// SendDirect implementation
func (mem *Memory) SendDirect(_ context.Context, userID, content string) error {
	mem.m.Lock()
	defer mem.m.Unlock()

	mem.calls = append(mem.calls, "SendDirect")
	mem.direct[userID] = append(mem.direct[userID], content)

	return nil
}

func (mem *Memory) find(memberID string) *directory.Member {
	for _, m := range mem.members {
		if m.ID == memberID {
			return m
		}
	}

	return nil
}

func (mem *Memory) remove(memberID string) {
	for i, m := range mem.members {
		if m.ID == memberID {
			mem.members = append(mem.members[:i], mem.members[i+1:]...)
			return
		}
	}
}

func clone(m *directory.Member) *directory.Member {
	c := *m
	c.RoleIDs = append([]string(nil), m.RoleIDs...)

	return &c
}

func without(ids []string, id string) []string {
	res := ids[:0]

	for _, v := range ids {
		if v != id {
			res = append(res, v)
		}
	}

	return res
}

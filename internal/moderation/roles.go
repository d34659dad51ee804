package moderation

import (
	"github.com/eientei/eagle/internal/config"
	"github.com/eientei/eagle/internal/directory"
)

// Policy names roles moderation operates on and tunes role algebra
type Policy struct {
	AdminRole                string
	BannedRole               string
	TimeoutRole              string
	NewcomerRole             string
	MemberRole               string
	ProtectAdministrators    bool
	ExcludeTiersFromSnapshot bool
}

// PolicyFromConfig builds policy from configuration
func PolicyFromConfig(roles *config.Roles, moderation *config.Moderation) Policy {
	return Policy{
		AdminRole:                roles.Admin,
		BannedRole:               roles.Banned,
		TimeoutRole:              roles.Timeout,
		NewcomerRole:             roles.Newcomer,
		MemberRole:               roles.Member,
		ProtectAdministrators:    moderation.ProtectAdministrators,
		ExcludeTiersFromSnapshot: moderation.ExcludeTiersFromSnapshot,
	}
}

// Delta is role mutation computed for a member
type Delta struct {
	Remove   []*directory.Role
	Add      []*directory.Role
	Snapshot []*directory.Role
	Keep     []*directory.Role
}

// Result returns role ids member ends up with when delta is applied as replacement
func (delta *Delta) Result() (ids []string) {
	for _, r := range delta.Keep {
		ids = append(ids, r.ID)
	}

	for _, r := range delta.Add {
		ids = append(ids, r.ID)
	}

	return
}

// SnapshotIDs returns ids of snapshot roles
func (delta *Delta) SnapshotIDs() (ids []string) {
	for _, r := range delta.Snapshot {
		ids = append(ids, r.ID)
	}

	return
}

// SoftBanDelta removes tier roles and adds banned role
func (policy *Policy) SoftBanDelta(guildID string, roles []*directory.Role, member *directory.Member) (*Delta, error) {
	held := heldRoles(guildID, roles, member)

	if policy.isAdmin(held) {
		return nil, ErrSoftBanAdmin
	}

	banned := directory.FindRole(roles, policy.BannedRole)
	if banned == nil {
		return nil, ErrBannedRoleNotFound
	}

	delta := &Delta{
		Add: []*directory.Role{banned},
	}

	for _, r := range held {
		if policy.isTier(r) {
			delta.Remove = append(delta.Remove, r)
		}
	}

	return delta, nil
}

// TimeoutDelta snapshots restorable roles, removes tier roles and adds timeout role
func (policy *Policy) TimeoutDelta(guildID string, roles []*directory.Role, member *directory.Member) (*Delta, error) {
	held := heldRoles(guildID, roles, member)

	if policy.isAdmin(held) {
		return nil, ErrTimeoutAdmin
	}

	timeout := directory.FindRole(roles, policy.TimeoutRole)
	if timeout == nil {
		return nil, ErrTimeoutRoleNotFound
	}

	delta := &Delta{
		Add: []*directory.Role{timeout},
	}

	for _, r := range held {
		switch {
		case r.ID == timeout.ID, r.Name == timeout.Name:
		case policy.isBanned(r), r.Managed:
			delta.Keep = append(delta.Keep, r)
		case policy.isTier(r):
			delta.Remove = append(delta.Remove, r)

			if !policy.ExcludeTiersFromSnapshot {
				delta.Snapshot = append(delta.Snapshot, r)
			}
		default:
			delta.Snapshot = append(delta.Snapshot, r)
		}
	}

	return delta, nil
}

func (policy *Policy) isAdmin(held []*directory.Role) bool {
	for _, r := range held {
		if policy.AdminRole != "" && r.Name == policy.AdminRole {
			return true
		}

		if policy.ProtectAdministrators && r.IsAdministrator() {
			return true
		}
	}

	return false
}

func (policy *Policy) isBanned(r *directory.Role) bool {
	return policy.BannedRole != "" && r.Name == policy.BannedRole
}

func (policy *Policy) isTier(r *directory.Role) bool {
	return (policy.NewcomerRole != "" && r.Name == policy.NewcomerRole) ||
		(policy.MemberRole != "" && r.Name == policy.MemberRole)
}

// heldRoles returns guild roles held by member in guild order, without @everyone
func heldRoles(guildID string, roles []*directory.Role, member *directory.Member) (held []*directory.Role) {
	for _, r := range roles {
		if !directory.IsEveryone(guildID, r) && member.HasRole(r.ID) {
			held = append(held, r)
		}
	}

	return
}

// restoredRoles merges current roles with snapshot, dropping timeout role and roles no longer in guild
func restoredRoles(guildID string, roles []*directory.Role, current []string, timeoutRoleID string, snapshot []string) []string {
	exists := make(map[string]bool, len(roles))

	for _, r := range roles {
		if !directory.IsEveryone(guildID, r) {
			exists[r.ID] = true
		}
	}

	seen := make(map[string]bool)
	ids := make([]string, 0, len(current)+len(snapshot))

	for _, list := range [][]string{current, snapshot} {
		for _, id := range list {
			if id == timeoutRoleID || !exists[id] || seen[id] {
				continue
			}

			seen[id] = true
			ids = append(ids, id)
		}
	}

	return ids
}

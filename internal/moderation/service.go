// Package moderation implements moderation operations over guild directory
package moderation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/eientei/eagle/internal/audit"
	"github.com/eientei/eagle/internal/directory"
	"github.com/eientei/eagle/internal/router"
	"github.com/eientei/eagle/internal/scheduler"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/sirupsen/logrus"
)

// DefaultChannel receives posted messages when request names no channel
const DefaultChannel = "project-hq"

// KickReason is attached to kicks in guild audit log
const KickReason = "Kicked via moderation API"

// Options provide configuration for service
type Options struct {
	Provider       *directory.Provider
	Audit          audit.Recorder
	Log            *logrus.Logger
	Policy         Policy
	DefaultChannel string
	MaxTimeout     time.Duration
}

// Service implements moderation operations
type Service struct {
	Provider       *directory.Provider
	Scheduler      *scheduler.Scheduler
	Audit          audit.Recorder
	Log            *logrus.Logger
	DefaultChannel string
	MaxTimeout     time.Duration

	policy Policy
	lock   sync.RWMutex
}

// PostMessage is post_message request body
type PostMessage struct {
	Message     *string `json:"message"`
	ChannelName string  `json:"channel_name"`
	Color       string  `json:"color"`
}

// NewService returns service instance; Scheduler must be assigned before Timeout is used
func NewService(options Options) *Service {
	if options.Audit == nil {
		options.Audit = audit.Nop{}
	}

	if options.Log == nil {
		options.Log = logrus.New()
	}

	if options.DefaultChannel == "" {
		options.DefaultChannel = DefaultChannel
	}

	return &Service{
		Provider:       options.Provider,
		Audit:          options.Audit,
		Log:            options.Log,
		DefaultChannel: options.DefaultChannel,
		MaxTimeout:     options.MaxTimeout,
		policy:         options.Policy,
	}
}

// Policy returns current role policy
func (svc *Service) Policy() Policy {
	svc.lock.RLock()
	defer svc.lock.RUnlock()

	return svc.policy
}

// SetPolicy replaces role policy
func (svc *Service) SetPolicy(policy Policy) {
	svc.lock.Lock()
	defer svc.lock.Unlock()

	svc.policy = policy
}

func (svc *Service) directory() (directory.Directory, error) {
	dir, err := svc.Provider.Get()
	if errors.Is(err, directory.ErrUninitialized) {
		return nil, ErrGuildUninitialized
	}

	return dir, err
}

func (svc *Service) record(ctx context.Context, entry *audit.Entry) {
	err := svc.Audit.Record(ctx, entry)
	if err != nil {
		svc.Log.WithError(err).WithFields(logrus.Fields{
			"action": entry.Action,
			"target": entry.TargetID,
		}).Error("Recording audit entry")
	}
}

// Kick removes member from guild
func (svc *Service) Kick(ctx context.Context, userID, actor string) (string, error) {
	dir, err := svc.directory()
	if err != nil {
		return "", err
	}

	member, err := lookupID(ctx, dir, userID)
	if err != nil {
		return "", err
	}

	err = dir.Kick(ctx, member.ID, KickReason)
	if errors.Is(err, directory.ErrNotFound) {
		return "", ErrUserNotFound
	}

	if err != nil {
		return "", err
	}

	svc.record(ctx, &audit.Entry{
		Action:     audit.ActionKick,
		GuildID:    dir.GuildID(),
		TargetID:   member.ID,
		TargetName: member.Username,
		Actor:      actor,
	})

	return fmt.Sprintf("User %s kicked", member.ID), nil
}

// Roles returns role name to id mapping of member, including @everyone
func (svc *Service) Roles(ctx context.Context, userID string) (map[string]string, error) {
	dir, err := svc.directory()
	if err != nil {
		return nil, err
	}

	member, err := lookupID(ctx, dir, userID)
	if err != nil {
		return nil, err
	}

	roles, err := dir.Roles(ctx)
	if err != nil {
		return nil, err
	}

	res := make(map[string]string)

	for _, r := range roles {
		if directory.IsEveryone(dir.GuildID(), r) || member.HasRole(r.ID) {
			res[r.Name] = r.ID
		}
	}

	return res, nil
}

func (svc *Service) memberRole(ctx context.Context, userID, roleName string) (directory.Directory, *directory.Member, *directory.Role, error) {
	dir, err := svc.directory()
	if err != nil {
		return nil, nil, nil, err
	}

	member, err := lookupID(ctx, dir, userID)
	if err != nil {
		return nil, nil, nil, err
	}

	role, err := dir.RoleByName(ctx, roleName)
	if errors.Is(err, directory.ErrNotFound) {
		return nil, nil, nil, ErrRoleNotFound
	}

	if err != nil {
		return nil, nil, nil, err
	}

	return dir, member, role, nil
}

// AddRole grants named role to member
func (svc *Service) AddRole(ctx context.Context, userID, roleName, actor string) (string, error) {
	dir, member, role, err := svc.memberRole(ctx, userID, roleName)
	if err != nil {
		return "", err
	}

	err = dir.AddRole(ctx, member.ID, role.ID)
	if err != nil {
		return "", err
	}

	svc.record(ctx, &audit.Entry{
		Action:     audit.ActionAddRole,
		GuildID:    dir.GuildID(),
		TargetID:   member.ID,
		TargetName: member.Username,
		Detail:     role.Name,
		Actor:      actor,
	})

	return fmt.Sprintf("Role %s added to user %s", roleName, member.ID), nil
}

// RemoveRole revokes named role from member
func (svc *Service) RemoveRole(ctx context.Context, userID, roleName, actor string) (string, error) {
	dir, member, role, err := svc.memberRole(ctx, userID, roleName)
	if err != nil {
		return "", err
	}

	err = dir.RemoveRole(ctx, member.ID, role.ID)
	if err != nil {
		return "", err
	}

	svc.record(ctx, &audit.Entry{
		Action:     audit.ActionRemoveRole,
		GuildID:    dir.GuildID(),
		TargetID:   member.ID,
		TargetName: member.Username,
		Detail:     role.Name,
		Actor:      actor,
	})

	return fmt.Sprintf("Role %s removed from user %s", roleName, member.ID), nil
}

// PostMessage posts message into named or default text channel
func (svc *Service) PostMessage(ctx context.Context, req *PostMessage) (string, error) {
	dir, err := svc.directory()
	if err != nil {
		return "", err
	}

	if req == nil || req.Message == nil {
		return "", ErrMissingMessage
	}

	channel := req.ChannelName
	if channel == "" {
		channel = svc.DefaultChannel
	}

	msg := &directory.Message{
		Content: *req.Message,
	}

	if req.Color != "" {
		c, err := colorful.Hex(req.Color)
		if err != nil {
			return "", router.BadRequest("Invalid color %q", req.Color)
		}

		r, g, b := c.RGB255()

		msg.Embed = true
		msg.Color = int(r)<<16 | int(g)<<8 | int(b)
	}

	err = dir.SendMessage(ctx, channel, msg)
	if errors.Is(err, directory.ErrNotFound) {
		return "", router.NotFound(`Channel "%s" not found`, channel)
	}

	if err != nil {
		return "", router.Internal("Failed to send message: %v", err)
	}

	return fmt.Sprintf("Message posted to #%s", channel), nil
}

// SoftBan replaces tier roles of member with banned role
func (svc *Service) SoftBan(ctx context.Context, identifier, actor string) (string, error) {
	dir, err := svc.directory()
	if err != nil {
		return "", err
	}

	member, err := Resolve(ctx, dir, identifier)
	if err != nil {
		return "", err
	}

	roles, err := dir.Roles(ctx)
	if err != nil {
		return "", err
	}

	policy := svc.Policy()

	delta, err := policy.SoftBanDelta(dir.GuildID(), roles, member)
	if err != nil {
		return "", err
	}

	for _, r := range delta.Remove {
		err = dir.RemoveRole(ctx, member.ID, r.ID)
		if err != nil {
			return "", err
		}
	}

	for _, r := range delta.Add {
		err = dir.AddRole(ctx, member.ID, r.ID)
		if err != nil {
			return "", err
		}
	}

	svc.record(ctx, &audit.Entry{
		Action:     audit.ActionSoftBan,
		GuildID:    dir.GuildID(),
		TargetID:   member.ID,
		TargetName: member.Username,
		Actor:      actor,
	})

	return fmt.Sprintf("User %s soft-banned", member.Username), nil
}

// ParseDuration validates timeout duration given in whole seconds
func (svc *Service) ParseDuration(raw string) (time.Duration, error) {
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seconds <= 0 {
		return 0, router.BadRequest("Invalid duration %q", raw)
	}

	if svc.MaxTimeout > 0 && seconds > int64(svc.MaxTimeout/time.Second) {
		return 0, router.BadRequest("Duration exceeds maximum of %d seconds", int64(svc.MaxTimeout/time.Second))
	}

	return time.Duration(seconds) * time.Second, nil
}

// Timeout replaces restorable roles of member with timeout role and schedules their restoration
func (svc *Service) Timeout(ctx context.Context, identifier, rawDuration, actor string) (string, error) {
	dir, err := svc.directory()
	if err != nil {
		return "", err
	}

	duration, err := svc.ParseDuration(rawDuration)
	if err != nil {
		return "", err
	}

	member, err := Resolve(ctx, dir, identifier)
	if err != nil {
		return "", err
	}

	roles, err := dir.Roles(ctx)
	if err != nil {
		return "", err
	}

	policy := svc.Policy()

	delta, err := policy.TimeoutDelta(dir.GuildID(), roles, member)
	if err != nil {
		return "", err
	}

	if svc.Scheduler.RejectsOverlap() && svc.Scheduler.Active(member.ID) {
		return "", ErrTimeoutPending
	}

	err = dir.ReplaceRoles(ctx, member.ID, delta.Result())
	if err != nil {
		return "", err
	}

	job, err := svc.Scheduler.Schedule(&scheduler.Job{
		GuildID:       dir.GuildID(),
		MemberID:      member.ID,
		MemberName:    member.Username,
		TimeoutRoleID: delta.Add[0].ID,
		Snapshot:      delta.SnapshotIDs(),
	}, duration)

	switch {
	case errors.Is(err, scheduler.ErrOverlap):
		return "", ErrTimeoutPending
	case err != nil:
		svc.Log.WithError(err).WithField("member", member.ID).Error("Scheduling role restoration")

		return "", err
	}

	svc.Log.WithFields(logrus.Fields{
		"job":      job.ID,
		"member":   member.ID,
		"fire_at":  job.FireAt,
		"snapshot": job.Snapshot,
	}).Info("Scheduled role restoration")

	seconds := int64(duration / time.Second)

	svc.record(ctx, &audit.Entry{
		Action:     audit.ActionTimeout,
		GuildID:    dir.GuildID(),
		TargetID:   member.ID,
		TargetName: member.Username,
		Detail:     strconv.FormatInt(seconds, 10),
		Actor:      actor,
	})

	return fmt.Sprintf("User %s timed out for %d seconds", member.Username, seconds), nil
}

// Pending returns pending restorations ordered by fire time
func (svc *Service) Pending() []scheduler.Job {
	return svc.Scheduler.Jobs()
}

// Restore is scheduler executor returning member roles from job snapshot
func (svc *Service) Restore(ctx context.Context, job *scheduler.Job) error {
	dir, err := svc.Provider.Get()
	if err != nil {
		return err
	}

	if dir.GuildID() != job.GuildID {
		return fmt.Errorf("guild %s: %w", job.GuildID, directory.ErrUninitialized)
	}

	member, err := dir.Member(ctx, job.MemberID)
	if err != nil {
		return err
	}

	roles, err := dir.Roles(ctx)
	if err != nil {
		return err
	}

	return dir.ReplaceRoles(ctx, member.ID, restoredRoles(dir.GuildID(), roles, member.RoleIDs, job.TimeoutRoleID, job.Snapshot))
}

// Package moderate provides http moderation endpoints
package moderate

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/eagle/internal/bot"
	"github.com/eientei/eagle/internal/moderation"
	"github.com/eientei/eagle/internal/scheduler"
)

const (
	scope       = "moderation"
	journalName = "restore"
)

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config    *bot.Configuration
	service   *moderation.Service
	scheduler *scheduler.Scheduler
	clock     scheduler.Clock
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config

	root := config.Config

	mod.service = moderation.NewService(moderation.Options{
		Provider:       config.Directory,
		Audit:          config.Audit,
		Log:            config.Log,
		Policy:         moderation.PolicyFromConfig(&root.Roles, &root.Moderation),
		DefaultChannel: root.Moderation.Channel,
		MaxTimeout:     root.Moderation.MaxTimeout,
	})

	mod.scheduler = scheduler.New(scheduler.Options{
		Clock:         mod.clock,
		Executor:      mod.service.Restore,
		Log:           config.Log,
		RejectOverlap: root.Moderation.RejectsOverlap(),
	})

	mod.service.Scheduler = mod.scheduler

	mod.scheduler.Observe(mod.observeLog)
	mod.scheduler.Observe(mod.observeJournal)
	mod.scheduler.Observe(mod.observeAudit)

	err := scheduler.RegisterMetrics(config.Registry, mod.scheduler)
	if err != nil {
		return err
	}

	api := config.Router.Group("/api")
	api.Post("/kick/{userId}", mod.handleKick)
	api.Get("/get_roles/{userId}", mod.handleGetRoles)
	api.Post("/add_roles/{userId}/{roleName}", mod.handleAddRole)
	api.Post("/del_roles/{userId}/{roleName}", mod.handleDelRole)
	api.Post("/post_message", mod.handlePostMessage)
	api.Post("/soft_ban/{identifier}", mod.handleSoftBan)
	api.Post("/timeout/{identifier}/{durationSeconds}", mod.handleTimeout)
	api.Get("/timeouts", mod.handleTimeouts)
	api.Get("/timeouts/history", mod.handleHistory)
	api.Get("/audit", mod.handleAudit)

	mod.scheduler.Start(context.Background())

	return nil
}

func (mod *module) Configure(config *bot.Configuration, guild *discordgo.Guild) {
	policy := moderation.PolicyFromConfig(&config.Config.Roles, &config.Config.Moderation)

	if config.Settings != nil {
		overrides := map[string]*string{
			"role.admin":    &policy.AdminRole,
			"role.banned":   &policy.BannedRole,
			"role.timeout":  &policy.TimeoutRole,
			"role.newcomer": &policy.NewcomerRole,
			"role.member":   &policy.MemberRole,
		}

		for key, dst := range overrides {
			value, err := config.Settings.ConfigGet(guild.ID, scope, key)
			if err != nil {
				config.Log.WithError(err).WithField("key", key).Error("Getting role override")
				continue
			}

			if value != "" {
				*dst = value
			}
		}
	}

	mod.service.SetPolicy(policy)
}

func (mod *module) Shutdown(config *bot.Configuration) {
	mod.scheduler.Stop()
}

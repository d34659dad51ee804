// Package bot provides main bot implementation
package bot

import (
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/eagle/internal/audit"
	"github.com/eientei/eagle/internal/config"
	"github.com/eientei/eagle/internal/directory"
	"github.com/eientei/eagle/internal/model"
	"github.com/eientei/eagle/internal/router"
	"github.com/go-redis/redis/v7"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Options provide configuration options for bot
type Options struct {
	Discord  *discordgo.Session
	Client   *redis.Client
	Config   *config.Root
	Log      *logrus.Logger
	Audit    audit.Recorder
	Registry *prometheus.Registry
	Modules  []Module
}

// Configuration store configuration for bot
type Configuration struct {
	Discord   *discordgo.Session
	Client    *redis.Client
	Config    *config.Root
	Log       *logrus.Logger
	Router    *router.Router
	Directory *directory.Provider
	Settings  model.Config
	Journal   model.Journal
	Audit     audit.Recorder
	Registry  *prometheus.Registry
	Modules   []Module
	guild     *discordgo.Guild
	lock      sync.RWMutex
}

// Guild returns attached guild or nil
func (conf *Configuration) Guild() *discordgo.Guild {
	conf.lock.RLock()
	defer conf.lock.RUnlock()

	return conf.guild
}

// Reload performs reload of all configuration values in configured modules
func (conf *Configuration) Reload() {
	guild := conf.Guild()
	if guild == nil {
		return
	}

	for _, m := range conf.Modules {
		m.Configure(conf, guild)
	}
}

// Module interface incapsulates methods for distinct functionality
type Module interface {
	Initialize(bot *Configuration) error
	Configure(bot *Configuration, guild *discordgo.Guild)
	Shutdown(bot *Configuration)
}

// NewBot provides new instance of bot
func NewBot(options Options) (*Bot, error) {
	if options.Log == nil {
		options.Log = logrus.New()
	}

	if options.Config == nil {
		options.Config = &config.Root{}
	}

	if options.Audit == nil {
		options.Audit = audit.Nop{}
	}

	if options.Registry == nil {
		options.Registry = prometheus.NewRegistry()
	}

	r := router.NewRouter(router.Options{
		Log:         options.Log,
		CORSOrigins: options.Config.HTTP.CORSOrigins,
	})

	metrics, err := router.Metrics(options.Registry)
	if err != nil {
		return nil, err
	}

	r.AppendMiddleware(router.AccessLog(), metrics)
	r.Group("/api").Use(router.APIKey(options.Config.Private.APIKey))

	bot := &Bot{
		Configuration: Configuration{
			Discord:   options.Discord,
			Client:    options.Client,
			Config:    options.Config,
			Log:       options.Log,
			Router:    r,
			Directory: directory.NewProvider(),
			Audit:     options.Audit,
			Registry:  options.Registry,
			Modules:   options.Modules,
		},
	}

	if options.Client != nil {
		repo := model.NewRepository(options.Client, options.Config.Moderation.JournalLength)

		bot.Settings = repo
		bot.Journal = repo
	}

	for _, m := range bot.Modules {
		err := m.Initialize(&bot.Configuration)
		if err != nil {
			return nil, err
		}
	}

	if bot.Discord != nil {
		bot.Discord.AddHandler(bot.handlerReady)
		bot.Discord.AddHandler(bot.handlerGuildCreate)
		bot.Discord.AddHandler(bot.handlerGuildDelete)
		bot.Discord.AddHandler(bot.handlerGuildMemberRemove)
	}

	return bot, nil
}

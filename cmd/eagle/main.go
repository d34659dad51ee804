package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/eagle/internal/audit"
	"github.com/eientei/eagle/internal/bot"
	"github.com/eientei/eagle/internal/config"
	"github.com/eientei/eagle/internal/modules/moderate"
	"github.com/eientei/eagle/internal/modules/notify"
	"github.com/eientei/eagle/internal/modules/status"
	"github.com/go-redis/redis/v7"
	flags "github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var opts struct {
	Config  string   `short:"c" long:"config" default:"config.yml" description:"Configuration file"`
	Env     []string `short:"e" long:"env" description:"Environment file to load (.env)"`
	Listen  string   `long:"listen" description:"HTTP listen address (0.0.0.0:5000)"`
	Verbose bool     `short:"v" long:"verbose" description:"Enable debug logging"`
}

func parseFlags() {
	p := flags.NewParser(&opts, flags.Default)

	_, err := p.Parse()
	if err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}

		os.Exit(1)
	}
}

func readConfig(log *logrus.Logger, configPath string) *config.Root {
	configFile, err := os.Open(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.WithField("path", configPath).Warn("Configuration file not found, using environment only")

		return &config.Root{}
	}

	if err != nil {
		log.Fatal(err)
	}

	c, err := config.Read(configFile)
	if err != nil {
		log.Fatal(fmt.Errorf("reading %s: %w", configPath, err))
	}

	err = configFile.Close()
	if err != nil {
		log.Fatal(err)
	}

	return c
}

func openAudit(log *logrus.Logger, root *config.Root) audit.Recorder {
	if root.Audit.DSN == "" {
		return audit.Nop{}
	}

	store, err := audit.Open(strings.ToLower(root.Audit.Driver), root.Audit.DSN)
	if err != nil {
		log.Fatal(fmt.Errorf("opening audit log: %w", err))
	}

	return store
}

func connectRedis(log *logrus.Logger, root *config.Root) *redis.Client {
	if root.Private.Redis.Address == "" {
		log.Info("Redis not configured, per-guild settings and journal disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     root.Private.Redis.Address,
		Password: root.Private.Redis.Password,
		DB:       root.Private.Redis.DB,
	})

	err := client.Ping().Err()
	if err != nil {
		log.Fatal(fmt.Errorf("connecting redis: %w", err))
	}

	return client
}

func main() {
	parseFlags()

	log := logrus.New()

	envFiles := opts.Env
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	err := config.LoadEnv(envFiles...)
	if err != nil {
		log.Fatal(err)
	}

	configRoot := readConfig(log, opts.Config)
	configRoot.ApplyEnv(os.LookupEnv)

	if opts.Listen != "" {
		configRoot.HTTP.Listen = opts.Listen
	}

	configRoot.Defaults()

	level, err := logrus.ParseLevel(configRoot.Private.LogLevel)
	if err != nil {
		log.Fatal(err)
	}

	if opts.Verbose {
		level = logrus.DebugLevel
	}

	log.SetLevel(level)

	err = configRoot.Validate()
	if err != nil {
		log.Fatal(err)
	}

	dg, err := discordgo.New("Bot " + configRoot.Private.Token)
	if err != nil {
		log.Fatal(err)
	}

	dg.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsGuilds | discordgo.IntentsGuildMembers)

	b, err := bot.NewBot(bot.Options{
		Discord:  dg,
		Client:   connectRedis(log, configRoot),
		Config:   configRoot,
		Log:      log,
		Audit:    openAudit(log, configRoot),
		Registry: prometheus.NewRegistry(),
		Modules: []bot.Module{
			status.New(),
			moderate.New(),
			notify.New(),
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	err = b.Serve()
	if err != nil {
		log.Fatal(err)
	}
}

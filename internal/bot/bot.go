package bot

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/eagle/internal/directory"
)

const shutdownTimeout = 10 * time.Second

// Bot is a main implementation of bot
type Bot struct {
	Configuration
}

// Attach makes guild available to modules
func (bot *Bot) Attach(dir directory.Directory, guild *discordgo.Guild) {
	bot.Directory.Attach(dir)

	bot.lock.Lock()
	bot.guild = guild
	bot.lock.Unlock()

	bot.Log.WithField("guild", guild.ID).WithField("name", guild.Name).Info("Guild attached")

	for _, m := range bot.Modules {
		m.Configure(&bot.Configuration, guild)
	}
}

// Detach withdraws guild from modules
func (bot *Bot) Detach(guildID string) {
	if bot.Directory.Detach(guildID) {
		bot.lock.Lock()
		bot.guild = nil
		bot.lock.Unlock()

		bot.Log.WithField("guild", guildID).Warn("Guild detached")
	}
}

// Serve starts bot serving loop and blocks until exit
func (bot *Bot) Serve() error {
	err := bot.Discord.Open()
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              bot.Config.HTTP.Listen,
		Handler:           bot.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)

	go func() {
		bot.Log.WithField("listen", server.Addr).Info("Serving http")

		err := server.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	bot.Log.Info("Running")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	var serveErr error

	select {
	case <-sc:
	case serveErr = <-errs:
		bot.Log.WithError(serveErr).Error("Serving http")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		bot.Log.WithError(err).Error("Shutting down http")
	}

	for _, m := range bot.Modules {
		m.Shutdown(&bot.Configuration)
	}

	err = bot.Audit.Close()
	if err != nil {
		bot.Log.WithError(err).Error("Closing audit log")
	}

	err = bot.Discord.Close()
	if err != nil {
		return err
	}

	return serveErr
}

// Package notify provides startup notification of operator
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/eagle/internal/bot"
)

// Greeting is sent to operator once guild becomes available
const Greeting = "Hello from Boot!"

const sendTimeout = 10 * time.Second

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config *bot.Configuration
	sent   bool
	m      sync.Mutex
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config

	return nil
}

func (mod *module) Configure(config *bot.Configuration, guild *discordgo.Guild) {
	userID := config.Config.Private.NotifyUser
	if userID == "" {
		return
	}

	mod.m.Lock()
	defer mod.m.Unlock()

	if mod.sent {
		return
	}

	dir, err := config.Directory.Get()
	if err != nil {
		config.Log.WithError(err).Error("Getting guild directory")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	err = dir.SendDirect(ctx, userID, Greeting)
	if err != nil {
		config.Log.WithError(err).WithField("user", userID).Error("Notifying operator")
		return
	}

	mod.sent = true
}

func (mod *module) Shutdown(config *bot.Configuration) {

}

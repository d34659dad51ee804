package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/eientei/eagle/internal/directory"
)

func (bot *Bot) handlerReady(_ *discordgo.Session, ready *discordgo.Ready) {
	bot.Log.WithField("user", ready.User.String()).WithField("guilds", len(ready.Guilds)).Info("Logged in")
}

func (bot *Bot) handlerGuildCreate(session *discordgo.Session, guildCreate *discordgo.GuildCreate) {
	if guildCreate.ID != bot.Config.Private.GuildID {
		bot.Log.WithField("guild", guildCreate.ID).Debug("Ignoring foreign guild")
		return
	}

	bot.Attach(directory.NewDiscord(session, guildCreate.ID), guildCreate.Guild)

	err := session.RequestGuildMembers(guildCreate.ID, "", 0, "", false)
	if err != nil {
		bot.Log.WithError(err).WithField("guild", guildCreate.ID).Error("Requesting guild members")
	}
}

func (bot *Bot) handlerGuildDelete(_ *discordgo.Session, guildDelete *discordgo.GuildDelete) {
	bot.Detach(guildDelete.ID)
}

func (bot *Bot) handlerGuildMemberRemove(_ *discordgo.Session, memberRemove *discordgo.GuildMemberRemove) {
	if memberRemove.GuildID != bot.Config.Private.GuildID || memberRemove.User == nil {
		return
	}

	bot.Log.WithField("member", memberRemove.User.ID).WithField("name", memberRemove.User.Username).Info("Member left")
}

package directory

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

const membersPageLimit = 1000

// Discord implements Directory on top of discordgo session state with REST fallback
type Discord struct {
	session *discordgo.Session
	guildID string
}

// NewDiscord returns directory for given guild
func NewDiscord(session *discordgo.Session, guildID string) *Discord {
	return &Discord{
		session: session,
		guildID: guildID,
	}
}

// GuildID returns id of the guild
func (d *Discord) GuildID() string {
	return d.guildID
}

// Member returns member by id
func (d *Discord) Member(ctx context.Context, memberID string) (*Member, error) {
	if m, err := d.session.State.Member(d.guildID, memberID); err == nil {
		return memberFrom(m), nil
	}

	m, err := d.session.GuildMember(d.guildID, memberID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapError(err)
	}

	return memberFrom(m), nil
}

// Members returns all guild members, in state order when state is populated
func (d *Discord) Members(ctx context.Context) (members []*Member, err error) {
	if guild, serr := d.session.State.Guild(d.guildID); serr == nil && len(guild.Members) > 0 {
		d.session.State.RLock()
		defer d.session.State.RUnlock()

		for _, m := range guild.Members {
			members = append(members, memberFrom(m))
		}

		return members, nil
	}

	after := ""

	for {
		page, err := d.session.GuildMembers(d.guildID, after, membersPageLimit, discordgo.WithContext(ctx))
		if err != nil {
			return nil, wrapError(err)
		}

		for _, m := range page {
			members = append(members, memberFrom(m))
		}

		if len(page) < membersPageLimit {
			return members, nil
		}

		after = page[len(page)-1].User.ID
	}
}

// Roles returns all guild roles
func (d *Discord) Roles(ctx context.Context) (roles []*Role, err error) {
	var raw []*discordgo.Role

	if guild, serr := d.session.State.Guild(d.guildID); serr == nil && len(guild.Roles) > 0 {
		d.session.State.RLock()
		raw = append(raw, guild.Roles...)
		d.session.State.RUnlock()
	} else {
		raw, err = d.session.GuildRoles(d.guildID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, wrapError(err)
		}
	}

	for _, r := range raw {
		roles = append(roles, roleFrom(r))
	}

	return roles, nil
}

// RoleByName returns role with exactly matching name
func (d *Discord) RoleByName(ctx context.Context, name string) (*Role, error) {
	roles, err := d.Roles(ctx)
	if err != nil {
		return nil, err
	}

	if r := FindRole(roles, name); r != nil {
		return r, nil
	}

	return nil, fmt.Errorf("role %q: %w", name, ErrNotFound)
}

// Kick removes member from the guild
func (d *Discord) Kick(ctx context.Context, memberID, reason string) error {
	return wrapError(d.session.GuildMemberDeleteWithReason(d.guildID, memberID, reason, discordgo.WithContext(ctx)))
}

// AddRole assigns role to member
func (d *Discord) AddRole(ctx context.Context, memberID, roleID string) error {
	return wrapError(d.session.GuildMemberRoleAdd(d.guildID, memberID, roleID, discordgo.WithContext(ctx)))
}

// RemoveRole unassigns role from member
func (d *Discord) RemoveRole(ctx context.Context, memberID, roleID string) error {
	return wrapError(d.session.GuildMemberRoleRemove(d.guildID, memberID, roleID, discordgo.WithContext(ctx)))
}

// ReplaceRoles sets member role set in a single request
func (d *Discord) ReplaceRoles(ctx context.Context, memberID string, roleIDs []string) error {
	if roleIDs == nil {
		roleIDs = []string{}
	}

	_, err := d.session.GuildMemberEdit(d.guildID, memberID, &discordgo.GuildMemberParams{
		Roles: &roleIDs,
	}, discordgo.WithContext(ctx))

	return wrapError(err)
}

// SendMessage posts message into text channel with given name
func (d *Discord) SendMessage(ctx context.Context, channelName string, msg *Message) error {
	channel, err := d.textChannel(ctx, channelName)
	if err != nil {
		return err
	}

	if msg.Embed {
		_, err = d.session.ChannelMessageSendEmbed(channel.ID, &discordgo.MessageEmbed{
			Description: msg.Content,
			Color:       msg.Color,
		}, discordgo.WithContext(ctx))

		return err
	}

	_, err = d.session.ChannelMessageSend(channel.ID, msg.Content, discordgo.WithContext(ctx))

	return err
}

// SendDirect sends direct message to user
func (d *Discord) SendDirect(ctx context.Context, userID, content string) error {
	channel, err := d.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return wrapError(err)
	}

	_, err = d.session.ChannelMessageSend(channel.ID, content, discordgo.WithContext(ctx))

	return err
}

func (d *Discord) textChannel(ctx context.Context, name string) (*discordgo.Channel, error) {
	var channels []*discordgo.Channel

	if guild, err := d.session.State.Guild(d.guildID); err == nil && len(guild.Channels) > 0 {
		d.session.State.RLock()
		channels = append(channels, guild.Channels...)
		d.session.State.RUnlock()
	} else {
		channels, err = d.session.GuildChannels(d.guildID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, wrapError(err)
		}
	}

	for _, c := range channels {
		if c.Type == discordgo.ChannelTypeGuildText && c.Name == name {
			return c, nil
		}
	}

	return nil, fmt.Errorf("channel %q: %w", name, ErrNotFound)
}

func memberFrom(m *discordgo.Member) *Member {
	member := &Member{
		RoleIDs:     append([]string(nil), m.Roles...),
		DisplayName: m.Nick,
	}

	if m.User != nil {
		member.ID = m.User.ID
		member.Username = m.User.Username
		member.Discriminator = m.User.Discriminator

		if member.DisplayName == "" {
			member.DisplayName = m.User.GlobalName
		}

		if member.DisplayName == "" {
			member.DisplayName = m.User.Username
		}
	}

	return member
}

func roleFrom(r *discordgo.Role) *Role {
	return &Role{
		ID:          r.ID,
		Name:        r.Name,
		Permissions: r.Permissions,
		Position:    r.Position,
		Managed:     r.Managed,
	}
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if isNotFound(err) {
		return fmt.Errorf("%v: %w", err, ErrNotFound)
	}

	return err
}

func isNotFound(err error) bool {
	if errors.Is(err, discordgo.ErrStateNotFound) {
		return true
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusNotFound
	}

	return false
}

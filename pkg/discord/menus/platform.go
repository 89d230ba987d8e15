package menus

import (
	"github.com/bwmarrin/discordgo"
)

// Platform is the live membership surface the resolver needs. The resolver
// re-reads state through it immediately before every toggle decision; nothing
// here is cached.
type Platform interface {
	MemberRoles(guildID, userID string) ([]string, error)
	GrantRole(guildID, userID, roleID string) error
	RevokeRole(guildID, userID, roleID string) error
	HasChannelOverwrite(channelID, userID string) (bool, error)
	GrantChannel(channelID, userID string) error
	RevokeChannel(channelID, userID string) error
}

// Messenger is the message surface the reconciler and attachment manager
// need: lookup, component pushes and the bot identity for authorship checks.
type Messenger interface {
	Message(channelID, messageID string) (*discordgo.Message, error)
	EditComponents(channelID, messageID string, components []discordgo.MessageComponent) error
	BotUserID() string
}

// SessionPlatform adapts a discordgo session to Platform and Messenger.
type SessionPlatform struct {
	s *discordgo.Session
}

// NewSessionPlatform wraps a connected session.
func NewSessionPlatform(s *discordgo.Session) *SessionPlatform {
	return &SessionPlatform{s: s}
}

func (p *SessionPlatform) MemberRoles(guildID, userID string) ([]string, error) {
	member, err := p.s.GuildMember(guildID, userID)
	if err != nil {
		return nil, err
	}
	return member.Roles, nil
}

func (p *SessionPlatform) GrantRole(guildID, userID, roleID string) error {
	return p.s.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (p *SessionPlatform) RevokeRole(guildID, userID, roleID string) error {
	return p.s.GuildMemberRoleRemove(guildID, userID, roleID)
}

func (p *SessionPlatform) HasChannelOverwrite(channelID, userID string) (bool, error) {
	ch, err := p.s.Channel(channelID)
	if err != nil {
		return false, err
	}
	for _, ow := range ch.PermissionOverwrites {
		if ow.Type == discordgo.PermissionOverwriteTypeMember && ow.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

// GrantChannel makes a channel visible to one member via an allow overwrite.
func (p *SessionPlatform) GrantChannel(channelID, userID string) error {
	return p.s.ChannelPermissionSet(channelID, userID,
		discordgo.PermissionOverwriteTypeMember, discordgo.PermissionViewChannel, 0)
}

// RevokeChannel removes the member overwrite, restoring channel defaults.
func (p *SessionPlatform) RevokeChannel(channelID, userID string) error {
	return p.s.ChannelPermissionDelete(channelID, userID)
}

func (p *SessionPlatform) Message(channelID, messageID string) (*discordgo.Message, error) {
	return p.s.ChannelMessage(channelID, messageID)
}

func (p *SessionPlatform) EditComponents(channelID, messageID string, components []discordgo.MessageComponent) error {
	_, err := p.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Components: &components,
	})
	return err
}

func (p *SessionPlatform) BotUserID() string {
	if p.s.State != nil && p.s.State.User != nil {
		return p.s.State.User.ID
	}
	return ""
}

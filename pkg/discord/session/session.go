package session

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/small-frappuccino/rolemenu/pkg/log"
)

// Indirections for tests; production code never swaps these.
var (
	newSession = func(token string) (*discordgo.Session, error) {
		return discordgo.New("Bot " + token)
	}
	openSession  = func(s *discordgo.Session) error { return s.Open() }
	closeSession = func(s *discordgo.Session) error { return s.Close() }
)

// NewDiscordSession creates a Discord session, sets the gateway intents the
// menu engine needs and connects. Guilds covers channels and interactions;
// GuildMembers lets the resolver re-read live role membership before deciding
// grant vs revoke.
func NewDiscordSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}

	s, err := newSession(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	s.StateEnabled = true

	log.DiscordLogger().Info("connecting to Discord gateway")
	if err := openSession(s); err != nil {
		return nil, fmt.Errorf("failed to connect to Discord: %w", err)
	}
	log.DiscordLogger().Info("connected to Discord gateway")

	return s, nil
}

// CloseSession disconnects from the gateway. Safe on a nil session.
func CloseSession(s *discordgo.Session) error {
	if s == nil {
		return nil
	}
	if err := closeSession(s); err != nil {
		return fmt.Errorf("failed to close Discord session: %w", err)
	}
	return nil
}

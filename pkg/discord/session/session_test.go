package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func stubSession(t *testing.T, newFn func(string) (*discordgo.Session, error), openFn, closeFn func(*discordgo.Session) error) {
	t.Helper()
	origNew, origOpen, origClose := newSession, openSession, closeSession
	if newFn != nil {
		newSession = newFn
	}
	if openFn != nil {
		openSession = openFn
	}
	if closeFn != nil {
		closeSession = closeFn
	}
	t.Cleanup(func() {
		newSession, openSession, closeSession = origNew, origOpen, origClose
	})
}

func TestNewDiscordSessionEmptyToken(t *testing.T) {
	if _, err := NewDiscordSession(""); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestNewDiscordSessionSetsIntents(t *testing.T) {
	opened := false
	stubSession(t, nil, func(s *discordgo.Session) error {
		opened = true
		return nil
	}, nil)

	s, err := NewDiscordSession("token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opened {
		t.Fatalf("session was not opened")
	}
	want := discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	if s.Identify.Intents != want {
		t.Fatalf("unexpected intents: %v", s.Identify.Intents)
	}
}

func TestNewDiscordSessionOpenError(t *testing.T) {
	stubSession(t, nil, func(s *discordgo.Session) error {
		return errors.New("gateway down")
	}, nil)

	_, err := NewDiscordSession("token")
	if err == nil || !strings.Contains(err.Error(), "failed to connect") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCloseSessionNil(t *testing.T) {
	if err := CloseSession(nil); err != nil {
		t.Fatalf("closing nil session: %v", err)
	}
}

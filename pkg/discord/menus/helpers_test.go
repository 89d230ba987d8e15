package menus

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/small-frappuccino/rolemenu/pkg/menu"
	"github.com/small-frappuccino/rolemenu/pkg/storage"
)

func newTestService(t *testing.T) *menu.Service {
	t.Helper()
	s := storage.NewStore(filepath.Join(t.TempDir(), "menus.db"))
	if err := s.Init(); err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return menu.NewService(s)
}

// fakePlatform models one member's live role/channel state.
type fakePlatform struct {
	mu         sync.Mutex
	roles      map[string]bool
	overwrites map[string]bool
	failGrant  map[string]error
	mutations  int
}

func newFakePlatform(heldRoles ...string) *fakePlatform {
	p := &fakePlatform{
		roles:      make(map[string]bool),
		overwrites: make(map[string]bool),
		failGrant:  make(map[string]error),
	}
	for _, r := range heldRoles {
		p.roles[r] = true
	}
	return p
}

func (p *fakePlatform) MemberRoles(guildID, userID string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for id, held := range p.roles {
		if held {
			out = append(out, id)
		}
	}
	return out, nil
}

func (p *fakePlatform) GrantRole(guildID, userID, roleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mutations++
	if err := p.failGrant[roleID]; err != nil {
		return err
	}
	p.roles[roleID] = true
	return nil
}

func (p *fakePlatform) RevokeRole(guildID, userID, roleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mutations++
	delete(p.roles, roleID)
	return nil
}

func (p *fakePlatform) HasChannelOverwrite(channelID, userID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.overwrites[channelID], nil
}

func (p *fakePlatform) GrantChannel(channelID, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mutations++
	p.overwrites[channelID] = true
	return nil
}

func (p *fakePlatform) RevokeChannel(channelID, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mutations++
	delete(p.overwrites, channelID)
	return nil
}

func (p *fakePlatform) holdsRole(roleID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roles[roleID]
}

func (p *fakePlatform) holdsChannel(channelID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.overwrites[channelID]
}

func (p *fakePlatform) mutationCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mutations
}

// fakeMessenger models the message surface: a set of live messages and a log
// of component pushes.
type fakeMessenger struct {
	mu       sync.Mutex
	botID    string
	messages map[string]*discordgo.Message // "channel/message" key
	edits    map[string]int
}

func newFakeMessenger(botID string) *fakeMessenger {
	return &fakeMessenger{
		botID:    botID,
		messages: make(map[string]*discordgo.Message),
		edits:    make(map[string]int),
	}
}

func msgKey(channelID, messageID string) string {
	return channelID + "/" + messageID
}

func (m *fakeMessenger) addMessage(channelID, messageID, authorID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[msgKey(channelID, messageID)] = &discordgo.Message{
		ID:        messageID,
		ChannelID: channelID,
		Author:    &discordgo.User{ID: authorID},
	}
}

func (m *fakeMessenger) Message(channelID, messageID string) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[msgKey(channelID, messageID)]
	if !ok {
		return nil, fmt.Errorf("unknown message %s", messageID)
	}
	return msg, nil
}

func (m *fakeMessenger) EditComponents(channelID, messageID string, components []discordgo.MessageComponent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.messages[msgKey(channelID, messageID)]; !ok {
		return fmt.Errorf("unknown message %s", messageID)
	}
	m.edits[msgKey(channelID, messageID)]++
	return nil
}

func (m *fakeMessenger) BotUserID() string {
	return m.botID
}

func (m *fakeMessenger) editCount(channelID, messageID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.edits[msgKey(channelID, messageID)]
}

package core

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/small-frappuccino/rolemenu/pkg/log"
)

// ConfirmPrefix namespaces the custom IDs of confirmation buttons.
const ConfirmPrefix = "rmconfirm"

// DefaultConfirmTimeout bounds how long a prompt stays answerable. A timeout
// counts as aborted, same as never answering, distinct from an explicit "no".
const DefaultConfirmTimeout = 30 * time.Second

// Confirmer runs yes/no prompts for destructive subcommands. Ask blocks the
// calling handler goroutine until the acting user answers or the prompt times
// out.
type Confirmer struct {
	responder *ResponseManager
	timeout   time.Duration

	mu      sync.Mutex
	pending map[string]chan bool
	seq     atomic.Int64
}

func NewConfirmer(responder *ResponseManager) *Confirmer {
	return &Confirmer{
		responder: responder,
		timeout:   DefaultConfirmTimeout,
		pending:   make(map[string]chan bool),
	}
}

// Ask replies to the interaction with a confirm/cancel button pair and waits
// for the answer. Returns true only on explicit confirmation.
func (c *Confirmer) Ask(i *discordgo.InteractionCreate, prompt string) (bool, error) {
	token := fmt.Sprintf("%d-%d", time.Now().UnixNano(), c.seq.Add(1))
	ch := make(chan bool, 1)

	c.mu.Lock()
	c.pending[token] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, token)
		c.mu.Unlock()
	}()

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Confirm",
				Style:    discordgo.DangerButton,
				CustomID: fmt.Sprintf("%s:%s:yes", ConfirmPrefix, token),
			},
			discordgo.Button{
				Label:    "Cancel",
				Style:    discordgo.SecondaryButton,
				CustomID: fmt.Sprintf("%s:%s:no", ConfirmPrefix, token),
			},
		}},
	}
	if err := c.responder.EphemeralWithComponents(i, prompt, components); err != nil {
		return false, fmt.Errorf("failed to send confirmation prompt: %w", err)
	}

	select {
	case confirmed := <-ch:
		return confirmed, nil
	case <-time.After(c.timeout):
		log.DiscordLogger().Info("confirmation prompt timed out", "token", token)
		_ = c.responder.EditResponse(i, "⌛ Confirmation timed out, nothing was changed.")
		return false, nil
	}
}

// HandleComponent resolves a pending prompt. Registered with the command
// router under ConfirmPrefix.
func (c *Confirmer) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	parts := strings.Split(i.MessageComponentData().CustomID, ":")
	if len(parts) != 3 {
		return
	}
	token, answer := parts[1], parts[2]

	c.mu.Lock()
	ch, ok := c.pending[token]
	if ok {
		delete(c.pending, token)
	}
	c.mu.Unlock()

	if !ok {
		// Stale press on an already-settled prompt.
		_ = c.responder.UpdateComponentMessage(i, "This confirmation has expired.")
		return
	}

	ch <- answer == "yes"
	if answer == "yes" {
		_ = c.responder.UpdateComponentMessage(i, "Confirmed.")
	} else {
		_ = c.responder.UpdateComponentMessage(i, "Cancelled, nothing was changed.")
	}
}

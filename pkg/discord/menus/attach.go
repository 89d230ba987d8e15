package menus

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/small-frappuccino/rolemenu/pkg/errutil"
	"github.com/small-frappuccino/rolemenu/pkg/log"
	"github.com/small-frappuccino/rolemenu/pkg/menu"
)

// Attacher maintains the link between menus and the live messages rendering
// them.
type Attacher struct {
	svc        *menu.Service
	messenger  Messenger
	dispatcher *Dispatcher
}

// NewAttacher creates an attachment manager.
func NewAttacher(svc *menu.Service, messenger Messenger, dispatcher *Dispatcher) *Attacher {
	return &Attacher{svc: svc, messenger: messenger, dispatcher: dispatcher}
}

// Attach links a menu to an existing bot-authored message, records the link
// and pushes the menu's buttons onto the message. A push failure leaves the
// record in place; the next reconcile retries it.
func (a *Attacher) Attach(guildID string, menuID int64, channelID, messageID string) error {
	m, err := a.svc.Menu(guildID, menuID)
	if err != nil {
		return err
	}

	msg, err := a.messenger.Message(channelID, messageID)
	if err != nil {
		log.DiscordLogger().Warn("attach target lookup failed",
			"channel", channelID, "message", messageID, "err", err)
		return errutil.NotFoundf("message %s in channel %s", messageID, channelID)
	}
	if msg.Author == nil || msg.Author.ID != a.messenger.BotUserID() {
		return fmt.Errorf("message %s was not authored by the bot", messageID)
	}

	if _, err := a.svc.Attach(guildID, menuID, channelID, messageID); err != nil {
		return err
	}

	a.dispatcher.Register(&Handle{
		MenuID:     m.ID,
		GuildID:    m.GuildID,
		Components: BuildComponents(m),
	})
	if err := a.messenger.EditComponents(channelID, messageID, BuildComponents(m)); err != nil {
		return errutil.Unreachablef(err, "push menu %d to message %s", menuID, messageID)
	}
	return nil
}

// Detach removes the attachment record, then strips the buttons from the live
// message if it is still reachable. An unreachable message does not fail the
// detach; the record is gone either way.
func (a *Attacher) Detach(messageID string) error {
	am, err := a.svc.AttachedMessage(messageID)
	if err != nil {
		return err
	}
	if err := a.svc.Detach(messageID); err != nil {
		return err
	}

	if err := a.messenger.EditComponents(am.ChannelID, am.MessageID, []discordgo.MessageComponent{}); err != nil {
		log.DiscordLogger().Warn("detached, but could not strip components",
			"menu", am.MenuID, "channel", am.ChannelID, "message", am.MessageID, "err", err)
	}
	return nil
}

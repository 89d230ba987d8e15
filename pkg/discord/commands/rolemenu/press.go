package rolemenu

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/small-frappuccino/rolemenu/pkg/discord/commands/core"
	"github.com/small-frappuccino/rolemenu/pkg/discord/menus"
	"github.com/small-frappuccino/rolemenu/pkg/errutil"
	"github.com/small-frappuccino/rolemenu/pkg/log"
)

// NewPressHandler adapts menu button presses to the selection resolver. It is
// registered with the command router under the menu component prefix, so only
// reconciled (registered) menus answer presses.
func NewPressHandler(resolver *menus.Resolver, dispatcher *menus.Dispatcher, responder *core.ResponseManager) core.ComponentHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		customID := i.MessageComponentData().CustomID
		menuID, _, ok := menus.ParseComponentID(customID)
		if !ok {
			return
		}
		if dispatcher.Handle(menuID) == nil {
			_ = responder.Error(i, "This menu is not active right now, try again shortly.")
			return
		}
		if i.Member == nil || i.Member.User == nil {
			return
		}
		userID := i.Member.User.ID

		report, err := resolver.Resolve(i.GuildID, userID, customID)
		if err != nil {
			switch {
			case errors.Is(err, errutil.ErrNotPermitted):
				_ = responder.Error(i, "You are not allowed to use this menu.")
			case errors.Is(err, errutil.ErrNotFound):
				_ = responder.Error(i, "This menu no longer exists.")
			default:
				log.ErrorLogger().Error("menu press failed",
					"custom_id", customID, "user", userID, "err", err)
				_ = responder.Error(i, "Something went wrong applying your selection.")
			}
			return
		}
		if len(report.Outcomes) == 0 {
			_ = responder.Ephemeral(i, "Nothing to change for that option.")
			return
		}
		if len(report.Failed()) > 0 {
			_ = responder.Warning(i, report.Summary())
			return
		}
		_ = responder.Success(i, report.Summary())
	}
}

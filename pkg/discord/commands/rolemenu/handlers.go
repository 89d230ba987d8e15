package rolemenu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/small-frappuccino/rolemenu/pkg/discord/commands/core"
	"github.com/small-frappuccino/rolemenu/pkg/errutil"
	"github.com/small-frappuccino/rolemenu/pkg/log"
	"github.com/small-frappuccino/rolemenu/pkg/menu"
)

// translate maps domain errors to user-facing command errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errutil.ErrNotFound):
		return core.NewCommandError(err.Error(), true)
	case errors.Is(err, errutil.ErrNotPermitted):
		return core.NewCommandError("You are not allowed to do that.", true)
	case errors.Is(err, errutil.ErrPlatformUnreachable):
		return core.NewCommandError("Discord did not accept the change: "+err.Error(), true)
	}
	return err
}

// confirmedFailure reports an error from work performed after a confirmation
// prompt. The prompt consumed the interaction's initial response, so the
// message must travel as a follow-up; returning the error to the router would
// have it answer the interaction a second time, which Discord rejects.
func confirmedFailure(ctx *core.Context, err error) error {
	log.ErrorLogger().Error("confirmed operation failed",
		"guild", ctx.GuildID, "user", ctx.UserID, "err", err)
	return ctx.Responder.FollowUp(ctx.Interaction, "❌ "+failureText(err), true)
}

// failureText maps a domain error to the user-facing message the router's
// initial-response path would have shown.
func failureText(err error) string {
	var cmdErr *core.CommandError
	if errors.As(translate(err), &cmdErr) {
		return cmdErr.Message
	}
	return "An error occurred while executing the command"
}

// refresh pushes the menu's current definition to its attached messages.
// Failures are logged; the definition change already persisted.
func (h *handler) refresh(guildID string, menuID int64) {
	if err := h.deps.Reconciler.Refresh(guildID, menuID); err != nil &&
		!errors.Is(err, errutil.ErrNotFound) {
		log.DiscordLogger().Warn("menu refresh after mutation failed",
			"menu", menuID, "err", err)
	}
}

func (h *handler) createMenu(ctx *core.Context) error {
	e := core.NewOptionExtractor(core.SubCommandOptions(ctx.Interaction))
	m, err := h.deps.Service.CreateMenu(ctx.GuildID, e.Bool("unique"))
	if err != nil {
		return translate(err)
	}
	return ctx.Responder.Success(ctx.Interaction,
		fmt.Sprintf("Menu **%d** created. Add options with `/rolemenu option add menu:%d`.", m.ID, m.ID))
}

func (h *handler) listMenus(ctx *core.Context) error {
	all, err := h.deps.Service.Menus(ctx.GuildID)
	if err != nil {
		return translate(err)
	}
	if len(all) == 0 {
		return ctx.Responder.Ephemeral(ctx.Interaction, "No menus yet. Create one with `/rolemenu create`.")
	}

	var b strings.Builder
	for _, m := range all {
		fmt.Fprintf(&b, "**%d** — %d option(s), %d message(s)", m.ID, len(m.Options), len(m.Messages))
		if m.Unique {
			b.WriteString(", unique")
		}
		b.WriteString("\n")
	}
	return ctx.Responder.Ephemeral(ctx.Interaction, b.String())
}

func (h *handler) menuInfo(ctx *core.Context) error {
	e := core.NewOptionExtractor(core.SubCommandOptions(ctx.Interaction))
	m, err := h.deps.Service.Menu(ctx.GuildID, e.Int("menu"))
	if err != nil {
		return translate(err)
	}
	return ctx.Responder.Ephemeral(ctx.Interaction, renderMenu(m))
}

func (h *handler) setUnique(ctx *core.Context) error {
	e := core.NewOptionExtractor(core.SubCommandOptions(ctx.Interaction))
	menuID := e.Int("menu")
	unique := e.Bool("unique")
	if err := h.deps.Service.SetUnique(ctx.GuildID, menuID, unique); err != nil {
		return translate(err)
	}
	if unique {
		return ctx.Responder.Success(ctx.Interaction,
			fmt.Sprintf("Menu **%d** is now unique: picking an option drops the others.", menuID))
	}
	return ctx.Responder.Success(ctx.Interaction,
		fmt.Sprintf("Menu **%d** now allows multiple active options.", menuID))
}

func (h *handler) deleteMenu(ctx *core.Context) error {
	e := core.NewOptionExtractor(core.SubCommandOptions(ctx.Interaction))
	menuID := e.Int("menu")

	m, err := h.deps.Service.Menu(ctx.GuildID, menuID)
	if err != nil {
		return translate(err)
	}

	confirmed, err := h.deps.Confirmer.Ask(ctx.Interaction,
		fmt.Sprintf("Delete menu **%d** with %d option(s) and %d attached message(s)? This cannot be undone.",
			m.ID, len(m.Options), len(m.Messages)))
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	if err := h.deps.Service.DeleteMenu(ctx.GuildID, menuID); err != nil {
		return confirmedFailure(ctx, err)
	}
	h.refresh(ctx.GuildID, menuID)
	return ctx.Responder.FollowUp(ctx.Interaction, fmt.Sprintf("🗑️ Menu **%d** deleted.", menuID), true)
}

func (h *handler) reload(ctx *core.Context) error {
	if err := h.deps.Reconciler.Reload(context.Background()); err != nil {
		return translate(err)
	}
	return ctx.Responder.Success(ctx.Interaction, "All menus rebuilt and their messages refreshed.")
}

func renderMenu(m *menu.Menu) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Menu %d**", m.ID)
	if m.Unique {
		b.WriteString(" (unique)")
	}
	b.WriteString("\n")

	opts := m.SortedOptions()
	if len(opts) == 0 {
		b.WriteString("No options.\n")
	}
	for _, o := range opts {
		fmt.Fprintf(&b, "• **%s** (option %d", o.Label, o.ID)
		if o.Order != 0 {
			fmt.Fprintf(&b, ", position %d", o.Order)
		}
		b.WriteString(")")
		if o.Description != "" {
			b.WriteString(" — " + o.Description)
		}
		b.WriteString("\n")
		for _, it := range o.Items {
			switch it.Kind {
			case menu.ItemRole:
				fmt.Fprintf(&b, "   role <@&%s>\n", it.DiscordID)
			case menu.ItemChannel:
				fmt.Fprintf(&b, "   channel <#%s>\n", it.DiscordID)
			}
		}
	}

	for _, r := range m.Restrictions {
		fmt.Fprintf(&b, "%s <@&%s>\n", strings.ToLower(string(r.Type)), r.RoleID)
	}
	for _, am := range m.Messages {
		fmt.Fprintf(&b, "attached to message %s in <#%s>\n", am.MessageID, am.ChannelID)
	}
	return b.String()
}

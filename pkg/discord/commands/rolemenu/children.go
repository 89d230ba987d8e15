package rolemenu

import (
	"fmt"
	"strings"

	"github.com/small-frappuccino/rolemenu/pkg/discord/commands/core"
	"github.com/small-frappuccino/rolemenu/pkg/menu"
)

func (h *handler) addOption(ctx *core.Context) error {
	e := core.NewOptionExtractor(core.SubCommandOptions(ctx.Interaction))
	menuID := e.Int("menu")
	label, err := e.StringRequired("label")
	if err != nil {
		return core.NewCommandError(err.Error(), true)
	}

	o, err := h.deps.Service.AddOption(ctx.GuildID, menuID, label, e.String("description"), e.String("emoji"))
	if err != nil {
		return translate(err)
	}
	h.refresh(ctx.GuildID, menuID)
	return ctx.Responder.Success(ctx.Interaction,
		fmt.Sprintf("Option **%s** (%d) added. Give it items with `/rolemenu item add option:%d`.", o.Label, o.ID, o.ID))
}

func (h *handler) editOption(ctx *core.Context) error {
	e := core.NewOptionExtractor(core.SubCommandOptions(ctx.Interaction))
	optionID := e.Int("option")
	label, err := e.StringRequired("label")
	if err != nil {
		return core.NewCommandError(err.Error(), true)
	}

	if err := h.deps.Service.EditOption(ctx.GuildID, optionID, label, e.String("description"), e.String("emoji")); err != nil {
		return translate(err)
	}
	h.refreshOptionMenu(ctx.GuildID, optionID)
	return ctx.Responder.Success(ctx.Interaction, fmt.Sprintf("Option **%d** updated.", optionID))
}

func (h *handler) orderOption(ctx *core.Context) error {
	e := core.NewOptionExtractor(core.SubCommandOptions(ctx.Interaction))
	optionID := e.Int("option")
	if err := h.deps.Service.SetOptionOrder(ctx.GuildID, optionID, int(e.Int("position"))); err != nil {
		return translate(err)
	}
	h.refreshOptionMenu(ctx.GuildID, optionID)
	return ctx.Responder.Success(ctx.Interaction,
		fmt.Sprintf("Option **%d** moved to position %d.", optionID, e.Int("position")))
}

func (h *handler) removeOption(ctx *core.Context) error {
	e := core.NewOptionExtractor(core.SubCommandOptions(ctx.Interaction))
	optionID := e.Int("option")

	o, err := h.deps.Service.Option(ctx.GuildID, optionID)
	if err != nil {
		return translate(err)
	}
	m, err := h.deps.Service.MenuForOption(ctx.GuildID, optionID)
	if err != nil {
		return translate(err)
	}

	confirmed, err := h.deps.Confirmer.Ask(ctx.Interaction,
		fmt.Sprintf("Remove option **%s** (%d) and its %d item(s)?", o.Label, o.ID, len(o.Items)))
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	if err := h.deps.Service.DeleteOption(ctx.GuildID, optionID); err != nil {
		return confirmedFailure(ctx, err)
	}
	h.refresh(ctx.GuildID, m.ID)
	return ctx.Responder.FollowUp(ctx.Interaction,
		fmt.Sprintf("🗑️ Option **%s** removed.", o.Label), true)
}

func (h *handler) listOptions(ctx *core.Context) error {
	e := core.NewOptionExtractor(core.SubCommandOptions(ctx.Interaction))
	m, err := h.deps.Service.Menu(ctx.GuildID, e.Int("menu"))
	if err != nil {
		return translate(err)
	}
	opts := m.SortedOptions()
	if len(opts) == 0 {
		return ctx.Responder.Ephemeral(ctx.Interaction,
			fmt.Sprintf("Menu **%d** has no options yet. Add one with `/rolemenu option add menu:%d`.", m.ID, m.ID))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Options of menu **%d**:\n", m.ID)
	for _, o := range opts {
		fmt.Fprintf(&b, "• **%s** (option %d, %d item(s))\n", o.Label, o.ID, len(o.Items))
	}
	return ctx.Responder.Ephemeral(ctx.Interaction, b.String())
}

func (h *handler) optionInfo(ctx *core.Context) error {
	e := core.NewOptionExtractor(core.SubCommandOptions(ctx.Interaction))
	optionID := e.Int("option")
	o, err := h.deps.Service.Option(ctx.GuildID, optionID)
	if err != nil {
		return translate(err)
	}
	m, err := h.deps.Service.MenuForOption(ctx.GuildID, optionID)
	if err != nil {
		return translate(err)
	}
	return ctx.Responder.Ephemeral(ctx.Interaction, renderOption(m, o))
}

func renderOption(m *menu.Menu, o *menu.Option) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Option %d** of menu %d: **%s**\n", o.ID, m.ID, o.Label)
	if o.Description != "" {
		fmt.Fprintf(&b, "%s\n", o.Description)
	}
	if o.Emoji != "" {
		fmt.Fprintf(&b, "emoji %s\n", o.Emoji)
	}
	if o.Order != 0 {
		fmt.Fprintf(&b, "position %d\n", o.Order)
	}
	if len(o.Items) == 0 {
		b.WriteString("No items.\n")
	}
	for _, it := range o.Items {
		fmt.Fprintf(&b, "• %s\n", mention(it.Kind, it.DiscordID))
	}
	return b.String()
}

// itemTarget extracts the role-or-channel pair of the item subcommands.
// Exactly one of the two must be set.
func itemTarget(e *core.OptionExtractor) (menu.ItemKind, string, error) {
	roleID := e.Role("role")
	channelID := e.Channel("channel")
	switch {
	case roleID != "" && channelID != "":
		return "", "", core.NewCommandError("Pick either a role or a channel, not both.", true)
	case roleID != "":
		return menu.ItemRole, roleID, nil
	case channelID != "":
		return menu.ItemChannel, channelID, nil
	}
	return "", "", core.NewCommandError("Pick a role or a channel.", true)
}

func (h *handler) addItem(ctx *core.Context) error {
	e := core.NewOptionExtractor(core.SubCommandOptions(ctx.Interaction))
	optionID := e.Int("option")
	kind, discordID, err := itemTarget(e)
	if err != nil {
		return err
	}

	if _, err := h.deps.Service.AddItem(ctx.GuildID, optionID, kind, discordID); err != nil {
		return translate(err)
	}
	h.refreshOptionMenu(ctx.GuildID, optionID)
	return ctx.Responder.Success(ctx.Interaction,
		fmt.Sprintf("Item added to option **%d**: %s.", optionID, mention(kind, discordID)))
}

func (h *handler) removeItem(ctx *core.Context) error {
	e := core.NewOptionExtractor(core.SubCommandOptions(ctx.Interaction))
	optionID := e.Int("option")
	kind, discordID, err := itemTarget(e)
	if err != nil {
		return err
	}

	if _, err := h.deps.Service.RemoveItem(ctx.GuildID, optionID, discordID); err != nil {
		return translate(err)
	}
	h.refreshOptionMenu(ctx.GuildID, optionID)
	return ctx.Responder.Success(ctx.Interaction,
		fmt.Sprintf("Item %s removed from option **%d**.", mention(kind, discordID), optionID))
}

func (h *handler) listItems(ctx *core.Context) error {
	e := core.NewOptionExtractor(core.SubCommandOptions(ctx.Interaction))
	o, err := h.deps.Service.Option(ctx.GuildID, e.Int("option"))
	if err != nil {
		return translate(err)
	}
	if len(o.Items) == 0 {
		return ctx.Responder.Ephemeral(ctx.Interaction,
			fmt.Sprintf("Option **%s** has no items yet.", o.Label))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Items of option **%s** (%d):\n", o.Label, o.ID)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "• %s\n", mention(it.Kind, it.DiscordID))
	}
	return ctx.Responder.Ephemeral(ctx.Interaction, b.String())
}

func (h *handler) addRestriction(ctx *core.Context) error {
	e := core.NewOptionExtractor(core.SubCommandOptions(ctx.Interaction))
	menuID := e.Int("menu")
	roleID := e.Role("role")
	typ, err := menu.ParseRestrictionType(e.String("type"))
	if err != nil {
		return core.NewCommandError("Unknown restriction type.", true)
	}

	if _, err := h.deps.Service.AddRestriction(ctx.GuildID, menuID, roleID, typ); err != nil {
		return translate(err)
	}
	return ctx.Responder.Success(ctx.Interaction,
		fmt.Sprintf("Menu **%d** now has a %s rule for <@&%s>.", menuID, strings.ToLower(string(typ)), roleID))
}

func (h *handler) removeRestriction(ctx *core.Context) error {
	e := core.NewOptionExtractor(core.SubCommandOptions(ctx.Interaction))
	menuID := e.Int("menu")
	roleID := e.Role("role")

	if err := h.deps.Service.RemoveRestriction(ctx.GuildID, menuID, roleID); err != nil {
		return translate(err)
	}
	return ctx.Responder.Success(ctx.Interaction,
		fmt.Sprintf("Rule for <@&%s> removed from menu **%d**.", roleID, menuID))
}

func (h *handler) attachMessage(ctx *core.Context) error {
	e := core.NewOptionExtractor(core.SubCommandOptions(ctx.Interaction))
	menuID := e.Int("menu")
	channelID := e.Channel("channel")
	messageID, err := e.StringRequired("message")
	if err != nil {
		return core.NewCommandError(err.Error(), true)
	}

	if err := h.deps.Attacher.Attach(ctx.GuildID, menuID, channelID, messageID); err != nil {
		return translate(err)
	}
	return ctx.Responder.Success(ctx.Interaction,
		fmt.Sprintf("Menu **%d** attached to message %s in <#%s>.", menuID, messageID, channelID))
}

func (h *handler) detachMessage(ctx *core.Context) error {
	e := core.NewOptionExtractor(core.SubCommandOptions(ctx.Interaction))
	messageID, err := e.StringRequired("message")
	if err != nil {
		return core.NewCommandError(err.Error(), true)
	}

	confirmed, err := h.deps.Confirmer.Ask(ctx.Interaction,
		fmt.Sprintf("Detach the menu from message %s? The message keeps its text but loses its buttons.", messageID))
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	if err := h.deps.Attacher.Detach(messageID); err != nil {
		return confirmedFailure(ctx, err)
	}
	return ctx.Responder.FollowUp(ctx.Interaction,
		fmt.Sprintf("🗑️ Menu detached from message %s.", messageID), true)
}

// refreshOptionMenu resolves the owning menu of an option and refreshes it.
func (h *handler) refreshOptionMenu(guildID string, optionID int64) {
	if m, err := h.deps.Service.MenuForOption(guildID, optionID); err == nil {
		h.refresh(guildID, m.ID)
	}
}

func mention(kind menu.ItemKind, discordID string) string {
	if kind == menu.ItemChannel {
		return "<#" + discordID + ">"
	}
	return "<@&" + discordID + ">"
}

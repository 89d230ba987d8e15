package rolemenu

import (
	"github.com/bwmarrin/discordgo"
	"github.com/small-frappuccino/rolemenu/pkg/discord/commands/core"
	"github.com/small-frappuccino/rolemenu/pkg/discord/menus"
	"github.com/small-frappuccino/rolemenu/pkg/menu"
)

// Deps are the collaborators behind the /rolemenu command surface.
type Deps struct {
	Service    *menu.Service
	Reconciler *menus.Reconciler
	Attacher   *menus.Attacher
	Confirmer  *core.Confirmer
}

type handler struct {
	deps Deps
}

// NewCommand builds the /rolemenu group command with its subcommand tree.
func NewCommand(deps Deps, checker *core.PermissionChecker) *core.GroupCommand {
	h := &handler{deps: deps}

	gc := core.NewGroupCommand("rolemenu", "Manage self-assign role menus", checker)

	gc.AddSubCommand(core.NewSimpleSubCommand("create", "Create a new menu",
		[]*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "unique",
				Description: "Allow at most one option to be active per user",
			},
		}, h.createMenu))
	gc.AddSubCommand(core.NewSimpleSubCommand("list", "List the menus of this server", nil, h.listMenus))
	gc.AddSubCommand(core.NewSimpleSubCommand("info", "Show a menu in detail",
		[]*discordgo.ApplicationCommandOption{menuIDOption()}, h.menuInfo))
	gc.AddSubCommand(core.NewSimpleSubCommand("unique", "Toggle mutual exclusivity of a menu",
		[]*discordgo.ApplicationCommandOption{
			menuIDOption(),
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "unique",
				Description: "Whether options are mutually exclusive",
				Required:    true,
			},
		}, h.setUnique))
	gc.AddSubCommand(core.NewSimpleSubCommand("delete", "Delete a menu and everything under it",
		[]*discordgo.ApplicationCommandOption{menuIDOption()}, h.deleteMenu))
	gc.AddSubCommand(core.NewSimpleSubCommand("reload", "Rebuild all menus and refresh their messages", nil, h.reload))

	option := core.NewSubCommandGroup("option", "Manage the options of a menu")
	option.Add(core.NewSimpleSubCommand("add", "Add an option to a menu",
		[]*discordgo.ApplicationCommandOption{
			menuIDOption(),
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "label",
				Description: "Button label",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "description",
				Description: "What this option grants",
			},
			emojiOption(),
		}, h.addOption))
	option.Add(core.NewSimpleSubCommand("edit", "Edit an option's label, description or emoji",
		[]*discordgo.ApplicationCommandOption{
			optionIDOption(),
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "label",
				Description: "Button label",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "description",
				Description: "What this option grants",
			},
			emojiOption(),
		}, h.editOption))
	option.Add(core.NewSimpleSubCommand("order", "Set the display position of an option",
		[]*discordgo.ApplicationCommandOption{
			optionIDOption(),
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "position",
				Description: "Lower sorts first",
				Required:    true,
			},
		}, h.orderOption))
	option.Add(core.NewSimpleSubCommand("remove", "Remove an option and its items",
		[]*discordgo.ApplicationCommandOption{optionIDOption()}, h.removeOption))
	option.Add(core.NewSimpleSubCommand("list", "List the options of a menu",
		[]*discordgo.ApplicationCommandOption{menuIDOption()}, h.listOptions))
	option.Add(core.NewSimpleSubCommand("info", "Show an option in detail",
		[]*discordgo.ApplicationCommandOption{optionIDOption()}, h.optionInfo))
	gc.AddGroup(option)

	item := core.NewSubCommandGroup("item", "Manage the items of an option")
	item.Add(core.NewSimpleSubCommand("add", "Add a role or channel item to an option",
		[]*discordgo.ApplicationCommandOption{
			optionIDOption(),
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "role",
				Description: "Role granted by the option",
			},
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "channel",
				Description: "Channel made visible by the option",
			},
		}, h.addItem))
	item.Add(core.NewSimpleSubCommand("remove", "Remove a role or channel item from an option",
		[]*discordgo.ApplicationCommandOption{
			optionIDOption(),
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "role",
				Description: "Role item to remove",
			},
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "channel",
				Description: "Channel item to remove",
			},
		}, h.removeItem))
	item.Add(core.NewSimpleSubCommand("list", "List the items of an option",
		[]*discordgo.ApplicationCommandOption{optionIDOption()}, h.listItems))
	gc.AddGroup(item)

	restriction := core.NewSubCommandGroup("restriction", "Manage who may use a menu")
	restriction.Add(core.NewSimpleSubCommand("add", "Add an allow or disallow role rule",
		[]*discordgo.ApplicationCommandOption{
			menuIDOption(),
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "role",
				Description: "Role the rule applies to",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "type",
				Description: "Rule type",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "allow", Value: string(menu.Allow)},
					{Name: "disallow", Value: string(menu.Disallow)},
				},
			},
		}, h.addRestriction))
	restriction.Add(core.NewSimpleSubCommand("remove", "Remove the rule for a role",
		[]*discordgo.ApplicationCommandOption{
			menuIDOption(),
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "role",
				Description: "Role whose rule is removed",
				Required:    true,
			},
		}, h.removeRestriction))
	gc.AddGroup(restriction)

	message := core.NewSubCommandGroup("message", "Attach menus to messages")
	message.Add(core.NewSimpleSubCommand("attach", "Render a menu on an existing bot message",
		[]*discordgo.ApplicationCommandOption{
			menuIDOption(),
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "channel",
				Description: "Channel holding the message",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "message",
				Description: "Message ID",
				Required:    true,
			},
		}, h.attachMessage))
	message.Add(core.NewSimpleSubCommand("detach", "Remove a menu from a message",
		[]*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "message",
				Description: "Message ID",
				Required:    true,
			},
		}, h.detachMessage))
	gc.AddGroup(message)

	return gc
}

func menuIDOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "menu",
		Description: "Menu ID (see /rolemenu list)",
		Required:    true,
	}
}

func optionIDOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "option",
		Description: "Option ID (see /rolemenu info)",
		Required:    true,
	}
}

func emojiOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "emoji",
		Description: "Button emoji: a unicode emoji or name:id for a custom one",
	}
}

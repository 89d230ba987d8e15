package core

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func commandInteraction(name string, member *discordgo.Member, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:    discordgo.InteractionApplicationCommand,
			GuildID: "guild",
			Member:  member,
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    name,
				Options: opts,
			},
		},
	}
}

func moderator() *discordgo.Member {
	return &discordgo.Member{
		User:        &discordgo.User{ID: "mod"},
		Permissions: discordgo.PermissionManageRoles,
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewCommandRegistry()
	cmd := NewSimpleCommand("ping", "ping", nil, func(ctx *Context) error { return nil }, false, false)
	r.Register(cmd)

	if got, ok := r.Get("ping"); !ok || got.Name() != "ping" {
		t.Fatalf("registered command not found")
	}
	if _, ok := r.Get("pong"); ok {
		t.Fatalf("unregistered command should not resolve")
	}
}

func TestGroupCommandOptionsKeepRegistrationOrder(t *testing.T) {
	gc := NewGroupCommand("rolemenu", "manage menus", NewPermissionChecker())
	gc.AddSubCommand(NewSimpleSubCommand("create", "create a menu", nil, func(ctx *Context) error { return nil }))

	group := NewSubCommandGroup("option", "manage options")
	group.Add(NewSimpleSubCommand("add", "add an option", nil, func(ctx *Context) error { return nil }))
	group.Add(NewSimpleSubCommand("remove", "remove an option", nil, func(ctx *Context) error { return nil }))
	gc.AddGroup(group)
	gc.AddSubCommand(NewSimpleSubCommand("list", "list menus", nil, func(ctx *Context) error { return nil }))

	opts := gc.Options()
	if len(opts) != 3 {
		t.Fatalf("expected 3 options, got %d", len(opts))
	}
	if opts[0].Name != "create" || opts[1].Name != "option" || opts[2].Name != "list" {
		t.Fatalf("registration order not kept: %s, %s, %s", opts[0].Name, opts[1].Name, opts[2].Name)
	}
	if opts[1].Type != discordgo.ApplicationCommandOptionSubCommandGroup {
		t.Fatalf("nested group should render as a subcommand group")
	}
	if len(opts[1].Options) != 2 || opts[1].Options[0].Name != "add" {
		t.Fatalf("group subcommands wrong: %+v", opts[1].Options)
	}
}

func TestGroupCommandRoutesToNestedSubcommand(t *testing.T) {
	called := ""
	gc := NewGroupCommand("rolemenu", "manage menus", NewPermissionChecker())
	group := NewSubCommandGroup("option", "manage options")
	group.Add(NewSimpleSubCommand("add", "add an option", nil, func(ctx *Context) error {
		called = "option add"
		return nil
	}))
	gc.AddGroup(group)

	i := commandInteraction("rolemenu", moderator(), &discordgo.ApplicationCommandInteractionDataOption{
		Type: discordgo.ApplicationCommandOptionSubCommandGroup,
		Name: "option",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "add"},
		},
	})
	ctx := &Context{Interaction: i, GuildID: "guild", UserID: "mod"}
	if err := gc.Handle(ctx); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if called != "option add" {
		t.Fatalf("nested subcommand not invoked, got %q", called)
	}
}

func TestGroupCommandRejectsMissingPermission(t *testing.T) {
	gc := NewGroupCommand("rolemenu", "manage menus", NewPermissionChecker())
	gc.AddSubCommand(NewSimpleSubCommand("create", "create a menu", nil, func(ctx *Context) error {
		t.Fatalf("handler must not run without permission")
		return nil
	}))

	plain := &discordgo.Member{User: &discordgo.User{ID: "user"}}
	i := commandInteraction("rolemenu", plain, &discordgo.ApplicationCommandInteractionDataOption{
		Type: discordgo.ApplicationCommandOptionSubCommand,
		Name: "create",
	})
	ctx := &Context{Interaction: i, GuildID: "guild", UserID: "user"}
	err := gc.Handle(ctx)
	if err == nil {
		t.Fatalf("expected permission error")
	}
	if _, ok := err.(*CommandError); !ok {
		t.Fatalf("expected CommandError, got %T", err)
	}
}

func TestSubCommandOptionsUnwrapsGroups(t *testing.T) {
	leaf := &discordgo.ApplicationCommandInteractionDataOption{
		Type:  discordgo.ApplicationCommandOptionString,
		Name:  "label",
		Value: "Red",
	}
	i := commandInteraction("rolemenu", moderator(), &discordgo.ApplicationCommandInteractionDataOption{
		Type: discordgo.ApplicationCommandOptionSubCommandGroup,
		Name: "option",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{
				Type:    discordgo.ApplicationCommandOptionSubCommand,
				Name:    "add",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{leaf},
			},
		},
	})

	opts := SubCommandOptions(i)
	if len(opts) != 1 || opts[0].Name != "label" {
		t.Fatalf("leaf options not unwrapped: %+v", opts)
	}
}

func TestOptionExtractor(t *testing.T) {
	e := NewOptionExtractor([]*discordgo.ApplicationCommandInteractionDataOption{
		{Type: discordgo.ApplicationCommandOptionString, Name: "label", Value: "  Red  "},
		{Type: discordgo.ApplicationCommandOptionInteger, Name: "menu", Value: float64(7)},
		{Type: discordgo.ApplicationCommandOptionBoolean, Name: "unique", Value: true},
	})

	if e.String("label") != "Red" {
		t.Fatalf("string option should be trimmed, got %q", e.String("label"))
	}
	if e.Int("menu") != 7 {
		t.Fatalf("int option wrong: %d", e.Int("menu"))
	}
	if !e.Bool("unique") {
		t.Fatalf("bool option wrong")
	}
	if e.Has("nope") {
		t.Fatalf("absent option reported present")
	}
	if _, err := e.StringRequired("missing"); err == nil {
		t.Fatalf("required missing option should error")
	}
}

func TestPermissionChecker(t *testing.T) {
	pc := NewPermissionChecker()

	if !pc.HasPermission(commandInteraction("x", moderator())) {
		t.Fatalf("manage-roles member should pass")
	}
	plain := &discordgo.Member{User: &discordgo.User{ID: "user"}}
	if pc.HasPermission(commandInteraction("x", plain)) {
		t.Fatalf("plain member should not pass")
	}
	if pc.HasPermission(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}) {
		t.Fatalf("DM interaction should not pass")
	}
}

func TestCompareCommands(t *testing.T) {
	a := &discordgo.ApplicationCommand{Name: "rolemenu", Description: "manage menus"}
	b := &discordgo.ApplicationCommand{Name: "rolemenu", Description: "manage menus"}
	if !CompareCommands(a, b) {
		t.Fatalf("identical commands should compare equal")
	}
	b.Description = "other"
	if CompareCommands(a, b) {
		t.Fatalf("different descriptions should compare unequal")
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("short", 10); got != "short" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := TruncateString("a long label", 6); got != "a l..." {
		t.Fatalf("unexpected truncation: %q", got)
	}
}

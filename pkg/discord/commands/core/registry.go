package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/small-frappuccino/rolemenu/pkg/log"
)

// CommandRegistry holds the commands the router dispatches to.
type CommandRegistry struct {
	commands map[string]Command
}

func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{commands: make(map[string]Command)}
}

func (r *CommandRegistry) Register(cmd Command) {
	r.commands[cmd.Name()] = cmd
}

func (r *CommandRegistry) Get(name string) (Command, bool) {
	cmd, exists := r.commands[name]
	return cmd, exists
}

func (r *CommandRegistry) All() map[string]Command {
	return r.commands
}

// CommandRouter routes slash-command and message-component interactions.
type CommandRouter struct {
	session     *discordgo.Session
	registry    *CommandRegistry
	responder   *ResponseManager
	permChecker *PermissionChecker
	components  map[string]ComponentHandler // custom ID prefix -> handler
}

func NewCommandRouter(session *discordgo.Session) *CommandRouter {
	return &CommandRouter{
		session:     session,
		registry:    NewCommandRegistry(),
		responder:   NewResponseManager(session),
		permChecker: NewPermissionChecker(),
		components:  make(map[string]ComponentHandler),
	}
}

func (cr *CommandRouter) RegisterCommand(cmd Command) {
	cr.registry.Register(cmd)
}

// RegisterComponentHandler claims a custom ID prefix. Prefixes are matched up
// to the first ':' of the incoming custom ID.
func (cr *CommandRouter) RegisterComponentHandler(prefix string, handler ComponentHandler) {
	cr.components[prefix] = handler
}

func (cr *CommandRouter) Registry() *CommandRegistry      { return cr.registry }
func (cr *CommandRouter) Responder() *ResponseManager     { return cr.responder }
func (cr *CommandRouter) Permissions() *PermissionChecker { return cr.permChecker }
func (cr *CommandRouter) Session() *discordgo.Session     { return cr.session }

// HandleInteraction is the discordgo handler entry point.
func (cr *CommandRouter) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		cr.handleSlashCommand(i)
	case discordgo.InteractionMessageComponent:
		cr.handleComponent(s, i)
	}
}

func (cr *CommandRouter) handleSlashCommand(i *discordgo.InteractionCreate) {
	ctx := cr.buildContext(i)
	commandName := i.ApplicationCommandData().Name

	cmd, exists := cr.registry.Get(commandName)
	if !exists {
		_ = cr.responder.Error(i, "Command not found")
		return
	}

	if cmd.RequiresGuild() && ctx.GuildID == "" {
		_ = cr.responder.Error(i, "This command can only be used in a server")
		return
	}
	if cmd.RequiresPermissions() && !cr.permChecker.HasPermission(i) {
		_ = cr.responder.Error(i, "You do not have permission to use this command")
		return
	}

	log.DiscordLogger().Info("executing command",
		"command", commandName, "guild", ctx.GuildID, "user", ctx.UserID)
	if err := cmd.Handle(ctx); err != nil {
		log.ErrorLogger().Error("command execution failed",
			"command", commandName, "guild", ctx.GuildID, "err", err)

		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			if cmdErr.Ephemeral {
				_ = cr.responder.Ephemeral(i, cmdErr.Message)
			} else {
				_ = cr.responder.Error(i, cmdErr.Message)
			}
			return
		}
		_ = cr.responder.Error(i, "An error occurred while executing the command")
	}
}

func (cr *CommandRouter) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	prefix, _, _ := strings.Cut(customID, ":")
	handler, exists := cr.components[prefix]
	if !exists {
		log.DiscordLogger().Warn("component press with unclaimed prefix", "custom_id", customID)
		return
	}
	handler(s, i)
}

func (cr *CommandRouter) buildContext(i *discordgo.InteractionCreate) *Context {
	ctx := &Context{
		Session:     cr.session,
		Interaction: i,
		Responder:   cr.responder,
		GuildID:     i.GuildID,
	}
	if i.Member != nil && i.Member.User != nil {
		ctx.UserID = i.Member.User.ID
	} else if i.User != nil {
		ctx.UserID = i.User.ID
	}
	return ctx
}

// CommandManager owns command registration against the Discord API.
type CommandManager struct {
	session *discordgo.Session
	router  *CommandRouter
}

func NewCommandManager(session *discordgo.Session) *CommandManager {
	return &CommandManager{
		session: session,
		router:  NewCommandRouter(session),
	}
}

func (cm *CommandManager) Router() *CommandRouter {
	return cm.router
}

// SetupCommands installs the interaction handler and syncs the registered
// commands with Discord incrementally: create missing, update changed, delete
// orphans, skip the rest.
func (cm *CommandManager) SetupCommands() error {
	cm.session.AddHandler(cm.router.HandleInteraction)

	appID := cm.session.State.User.ID
	registered, err := cm.session.ApplicationCommands(appID, "")
	if err != nil {
		return fmt.Errorf("failed to fetch registered commands: %w", err)
	}

	regByName := make(map[string]*discordgo.ApplicationCommand, len(registered))
	for _, rc := range registered {
		regByName[rc.Name] = rc
	}

	codeCommands := cm.router.registry.All()
	created, updated, unchanged := 0, 0, 0
	for name, cmd := range codeCommands {
		desired := &discordgo.ApplicationCommand{
			Name:        cmd.Name(),
			Description: cmd.Description(),
			Options:     cmd.Options(),
		}

		if existing, ok := regByName[name]; ok {
			if CompareCommands(existing, desired) {
				unchanged++
				continue
			}
			if _, err := cm.session.ApplicationCommandEdit(appID, "", existing.ID, desired); err != nil {
				return fmt.Errorf("error updating command '%s': %w", name, err)
			}
			updated++
		} else {
			if _, err := cm.session.ApplicationCommandCreate(appID, "", desired); err != nil {
				return fmt.Errorf("error creating command '%s': %w", name, err)
			}
			created++
		}
	}

	deleted := 0
	for _, rc := range registered {
		if _, exists := codeCommands[rc.Name]; !exists {
			if err := cm.session.ApplicationCommandDelete(appID, "", rc.ID); err != nil {
				log.DiscordLogger().Warn("error removing orphan command", "command", rc.Name, "err", err)
				continue
			}
			deleted++
		}
	}

	log.DiscordLogger().Info("command synchronization completed",
		"created", created, "updated", updated, "deleted", deleted,
		"unchanged", unchanged, "total", len(codeCommands))
	return nil
}

// GroupCommand is a command whose behavior lives in subcommands and
// subcommand groups.
type GroupCommand struct {
	name        string
	description string
	subcommands map[string]SubCommand
	groups      map[string]*SubCommandGroup
	order       []string
	checker     *PermissionChecker
}

// SubCommandGroup nests subcommands one level deeper, as in
// "/rolemenu option add".
type SubCommandGroup struct {
	Name        string
	Description string
	subcommands map[string]SubCommand
	order       []string
}

func NewSubCommandGroup(name, description string) *SubCommandGroup {
	return &SubCommandGroup{
		Name:        name,
		Description: description,
		subcommands: make(map[string]SubCommand),
	}
}

func (g *SubCommandGroup) Add(subcmd SubCommand) {
	g.subcommands[subcmd.Name()] = subcmd
	g.order = append(g.order, subcmd.Name())
}

func NewGroupCommand(name, description string, checker *PermissionChecker) *GroupCommand {
	return &GroupCommand{
		name:        name,
		description: description,
		subcommands: make(map[string]SubCommand),
		groups:      make(map[string]*SubCommandGroup),
		checker:     checker,
	}
}

func (gc *GroupCommand) AddSubCommand(subcmd SubCommand) {
	gc.subcommands[subcmd.Name()] = subcmd
	gc.order = append(gc.order, subcmd.Name())
}

func (gc *GroupCommand) AddGroup(group *SubCommandGroup) {
	gc.groups[group.Name] = group
	gc.order = append(gc.order, group.Name)
}

func (gc *GroupCommand) Name() string        { return gc.name }
func (gc *GroupCommand) Description() string { return gc.description }

// Options renders subcommands and groups in registration order so command
// sync comparisons stay stable.
func (gc *GroupCommand) Options() []*discordgo.ApplicationCommandOption {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(gc.order))
	for _, name := range gc.order {
		if subcmd, ok := gc.subcommands[name]; ok {
			options = append(options, &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        subcmd.Name(),
				Description: subcmd.Description(),
				Options:     subcmd.Options(),
			})
			continue
		}
		group := gc.groups[name]
		groupOpt := &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
			Name:        group.Name,
			Description: group.Description,
		}
		for _, subName := range group.order {
			subcmd := group.subcommands[subName]
			groupOpt.Options = append(groupOpt.Options, &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        subcmd.Name(),
				Description: subcmd.Description(),
				Options:     subcmd.Options(),
			})
		}
		options = append(options, groupOpt)
	}
	return options
}

func (gc *GroupCommand) RequiresGuild() bool {
	for _, subcmd := range gc.subcommands {
		if subcmd.RequiresGuild() {
			return true
		}
	}
	for _, group := range gc.groups {
		for _, subcmd := range group.subcommands {
			if subcmd.RequiresGuild() {
				return true
			}
		}
	}
	return false
}

// RequiresPermissions defers to per-subcommand checks inside Handle.
func (gc *GroupCommand) RequiresPermissions() bool {
	return false
}

func (gc *GroupCommand) Handle(ctx *Context) error {
	subcmd, ok := gc.resolve(ctx.Interaction)
	if !ok {
		return NewCommandError("Unknown subcommand", true)
	}
	if subcmd.RequiresGuild() && ctx.GuildID == "" {
		return NewCommandError("This subcommand can only be used in a server", true)
	}
	if subcmd.RequiresPermissions() && !gc.checker.HasPermission(ctx.Interaction) {
		return NewCommandError("You don't have permission to use this subcommand", true)
	}
	return subcmd.Handle(ctx)
}

func (gc *GroupCommand) resolve(i *discordgo.InteractionCreate) (SubCommand, bool) {
	opts := i.ApplicationCommandData().Options
	if len(opts) == 0 {
		return nil, false
	}
	top := opts[0]
	if top.Type == discordgo.ApplicationCommandOptionSubCommandGroup {
		group, ok := gc.groups[top.Name]
		if !ok || len(top.Options) == 0 {
			return nil, false
		}
		subcmd, ok := group.subcommands[top.Options[0].Name]
		return subcmd, ok
	}
	subcmd, ok := gc.subcommands[top.Name]
	return subcmd, ok
}

// SimpleCommand implements Command for single-handler commands.
type SimpleCommand struct {
	name                string
	description         string
	options             []*discordgo.ApplicationCommandOption
	handler             func(ctx *Context) error
	requiresGuild       bool
	requiresPermissions bool
}

func NewSimpleCommand(
	name, description string,
	options []*discordgo.ApplicationCommandOption,
	handler func(ctx *Context) error,
	requiresGuild, requiresPermissions bool,
) *SimpleCommand {
	return &SimpleCommand{
		name:                name,
		description:         description,
		options:             options,
		handler:             handler,
		requiresGuild:       requiresGuild,
		requiresPermissions: requiresPermissions,
	}
}

func (sc *SimpleCommand) Name() string        { return sc.name }
func (sc *SimpleCommand) Description() string { return sc.description }
func (sc *SimpleCommand) Options() []*discordgo.ApplicationCommandOption {
	return sc.options
}
func (sc *SimpleCommand) Handle(ctx *Context) error { return sc.handler(ctx) }
func (sc *SimpleCommand) RequiresGuild() bool       { return sc.requiresGuild }
func (sc *SimpleCommand) RequiresPermissions() bool { return sc.requiresPermissions }

// SimpleSubCommand implements SubCommand for single-handler subcommands.
type SimpleSubCommand struct {
	name                string
	description         string
	options             []*discordgo.ApplicationCommandOption
	handler             func(ctx *Context) error
	requiresGuild       bool
	requiresPermissions bool
}

func NewSimpleSubCommand(
	name, description string,
	options []*discordgo.ApplicationCommandOption,
	handler func(ctx *Context) error,
) *SimpleSubCommand {
	return &SimpleSubCommand{
		name:                name,
		description:         description,
		options:             options,
		handler:             handler,
		requiresGuild:       true,
		requiresPermissions: true,
	}
}

func (sc *SimpleSubCommand) Name() string        { return sc.name }
func (sc *SimpleSubCommand) Description() string { return sc.description }
func (sc *SimpleSubCommand) Options() []*discordgo.ApplicationCommandOption {
	return sc.options
}
func (sc *SimpleSubCommand) Handle(ctx *Context) error { return sc.handler(ctx) }
func (sc *SimpleSubCommand) RequiresGuild() bool       { return sc.requiresGuild }
func (sc *SimpleSubCommand) RequiresPermissions() bool { return sc.requiresPermissions }

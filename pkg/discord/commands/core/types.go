package core

import (
	"github.com/bwmarrin/discordgo"
)

// Command is a top-level slash command.
type Command interface {
	Name() string
	Description() string
	Options() []*discordgo.ApplicationCommandOption
	Handle(ctx *Context) error
	RequiresGuild() bool
	RequiresPermissions() bool
}

// SubCommand is one subcommand under a group command.
type SubCommand interface {
	Name() string
	Description() string
	Options() []*discordgo.ApplicationCommandOption
	Handle(ctx *Context) error
	RequiresGuild() bool
	RequiresPermissions() bool
}

// Context carries everything a handler needs for one interaction.
type Context struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
	Responder   *ResponseManager
	GuildID     string
	UserID      string
}

// MemberRoles returns the acting member's live role IDs as delivered with the
// interaction.
func (ctx *Context) MemberRoles() []string {
	if ctx.Interaction.Member == nil {
		return nil
	}
	return ctx.Interaction.Member.Roles
}

// CommandError is a handler failure with a user-facing message.
type CommandError struct {
	Message   string
	Ephemeral bool
}

func (e *CommandError) Error() string {
	return e.Message
}

func NewCommandError(message string, ephemeral bool) *CommandError {
	return &CommandError{Message: message, Ephemeral: ephemeral}
}

// ValidationError reports a bad option value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ComponentHandler consumes message-component interactions whose custom ID
// starts with a registered prefix.
type ComponentHandler func(s *discordgo.Session, i *discordgo.InteractionCreate)

package core

import (
	"github.com/bwmarrin/discordgo"
)

// ResponseType selects the prefix glyph of a text response.
type ResponseType int

const (
	ResponseSuccess ResponseType = iota
	ResponseError
	ResponseWarning
	ResponseInfo
)

// ResponseManager standardizes interaction replies. Error and moderator-only
// traffic goes out ephemeral so channels stay clean.
type ResponseManager struct {
	session *discordgo.Session
}

func NewResponseManager(session *discordgo.Session) *ResponseManager {
	return &ResponseManager{session: session}
}

// Success sends an ephemeral success reply.
func (rm *ResponseManager) Success(i *discordgo.InteractionCreate, message string) error {
	return rm.respond(i, message, ResponseSuccess, true, nil)
}

// Error sends an ephemeral error reply.
func (rm *ResponseManager) Error(i *discordgo.InteractionCreate, message string) error {
	return rm.respond(i, message, ResponseError, true, nil)
}

// Warning sends an ephemeral warning reply.
func (rm *ResponseManager) Warning(i *discordgo.InteractionCreate, message string) error {
	return rm.respond(i, message, ResponseWarning, true, nil)
}

// Info sends a public informational reply.
func (rm *ResponseManager) Info(i *discordgo.InteractionCreate, message string) error {
	return rm.respond(i, message, ResponseInfo, false, nil)
}

// Ephemeral sends an ephemeral informational reply.
func (rm *ResponseManager) Ephemeral(i *discordgo.InteractionCreate, message string) error {
	return rm.respond(i, message, ResponseInfo, true, nil)
}

// EphemeralWithComponents sends an ephemeral reply carrying components, used
// by the confirmation prompt.
func (rm *ResponseManager) EphemeralWithComponents(i *discordgo.InteractionCreate, message string, components []discordgo.MessageComponent) error {
	return rm.respond(i, message, ResponseInfo, true, components)
}

func (rm *ResponseManager) respond(i *discordgo.InteractionCreate, message string, responseType ResponseType, ephemeral bool, components []discordgo.MessageComponent) error {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	return rm.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    formatMessage(message, responseType),
			Flags:      flags,
			Components: components,
		},
	})
}

// UpdateComponentMessage rewrites the message a component interaction came
// from, dropping its components. Used to settle confirmation prompts.
func (rm *ResponseManager) UpdateComponentMessage(i *discordgo.InteractionCreate, message string) error {
	return rm.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    message,
			Components: []discordgo.MessageComponent{},
		},
	})
}

// EditResponse edits the original reply.
func (rm *ResponseManager) EditResponse(i *discordgo.InteractionCreate, content string) error {
	_, err := rm.session.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &[]discordgo.MessageComponent{},
	})
	return err
}

// FollowUp sends a follow-up message after the original reply.
func (rm *ResponseManager) FollowUp(i *discordgo.InteractionCreate, content string, ephemeral bool) error {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_, err := rm.session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   flags,
	})
	return err
}

func formatMessage(message string, responseType ResponseType) string {
	switch responseType {
	case ResponseSuccess:
		return "✅ " + message
	case ResponseError:
		return "❌ " + message
	case ResponseWarning:
		return "⚠️ " + message
	case ResponseInfo:
		return "ℹ️ " + message
	}
	return message
}

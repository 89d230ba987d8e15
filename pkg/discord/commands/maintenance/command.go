package maintenance

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/small-frappuccino/rolemenu/pkg/discord/commands/core"
	"github.com/small-frappuccino/rolemenu/pkg/discord/maintenance"
)

type handler struct {
	sweeper   *maintenance.Sweeper
	confirmer *core.Confirmer
}

// NewCommand builds the /rolesweep group command: bulk role removal with a
// dry-run preview and a confirmed execute.
func NewCommand(sweeper *maintenance.Sweeper, confirmer *core.Confirmer, checker *core.PermissionChecker) *core.GroupCommand {
	h := &handler{sweeper: sweeper, confirmer: confirmer}

	gc := core.NewGroupCommand("rolesweep", "Bulk-remove a role from a cohort of members", checker)
	gc.AddSubCommand(core.NewSimpleSubCommand("preview", "List who would lose the role",
		sweepOptions(), h.preview))
	gc.AddSubCommand(core.NewSimpleSubCommand("execute", "Remove the role from everyone in the preview",
		sweepOptions(), h.execute))
	return gc
}

func sweepOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "base",
			Description: "Members must hold this role to be considered",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "remove",
			Description: "Role to remove from matching members",
			Required:    true,
		},
	}
}

func (h *handler) preview(ctx *core.Context) error {
	e := core.NewOptionExtractor(core.SubCommandOptions(ctx.Interaction))
	base, remove := e.Role("base"), e.Role("remove")

	targets, err := h.sweeper.Preview(ctx.GuildID, base, remove)
	if err != nil {
		return core.NewCommandError("Could not list members: "+err.Error(), true)
	}
	if len(targets) == 0 {
		return ctx.Responder.Ephemeral(ctx.Interaction, "No member holds both roles, nothing to sweep.")
	}
	return ctx.Responder.Ephemeral(ctx.Interaction,
		fmt.Sprintf("%d member(s) hold both <@&%s> and <@&%s> and would lose <@&%s>.",
			len(targets), base, remove, remove))
}

func (h *handler) execute(ctx *core.Context) error {
	e := core.NewOptionExtractor(core.SubCommandOptions(ctx.Interaction))
	base, remove := e.Role("base"), e.Role("remove")

	targets, err := h.sweeper.Preview(ctx.GuildID, base, remove)
	if err != nil {
		return core.NewCommandError("Could not list members: "+err.Error(), true)
	}
	if len(targets) == 0 {
		return ctx.Responder.Ephemeral(ctx.Interaction, "No member holds both roles, nothing to sweep.")
	}

	confirmed, err := h.confirmer.Ask(ctx.Interaction,
		fmt.Sprintf("Remove <@&%s> from %d member(s)?", remove, len(targets)))
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	report, err := h.sweeper.Execute(ctx.GuildID, base, remove)
	if err != nil {
		// The confirmation prompt consumed the initial response; the failure
		// has to go out as a follow-up.
		return ctx.Responder.FollowUp(ctx.Interaction, "❌ Sweep failed: "+err.Error(), true)
	}
	return ctx.Responder.FollowUp(ctx.Interaction, report.Summary(), true)
}

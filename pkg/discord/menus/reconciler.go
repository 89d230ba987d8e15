package menus

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/small-frappuccino/rolemenu/pkg/log"
	"github.com/small-frappuccino/rolemenu/pkg/menu"
	"github.com/small-frappuccino/rolemenu/pkg/task"
)

// Task identifiers used with the router.
const (
	taskReconcile         = "menus.reconcile"
	reconcileStartupKey   = "menus.reconcile.startup"
	reconcileStartupGroup = "reconcile"
)

// Reconciler rebuilds the runtime rendering of every persisted menu and
// pushes it back onto the messages each menu claims to be attached to. It
// runs once per process after the gateway reports ready, and again on demand
// through Reload.
type Reconciler struct {
	svc        *menu.Service
	messenger  Messenger
	dispatcher *Dispatcher
	router     *task.Router
}

// NewReconciler wires the reconciler and registers its task handler.
func NewReconciler(svc *menu.Service, messenger Messenger, dispatcher *Dispatcher, router *task.Router) *Reconciler {
	r := &Reconciler{svc: svc, messenger: messenger, dispatcher: dispatcher, router: router}
	router.RegisterHandler(taskReconcile, func(ctx context.Context, _ any) error {
		return r.Reconcile(ctx)
	})
	return r
}

// RunOnceWhenReady arms a one-shot gateway Ready handler that schedules the
// startup reconcile through the task router. The idempotency key folds
// duplicate Ready deliveries into a single run.
func (r *Reconciler) RunOnceWhenReady(s *discordgo.Session) {
	s.AddHandlerOnce(func(s *discordgo.Session, _ *discordgo.Ready) {
		err := r.router.Dispatch(context.Background(), task.Task{
			Type: taskReconcile,
			Options: task.Options{
				GroupKey:       reconcileStartupGroup,
				IdempotencyKey: reconcileStartupKey,
			},
		})
		if err != nil {
			log.ErrorLogger().Error("failed to schedule startup reconcile", "err", err)
		}
	})
}

// Reconcile loads every menu from the store, registers a fresh handle for
// each, and updates all attached messages in place. A missing message is a
// warning, not a failure, and never deletes the attachment record. Running it
// twice in a row is a no-op beyond the message edits.
func (r *Reconciler) Reconcile(ctx context.Context) error {
	all, err := r.svc.Menus("")
	if err != nil {
		return fmt.Errorf("load menus: %w", err)
	}

	// Stale handles from a previous run must not survive the rebuild.
	r.dispatcher.Clear()

	var refreshed, missing, failed int
	for _, m := range all {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.dispatcher.Register(&Handle{
			MenuID:     m.ID,
			GuildID:    m.GuildID,
			Components: BuildComponents(m),
		})
		ok, miss, fail := r.pushToMessages(m)
		refreshed += ok
		missing += miss
		failed += fail
	}

	log.ApplicationLogger().Info("menu reconciliation complete",
		"menus", len(all), "messages_refreshed", refreshed,
		"messages_missing", missing, "messages_failed", failed)
	return nil
}

// Reload tears down all registered handles and re-runs reconciliation.
// Exposed to the moderator reload command.
func (r *Reconciler) Reload(ctx context.Context) error {
	return r.Reconcile(ctx)
}

// Refresh rebuilds one menu's rendering and pushes it to its attached
// messages. Called after moderator mutations so live messages track the
// definition. A deleted menu unregisters its handle instead.
func (r *Reconciler) Refresh(guildID string, menuID int64) error {
	m, err := r.svc.Menu(guildID, menuID)
	if err != nil {
		r.dispatcher.Unregister(menuID)
		return err
	}
	r.dispatcher.Register(&Handle{
		MenuID:     m.ID,
		GuildID:    m.GuildID,
		Components: BuildComponents(m),
	})
	_, _, failedCount := r.pushToMessages(m)
	if failedCount > 0 {
		return fmt.Errorf("refresh menu %d: %d message update(s) failed", menuID, failedCount)
	}
	return nil
}

// pushToMessages writes the menu's current components onto every attached
// message that still exists.
func (r *Reconciler) pushToMessages(m *menu.Menu) (refreshed, missing, failed int) {
	components := BuildComponents(m)
	for _, am := range m.Messages {
		if _, err := r.messenger.Message(am.ChannelID, am.MessageID); err != nil {
			// The message may reappear later (channel load order, outages);
			// keep the record and move on.
			log.DiscordLogger().Warn("attached message not reachable, keeping record",
				"menu", m.ID, "channel", am.ChannelID, "message", am.MessageID, "err", err)
			missing++
			continue
		}
		if err := r.messenger.EditComponents(am.ChannelID, am.MessageID, components); err != nil {
			log.ErrorLogger().Error("failed to update attached message",
				"menu", m.ID, "channel", am.ChannelID, "message", am.MessageID, "err", err)
			failed++
			continue
		}
		refreshed++
	}
	return refreshed, missing, failed
}

package menus

import (
	"context"
	"errors"
	"testing"

	"github.com/small-frappuccino/rolemenu/pkg/errutil"
	"github.com/small-frappuccino/rolemenu/pkg/menu"
	"github.com/small-frappuccino/rolemenu/pkg/task"
)

func newTestReconciler(t *testing.T, svc *menu.Service, messenger Messenger) (*Reconciler, *Dispatcher) {
	t.Helper()
	router := task.NewRouter(task.Defaults())
	t.Cleanup(router.Close)
	dispatcher := NewDispatcher()
	return NewReconciler(svc, messenger, dispatcher, router), dispatcher
}

func TestReconcileRegistersHandlesAndPushes(t *testing.T) {
	svc := newTestService(t)
	messenger := newFakeMessenger("bot")

	m1, _ := buildMenu(t, svc, false, map[string][]menu.Item{
		"A": {{Kind: menu.ItemRole, DiscordID: "R1"}},
	})
	m2, _ := buildMenu(t, svc, true, map[string][]menu.Item{
		"B": {{Kind: menu.ItemRole, DiscordID: "R2"}},
	})

	messenger.addMessage("chan", "live", "bot")
	if _, err := svc.Attach(testGuild, m1.ID, "chan", "live"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	// Recorded but not reachable on the platform.
	if _, err := svc.Attach(testGuild, m2.ID, "chan", "gone"); err != nil {
		t.Fatalf("attach: %v", err)
	}

	r, dispatcher := newTestReconciler(t, svc, messenger)
	if err := r.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if dispatcher.Handle(m1.ID) == nil || dispatcher.Handle(m2.ID) == nil {
		t.Fatalf("both menus should have registered handles")
	}
	if messenger.editCount("chan", "live") != 1 {
		t.Fatalf("live message should be refreshed once, got %d", messenger.editCount("chan", "live"))
	}
	// The missing message keeps its record for a later run.
	if _, err := svc.AttachedMessage("gone"); err != nil {
		t.Fatalf("missing message record must survive reconcile: %v", err)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	messenger := newFakeMessenger("bot")

	m, _ := buildMenu(t, svc, false, map[string][]menu.Item{
		"A": {{Kind: menu.ItemRole, DiscordID: "R1"}},
	})
	messenger.addMessage("chan", "live", "bot")
	if _, err := svc.Attach(testGuild, m.ID, "chan", "live"); err != nil {
		t.Fatalf("attach: %v", err)
	}

	r, dispatcher := newTestReconciler(t, svc, messenger)
	if err := r.Reconcile(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := r.Reconcile(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if got := len(dispatcher.Registered()); got != 1 {
		t.Fatalf("expected exactly 1 handle after two runs, got %d", got)
	}
	menus, err := svc.Menus(testGuild)
	if err != nil {
		t.Fatalf("list menus: %v", err)
	}
	if len(menus) != 1 || len(menus[0].Messages) != 1 {
		t.Fatalf("attachment records must not duplicate: %+v", menus[0].Messages)
	}
}

func TestReloadDropsStaleHandles(t *testing.T) {
	svc := newTestService(t)
	messenger := newFakeMessenger("bot")

	m, _ := buildMenu(t, svc, false, map[string][]menu.Item{
		"A": {{Kind: menu.ItemRole, DiscordID: "R1"}},
	})
	r, dispatcher := newTestReconciler(t, svc, messenger)
	if err := r.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if err := svc.DeleteMenu(testGuild, m.ID); err != nil {
		t.Fatalf("delete menu: %v", err)
	}
	if err := r.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if dispatcher.Handle(m.ID) != nil {
		t.Fatalf("deleted menu must not keep a registered handle")
	}
}

func TestRefreshDeletedMenuUnregisters(t *testing.T) {
	svc := newTestService(t)
	messenger := newFakeMessenger("bot")

	m, _ := buildMenu(t, svc, false, map[string][]menu.Item{
		"A": {{Kind: menu.ItemRole, DiscordID: "R1"}},
	})
	r, dispatcher := newTestReconciler(t, svc, messenger)
	if err := r.Refresh(testGuild, m.ID); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if dispatcher.Handle(m.ID) == nil {
		t.Fatalf("refresh should register the handle")
	}

	if err := svc.DeleteMenu(testGuild, m.ID); err != nil {
		t.Fatalf("delete menu: %v", err)
	}
	err := r.Refresh(testGuild, m.ID)
	if !errors.Is(err, errutil.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if dispatcher.Handle(m.ID) != nil {
		t.Fatalf("refresh of a deleted menu must unregister the handle")
	}
}

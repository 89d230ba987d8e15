package storage

import (
	"path/filepath"
	"testing"

	"github.com/small-frappuccino/rolemenu/pkg/menu"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "menus.db"))
	if err := s.Init(); err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMenuRoundTrip(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreateMenu("guild", true)
	if err != nil {
		t.Fatalf("create menu: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	got, err := s.GetMenu("guild", created.ID)
	if err != nil {
		t.Fatalf("get menu: %v", err)
	}
	if got == nil || !got.Unique || got.GuildID != "guild" {
		t.Fatalf("unexpected menu: %+v", got)
	}

	if err := s.SetMenuUnique("guild", created.ID, false); err != nil {
		t.Fatalf("set unique: %v", err)
	}
	got, err = s.GetMenu("guild", created.ID)
	if err != nil || got == nil {
		t.Fatalf("reload menu: %v", err)
	}
	if got.Unique {
		t.Fatalf("unique flag should be cleared")
	}
}

func TestGetMenuSoftAbsence(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetMenu("guild", 42)
	if err != nil {
		t.Fatalf("absence must not be an error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil menu, got %+v", got)
	}

	// Wrong guild scoping also reads as absence.
	m, err := s.CreateMenu("guild-a", false)
	if err != nil {
		t.Fatalf("create menu: %v", err)
	}
	got, err = s.GetMenu("guild-b", m.ID)
	if err != nil || got != nil {
		t.Fatalf("cross-guild lookup should be absent, got %+v err=%v", got, err)
	}
}

func TestEagerLoadingAndOptionOrder(t *testing.T) {
	s := newTestStore(t)

	m, err := s.CreateMenu("guild", false)
	if err != nil {
		t.Fatalf("create menu: %v", err)
	}

	first, err := s.AddOption(m.ID, "Red", "the red team", "🔴")
	if err != nil {
		t.Fatalf("add option: %v", err)
	}
	second, err := s.AddOption(m.ID, "Blue", "", "")
	if err != nil {
		t.Fatalf("add option: %v", err)
	}
	if _, err := s.AddItem(first.ID, menu.ItemRole, "role-red"); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := s.AddItem(first.ID, menu.ItemChannel, "chan-red"); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := s.AddRestriction(m.ID, "mods", menu.Allow); err != nil {
		t.Fatalf("add restriction: %v", err)
	}
	if _, err := s.AttachMessage(m.ID, "chan", "msg"); err != nil {
		t.Fatalf("attach: %v", err)
	}

	// Push the first option below the second.
	if err := s.SetOptionOrder(first.ID, 5); err != nil {
		t.Fatalf("set order: %v", err)
	}

	got, err := s.GetMenu("guild", m.ID)
	if err != nil || got == nil {
		t.Fatalf("get menu: %v", err)
	}
	if len(got.Options) != 2 || len(got.Restrictions) != 1 || len(got.Messages) != 1 {
		t.Fatalf("children not eagerly loaded: %+v", got)
	}
	sorted := got.SortedOptions()
	if sorted[0].ID != second.ID || sorted[1].ID != first.ID {
		t.Fatalf("unexpected display order: %+v", sorted)
	}
	if len(sorted[1].Items) != 2 {
		t.Fatalf("items not loaded: %+v", sorted[1])
	}
	if sorted[1].Items[0].Kind != menu.ItemRole || sorted[1].Items[1].Kind != menu.ItemChannel {
		t.Fatalf("unexpected item kinds: %+v", sorted[1].Items)
	}
}

func TestDeleteMenuCascades(t *testing.T) {
	s := newTestStore(t)

	m, _ := s.CreateMenu("guild", true)
	opt, _ := s.AddOption(m.ID, "A", "", "")
	if _, err := s.AddItem(opt.ID, menu.ItemRole, "r1"); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := s.AddRestriction(m.ID, "banned", menu.Disallow); err != nil {
		t.Fatalf("add restriction: %v", err)
	}
	if _, err := s.AttachMessage(m.ID, "chan", "msg"); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if err := s.DeleteMenu("guild", m.ID); err != nil {
		t.Fatalf("delete menu: %v", err)
	}

	if got, err := s.GetMenu("guild", m.ID); err != nil || got != nil {
		t.Fatalf("menu should be gone, got %+v err=%v", got, err)
	}
	if got, err := s.GetOption("guild", opt.ID); err != nil || got != nil {
		t.Fatalf("option should be gone, got %+v err=%v", got, err)
	}
	if got, err := s.GetAttachedMessage("msg"); err != nil || got != nil {
		t.Fatalf("attachment should be gone, got %+v err=%v", got, err)
	}
}

func TestDeleteOptionCascadesToItems(t *testing.T) {
	s := newTestStore(t)

	m, _ := s.CreateMenu("guild", false)
	opt, _ := s.AddOption(m.ID, "A", "", "")
	if _, err := s.AddItem(opt.ID, menu.ItemRole, "r1"); err != nil {
		t.Fatalf("add item: %v", err)
	}

	if err := s.DeleteOption(opt.ID); err != nil {
		t.Fatalf("delete option: %v", err)
	}

	got, err := s.GetMenu("guild", m.ID)
	if err != nil || got == nil {
		t.Fatalf("get menu: %v", err)
	}
	if len(got.Options) != 0 {
		t.Fatalf("option should be gone: %+v", got.Options)
	}
}

func TestGetAllMenusFiltersByGuild(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.CreateMenu("g1", false); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateMenu("g1", true); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateMenu("g2", false); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := s.GetAllMenus("")
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 menus, got %d err=%v", len(all), err)
	}
	one, err := s.GetAllMenus("g1")
	if err != nil || len(one) != 2 {
		t.Fatalf("expected 2 menus for g1, got %d err=%v", len(one), err)
	}
}

func TestAttachMovesExistingMessageLink(t *testing.T) {
	s := newTestStore(t)

	m1, _ := s.CreateMenu("guild", false)
	m2, _ := s.CreateMenu("guild", false)

	if _, err := s.AttachMessage(m1.ID, "chan", "msg"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	// A message holds at most one menu: re-attaching moves the link.
	if _, err := s.AttachMessage(m2.ID, "chan", "msg"); err != nil {
		t.Fatalf("re-attach: %v", err)
	}

	am, err := s.GetAttachedMessage("msg")
	if err != nil || am == nil {
		t.Fatalf("get attachment: %v", err)
	}
	if am.MenuID != m2.ID {
		t.Fatalf("attachment should point at menu %d, got %d", m2.ID, am.MenuID)
	}

	if err := s.DetachMessage("msg"); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if am, err := s.GetAttachedMessage("msg"); err != nil || am != nil {
		t.Fatalf("attachment should be gone, got %+v err=%v", am, err)
	}
	// Detaching again is a no-op, not an error.
	if err := s.DetachMessage("msg"); err != nil {
		t.Fatalf("second detach: %v", err)
	}
}

package menus

import (
	"errors"
	"testing"

	"github.com/small-frappuccino/rolemenu/pkg/errutil"
	"github.com/small-frappuccino/rolemenu/pkg/menu"
)

func TestAttachPushesComponents(t *testing.T) {
	svc := newTestService(t)
	messenger := newFakeMessenger("bot")
	dispatcher := NewDispatcher()
	a := NewAttacher(svc, messenger, dispatcher)

	m, _ := buildMenu(t, svc, false, map[string][]menu.Item{
		"A": {{Kind: menu.ItemRole, DiscordID: "R1"}},
	})
	messenger.addMessage("chan", "msg", "bot")

	if err := a.Attach(testGuild, m.ID, "chan", "msg"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if _, err := svc.AttachedMessage("msg"); err != nil {
		t.Fatalf("attachment should be recorded: %v", err)
	}
	if messenger.editCount("chan", "msg") != 1 {
		t.Fatalf("components should be pushed once, got %d", messenger.editCount("chan", "msg"))
	}
	if dispatcher.Handle(m.ID) == nil {
		t.Fatalf("attach should register the menu handle")
	}
}

func TestAttachRejectsForeignAuthor(t *testing.T) {
	svc := newTestService(t)
	messenger := newFakeMessenger("bot")
	a := NewAttacher(svc, messenger, NewDispatcher())

	m, _ := buildMenu(t, svc, false, map[string][]menu.Item{
		"A": {{Kind: menu.ItemRole, DiscordID: "R1"}},
	})
	messenger.addMessage("chan", "msg", "someone-else")

	if err := a.Attach(testGuild, m.ID, "chan", "msg"); err == nil {
		t.Fatalf("expected error for message not authored by the bot")
	}
	if am, err := svc.Store().GetAttachedMessage("msg"); err != nil || am != nil {
		t.Fatalf("no record may be created, got %+v err=%v", am, err)
	}
}

func TestAttachMissingMessage(t *testing.T) {
	svc := newTestService(t)
	a := NewAttacher(svc, newFakeMessenger("bot"), NewDispatcher())

	m, _ := buildMenu(t, svc, false, map[string][]menu.Item{
		"A": {{Kind: menu.ItemRole, DiscordID: "R1"}},
	})

	err := a.Attach(testGuild, m.ID, "chan", "nope")
	if !errors.Is(err, errutil.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDetachUnreachableStillRemovesRecord(t *testing.T) {
	svc := newTestService(t)
	messenger := newFakeMessenger("bot")
	a := NewAttacher(svc, messenger, NewDispatcher())

	m, _ := buildMenu(t, svc, false, map[string][]menu.Item{
		"A": {{Kind: menu.ItemRole, DiscordID: "R1"}},
	})
	// Record points at a message the platform no longer has.
	if _, err := svc.Attach(testGuild, m.ID, "chan", "gone"); err != nil {
		t.Fatalf("attach record: %v", err)
	}

	if err := a.Detach("gone"); err != nil {
		t.Fatalf("detach must succeed even when the message is unreachable: %v", err)
	}
	if am, err := svc.Store().GetAttachedMessage("gone"); err != nil || am != nil {
		t.Fatalf("record should be removed, got %+v err=%v", am, err)
	}
}

func TestDetachUnknownMessage(t *testing.T) {
	svc := newTestService(t)
	a := NewAttacher(svc, newFakeMessenger("bot"), NewDispatcher())

	err := a.Detach("never-attached")
	if !errors.Is(err, errutil.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

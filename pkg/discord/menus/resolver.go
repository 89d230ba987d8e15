package menus

import (
	"errors"
	"fmt"

	"github.com/small-frappuccino/rolemenu/pkg/errutil"
	"github.com/small-frappuccino/rolemenu/pkg/log"
	"github.com/small-frappuccino/rolemenu/pkg/menu"
)

// Resolver turns a button press into grant/revoke operations against the
// platform, honoring restrictions and menu uniqueness. It holds no state of
// its own: the user's live role/channel membership is the single source of
// truth and is re-read immediately before each toggle decision.
type Resolver struct {
	svc      *menu.Service
	platform Platform
}

// NewResolver creates a resolver over the menu service and a live platform.
func NewResolver(svc *menu.Service, platform Platform) *Resolver {
	return &Resolver{svc: svc, platform: platform}
}

// Resolve handles one press of the button customID by userID in guildID.
// The returned report carries per-item outcomes; err is non-nil only when no
// mutation was attempted at all (unknown reference, restriction failure, or
// the live membership read failed).
//
// An option with no items always takes the grant path. On a unique menu it
// acts as a clear button: the other options' held items are revoked and
// nothing is granted.
func (r *Resolver) Resolve(guildID, userID, customID string) (*errutil.ApplyReport, error) {
	menuID, optionID, ok := ParseComponentID(customID)
	if !ok {
		return nil, errutil.NotFoundf("unrecognized component %q", customID)
	}

	m, err := r.svc.Menu(guildID, menuID)
	if err != nil {
		if errors.Is(err, errutil.ErrNotFound) {
			// A live button references a menu the store no longer has.
			return nil, fmt.Errorf("menu %d: %w", menuID, errutil.ErrCorruptReference)
		}
		return nil, err
	}
	opt := m.OptionByID(optionID)
	if opt == nil {
		return nil, fmt.Errorf("option %d: %w", optionID, errutil.ErrCorruptReference)
	}

	liveRoles, err := r.platform.MemberRoles(guildID, userID)
	if err != nil {
		return nil, errutil.Unreachablef(err, "member %s", userID)
	}
	if !m.IsPermitted(liveRoles) {
		return nil, errutil.NotPermittedf("menu %d", menuID)
	}

	// Toggle decision: holding every item of the pressed option means the
	// press is a revoke; anything less is a grant.
	holdsAll := len(opt.Items) > 0
	for _, it := range opt.Items {
		held, err := r.holds(guildID, userID, liveRoles, it)
		if err != nil {
			return nil, errutil.Unreachablef(err, "read state of %s %s", it.Kind, it.DiscordID)
		}
		if !held {
			holdsAll = false
			break
		}
	}

	report := &errutil.ApplyReport{}

	// Unique menus revoke every other option's held items before granting, so
	// no moment leaves the user holding two mutually-exclusive options.
	if m.Unique && !holdsAll {
		for i := range m.Options {
			other := &m.Options[i]
			if other.ID == opt.ID {
				continue
			}
			r.revokeHeld(guildID, userID, liveRoles, other, report)
		}
	}

	for _, it := range opt.Items {
		if holdsAll {
			report.Record("revoke", it.DiscordID, r.revoke(guildID, userID, it))
		} else {
			report.Record("grant", it.DiscordID, r.grant(guildID, userID, it))
		}
	}

	for _, o := range report.Failed() {
		log.DiscordLogger().Warn("item operation failed",
			"menu", m.ID, "user", userID, "action", o.Action, "target", o.Target, "err", o.Err)
	}
	return report, nil
}

// revokeHeld revokes each item of an option the user currently holds.
// Failures (including failed state reads) are recorded, never aborting the
// remaining revocations.
func (r *Resolver) revokeHeld(guildID, userID string, liveRoles []string, o *menu.Option, report *errutil.ApplyReport) {
	for _, it := range o.Items {
		held, err := r.holds(guildID, userID, liveRoles, it)
		if err != nil {
			report.Record("revoke", it.DiscordID, errutil.Unreachablef(err, "read state"))
			continue
		}
		if !held {
			continue
		}
		report.Record("revoke", it.DiscordID, r.revoke(guildID, userID, it))
	}
}

func (r *Resolver) holds(guildID, userID string, liveRoles []string, it menu.Item) (bool, error) {
	switch it.Kind {
	case menu.ItemRole:
		for _, id := range liveRoles {
			if id == it.DiscordID {
				return true, nil
			}
		}
		return false, nil
	case menu.ItemChannel:
		return r.platform.HasChannelOverwrite(it.DiscordID, userID)
	}
	return false, fmt.Errorf("unknown item kind %q", it.Kind)
}

func (r *Resolver) grant(guildID, userID string, it menu.Item) error {
	switch it.Kind {
	case menu.ItemRole:
		return r.platform.GrantRole(guildID, userID, it.DiscordID)
	case menu.ItemChannel:
		return r.platform.GrantChannel(it.DiscordID, userID)
	}
	return fmt.Errorf("unknown item kind %q", it.Kind)
}

func (r *Resolver) revoke(guildID, userID string, it menu.Item) error {
	switch it.Kind {
	case menu.ItemRole:
		return r.platform.RevokeRole(guildID, userID, it.DiscordID)
	case menu.ItemChannel:
		return r.platform.RevokeChannel(it.DiscordID, userID)
	}
	return fmt.Errorf("unknown item kind %q", it.Kind)
}

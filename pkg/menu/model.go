package menu

import (
	"fmt"
	"sort"
)

// ItemKind discriminates what an Item grants.
type ItemKind string

const (
	// ItemRole grants/revokes a guild role.
	ItemRole ItemKind = "ROLE"
	// ItemChannel shows/hides a channel via a member permission overwrite.
	ItemChannel ItemKind = "CHANNEL"
)

// ParseItemKind validates a stored or user-supplied kind string.
func ParseItemKind(s string) (ItemKind, error) {
	switch ItemKind(s) {
	case ItemRole:
		return ItemRole, nil
	case ItemChannel:
		return ItemChannel, nil
	}
	return "", fmt.Errorf("unknown item kind %q", s)
}

// RestrictionType classifies a role restriction on a menu.
type RestrictionType string

const (
	Allow    RestrictionType = "ALLOW"
	Disallow RestrictionType = "DISALLOW"
)

// ParseRestrictionType validates a stored or user-supplied restriction type.
func ParseRestrictionType(s string) (RestrictionType, error) {
	switch RestrictionType(s) {
	case Allow:
		return Allow, nil
	case Disallow:
		return Disallow, nil
	}
	return "", fmt.Errorf("unknown restriction type %q", s)
}

// Item is one grantable unit under an Option: a role or a channel.
type Item struct {
	ID        int64
	OptionID  int64
	Kind      ItemKind
	DiscordID string
}

// Option is one selectable button within a Menu. Options sort by Order
// ascending with ties broken by ID, so freshly added options (Order zero)
// keep a stable, deterministic position.
type Option struct {
	ID          int64
	MenuID      int64
	Label       string
	Description string
	Emoji       string // "name" for unicode, "name:id" for custom; empty for none
	Order       int
	Items       []Item
}

// HasItem reports whether the option carries an item for the Discord ID.
func (o *Option) HasItem(discordID string) bool {
	for _, it := range o.Items {
		if it.DiscordID == discordID {
			return true
		}
	}
	return false
}

// Restriction gates who may use a Menu. A menu with no ALLOW restrictions is
// open to everyone except DISALLOW roles; any ALLOW restriction closes the
// menu by default except to the listed roles.
type Restriction struct {
	ID     int64
	MenuID int64
	RoleID string
	Type   RestrictionType
}

// AttachedMessage links a Menu to one live Discord message rendering it.
type AttachedMessage struct {
	ID        int64
	MenuID    int64
	ChannelID string
	MessageID string
}

// Menu is the persisted definition of a button-driven role/channel selector.
// When Unique is set, at most one option's items may be held by a user at a
// time; pressing an option first revokes every other option's items.
type Menu struct {
	ID           int64
	GuildID      string
	Unique       bool
	Options      []Option
	Restrictions []Restriction
	Messages     []AttachedMessage
}

// SortedOptions returns the options in display order: Order ascending, ties
// broken by ID ascending. The receiver's slice is not modified.
func (m *Menu) SortedOptions() []Option {
	opts := make([]Option, len(m.Options))
	copy(opts, m.Options)
	sort.SliceStable(opts, func(i, j int) bool {
		if opts[i].Order != opts[j].Order {
			return opts[i].Order < opts[j].Order
		}
		return opts[i].ID < opts[j].ID
	})
	return opts
}

// OptionByID returns the option with the given ID, or nil.
func (m *Menu) OptionByID(id int64) *Option {
	for i := range m.Options {
		if m.Options[i].ID == id {
			return &m.Options[i]
		}
	}
	return nil
}

// IsPermitted evaluates the two-list restriction policy against the roles a
// user holds. Order matters: DISALLOW always wins; otherwise a non-empty
// ALLOW list requires an intersection; an empty ALLOW list leaves the menu
// open.
func (m *Menu) IsPermitted(roleIDs []string) bool {
	held := make(map[string]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		held[id] = struct{}{}
	}

	hasAllow := false
	allowed := false
	for _, r := range m.Restrictions {
		_, holds := held[r.RoleID]
		switch r.Type {
		case Disallow:
			if holds {
				return false
			}
		case Allow:
			hasAllow = true
			if holds {
				allowed = true
			}
		}
	}

	if hasAllow {
		return allowed
	}
	return true
}

package menu

import (
	"fmt"
	"strings"

	"github.com/small-frappuccino/rolemenu/pkg/errutil"
)

// Store is the persistence contract the service depends on. Implemented by
// the SQLite store in pkg/storage. Lookups return (nil, nil) on absence;
// mutations are single transactions that either fully apply or leave nothing
// behind.
type Store interface {
	CreateMenu(guildID string, unique bool) (*Menu, error)
	GetMenu(guildID string, id int64) (*Menu, error)
	GetAllMenus(guildID string) ([]*Menu, error)
	SetMenuUnique(guildID string, id int64, unique bool) error
	DeleteMenu(guildID string, id int64) error

	AddOption(menuID int64, label, description, emoji string) (*Option, error)
	GetOption(guildID string, id int64) (*Option, error)
	MenuIDForOption(guildID string, optionID int64) (int64, error)
	UpdateOption(id int64, label, description, emoji string) error
	SetOptionOrder(id int64, order int) error
	DeleteOption(id int64) error

	AddItem(optionID int64, kind ItemKind, discordID string) (*Item, error)
	DeleteItem(id int64) error

	AddRestriction(menuID int64, roleID string, typ RestrictionType) (*Restriction, error)
	DeleteRestriction(id int64) error

	AttachMessage(menuID int64, channelID, messageID string) (*AttachedMessage, error)
	GetAttachedMessage(messageID string) (*AttachedMessage, error)
	DetachMessage(messageID string) error
}

// Service exposes invariant-preserving mutations over the store. Callers get
// the restriction policy, ordering and cascade rules without knowing them;
// every mutation is persisted immediately.
type Service struct {
	store Store
}

// NewService creates a menu service on top of a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Store exposes the underlying store for read paths that need no invariants.
func (s *Service) Store() Store {
	return s.store
}

// CreateMenu creates an empty menu scoped to a guild.
func (s *Service) CreateMenu(guildID string, unique bool) (*Menu, error) {
	if strings.TrimSpace(guildID) == "" {
		return nil, fmt.Errorf("guild id is empty")
	}
	return s.store.CreateMenu(guildID, unique)
}

// Menu loads one menu with all children, or ErrNotFound.
func (s *Service) Menu(guildID string, id int64) (*Menu, error) {
	m, err := s.store.GetMenu(guildID, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errutil.NotFoundf("menu %d", id)
	}
	return m, nil
}

// Menus lists all menus of one guild, eagerly populated.
func (s *Service) Menus(guildID string) ([]*Menu, error) {
	return s.store.GetAllMenus(guildID)
}

// SetUnique toggles the mutual-exclusivity behavior of a menu.
func (s *Service) SetUnique(guildID string, id int64, unique bool) error {
	if _, err := s.Menu(guildID, id); err != nil {
		return err
	}
	return s.store.SetMenuUnique(guildID, id, unique)
}

// DeleteMenu removes a menu and cascades to its options, items, restrictions
// and attached message records.
func (s *Service) DeleteMenu(guildID string, id int64) error {
	if _, err := s.Menu(guildID, id); err != nil {
		return err
	}
	return s.store.DeleteMenu(guildID, id)
}

// AddOption appends an option to a menu. New options get order zero; display
// order stays deterministic through the ID tiebreak.
func (s *Service) AddOption(guildID string, menuID int64, label, description, emoji string) (*Option, error) {
	if strings.TrimSpace(label) == "" {
		return nil, fmt.Errorf("option label is empty")
	}
	if _, err := s.Menu(guildID, menuID); err != nil {
		return nil, err
	}
	return s.store.AddOption(menuID, label, description, emoji)
}

// Option loads one option with its items, or ErrNotFound.
func (s *Service) Option(guildID string, id int64) (*Option, error) {
	o, err := s.store.GetOption(guildID, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errutil.NotFoundf("option %d", id)
	}
	return o, nil
}

// MenuForOption resolves the menu owning an option.
func (s *Service) MenuForOption(guildID string, optionID int64) (*Menu, error) {
	menuID, err := s.store.MenuIDForOption(guildID, optionID)
	if err != nil {
		return nil, err
	}
	if menuID == 0 {
		return nil, errutil.NotFoundf("option %d", optionID)
	}
	return s.Menu(guildID, menuID)
}

// EditOption updates label, description and emoji of an option.
func (s *Service) EditOption(guildID string, id int64, label, description, emoji string) error {
	if strings.TrimSpace(label) == "" {
		return fmt.Errorf("option label is empty")
	}
	if _, err := s.Option(guildID, id); err != nil {
		return err
	}
	return s.store.UpdateOption(id, label, description, emoji)
}

// SetOptionOrder assigns the display order of an option. Lower sorts first.
func (s *Service) SetOptionOrder(guildID string, id int64, order int) error {
	if _, err := s.Option(guildID, id); err != nil {
		return err
	}
	return s.store.SetOptionOrder(id, order)
}

// DeleteOption removes an option and cascades to its items.
func (s *Service) DeleteOption(guildID string, id int64) error {
	if _, err := s.Option(guildID, id); err != nil {
		return err
	}
	return s.store.DeleteOption(id)
}

// AddItem adds a role or channel item to an option.
func (s *Service) AddItem(guildID string, optionID int64, kind ItemKind, discordID string) (*Item, error) {
	if strings.TrimSpace(discordID) == "" {
		return nil, fmt.Errorf("discord id is empty")
	}
	if _, err := s.Option(guildID, optionID); err != nil {
		return nil, err
	}
	return s.store.AddItem(optionID, kind, discordID)
}

// RemoveItem removes the item of an option referencing a Discord object.
func (s *Service) RemoveItem(guildID string, optionID int64, discordID string) (*Item, error) {
	o, err := s.Option(guildID, optionID)
	if err != nil {
		return nil, err
	}
	for _, it := range o.Items {
		if it.DiscordID == discordID {
			return &it, s.store.DeleteItem(it.ID)
		}
	}
	return nil, errutil.NotFoundf("item %s in option %d", discordID, optionID)
}

// AddRestriction adds an ALLOW or DISALLOW role rule to a menu.
func (s *Service) AddRestriction(guildID string, menuID int64, roleID string, typ RestrictionType) (*Restriction, error) {
	if _, err := s.Menu(guildID, menuID); err != nil {
		return nil, err
	}
	return s.store.AddRestriction(menuID, roleID, typ)
}

// RemoveRestriction removes the restriction of a menu referencing a role.
func (s *Service) RemoveRestriction(guildID string, menuID int64, roleID string) error {
	m, err := s.Menu(guildID, menuID)
	if err != nil {
		return err
	}
	for _, r := range m.Restrictions {
		if r.RoleID == roleID {
			return s.store.DeleteRestriction(r.ID)
		}
	}
	return errutil.NotFoundf("restriction for role %s in menu %d", roleID, menuID)
}

// Attach records that a menu is rendered on a live message.
func (s *Service) Attach(guildID string, menuID int64, channelID, messageID string) (*AttachedMessage, error) {
	if _, err := s.Menu(guildID, menuID); err != nil {
		return nil, err
	}
	return s.store.AttachMessage(menuID, channelID, messageID)
}

// AttachedMessage looks up the attachment record for a message, or ErrNotFound.
func (s *Service) AttachedMessage(messageID string) (*AttachedMessage, error) {
	am, err := s.store.GetAttachedMessage(messageID)
	if err != nil {
		return nil, err
	}
	if am == nil {
		return nil, errutil.NotFoundf("no menu attached to message %s", messageID)
	}
	return am, nil
}

// Detach removes the attachment record. The record is removed even when the
// live message is gone; stripping components is the caller's concern.
func (s *Service) Detach(messageID string) error {
	if _, err := s.AttachedMessage(messageID); err != nil {
		return err
	}
	return s.store.DetachMessage(messageID)
}

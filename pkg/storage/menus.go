package storage

import (
	"database/sql"
	"fmt"

	"github.com/small-frappuccino/rolemenu/pkg/menu"
)

// CreateMenu inserts an empty menu scoped to a guild and returns it.
func (s *Store) CreateMenu(guildID string, unique bool) (*menu.Menu, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	res, err := s.db.Exec(`INSERT INTO menus (guild_id, is_unique) VALUES (?, ?)`, guildID, unique)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &menu.Menu{ID: id, GuildID: guildID, Unique: unique}, nil
}

// GetMenu returns one menu with all child collections populated, or nil when
// absent.
func (s *Store) GetMenu(guildID string, id int64) (*menu.Menu, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	row := s.db.QueryRow(`SELECT id, guild_id, is_unique FROM menus WHERE guild_id=? AND id=?`, guildID, id)

	var m menu.Menu
	if err := row.Scan(&m.ID, &m.GuildID, &m.Unique); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := s.loadChildren(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetAllMenus returns all menus, optionally filtered to one guild (empty
// guildID means all guilds), each with all child collections populated.
func (s *Store) GetAllMenus(guildID string) ([]*menu.Menu, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}

	query := `SELECT id, guild_id, is_unique FROM menus ORDER BY id`
	args := []any{}
	if guildID != "" {
		query = `SELECT id, guild_id, is_unique FROM menus WHERE guild_id=? ORDER BY id`
		args = append(args, guildID)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var menus []*menu.Menu
	for rows.Next() {
		var m menu.Menu
		if err := rows.Scan(&m.ID, &m.GuildID, &m.Unique); err != nil {
			return nil, err
		}
		menus = append(menus, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, m := range menus {
		if err := s.loadChildren(m); err != nil {
			return nil, err
		}
	}
	return menus, nil
}

// SetMenuUnique updates the exclusivity flag of a menu.
func (s *Store) SetMenuUnique(guildID string, id int64, unique bool) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	_, err := s.db.Exec(`UPDATE menus SET is_unique=? WHERE guild_id=? AND id=?`, unique, guildID, id)
	return err
}

// DeleteMenu removes a menu. Options, items, restrictions and attached
// message records cascade at the schema level in the same transaction.
func (s *Store) DeleteMenu(guildID string, id int64) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	_, err := s.db.Exec(`DELETE FROM menus WHERE guild_id=? AND id=?`, guildID, id)
	return err
}

// loadChildren populates options (with items), restrictions and attached
// messages of a menu.
func (s *Store) loadChildren(m *menu.Menu) error {
	optRows, err := s.db.Query(
		`SELECT id, menu_id, label, description, emoji, sort_order
         FROM menu_options WHERE menu_id=? ORDER BY sort_order, id`, m.ID)
	if err != nil {
		return err
	}
	defer optRows.Close()

	m.Options = nil
	for optRows.Next() {
		var o menu.Option
		if err := optRows.Scan(&o.ID, &o.MenuID, &o.Label, &o.Description, &o.Emoji, &o.Order); err != nil {
			return err
		}
		m.Options = append(m.Options, o)
	}
	if err := optRows.Err(); err != nil {
		return err
	}

	for i := range m.Options {
		items, err := s.itemsForOption(m.Options[i].ID)
		if err != nil {
			return err
		}
		m.Options[i].Items = items
	}

	resRows, err := s.db.Query(
		`SELECT id, menu_id, role_id, type FROM menu_restrictions WHERE menu_id=? ORDER BY id`, m.ID)
	if err != nil {
		return err
	}
	defer resRows.Close()

	m.Restrictions = nil
	for resRows.Next() {
		var r menu.Restriction
		var typ string
		if err := resRows.Scan(&r.ID, &r.MenuID, &r.RoleID, &typ); err != nil {
			return err
		}
		parsed, err := menu.ParseRestrictionType(typ)
		if err != nil {
			return fmt.Errorf("menu %d: %w", m.ID, err)
		}
		r.Type = parsed
		m.Restrictions = append(m.Restrictions, r)
	}
	if err := resRows.Err(); err != nil {
		return err
	}

	msgRows, err := s.db.Query(
		`SELECT id, menu_id, channel_id, message_id FROM menu_messages WHERE menu_id=? ORDER BY id`, m.ID)
	if err != nil {
		return err
	}
	defer msgRows.Close()

	m.Messages = nil
	for msgRows.Next() {
		var am menu.AttachedMessage
		if err := msgRows.Scan(&am.ID, &am.MenuID, &am.ChannelID, &am.MessageID); err != nil {
			return err
		}
		m.Messages = append(m.Messages, am)
	}
	return msgRows.Err()
}

func (s *Store) itemsForOption(optionID int64) ([]menu.Item, error) {
	rows, err := s.db.Query(
		`SELECT id, option_id, kind, discord_id FROM menu_items WHERE option_id=? ORDER BY id`, optionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []menu.Item
	for rows.Next() {
		var it menu.Item
		var kind string
		if err := rows.Scan(&it.ID, &it.OptionID, &kind, &it.DiscordID); err != nil {
			return nil, err
		}
		parsed, err := menu.ParseItemKind(kind)
		if err != nil {
			return nil, fmt.Errorf("option %d: %w", optionID, err)
		}
		it.Kind = parsed
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddOption appends an option to a menu with order zero.
func (s *Store) AddOption(menuID int64, label, description, emoji string) (*menu.Option, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	res, err := s.db.Exec(
		`INSERT INTO menu_options (menu_id, label, description, emoji) VALUES (?, ?, ?, ?)`,
		menuID, label, description, emoji)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &menu.Option{ID: id, MenuID: menuID, Label: label, Description: description, Emoji: emoji}, nil
}

// GetOption returns one option with its items, scoped to a guild, or nil.
func (s *Store) GetOption(guildID string, id int64) (*menu.Option, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	row := s.db.QueryRow(
		`SELECT o.id, o.menu_id, o.label, o.description, o.emoji, o.sort_order
         FROM menu_options o JOIN menus m ON o.menu_id = m.id
         WHERE m.guild_id=? AND o.id=?`, guildID, id)

	var o menu.Option
	if err := row.Scan(&o.ID, &o.MenuID, &o.Label, &o.Description, &o.Emoji, &o.Order); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	items, err := s.itemsForOption(o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

// MenuIDForOption resolves the owning menu of an option within a guild.
// Returns 0 when the option does not exist.
func (s *Store) MenuIDForOption(guildID string, optionID int64) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("store not initialized")
	}
	row := s.db.QueryRow(
		`SELECT m.id FROM menu_options o JOIN menus m ON o.menu_id = m.id
         WHERE m.guild_id=? AND o.id=?`, guildID, optionID)
	var menuID int64
	if err := row.Scan(&menuID); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return menuID, nil
}

// UpdateOption updates label, description and emoji of an option.
func (s *Store) UpdateOption(id int64, label, description, emoji string) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	_, err := s.db.Exec(
		`UPDATE menu_options SET label=?, description=?, emoji=? WHERE id=?`,
		label, description, emoji, id)
	return err
}

// SetOptionOrder updates the display order of an option.
func (s *Store) SetOptionOrder(id int64, order int) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	_, err := s.db.Exec(`UPDATE menu_options SET sort_order=? WHERE id=?`, order, id)
	return err
}

// DeleteOption removes an option; its items cascade.
func (s *Store) DeleteOption(id int64) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	_, err := s.db.Exec(`DELETE FROM menu_options WHERE id=?`, id)
	return err
}

// AddItem adds a role or channel item to an option.
func (s *Store) AddItem(optionID int64, kind menu.ItemKind, discordID string) (*menu.Item, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	res, err := s.db.Exec(
		`INSERT INTO menu_items (option_id, kind, discord_id) VALUES (?, ?, ?)`,
		optionID, string(kind), discordID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &menu.Item{ID: id, OptionID: optionID, Kind: kind, DiscordID: discordID}, nil
}

// DeleteItem removes one item.
func (s *Store) DeleteItem(id int64) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	_, err := s.db.Exec(`DELETE FROM menu_items WHERE id=?`, id)
	return err
}

// AddRestriction adds an ALLOW or DISALLOW role rule to a menu.
func (s *Store) AddRestriction(menuID int64, roleID string, typ menu.RestrictionType) (*menu.Restriction, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	res, err := s.db.Exec(
		`INSERT INTO menu_restrictions (menu_id, role_id, type) VALUES (?, ?, ?)`,
		menuID, roleID, string(typ))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &menu.Restriction{ID: id, MenuID: menuID, RoleID: roleID, Type: typ}, nil
}

// DeleteRestriction removes one restriction.
func (s *Store) DeleteRestriction(id int64) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	_, err := s.db.Exec(`DELETE FROM menu_restrictions WHERE id=?`, id)
	return err
}

// AttachMessage records that a menu is rendered on a live message. A message
// holds at most one menu; re-attaching to the same message moves the link.
func (s *Store) AttachMessage(menuID int64, channelID, messageID string) (*menu.AttachedMessage, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	res, err := s.db.Exec(
		`INSERT INTO menu_messages (menu_id, channel_id, message_id)
         VALUES (?, ?, ?)
         ON CONFLICT(message_id) DO UPDATE SET
           menu_id=excluded.menu_id,
           channel_id=excluded.channel_id`,
		menuID, channelID, messageID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &menu.AttachedMessage{ID: id, MenuID: menuID, ChannelID: channelID, MessageID: messageID}, nil
}

// GetAttachedMessage looks up the attachment record for a message, or nil.
func (s *Store) GetAttachedMessage(messageID string) (*menu.AttachedMessage, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	row := s.db.QueryRow(
		`SELECT id, menu_id, channel_id, message_id FROM menu_messages WHERE message_id=?`, messageID)
	var am menu.AttachedMessage
	if err := row.Scan(&am.ID, &am.MenuID, &am.ChannelID, &am.MessageID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &am, nil
}

// DetachMessage removes the attachment record (no error if absent).
func (s *Store) DetachMessage(messageID string) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	_, err := s.db.Exec(`DELETE FROM menu_messages WHERE message_id=?`, messageID)
	return err
}

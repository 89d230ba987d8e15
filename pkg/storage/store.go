package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/small-frappuccino/rolemenu/pkg/log"
	_ "modernc.org/sqlite"
)

// Store wraps an embedded SQLite database holding the durable menu
// definitions: menus, options, items, restrictions and attached-message
// links. It uses modernc.org/sqlite for CGO-less builds.
//
// Lookups return (nil, nil) when the row is absent; callers must branch on
// absence. Mutations run as single transactions: a write either fully
// succeeds or leaves nothing behind.
type Store struct {
	dbPath string
	db     *sql.DB
}

// NewStore creates a new Store pointing to dbPath. Call Init() before using it.
func NewStore(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

// Init opens the SQLite database, configures pragmas, and ensures the schema exists.
func (s *Store) Init() error {
	if s.db != nil {
		return nil
	}
	if s.dbPath == "" {
		return fmt.Errorf("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(s.dbPath), 0o755); err != nil {
		return fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}

	// Pragmas for durability and concurrency. foreign_keys is load-bearing:
	// menu deletion cascades through options, items, restrictions and
	// attached messages at the schema level.
	pragmas := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA foreign_keys=ON;`,
		`PRAGMA busy_timeout=5000;`,
		`PRAGMA synchronous=NORMAL;`,
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return fmt.Errorf("apply %s: %w", p, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	log.DatabaseLogger().Info("sqlite store ready", "path", s.dbPath)
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ensureSchema creates required tables and indexes if they don't exist.
func ensureSchema(db *sql.DB) error {
	const createMenus = `
CREATE TABLE IF NOT EXISTS menus (
  id        INTEGER PRIMARY KEY AUTOINCREMENT,
  guild_id  TEXT NOT NULL,
  is_unique INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_menus_guild ON menus(guild_id);`

	const createOptions = `
CREATE TABLE IF NOT EXISTS menu_options (
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  menu_id     INTEGER NOT NULL REFERENCES menus(id) ON DELETE CASCADE,
  label       TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  emoji       TEXT NOT NULL DEFAULT '',
  sort_order  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_menu_options_menu ON menu_options(menu_id);`

	const createItems = `
CREATE TABLE IF NOT EXISTS menu_items (
  id         INTEGER PRIMARY KEY AUTOINCREMENT,
  option_id  INTEGER NOT NULL REFERENCES menu_options(id) ON DELETE CASCADE,
  kind       TEXT NOT NULL,
  discord_id TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_menu_items_option ON menu_items(option_id);`

	const createRestrictions = `
CREATE TABLE IF NOT EXISTS menu_restrictions (
  id      INTEGER PRIMARY KEY AUTOINCREMENT,
  menu_id INTEGER NOT NULL REFERENCES menus(id) ON DELETE CASCADE,
  role_id TEXT NOT NULL,
  type    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_menu_restrictions_menu ON menu_restrictions(menu_id);`

	const createMessages = `
CREATE TABLE IF NOT EXISTS menu_messages (
  id         INTEGER PRIMARY KEY AUTOINCREMENT,
  menu_id    INTEGER NOT NULL REFERENCES menus(id) ON DELETE CASCADE,
  channel_id TEXT NOT NULL,
  message_id TEXT NOT NULL UNIQUE
);
CREATE INDEX IF NOT EXISTS idx_menu_messages_menu ON menu_messages(menu_id);`

	stmts := []string{
		createMenus,
		createOptions,
		createItems,
		createRestrictions,
		createMessages,
	}
	for _, sqlText := range stmts {
		if _, err := db.Exec(sqlText); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

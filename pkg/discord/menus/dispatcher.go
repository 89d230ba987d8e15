package menus

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Handle is the runtime rendering of one menu: the components currently
// pushed to its attached messages. Handles are a projection of the store,
// rebuilt by reconciliation and never persisted.
type Handle struct {
	MenuID     int64
	GuildID    string
	Components []discordgo.MessageComponent
}

// Dispatcher owns the registry of active handles. Button presses resolve only
// against registered menus, so a reload leaves no stale bindings behind.
type Dispatcher struct {
	mu      sync.RWMutex
	handles map[int64]*Handle
}

// NewDispatcher creates an empty registry.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handles: make(map[int64]*Handle)}
}

// Register installs (or replaces) the handle for a menu.
func (d *Dispatcher) Register(h *Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handles[h.MenuID] = h
}

// Unregister removes the handle for a menu, if present.
func (d *Dispatcher) Unregister(menuID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handles, menuID)
}

// Clear tears down every registered handle. Called before a reload
// repopulates the registry.
func (d *Dispatcher) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handles = make(map[int64]*Handle)
}

// Handle returns the registered handle for a menu, or nil.
func (d *Dispatcher) Handle(menuID int64) *Handle {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.handles[menuID]
}

// Registered returns the IDs of all registered menus.
func (d *Dispatcher) Registered() []int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]int64, 0, len(d.handles))
	for id := range d.handles {
		ids = append(ids, id)
	}
	return ids
}

// Package registry tracks which players currently hold a live connection.
package registry

import (
	"sync"

	"github.com/hmngo/wordchain/internal/model"
	"github.com/hmngo/wordchain/internal/protocol"
)

// Conn is the handle the registry keeps per online player. The server's
// client connection satisfies it; tests substitute a capture fake.
type Conn interface {
	// Send delivers one protocol frame. Implementations must be safe for
	// concurrent use.
	Send(msg *protocol.Message) error
	// Close tears the connection down. Safe to call more than once.
	Close() error
}

// Registry is the bounded name → connection map. It exclusively owns the
// mapping; everything else refers to players by name.
type Registry struct {
	mu       sync.RWMutex
	conns    map[string]Conn
	capacity int
}

// New creates a registry holding at most capacity live connections.
func New(capacity int) *Registry {
	return &Registry{
		conns:    make(map[string]Conn, capacity),
		capacity: capacity,
	}
}

// Register attaches a connection to a player name. No two live connections
// may share a name.
func (r *Registry) Register(name string, conn Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[name]; ok {
		return model.ErrAlreadyConnected
	}
	if len(r.conns) >= r.capacity {
		return model.ErrRegistryFull
	}
	r.conns[name] = conn
	return nil
}

// Lookup returns the live connection for a player, if any.
func (r *Registry) Lookup(name string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[name]
	return conn, ok
}

// Unregister detaches a player's connection. Callers are responsible for
// running the disconnect cascade (session termination) before the slot is
// considered reclaimed; see server.Dispatcher.Disconnect.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, name)
}

// Online reports whether a player holds a live connection.
func (r *Registry) Online(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[name]
	return ok
}

// NameForConn finds the player name a connection was registered under.
// Used on disconnect, where only the connection is known.
func (r *Registry) NameForConn(conn Conn) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, c := range r.conns {
		if c == conn {
			return name, true
		}
	}
	return "", false
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

package realtime

import (
	"sync"

	"github.com/rs/zerolog"
)

// Conn is the transport-level handle for one live connection. Push queues an
// event for delivery and reports false when the connection's send queue is
// full; delivery is best-effort either way.
type Conn interface {
	ID() string
	Push(event string, data any) bool
}

// Registry tracks which live connections belong to which user. A connection
// belongs to at most one user at a time; a user may hold any number of
// connections (multiple tabs or devices). Unknown identifiers resolve to the
// empty set, never an error.
type Registry struct {
	mu     sync.RWMutex
	owners map[string]string          // connection id -> user id
	rooms  map[string]map[string]Conn // user id -> connection id -> conn
	log    zerolog.Logger
}

// NewRegistry constructs an empty presence registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		owners: make(map[string]string),
		rooms:  make(map[string]map[string]Conn),
		log:    logger.With().Str("component", "presence_registry").Logger(),
	}
}

// Register associates a connection with a user. Re-registering the same
// connection under a different user moves it out of the previous user's room.
func (r *Registry) Register(conn Conn, userID string) {
	if conn == nil || userID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	connID := conn.ID()
	if previous, ok := r.owners[connID]; ok {
		if previous == userID {
			r.rooms[userID][connID] = conn
			return
		}
		r.removeLocked(connID, previous)
	}

	if _, exists := r.rooms[userID]; !exists {
		r.rooms[userID] = make(map[string]Conn)
	}
	r.rooms[userID][connID] = conn
	r.owners[connID] = userID
	r.log.Debug().Str("connection_id", connID).Str("user_id", userID).Msg("connection registered")
}

// Unregister removes any association for the connection. Safe to call for
// connections that never registered.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.owners[connID]
	if !ok {
		return
	}
	r.removeLocked(connID, userID)
	r.log.Debug().Str("connection_id", connID).Str("user_id", userID).Msg("connection unregistered")
}

// ConnectionsFor returns the live connections currently owned by the user.
func (r *Registry) ConnectionsFor(userID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[userID]
	if len(room) == 0 {
		return nil
	}

	conns := make([]Conn, 0, len(room))
	for _, conn := range room {
		conns = append(conns, conn)
	}
	return conns
}

func (r *Registry) removeLocked(connID, userID string) {
	delete(r.owners, connID)
	if room, ok := r.rooms[userID]; ok {
		delete(room, connID)
		if len(room) == 0 {
			delete(r.rooms, userID)
		}
	}
}

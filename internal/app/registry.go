package app

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/dkeye/CodeRoom/internal/core"
	"github.com/dkeye/CodeRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	Username    string
	Room        domain.RoomID
	Visible     map[domain.RoomID]string // rooms where this connection added a member name
	VoiceRooms  map[domain.RoomID]struct{}
	Signal      core.SignalConnection
	ConnectedAt time.Time
}

// Connection is a detached copy of a registry entry.
type Connection struct {
	ID          domain.ConnID
	Username    string
	Room        domain.RoomID
	Visible     map[domain.RoomID]string
	VoiceRooms  []domain.RoomID
	Signal      core.SignalConnection
	ConnectedAt time.Time
}

// Registry tracks live connections and their transient identity.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*connEntry
	now   func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[domain.ConnID]*connEntry),
		now:   time.Now,
	}
}

// Connect accepts the connection unconditionally. A reused id replaces the old entry.
func (r *Registry) Connect(id domain.ConnID, sig core.SignalConnection, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connEntry{
		Username:    username,
		Visible:     make(map[domain.RoomID]string),
		VoiceRooms:  make(map[domain.RoomID]struct{}),
		Signal:      sig,
		ConnectedAt: r.now(),
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("username", username).Msg("connected")
}

// Disconnect removes the entry and returns what it held so the caller can reconcile tables.
func (r *Registry) Disconnect(id domain.ConnID) (Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return Connection{}, false
	}
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("disconnected")
	return e.snapshot(id), true
}

func (r *Registry) Get(id domain.ConnID) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok {
		return Connection{}, false
	}
	return e.snapshot(id), true
}

func (r *Registry) Has(id domain.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[id]
	return ok
}

func (r *Registry) Signal(id domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return e.Signal, true
}

func (r *Registry) Username(id domain.ConnID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.Username
	}
	return ""
}

func (r *Registry) UpdateUsername(id domain.ConnID, name string) {
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok && e.Username != name {
		e.Username = name
		log.Debug().Str("module", "app.registry").Str("conn", string(id)).Str("username", name).Msg("updated username")
	}
}

// UpdateRoom sets the current code room and returns the previous one.
func (r *Registry) UpdateRoom(id domain.ConnID, room domain.RoomID) (domain.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return "", false
	}
	prev := e.Room
	e.Room = room
	return prev, true
}

// RoomOf reports the current code room of a connection.
func (r *Registry) RoomOf(id domain.ConnID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok || e.Room == "" {
		return "", false
	}
	return e.Room, true
}

func (r *Registry) MarkVisible(id domain.ConnID, room domain.RoomID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok {
		e.Visible[room] = name
	}
}

// ClearVisible forgets that id shows name in room. Removing someone else's name leaves it alone.
func (r *Registry) ClearVisible(id domain.ConnID, room domain.RoomID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok && e.Visible[room] == name {
		delete(e.Visible, room)
	}
}

// NameHeldElsewhere reports whether a live connection other than except still
// shows name in room.
func (r *Registry) NameHeldElsewhere(room domain.RoomID, name string, except domain.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, e := range r.conns {
		if id == except {
			continue
		}
		if n, ok := e.Visible[room]; ok && n == name {
			return true
		}
	}
	return false
}

func (r *Registry) AddVoiceRoom(id domain.ConnID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok {
		e.VoiceRooms[room] = struct{}{}
	}
}

func (r *Registry) RemoveVoiceRoom(id domain.ConnID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok {
		delete(e.VoiceRooms, room)
	}
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Members returns a read-only view of every live connection.
func (r *Registry) Members() []domain.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Member, 0, len(r.conns))
	for id, e := range r.conns {
		out = append(out, domain.Member{
			ID:          id,
			Username:    e.Username,
			Room:        e.Room,
			VoiceRooms:  sortedKeys(e.VoiceRooms),
			ConnectedAt: e.ConnectedAt,
		})
	}
	slices.SortFunc(out, func(a, b domain.Member) int {
		return a.ConnectedAt.Compare(b.ConnectedAt)
	})
	return out
}

func (e *connEntry) snapshot(id domain.ConnID) Connection {
	return Connection{
		ID:          id,
		Username:    e.Username,
		Room:        e.Room,
		Visible:     maps.Clone(e.Visible),
		VoiceRooms:  sortedKeys(e.VoiceRooms),
		Signal:      e.Signal,
		ConnectedAt: e.ConnectedAt,
	}
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	if len(m) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(m))
}

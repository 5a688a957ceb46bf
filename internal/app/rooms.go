package app

import (
	"maps"
	"slices"
	"sync"

	"github.com/dkeye/CodeRoom/internal/core"
	"github.com/dkeye/CodeRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomTable is the code-room membership table.
// subscribers scope relay delivery, members are the visible presence names.
// Both maps drop a room as soon as its set becomes empty.
type RoomTable struct {
	mu          sync.RWMutex
	members     map[domain.RoomID]map[string]struct{}
	subscribers map[domain.RoomID]map[domain.ConnID]struct{}
}

func NewRoomTable() *RoomTable {
	return &RoomTable{
		members:     make(map[domain.RoomID]map[string]struct{}),
		subscribers: make(map[domain.RoomID]map[domain.ConnID]struct{}),
	}
}

// JoinRoom subscribes the connection to the room's events. It does not add a member name.
func (t *RoomTable) JoinRoom(id domain.ConnID, room domain.RoomID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	subs, ok := t.subscribers[room]
	if !ok {
		subs = make(map[domain.ConnID]struct{})
		t.subscribers[room] = subs
	}
	subs[id] = struct{}{}
	log.Debug().Str("module", "app.rooms").Str("conn", string(id)).Str("room", string(room)).Msg("joined")
}

func (t *RoomTable) LeaveRoom(id domain.ConnID, room domain.RoomID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	subs, ok := t.subscribers[room]
	if !ok {
		return
	}
	delete(subs, id)
	if len(subs) == 0 {
		delete(t.subscribers, room)
	}
	log.Debug().Str("module", "app.rooms").Str("conn", string(id)).Str("room", string(room)).Msg("left")
}

// AddMember inserts name and returns the member set to broadcast.
func (t *RoomTable) AddMember(room domain.RoomID, name string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.members[room]
	if !ok {
		set = make(map[string]struct{})
		t.members[room] = set
		log.Info().Str("module", "app.rooms").Str("room", string(room)).Msg("room created")
	}
	set[name] = struct{}{}
	return sortedKeys(set)
}

// RemoveMember deletes name. It returns the remaining members and true when a
// broadcast is due; a room left empty is deleted and reports false.
func (t *RoomTable) RemoveMember(room domain.RoomID, name string) ([]string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.members[room]
	if !ok {
		return nil, false
	}
	delete(set, name)
	if len(set) == 0 {
		delete(t.members, room)
		log.Info().Str("module", "app.rooms").Str("room", string(room)).Msg("room deleted")
		return nil, false
	}
	return sortedKeys(set), true
}

func (t *RoomTable) Members(room domain.RoomID) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return sortedKeys(t.members[room])
}

func (t *RoomTable) Subscribers(room domain.RoomID) []domain.ConnID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return sortedKeys(t.subscribers[room])
}

// Exists reports whether the room has at least one visible member.
func (t *RoomTable) Exists(room domain.RoomID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.members[room]
	return ok
}

func (t *RoomTable) List() []core.RoomInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make(map[domain.RoomID]struct{}, len(t.members)+len(t.subscribers))
	for id := range t.members {
		ids[id] = struct{}{}
	}
	for id := range t.subscribers {
		ids[id] = struct{}{}
	}
	out := make([]core.RoomInfo, 0, len(ids))
	for _, id := range slices.Sorted(maps.Keys(ids)) {
		members := sortedKeys(t.members[id])
		if members == nil {
			members = []string{}
		}
		out = append(out, core.RoomInfo{
			ID:          id,
			Members:     members,
			Subscribers: len(t.subscribers[id]),
		})
	}
	return out
}

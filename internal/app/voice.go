package app

import (
	"maps"
	"slices"
	"sync"

	"github.com/dkeye/CodeRoom/internal/core"
	"github.com/dkeye/CodeRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

// VoiceTable maps voice rooms to the connections inside them.
// Its namespace is unrelated to RoomTable even when ids collide.
type VoiceTable struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]map[domain.ConnID]struct{}
}

func NewVoiceTable() *VoiceTable {
	return &VoiceTable{rooms: make(map[domain.RoomID]map[domain.ConnID]struct{})}
}

// Join inserts the connection and returns every other peer already in the room.
func (t *VoiceTable) Join(id domain.ConnID, room domain.RoomID) []domain.ConnID {
	t.mu.Lock()
	defer t.mu.Unlock()
	peers, ok := t.rooms[room]
	if !ok {
		peers = make(map[domain.ConnID]struct{})
		t.rooms[room] = peers
	}
	peers[id] = struct{}{}
	others := make([]domain.ConnID, 0, len(peers)-1)
	for p := range peers {
		if p != id {
			others = append(others, p)
		}
	}
	slices.Sort(others)
	log.Debug().Str("module", "app.voice").Str("conn", string(id)).Str("room", string(room)).Int("peers", len(others)).Msg("joined voice")
	return others
}

// Leave removes the connection and reports whether it was present.
func (t *VoiceTable) Leave(id domain.ConnID, room domain.RoomID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	peers, ok := t.rooms[room]
	if !ok {
		return false
	}
	if _, ok := peers[id]; !ok {
		return false
	}
	delete(peers, id)
	if len(peers) == 0 {
		delete(t.rooms, room)
		log.Debug().Str("module", "app.voice").Str("room", string(room)).Msg("voice room deleted")
	}
	return true
}

func (t *VoiceTable) Members(room domain.RoomID) []domain.ConnID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return sortedKeys(t.rooms[room])
}

func (t *VoiceTable) Exists(room domain.RoomID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.rooms[room]
	return ok
}

func (t *VoiceTable) List() []core.VoiceRoomInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]core.VoiceRoomInfo, 0, len(t.rooms))
	for _, id := range slices.Sorted(maps.Keys(t.rooms)) {
		out = append(out, core.VoiceRoomInfo{ID: id, Peers: sortedKeys(t.rooms[id])})
	}
	return out
}

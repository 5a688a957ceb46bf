package signaling

import (
	"sync"
	"time"

	"github.com/dkeye/CodeRoom/internal/domain"
)

type State int32

const (
	NotContacted State = iota
	OfferSent
	AnswerReceived
)

func (s State) String() string {
	switch s {
	case NotContacted:
		return "not_contacted"
	case OfferSent:
		return "offer_sent"
	case AnswerReceived:
		return "answer_received"
	default:
		return "unknown"
	}
}

// Pair identifies one directed handshake. The offerer is the peer that was
// already in the voice room when the answerer joined.
type Pair struct {
	Offerer  domain.ConnID
	Answerer domain.ConnID
}

type handshake struct {
	room    domain.RoomID
	state   State
	updated time.Time
}

// Expired describes a handshake dropped by Sweep.
type Expired struct {
	Pair  Pair
	Room  domain.RoomID
	State State
}

// Tracker keeps the per-pair handshake state. It never rejects a transition:
// payloads arriving out of order only move the state forward or leave it alone.
type Tracker struct {
	mu      sync.Mutex
	entries map[Pair]*handshake
	ttl     time.Duration
	now     func() time.Time
}

func NewTracker(ttl time.Duration) *Tracker {
	return &Tracker{
		entries: make(map[Pair]*handshake),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Introduce starts a fresh handshake for the pair, replacing any previous one.
func (t *Tracker) Introduce(room domain.RoomID, offerer, answerer domain.ConnID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[Pair{offerer, answerer}] = &handshake{room: room, state: NotContacted, updated: t.now()}
}

func (t *Tracker) Offer(offerer, answerer domain.ConnID) State {
	return t.advance(Pair{offerer, answerer}, OfferSent)
}

func (t *Tracker) Answer(offerer, answerer domain.ConnID) State {
	return t.advance(Pair{offerer, answerer}, AnswerReceived)
}

func (t *Tracker) advance(p Pair, to State) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.entries[p]
	if !ok {
		h = &handshake{state: NotContacted}
		t.entries[p] = h
	}
	if to > h.state {
		h.state = to
	}
	h.updated = t.now()
	return h.state
}

func (t *Tracker) State(offerer, answerer domain.ConnID) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.entries[Pair{offerer, answerer}]
	if !ok {
		return NotContacted, false
	}
	return h.state, true
}

// Forget drops every handshake that involves id.
func (t *Tracker) Forget(id domain.ConnID) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for p := range t.entries {
		if p.Offerer == id || p.Answerer == id {
			delete(t.entries, p)
			n++
		}
	}
	return n
}

// ForgetRoom drops the handshakes of id that were introduced in room.
func (t *Tracker) ForgetRoom(id domain.ConnID, room domain.RoomID) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for p, h := range t.entries {
		if h.room == room && (p.Offerer == id || p.Answerer == id) {
			delete(t.entries, p)
			n++
		}
	}
	return n
}

// Sweep removes entries idle for longer than the ttl. A zero ttl keeps everything.
func (t *Tracker) Sweep() []Expired {
	if t.ttl <= 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	deadline := t.now().Add(-t.ttl)
	var out []Expired
	for p, h := range t.entries {
		if h.updated.Before(deadline) {
			out = append(out, Expired{Pair: p, Room: h.room, State: h.state})
			delete(t.entries, p)
		}
	}
	return out
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

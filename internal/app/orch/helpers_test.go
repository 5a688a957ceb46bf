package orch

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/CodeRoom/internal/app"
	"github.com/dkeye/CodeRoom/internal/app/signaling"
	"github.com/dkeye/CodeRoom/internal/core"
	"github.com/dkeye/CodeRoom/internal/domain"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// take returns the envelopes received since the last call.
func (c *fakeConn) take(t *testing.T) []core.Envelope {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Envelope, 0, len(c.frames))
	for _, f := range c.frames {
		var env core.Envelope
		require.NoError(t, json.Unmarshal(f, &env))
		out = append(out, env)
	}
	c.frames = nil
	return out
}

type recorder struct {
	mu   sync.Mutex
	acts []domain.Activity
}

func (r *recorder) Record(a domain.Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acts = append(r.acts, a)
}

func newTestOrch(t *testing.T) *Orchestrator {
	t.Helper()
	reg := app.NewRegistry()
	rooms := app.NewRoomTable()
	voice := app.NewVoiceTable()
	relay := app.NewRelay(reg, rooms, app.DropPolicy{})
	signals := signaling.NewCoordinator(relay, signaling.NewTracker(30*time.Second))
	return New(reg, rooms, voice, relay, signals, 16)
}

func connect(o *Orchestrator, id domain.ConnID, username string) *fakeConn {
	c := &fakeConn{}
	o.Handle(ConnectEvent(id, c, username))
	return c
}

func envelope(t *testing.T, typ core.EventType, payload any) core.Envelope {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return core.Envelope{Type: typ, Payload: raw}
}

func send(t *testing.T, o *Orchestrator, id domain.ConnID, typ core.EventType, payload any) {
	t.Helper()
	o.Handle(EnvelopeEvent(id, envelope(t, typ, payload)))
}

func members(t *testing.T, env core.Envelope) []string {
	t.Helper()
	require.Equal(t, core.EventMembersUpdate, env.Type)
	var out []string
	require.NoError(t, json.Unmarshal(env.Payload, &out))
	return out
}

package signaling

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dkeye/CodeRoom/internal/core"
	"github.com/dkeye/CodeRoom/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	to  domain.ConnID
	env core.Envelope
}

type recordingSender struct {
	t    *testing.T
	sent []sent
}

func (s *recordingSender) SendTo(to domain.ConnID, f core.Frame) core.PublishResult {
	var env core.Envelope
	require.NoError(s.t, json.Unmarshal(f, &env))
	s.sent = append(s.sent, sent{to: to, env: env})
	return core.PublishResult{SendTo: 1}
}

func (s *recordingSender) SendEach(ids []domain.ConnID, f core.Frame) core.PublishResult {
	res := core.PublishResult{}
	for _, id := range ids {
		res.Merge(s.SendTo(id, f))
	}
	return res
}

func TestCoordinatorPeerJoinedNotifiesExistingPeers(t *testing.T) {
	s := &recordingSender{t: t}
	c := NewCoordinator(s, NewTracker(0))

	res := c.PeerJoined("v1", "c", "carol", []domain.ConnID{"a", "b"})
	assert.Equal(t, 2, res.SendTo)
	require.Len(t, s.sent, 2)

	for i, want := range []domain.ConnID{"a", "b"} {
		assert.Equal(t, want, s.sent[i].to)
		assert.Equal(t, core.EventUserJoinedVoice, s.sent[i].env.Type)

		var p core.UserJoinedVoicePayload
		require.NoError(t, json.Unmarshal(s.sent[i].env.Payload, &p))
		assert.Equal(t, domain.ConnID("c"), p.CallerID)
		assert.Equal(t, "carol", p.CallerUsername)
		assert.JSONEq(t, "null", string(p.Signal))

		st, ok := c.Tracker().State(want, "c")
		require.True(t, ok)
		assert.Equal(t, NotContacted, st)
	}
}

func TestCoordinatorFirstJoinerSendsNothing(t *testing.T) {
	s := &recordingSender{t: t}
	c := NewCoordinator(s, NewTracker(0))

	res := c.PeerJoined("v1", "a", "alice", nil)
	assert.Zero(t, res.SendTo)
	assert.Empty(t, s.sent)
	assert.Zero(t, c.Tracker().Len())
}

func TestCoordinatorSignalAndReturn(t *testing.T) {
	s := &recordingSender{t: t}
	c := NewCoordinator(s, NewTracker(0))
	c.PeerJoined("v1", "b", "bob", []domain.ConnID{"a"})
	s.sent = nil

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	c.Signal("a", core.SendingSignalPayload{UserToSignal: "b", Signal: offer}, "alice")
	require.Len(t, s.sent, 1)
	assert.Equal(t, domain.ConnID("b"), s.sent[0].to)
	assert.Equal(t, core.EventUserJoinedVoice, s.sent[0].env.Type)

	var joined core.UserJoinedVoicePayload
	require.NoError(t, json.Unmarshal(s.sent[0].env.Payload, &joined))
	assert.Equal(t, domain.ConnID("a"), joined.CallerID)
	assert.Equal(t, "alice", joined.CallerUsername)
	assert.JSONEq(t, string(offer), string(joined.Signal))

	st, _ := c.Tracker().State("a", "b")
	assert.Equal(t, OfferSent, st)

	answer := json.RawMessage(`{"type":"answer","sdp":"v=0"}`)
	c.Return("b", core.ReturningSignalPayload{CallerID: "a", Signal: answer})
	require.Len(t, s.sent, 2)
	assert.Equal(t, domain.ConnID("a"), s.sent[1].to)
	assert.Equal(t, core.EventReceivingReturnedSignal, s.sent[1].env.Type)

	var returned core.ReturnedSignalPayload
	require.NoError(t, json.Unmarshal(s.sent[1].env.Payload, &returned))
	assert.Equal(t, domain.ConnID("b"), returned.ID)
	assert.JSONEq(t, string(answer), string(returned.Signal))

	st, _ = c.Tracker().State("a", "b")
	assert.Equal(t, AnswerReceived, st)
}

func TestCoordinatorSignalKeepsExplicitCaller(t *testing.T) {
	s := &recordingSender{t: t}
	c := NewCoordinator(s, NewTracker(0))

	c.Signal("a", core.SendingSignalPayload{UserToSignal: "b", CallerID: "x", Signal: json.RawMessage(`{}`)}, "alice")
	require.Len(t, s.sent, 1)

	var p core.UserJoinedVoicePayload
	require.NoError(t, json.Unmarshal(s.sent[0].env.Payload, &p))
	assert.Equal(t, domain.ConnID("x"), p.CallerID)
}

func TestCoordinatorSweepAndLeave(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := NewTracker(time.Second)
	tr.now = func() time.Time { return now }
	c := NewCoordinator(&recordingSender{t: t}, tr)

	c.PeerJoined("v1", "b", "bob", []domain.ConnID{"a"})
	c.PeerJoined("v2", "c", "carol", []domain.ConnID{"a"})

	c.PeerLeft("a", "v1")
	assert.Equal(t, 1, tr.Len())

	now = now.Add(time.Minute)
	assert.Equal(t, 1, c.Sweep())
	assert.Zero(t, tr.Len())

	c.PeerJoined("v1", "d", "dave", []domain.ConnID{"a"})
	c.Disconnected("d")
	assert.Zero(t, tr.Len())
}

// Package signaling relays the voice handshake between peers.
// Payloads are opaque: the coordinator addresses them and tracks how far each
// pair got, without checking that a payload matches its stage.
package signaling

import (
	"github.com/dkeye/CodeRoom/internal/core"
	"github.com/dkeye/CodeRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

// Sender is the targeted part of the event relay.
type Sender interface {
	SendTo(to domain.ConnID, f core.Frame) core.PublishResult
	SendEach(ids []domain.ConnID, f core.Frame) core.PublishResult
}

type Coordinator struct {
	relay   Sender
	tracker *Tracker
}

func NewCoordinator(relay Sender, tracker *Tracker) *Coordinator {
	return &Coordinator{relay: relay, tracker: tracker}
}

func (c *Coordinator) Tracker() *Tracker { return c.tracker }

// PeerJoined tells every existing peer about the joiner. The joiner itself gets nothing.
func (c *Coordinator) PeerJoined(room domain.RoomID, joiner domain.ConnID, username string, peers []domain.ConnID) core.PublishResult {
	if len(peers) == 0 {
		return core.PublishResult{}
	}
	f, err := core.Encode(core.EventUserJoinedVoice, core.UserJoinedVoicePayload{
		Signal:         core.NullSignal,
		CallerID:       joiner,
		CallerUsername: username,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "signaling").Msg("encode user-joined-voice")
		return core.PublishResult{}
	}
	for _, p := range peers {
		c.tracker.Introduce(room, p, joiner)
	}
	log.Info().Str("module", "signaling").Str("room", string(room)).Str("conn", string(joiner)).Int("peers", len(peers)).Msg("peer joined voice")
	return c.relay.SendEach(peers, f)
}

// Signal forwards an offer (or trickled candidate) from caller to its target.
func (c *Coordinator) Signal(from domain.ConnID, p core.SendingSignalPayload, callerUsername string) core.PublishResult {
	caller := p.CallerID
	if caller == "" {
		caller = from
	}
	f, err := core.Encode(core.EventUserJoinedVoice, core.UserJoinedVoicePayload{
		Signal:         p.Signal,
		CallerID:       caller,
		CallerUsername: callerUsername,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "signaling").Msg("encode sending-signal")
		return core.PublishResult{}
	}
	state := c.tracker.Offer(caller, p.UserToSignal)
	log.Debug().
		Str("module", "signaling").
		Str("from", string(caller)).
		Str("to", string(p.UserToSignal)).
		Str("stage", string(ClassifySignal(p.Signal))).
		Str("state", state.String()).
		Msg("sending signal")
	return c.relay.SendTo(p.UserToSignal, f)
}

// Return forwards the answer (or candidate) from the answering peer back to the offerer.
func (c *Coordinator) Return(from domain.ConnID, p core.ReturningSignalPayload) core.PublishResult {
	f, err := core.Encode(core.EventReceivingReturnedSignal, core.ReturnedSignalPayload{
		Signal: p.Signal,
		ID:     from,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "signaling").Msg("encode returning-signal")
		return core.PublishResult{}
	}
	state := c.tracker.Answer(p.CallerID, from)
	log.Debug().
		Str("module", "signaling").
		Str("from", string(from)).
		Str("to", string(p.CallerID)).
		Str("stage", string(ClassifySignal(p.Signal))).
		Str("state", state.String()).
		Msg("returning signal")
	return c.relay.SendTo(p.CallerID, f)
}

func (c *Coordinator) PeerLeft(id domain.ConnID, room domain.RoomID) {
	if n := c.tracker.ForgetRoom(id, room); n > 0 {
		log.Debug().Str("module", "signaling").Str("conn", string(id)).Str("room", string(room)).Int("handshakes", n).Msg("peer left voice")
	}
}

func (c *Coordinator) Disconnected(id domain.ConnID) {
	c.tracker.Forget(id)
}

// Sweep expires stale handshakes. Peers are not notified.
func (c *Coordinator) Sweep() int {
	expired := c.tracker.Sweep()
	for _, e := range expired {
		if e.State == AnswerReceived {
			continue
		}
		log.Info().
			Str("module", "signaling").
			Str("room", string(e.Room)).
			Str("offerer", string(e.Pair.Offerer)).
			Str("answerer", string(e.Pair.Answerer)).
			Str("state", e.State.String()).
			Msg("handshake expired")
	}
	return len(expired)
}

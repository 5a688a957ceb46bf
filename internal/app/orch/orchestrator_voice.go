package orch

import (
	"github.com/dkeye/CodeRoom/internal/core"
	"github.com/dkeye/CodeRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

// JoinVoiceRoom adds id to the voice room and announces it to the peers already there.
func (o *Orchestrator) JoinVoiceRoom(id domain.ConnID, room domain.RoomID, name string) {
	if !o.Registry.Has(id) {
		return
	}
	o.Registry.UpdateUsername(id, name)
	if name == "" {
		name = o.Registry.Username(id)
	}
	peers := o.Voice.Join(id, room)
	o.Registry.AddVoiceRoom(id, room)
	o.Signals.PeerJoined(room, id, name, peers)
}

// LeaveVoiceRoom removes id from the voice room. Peers are not told.
func (o *Orchestrator) LeaveVoiceRoom(id domain.ConnID, room domain.RoomID) {
	if !o.Voice.Leave(id, room) {
		return
	}
	o.Registry.RemoveVoiceRoom(id, room)
	o.Signals.PeerLeft(id, room)
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(room)).Msg("left voice room")
}

func (o *Orchestrator) SendSignal(id domain.ConnID, p core.SendingSignalPayload) {
	o.Signals.Signal(id, p, o.Registry.Username(id))
}

func (o *Orchestrator) ReturnSignal(id domain.ConnID, p core.ReturningSignalPayload) {
	o.Signals.Return(id, p)
}

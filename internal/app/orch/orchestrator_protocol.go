package orch

import (
	"encoding/json"

	"github.com/dkeye/CodeRoom/internal/core"
	"github.com/dkeye/CodeRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

// Dispatch decodes one inbound envelope and applies it. Malformed payloads and
// unknown types are dropped.
func (o *Orchestrator) Dispatch(id domain.ConnID, env core.Envelope) {
	if !o.Registry.Has(id) {
		log.Warn().Str("module", "orch").Str("conn", string(id)).Str("type", string(env.Type)).Msg("event from unknown connection")
		return
	}

	switch env.Type {
	case core.EventJoinRoom:
		var room domain.RoomID
		if decode(id, env, &room) && room != "" {
			o.JoinRoom(id, room)
		}
	case core.EventLeaveRoom:
		o.LeaveRoom(id)
	case core.EventAddMember:
		var p core.MembersPayload
		if decode(id, env, &p) && p.Room != "" && p.Username != "" {
			o.AddMember(id, p.Room, p.Username)
		}
	case core.EventRemoveMember:
		var p core.MembersPayload
		if decode(id, env, &p) && p.Room != "" && p.Username != "" {
			o.RemoveMember(id, p.Room, p.Username)
		}
	case core.EventMessage:
		var p core.CodePayload
		if decode(id, env, &p) && p.RoomName != "" {
			o.RelayCode(id, p)
		}
	case core.EventProblemUpdate:
		var p core.ProblemPayload
		if decode(id, env, &p) && p.Room != "" && p.ProblemInfo != nil {
			o.RelayProblem(id, p.Room, *p.ProblemInfo)
		}
	case core.EventJoinVoiceRoom:
		var p core.VoiceRoomPayload
		if decode(id, env, &p) && p.RoomID != "" {
			o.JoinVoiceRoom(id, p.RoomID, p.Username)
		}
	case core.EventLeaveVoiceRoom:
		var p core.VoiceRoomPayload
		if decode(id, env, &p) && p.RoomID != "" {
			o.LeaveVoiceRoom(id, p.RoomID)
		}
	case core.EventSendingSignal:
		var p core.SendingSignalPayload
		if decode(id, env, &p) && p.UserToSignal != "" {
			o.SendSignal(id, p)
		}
	case core.EventReturningSignal:
		var p core.ReturningSignalPayload
		if decode(id, env, &p) && p.CallerID != "" {
			o.ReturnSignal(id, p)
		}
	case core.EventPing:
		o.send(id, core.EventPong, nil)
	default:
		log.Warn().Str("module", "orch").Str("conn", string(id)).Str("type", string(env.Type)).Msg("unknown event")
	}
}

func decode(id domain.ConnID, env core.Envelope, dst any) bool {
	if len(env.Payload) == 0 {
		log.Debug().Str("module", "orch").Str("conn", string(id)).Str("type", string(env.Type)).Msg("missing payload")
		return false
	}
	if err := json.Unmarshal(env.Payload, dst); err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("conn", string(id)).Str("type", string(env.Type)).Msg("bad payload")
		return false
	}
	return true
}

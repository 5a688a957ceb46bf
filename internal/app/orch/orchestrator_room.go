package orch

import (
	"maps"
	"slices"

	"github.com/dkeye/CodeRoom/internal/core"
	"github.com/dkeye/CodeRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

// JoinRoom subscribes id to room, leaving its previous room first.
func (o *Orchestrator) JoinRoom(id domain.ConnID, room domain.RoomID) {
	prev, ok := o.Registry.UpdateRoom(id, room)
	if !ok {
		return
	}
	if prev != "" && prev != room {
		o.Rooms.LeaveRoom(id, prev)
		log.Info().Str("module", "orch").Str("conn", string(id)).Str("from_room", string(prev)).Msg("left previous room")
	}
	o.Rooms.JoinRoom(id, room)
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(room)).Msg("joined room")
}

// LeaveRoom drops the subscription only. The member name stays until remove-member.
func (o *Orchestrator) LeaveRoom(id domain.ConnID) {
	room, ok := o.Registry.RoomOf(id)
	if !ok {
		return
	}
	o.Rooms.LeaveRoom(id, room)
	o.Registry.UpdateRoom(id, "")
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(room)).Msg("left room")
}

func (o *Orchestrator) AddMember(id domain.ConnID, room domain.RoomID, name string) {
	members := o.Rooms.AddMember(room, name)
	o.Registry.MarkVisible(id, room, name)
	o.Registry.UpdateUsername(id, name)
	o.broadcastMembers(room, members)
	o.Activity.Record(domain.Activity{
		Username:  name,
		Room:      room,
		Kind:      domain.ActivityJoin,
		CreatedAt: o.now(),
	})
}

func (o *Orchestrator) RemoveMember(id domain.ConnID, room domain.RoomID, name string) {
	o.Registry.ClearVisible(id, room, name)
	o.removeMember(room, name)
}

func (o *Orchestrator) removeMember(room domain.RoomID, name string) {
	members, ok := o.Rooms.RemoveMember(room, name)
	if !ok {
		return
	}
	o.broadcastMembers(room, members)
}

func (o *Orchestrator) broadcastMembers(room domain.RoomID, members []string) {
	f, err := core.Encode(core.EventMembersUpdate, members)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode members-update")
		return
	}
	res := o.Relay.BroadcastRoom(room, f)
	log.Debug().Str("module", "orch").Str("room", string(room)).Int("members", len(members)).Int("sent_to", res.SendTo).Msg("members update")
}

// RelayCode forwards a code change to everyone in the room except the sender.
func (o *Orchestrator) RelayCode(id domain.ConnID, p core.CodePayload) {
	f, err := core.Encode(core.EventMessage, p)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode message")
		return
	}
	o.Relay.BroadcastFrom(id, p.RoomName, f)
}

// RelayProblem forwards the problem snapshot to everyone in the room except the sender.
func (o *Orchestrator) RelayProblem(id domain.ConnID, room domain.RoomID, info domain.ProblemInfo) {
	f, err := core.Encode(core.EventProblemUpdate, info)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode problem-update")
		return
	}
	o.Relay.BroadcastFrom(id, room, f)
}

func sortedRooms(m map[domain.RoomID]string) []domain.RoomID {
	return slices.Sorted(maps.Keys(m))
}

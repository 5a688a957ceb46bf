package core

import (
	"encoding/json"

	"github.com/dkeye/CodeRoom/internal/domain"
)

// EventType is the logical event name carried in every envelope.
type EventType string

// client -> server
const (
	EventJoinRoom        EventType = "join-room"
	EventLeaveRoom       EventType = "leave-room"
	EventAddMember       EventType = "add-member"
	EventRemoveMember    EventType = "remove-member"
	EventMessage         EventType = "message"
	EventProblemUpdate   EventType = "problem-update"
	EventJoinVoiceRoom   EventType = "join-voice-room"
	EventSendingSignal   EventType = "sending-signal"
	EventReturningSignal EventType = "returning-signal"
	EventLeaveVoiceRoom  EventType = "leave-voice-room"
	EventPing            EventType = "ping"
)

// server -> client
const (
	EventMembersUpdate           EventType = "members-update"
	EventUserJoinedVoice         EventType = "user-joined-voice"
	EventReceivingReturnedSignal EventType = "receiving-returned-signal"
	EventPong                    EventType = "pong"
)

// Envelope is the shape of every frame on the socket.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type MembersPayload struct {
	Room     domain.RoomID `json:"room"`
	Username string        `json:"username"`
}

type CodePayload struct {
	RoomName    domain.RoomID `json:"roomname"`
	WrittenCode string        `json:"writtencode"`
}

type ProblemPayload struct {
	Room        domain.RoomID       `json:"room"`
	ProblemInfo *domain.ProblemInfo `json:"problemInfo"`
}

type VoiceRoomPayload struct {
	RoomID   domain.RoomID `json:"roomId"`
	Username string        `json:"username"`
}

type SendingSignalPayload struct {
	UserToSignal domain.ConnID   `json:"userToSignal"`
	CallerID     domain.ConnID   `json:"callerID"`
	Signal       json.RawMessage `json:"signal"`
}

type ReturningSignalPayload struct {
	Signal   json.RawMessage `json:"signal"`
	CallerID domain.ConnID   `json:"callerID"`
}

// UserJoinedVoicePayload carries a null signal when it only announces a new peer.
type UserJoinedVoicePayload struct {
	Signal         json.RawMessage `json:"signal"`
	CallerID       domain.ConnID   `json:"callerID"`
	CallerUsername string          `json:"callerUsername"`
}

type ReturnedSignalPayload struct {
	Signal json.RawMessage `json:"signal"`
	ID     domain.ConnID   `json:"id"`
}

// Encode builds a wire frame for one outbound event.
func Encode(t EventType, payload any) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: t, Payload: raw})
}

// NullSignal is the JSON literal sent when no signaling payload exists yet.
var NullSignal = json.RawMessage("null")

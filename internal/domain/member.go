package domain

import "time"

// Member is the read-only view of a live connection.
// No transport or lifecycle logic here.
type Member struct {
	ID          ConnID    `json:"id"`
	Username    string    `json:"username"`
	Room        RoomID    `json:"room,omitempty"`
	VoiceRooms  []RoomID  `json:"voice_rooms,omitempty"`
	ConnectedAt time.Time `json:"connected_at"`
}

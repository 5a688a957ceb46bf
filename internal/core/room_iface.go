package core

import (
	"github.com/dkeye/CodeRoom/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []domain.ConnID
}

func (r *PublishResult) Merge(o PublishResult) {
	r.SendTo += o.SendTo
	r.Dropped = append(r.Dropped, o.Dropped...)
}

// RoomInfo is a read-only view of one code room for APIs.
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	Members     []string      `json:"members"`
	Subscribers int           `json:"subscribers"`
}

// VoiceRoomInfo is a read-only view of one voice room for APIs.
type VoiceRoomInfo struct {
	ID    domain.RoomID   `json:"id"`
	Peers []domain.ConnID `json:"peers"`
}

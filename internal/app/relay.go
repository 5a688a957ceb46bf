package app

import (
	"errors"

	"github.com/dkeye/CodeRoom/internal/core"
	"github.com/dkeye/CodeRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

// Relay delivers frames to live connections. Delivery is fire-and-forget:
// absent targets are skipped and full queues are reported, never retried.
type Relay struct {
	Registry *Registry
	Rooms    *RoomTable
	Policy   Policy
}

func NewRelay(reg *Registry, rooms *RoomTable, policy Policy) *Relay {
	if policy == nil {
		policy = DropPolicy{}
	}
	return &Relay{Registry: reg, Rooms: rooms, Policy: policy}
}

// SendTo delivers to exactly one connection.
func (r *Relay) SendTo(to domain.ConnID, f core.Frame) core.PublishResult {
	res := core.PublishResult{}
	r.deliver(to, f, &res)
	r.applyPolicy(res)
	return res
}

// SendEach delivers to every listed connection.
func (r *Relay) SendEach(ids []domain.ConnID, f core.Frame) core.PublishResult {
	res := core.PublishResult{}
	for _, id := range ids {
		r.deliver(id, f, &res)
	}
	r.applyPolicy(res)
	return res
}

// BroadcastRoom delivers to every connection joined to room.
func (r *Relay) BroadcastRoom(room domain.RoomID, f core.Frame) core.PublishResult {
	return r.SendEach(r.Rooms.Subscribers(room), f)
}

// BroadcastFrom delivers to every connection joined to room except from.
func (r *Relay) BroadcastFrom(from domain.ConnID, room domain.RoomID, f core.Frame) core.PublishResult {
	subs := r.Rooms.Subscribers(room)
	targets := make([]domain.ConnID, 0, len(subs))
	for _, id := range subs {
		if id != from {
			targets = append(targets, id)
		}
	}
	return r.SendEach(targets, f)
}

func (r *Relay) deliver(to domain.ConnID, f core.Frame, res *core.PublishResult) {
	sig, ok := r.Registry.Signal(to)
	if !ok || sig == nil {
		return
	}
	if err := sig.TrySend(f); err != nil {
		if errors.Is(err, core.ErrConnectionClosed) {
			return
		}
		res.Dropped = append(res.Dropped, to)
		return
	}
	res.SendTo++
}

func (r *Relay) applyPolicy(res core.PublishResult) {
	for _, slow := range res.Dropped {
		switch r.Policy.OnBackPressure(slow) {
		case KickMember:
			log.Warn().Str("module", "app.relay").Str("conn", string(slow)).Msg("backpressure, closing connection")
			if sig, ok := r.Registry.Signal(slow); ok {
				sig.Close()
			}
		case DropFrame:
			log.Warn().Str("module", "app.relay").Str("conn", string(slow)).Msg("backpressure, frame dropped")
		case NoAction:
		}
	}
	if len(res.Dropped) > 0 || res.SendTo > 0 {
		log.Debug().Str("module", "app.relay").Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("relay result")
	}
}

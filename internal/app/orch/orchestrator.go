package orch

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/CodeRoom/internal/app"
	"github.com/dkeye/CodeRoom/internal/app/signaling"
	"github.com/dkeye/CodeRoom/internal/core"
	"github.com/dkeye/CodeRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrStopped = errors.New("orchestrator stopped")

type EventKind int

const (
	KindConnect EventKind = iota
	KindDisconnect
	KindEnvelope
)

// Event is one step for the event loop. Signal and Username are set on connect,
// Envelope on inbound frames.
type Event struct {
	Kind     EventKind
	Conn     domain.ConnID
	Signal   core.SignalConnection
	Username string
	Envelope core.Envelope
}

func ConnectEvent(id domain.ConnID, sig core.SignalConnection, username string) Event {
	return Event{Kind: KindConnect, Conn: id, Signal: sig, Username: username}
}

func DisconnectEvent(id domain.ConnID) Event {
	return Event{Kind: KindDisconnect, Conn: id}
}

func EnvelopeEvent(id domain.ConnID, env core.Envelope) Event {
	return Event{Kind: KindEnvelope, Conn: id, Envelope: env}
}

// Orchestrator owns the room tables and applies every event on one goroutine.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.RoomTable
	Voice    *app.VoiceTable
	Relay    *app.Relay
	Signals  *signaling.Coordinator
	Activity core.ActivityRecorder

	// SweepInterval is how often stale handshakes are expired; zero disables it.
	SweepInterval time.Duration

	events chan Event
	done   chan struct{}
	now    func() time.Time
}

func New(
	reg *app.Registry,
	rooms *app.RoomTable,
	voice *app.VoiceTable,
	relay *app.Relay,
	signals *signaling.Coordinator,
	queue int,
) *Orchestrator {
	if queue <= 0 {
		queue = 1
	}
	return &Orchestrator{
		Registry: reg,
		Rooms:    rooms,
		Voice:    voice,
		Relay:    relay,
		Signals:  signals,
		Activity: core.NopRecorder{},
		events:   make(chan Event, queue),
		done:     make(chan struct{}),
		now:      time.Now,
	}
}

// Run applies queued events in order until ctx is done.
func (o *Orchestrator) Run(ctx context.Context) {
	defer close(o.done)

	var sweep <-chan time.Time
	if o.SweepInterval > 0 {
		t := time.NewTicker(o.SweepInterval)
		defer t.Stop()
		sweep = t.C
	}

	log.Info().Str("module", "orch").Msg("event loop started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "orch").Msg("event loop stopped")
			return
		case ev := <-o.events:
			o.Handle(ev)
		case <-sweep:
			o.Signals.Sweep()
		}
	}
}

// Submit queues ev. It blocks while the queue is full.
func (o *Orchestrator) Submit(ctx context.Context, ev Event) error {
	select {
	case <-o.done:
		return ErrStopped
	default:
	}
	select {
	case o.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-o.done:
		return ErrStopped
	}
}

// Done is closed once Run has returned.
func (o *Orchestrator) Done() <-chan struct{} { return o.done }

// Handle applies a single event synchronously.
func (o *Orchestrator) Handle(ev Event) {
	switch ev.Kind {
	case KindConnect:
		o.Connect(ev.Conn, ev.Signal, ev.Username)
	case KindDisconnect:
		o.Disconnect(ev.Conn)
	case KindEnvelope:
		o.Dispatch(ev.Conn, ev.Envelope)
	}
}

func (o *Orchestrator) Connect(id domain.ConnID, sig core.SignalConnection, username string) {
	o.Registry.Connect(id, sig, username)
}

// Disconnect tears down every association of id and rebroadcasts membership.
func (o *Orchestrator) Disconnect(id domain.ConnID) {
	conn, ok := o.Registry.Disconnect(id)
	if !ok {
		return
	}
	if conn.Room != "" {
		o.Rooms.LeaveRoom(id, conn.Room)
	}
	for _, room := range sortedRooms(conn.Visible) {
		name := conn.Visible[room]
		if o.Registry.NameHeldElsewhere(room, name, id) {
			continue
		}
		o.removeMember(room, name)
	}
	for _, room := range conn.VoiceRooms {
		o.Voice.Leave(id, room)
	}
	o.Signals.Disconnected(id)
	log.Info().
		Str("module", "orch").
		Str("conn", string(id)).
		Str("room", string(conn.Room)).
		Int("voice_rooms", len(conn.VoiceRooms)).
		Msg("connection cleaned up")
}

func (o *Orchestrator) send(id domain.ConnID, t core.EventType, payload any) {
	f, err := core.Encode(t, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("type", string(t)).Msg("encode")
		return
	}
	o.Relay.SendTo(id, f)
}

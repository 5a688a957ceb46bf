package activity

import (
	"context"

	"github.com/dkeye/CodeRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

type store interface {
	Create(a domain.Activity) error
}

// Recorder writes activity off the event loop. Record never blocks; when the
// buffer is full the record is dropped.
type Recorder struct {
	repo store
	ch   chan domain.Activity
}

func NewRecorder(repo store, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}
	return &Recorder{repo: repo, ch: make(chan domain.Activity, buffer)}
}

func (r *Recorder) Record(a domain.Activity) {
	select {
	case r.ch <- a:
	default:
		log.Warn().Str("module", "activity").Str("username", a.Username).Str("room", string(a.Room)).Msg("activity buffer full, record dropped")
	}
}

// Run persists records until ctx ends, then flushes whatever is still buffered.
func (r *Recorder) Run(ctx context.Context) {
	log.Info().Str("module", "activity").Msg("recorder started")
	for {
		select {
		case <-ctx.Done():
			r.flush()
			log.Info().Str("module", "activity").Msg("recorder stopped")
			return
		case a := <-r.ch:
			r.write(a)
		}
	}
}

func (r *Recorder) flush() {
	for {
		select {
		case a := <-r.ch:
			r.write(a)
		default:
			return
		}
	}
}

func (r *Recorder) write(a domain.Activity) {
	if err := r.repo.Create(a); err != nil {
		log.Error().Err(err).Str("module", "activity").Str("username", a.Username).Msg("persist activity")
	}
}

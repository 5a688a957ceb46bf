package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dkeye/CodeRoom/internal/app/orch"
	"github.com/dkeye/CodeRoom/internal/core"
	"github.com/dkeye/CodeRoom/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, id domain.ConnID, c *wsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("conn", string(id)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(ctl.opts.WriteWait))
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("writePump ping error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, id domain.ConnID, c *wsSignalConn) {
	defer func() {
		cancel()
		// The server context may already be gone; the disconnect still has to reach the loop.
		if err := ctl.Orch.Submit(context.Background(), orch.DisconnectEvent(id)); err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("disconnect not delivered")
		}
		c.Close()
		if ctl.Limiter != nil {
			ctl.Limiter.Forget(id)
		}
		log.Info().Str("module", "signal").Str("conn", string(id)).Msg("readPump closing")
	}()

	c.conn.SetReadLimit(ctl.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("readPump read error")
			}
			return
		}
		if err := ctl.handleFrame(ctx, id, data); err != nil {
			if errors.Is(err, orch.ErrStopped) || errors.Is(err, context.Canceled) {
				return
			}
			log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("frame dropped")
		}
	}
}

var errMissingType = errors.New("missing event type")

func (ctl *SignalWSController) handleFrame(ctx context.Context, id domain.ConnID, data []byte) error {
	if ctl.Limiter != nil && !ctl.Limiter.Allow(id) {
		return ErrRateLimited
	}
	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if env.Type == "" {
		return errMissingType
	}
	return ctl.Orch.Submit(ctx, orch.EnvelopeEvent(id, env))
}

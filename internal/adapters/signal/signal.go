package signal

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/dkeye/CodeRoom/internal/app/orch"
	"github.com/dkeye/CodeRoom/internal/core"
	"github.com/dkeye/CodeRoom/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Options struct {
	ReadLimit      int64
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	SendBuffer     int
	AllowedOrigins []string
}

func DefaultOptions() Options {
	return Options{
		ReadLimit:  1 << 20,
		PingPeriod: 25 * time.Second,
		PongWait:   60 * time.Second,
		WriteWait:  5 * time.Second,
		SendBuffer: 64,
	}
}

type SignalWSController struct {
	Orch    *orch.Orchestrator
	Limiter *RateLimiter

	opts     Options
	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, limiter *RateLimiter, opts Options) *SignalWSController {
	def := DefaultOptions()
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = def.ReadLimit
	}
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = def.PingPeriod
	}
	if opts.PongWait <= 0 {
		opts.PongWait = def.PongWait
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = def.WriteWait
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = def.SendBuffer
	}
	ctl := &SignalWSController{
		Orch:    o,
		Limiter: limiter,
		opts:    opts,
	}
	ctl.upgrader = websocket.Upgrader{CheckOrigin: ctl.checkOrigin}
	return ctl
}

// checkOrigin accepts everything when no origins are configured.
// Requests without an Origin header come from non-browser clients and pass.
func (ctl *SignalWSController) checkOrigin(r *http.Request) bool {
	if len(ctl.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.Contains(ctl.opts.AllowedOrigins, "*") || slices.Contains(ctl.opts.AllowedOrigins, origin)
}

type wsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWSSignalConn(ws *websocket.Conn, buffer int) *wsSignalConn {
	return &wsSignalConn{
		conn: ws,
		send: make(chan core.Frame, buffer),
	}
}

func (c *wsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *wsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	id := domain.ConnID(uuid.NewString())
	username := c.GetString("username")

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	conn := newWSSignalConn(ws, ctl.opts.SendBuffer)

	if err := ctl.Orch.Submit(ctx, orch.ConnectEvent(id, conn, username)); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("connect rejected")
		conn.Close()
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("username", username).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, id, conn)
	go ctl.readPump(ctx, cancel, id, conn)
}

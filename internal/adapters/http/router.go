package http

import (
	"context"

	"github.com/dkeye/CodeRoom/internal/adapters/signal"
	"github.com/dkeye/CodeRoom/internal/config"
	transport "github.com/dkeye/CodeRoom/internal/transport/http"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// IdentityMiddleware exposes the session display name as "username" on the context.
// The socket layer seeds the connection's name from it; an unnamed session is fine.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if name, ok := sessions.Default(c).Get(transport.SessionUsernameKey).(string); ok {
			c.Set("username", name)
		}
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, h *transport.Handlers, ws *signal.SignalWSController) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions("CodeRoomSessions", store))
	r.Use(ClientTokenMiddleware())
	r.Use(IdentityMiddleware())

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}

	h.Register(r)

	r.GET("/api/ws", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Msg("ws endpoint hit")
		ws.HandleSignal(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")
	return r
}

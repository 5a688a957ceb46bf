package http

import (
	"net/http"
	"time"

	"github.com/dkeye/CodeRoom/internal/core"
	"github.com/dkeye/CodeRoom/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// SessionUsernameKey is where the display name lives in the cookie session.
const SessionUsernameKey = "username"

type RoomReader interface {
	List() []core.RoomInfo
	Members(room domain.RoomID) []string
	Exists(room domain.RoomID) bool
}

type VoiceReader interface {
	List() []core.VoiceRoomInfo
}

type ConnCounter interface {
	Count() int
}

type ActivityHistory interface {
	CountByDay(username string, since time.Time) ([]domain.DayCount, error)
}

type Handlers struct {
	Rooms   RoomReader
	Voice   VoiceReader
	Conns   ConnCounter
	History ActivityHistory // nil when activity history is disabled
	ICE     webrtc.Configuration
	Port    int

	now func() time.Time
}

func NewHandlers(rooms RoomReader, voice VoiceReader, conns ConnCounter, history ActivityHistory, ice webrtc.Configuration, port int) *Handlers {
	return &Handlers{
		Rooms:   rooms,
		Voice:   voice,
		Conns:   conns,
		History: history,
		ICE:     ice,
		Port:    port,
		now:     time.Now,
	}
}

func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/rooms", h.ListRooms)
	api.GET("/rooms/:id/members", h.RoomMembers)
	api.GET("/voice-rooms", h.ListVoiceRooms)
	api.GET("/ice", h.ICEServers)
	api.GET("/session", h.GetSession)
	api.POST("/session", h.SetSession)
	api.GET("/activity/:username", h.Activity)
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "OK",
		"message":     "CodeRoom backend is running",
		"timestamp":   h.now().UTC().Format(time.RFC3339),
		"port":        h.Port,
		"connections": h.Conns.Count(),
	})
}

func (h *Handlers) ListRooms(c *gin.Context) {
	rooms := h.Rooms.List()
	if rooms == nil {
		rooms = []core.RoomInfo{}
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *Handlers) RoomMembers(c *gin.Context) {
	room := domain.RoomID(c.Param("id"))
	if !h.Rooms.Exists(room) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	members := h.Rooms.Members(room)
	if members == nil {
		members = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"room": room, "members": members})
}

func (h *Handlers) ListVoiceRooms(c *gin.Context) {
	rooms := h.Voice.List()
	if rooms == nil {
		rooms = []core.VoiceRoomInfo{}
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *Handlers) ICEServers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"iceServers": h.ICE.ICEServers})
}

type SessionRequest struct {
	Username string `json:"username"`
}

type SessionResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
}

func (h *Handlers) GetSession(c *gin.Context) {
	name, _ := sessions.Default(c).Get(SessionUsernameKey).(string)
	if name == "" {
		c.JSON(http.StatusUnauthorized, SessionResponse{Success: false})
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Success: true, Username: name})
}

func (h *Handlers) SetSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid username"})
		return
	}
	user, err := domain.NewUser(req.Username)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s := sessions.Default(c)
	s.Set(SessionUsernameKey, user.Username)
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "transport.http").Msg("save session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save session"})
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Success: true, Username: user.Username})
}

// Activity reports per-day counts for the last year.
func (h *Handlers) Activity(c *gin.Context) {
	if h.History == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "activity history disabled"})
		return
	}
	username := c.Param("username")
	since := h.now().AddDate(-1, 0, 0)
	days, err := h.History.CountByDay(username, since)
	if err != nil {
		log.Error().Err(err).Str("module", "transport.http").Str("username", username).Msg("fetch activity")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch activity data"})
		return
	}
	if days == nil {
		days = []domain.DayCount{}
	}
	c.JSON(http.StatusOK, days)
}

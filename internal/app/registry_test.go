package app

import (
	"testing"
	"time"

	"github.com/dkeye/CodeRoom/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryConnectDisconnect(t *testing.T) {
	reg := NewRegistry()
	c := &fakeConn{}

	reg.Connect("c1", c, "alice")
	assert.True(t, reg.Has("c1"))
	assert.Equal(t, 1, reg.Count())
	assert.Equal(t, "alice", reg.Username("c1"))

	sig, ok := reg.Signal("c1")
	require.True(t, ok)
	assert.Same(t, c, sig)

	reg.UpdateRoom("c1", "r1")
	reg.MarkVisible("c1", "r1", "alice")
	reg.AddVoiceRoom("c1", "v2")
	reg.AddVoiceRoom("c1", "v1")

	conn, ok := reg.Disconnect("c1")
	require.True(t, ok)
	assert.Equal(t, domain.RoomID("r1"), conn.Room)
	assert.Equal(t, map[domain.RoomID]string{"r1": "alice"}, conn.Visible)
	assert.Equal(t, []domain.RoomID{"v1", "v2"}, conn.VoiceRooms)
	assert.False(t, reg.Has("c1"))
	assert.Zero(t, reg.Count())

	_, ok = reg.Disconnect("c1")
	assert.False(t, ok)
}

func TestRegistryUpdateRoomReturnsPrevious(t *testing.T) {
	reg := NewRegistry()
	reg.Connect("c1", &fakeConn{}, "")

	prev, ok := reg.UpdateRoom("c1", "r1")
	require.True(t, ok)
	assert.Empty(t, prev)

	prev, _ = reg.UpdateRoom("c1", "r2")
	assert.Equal(t, domain.RoomID("r2"), mustRoom(t, reg, "c1"))
	assert.Equal(t, domain.RoomID("r1"), prev)

	_, ok = reg.UpdateRoom("missing", "r1")
	assert.False(t, ok)
}

func mustRoom(t *testing.T, reg *Registry, id domain.ConnID) domain.RoomID {
	t.Helper()
	room, ok := reg.RoomOf(id)
	require.True(t, ok)
	return room
}

func TestRegistryUsernameIgnoresEmpty(t *testing.T) {
	reg := NewRegistry()
	reg.Connect("c1", &fakeConn{}, "alice")

	reg.UpdateUsername("c1", "")
	assert.Equal(t, "alice", reg.Username("c1"))

	reg.UpdateUsername("c1", "bob")
	assert.Equal(t, "bob", reg.Username("c1"))
	assert.Empty(t, reg.Username("missing"))
}

func TestRegistryVisibleNames(t *testing.T) {
	reg := NewRegistry()
	reg.Connect("c1", &fakeConn{}, "")
	reg.Connect("c2", &fakeConn{}, "")

	reg.MarkVisible("c1", "r1", "alice")
	reg.MarkVisible("c2", "r1", "alice")
	assert.True(t, reg.NameHeldElsewhere("r1", "alice", "c1"))
	assert.False(t, reg.NameHeldElsewhere("r2", "alice", "c1"))

	// Removing a different name keeps c2's entry.
	reg.ClearVisible("c2", "r1", "bob")
	assert.True(t, reg.NameHeldElsewhere("r1", "alice", "c1"))

	reg.ClearVisible("c2", "r1", "alice")
	assert.False(t, reg.NameHeldElsewhere("r1", "alice", "c1"))
}

func TestRegistryMembersOrderedByConnectTime(t *testing.T) {
	reg := NewRegistry()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	reg.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	reg.Connect("z", &fakeConn{}, "first")
	reg.Connect("a", &fakeConn{}, "second")

	m := reg.Members()
	require.Len(t, m, 2)
	assert.Equal(t, domain.ConnID("z"), m[0].ID)
	assert.Equal(t, "first", m[0].Username)
	assert.Equal(t, domain.ConnID("a"), m[1].ID)
	assert.Nil(t, m[1].VoiceRooms)
}

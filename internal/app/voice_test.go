package app

import (
	"testing"

	"github.com/dkeye/CodeRoom/internal/core"
	"github.com/dkeye/CodeRoom/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestVoiceTableJoinReturnsOtherPeers(t *testing.T) {
	tbl := NewVoiceTable()

	assert.Empty(t, tbl.Join("a", "v1"))
	assert.Equal(t, []domain.ConnID{"a"}, tbl.Join("b", "v1"))
	assert.Equal(t, []domain.ConnID{"a", "b"}, tbl.Join("c", "v1"))

	// Re-joining reports the same peers again without duplicating the joiner.
	assert.Equal(t, []domain.ConnID{"a", "b"}, tbl.Join("c", "v1"))
	assert.Equal(t, []domain.ConnID{"a", "b", "c"}, tbl.Members("v1"))
}

func TestVoiceTableNotificationCount(t *testing.T) {
	tbl := NewVoiceTable()
	ids := []domain.ConnID{"p1", "p2", "p3", "p4", "p5"}

	total := 0
	for _, id := range ids {
		total += len(tbl.Join(id, "v1"))
	}
	// The k-th joiner is announced to k-1 peers.
	assert.Equal(t, len(ids)*(len(ids)-1)/2, total)
}

func TestVoiceTableLeave(t *testing.T) {
	tbl := NewVoiceTable()
	tbl.Join("a", "v1")
	tbl.Join("b", "v1")

	assert.True(t, tbl.Leave("a", "v1"))
	assert.False(t, tbl.Leave("a", "v1"))
	assert.True(t, tbl.Exists("v1"))

	assert.True(t, tbl.Leave("b", "v1"))
	assert.False(t, tbl.Exists("v1"))
	assert.False(t, tbl.Leave("b", "missing"))
}

func TestVoiceTableList(t *testing.T) {
	tbl := NewVoiceTable()
	tbl.Join("b", "v2")
	tbl.Join("a", "v1")
	tbl.Join("c", "v1")

	assert.Equal(t, []core.VoiceRoomInfo{
		{ID: "v1", Peers: []domain.ConnID{"a", "c"}},
		{ID: "v2", Peers: []domain.ConnID{"b"}},
	}, tbl.List())
}

package activity

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/CodeRoom/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB opens a private in-memory database for the test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(domain.Activity{Username: "alice", Room: "r1", CreatedAt: at}))

	var recs []ActivityRecord
	require.NoError(t, db.Find(&recs).Error)
	require.Len(t, recs, 1)
	assert.Equal(t, "alice", recs[0].Username)
	assert.Equal(t, "r1", recs[0].Room)
	assert.Equal(t, string(domain.ActivityJoin), recs[0].Kind)
	assert.NotEmpty(t, recs[0].ID)
}

func TestRepository_CountByDay(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 3, 23, 30, 0, 0, time.UTC)
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, a := range []domain.Activity{
		{Username: "alice", Room: "r1", CreatedAt: day1},
		{Username: "alice", Room: "r2", CreatedAt: day1.Add(time.Hour)},
		{Username: "alice", Room: "r1", CreatedAt: day2},
		{Username: "alice", Room: "r1", CreatedAt: old},
		{Username: "bob", Room: "r1", CreatedAt: day1},
	} {
		require.NoError(t, repo.Create(a))
	}

	got, err := repo.CountByDay("alice", time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []domain.DayCount{
		{Date: "2026-03-01", Count: 2},
		{Date: "2026-03-03", Count: 1},
	}, got)

	none, err := repo.CountByDay("carol", old)
	require.NoError(t, err)
	assert.Empty(t, none)
}

type fakeStore struct {
	got chan domain.Activity
}

func (f *fakeStore) Create(a domain.Activity) error {
	f.got <- a
	return nil
}

func TestRecorder_PersistsAsync(t *testing.T) {
	st := &fakeStore{got: make(chan domain.Activity, 4)}
	rec := NewRecorder(st, 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rec.Run(ctx)
		close(done)
	}()

	rec.Record(domain.Activity{Username: "alice", Room: "r1"})
	select {
	case a := <-st.got:
		assert.Equal(t, "alice", a.Username)
	case <-time.After(2 * time.Second):
		t.Fatal("activity was not persisted")
	}

	cancel()
	<-done
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	st := &fakeStore{got: make(chan domain.Activity, 8)}
	rec := NewRecorder(st, 2)

	// Nothing drains the buffer, so the third record is dropped without blocking.
	rec.Record(domain.Activity{Username: "a"})
	rec.Record(domain.Activity{Username: "b"})
	rec.Record(domain.Activity{Username: "c"})
	assert.Len(t, rec.ch, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Run(ctx)

	require.Len(t, st.got, 2)
	assert.Equal(t, "a", (<-st.got).Username)
	assert.Equal(t, "b", (<-st.got).Username)
}

package activity

import (
	"fmt"
	"slices"
	"time"

	"github.com/dkeye/CodeRoom/internal/domain"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const dayLayout = "2006-01-02"

// Open connects to the sqlite database at dsn and migrates the activity table.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open activity database: %w", err)
	}
	if err := db.AutoMigrate(&ActivityRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate activity database: %w", err)
	}
	return db, nil
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(a domain.Activity) error {
	rec := &ActivityRecord{
		ID:        uuid.NewString(),
		Username:  a.Username,
		Room:      string(a.Room),
		Kind:      string(a.Kind),
		CreatedAt: a.CreatedAt.UTC(),
	}
	if rec.Kind == "" {
		rec.Kind = string(domain.ActivityJoin)
	}
	if err := r.db.Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

func (r *Repository) FindByUser(username string, since time.Time) ([]domain.Activity, error) {
	var recs []ActivityRecord
	err := r.db.
		Where("username = ? AND created_at >= ?", username, since.UTC()).
		Order("created_at").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find activity: %w", err)
	}
	out := make([]domain.Activity, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

// CountByDay groups the user's activity since the given time by UTC calendar day.
// Days without activity are omitted; the result is ordered by date.
func (r *Repository) CountByDay(username string, since time.Time) ([]domain.DayCount, error) {
	acts, err := r.FindByUser(username, since)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64)
	for _, a := range acts {
		counts[a.CreatedAt.UTC().Format(dayLayout)]++
	}
	out := make([]domain.DayCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, domain.DayCount{Date: day, Count: n})
	}
	slices.SortFunc(out, func(a, b domain.DayCount) int {
		switch {
		case a.Date < b.Date:
			return -1
		case a.Date > b.Date:
			return 1
		}
		return 0
	})
	return out, nil
}

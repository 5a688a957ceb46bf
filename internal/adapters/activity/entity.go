package activity

import (
	"time"

	"github.com/dkeye/CodeRoom/internal/domain"
)

// ActivityRecord is one persisted room visit.
type ActivityRecord struct {
	ID        string    `gorm:"primarykey;size:36"`
	Username  string    `gorm:"size:36;not null;index:idx_activity_user_time,priority:1"`
	Room      string    `gorm:"size:255;not null"`
	Kind      string    `gorm:"size:16;not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_activity_user_time,priority:2"`
}

func (ActivityRecord) TableName() string {
	return "user_activities"
}

func (r ActivityRecord) toDomain() domain.Activity {
	return domain.Activity{
		Username:  r.Username,
		Room:      domain.RoomID(r.Room),
		Kind:      domain.ActivityKind(r.Kind),
		CreatedAt: r.CreatedAt,
	}
}

package domain

import "time"

type ActivityKind string

const (
	ActivityJoin ActivityKind = "join"
)

// Activity is one entry of a user's collaboration history.
type Activity struct {
	Username  string
	Room      RoomID
	Kind      ActivityKind
	CreatedAt time.Time
}

// DayCount is the number of activities recorded on one calendar day.
type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

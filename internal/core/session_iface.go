package core

import "github.com/dkeye/CodeRoom/internal/domain"

// ActivityRecorder accepts history records without blocking the caller.
// Implementations own their I/O; a full or closed recorder drops the record.
type ActivityRecorder interface {
	Record(a domain.Activity)
}

// NopRecorder is used when activity history is disabled.
type NopRecorder struct{}

func (NopRecorder) Record(domain.Activity) {}

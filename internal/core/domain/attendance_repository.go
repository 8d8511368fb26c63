package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAttendanceNotFound = errors.New("attendance day not found")
	ErrAttendanceConflict = errors.New("attendance day version conflict")
)

type AttendanceRepository interface {
	// Upsert writes the day keyed by (user, date), replacing any previous record.
	// A soft-deleted record for the same date is revived.
	Upsert(ctx context.Context, day *AttendanceDay) error

	// UpdateIfVersion overwrites an active day only while its stored version
	// still equals expected, bumping it by one. A moved version returns
	// ErrAttendanceConflict; a missing day returns ErrAttendanceNotFound.
	UpdateIfVersion(ctx context.Context, day *AttendanceDay, expected int) error

	// GetByDate retrieves a single active day.
	GetByDate(ctx context.Context, userID, date string) (*AttendanceDay, error)

	// ListByUserID retrieves every active day of the user, oldest first.
	ListByUserID(ctx context.Context, userID string) ([]AttendanceDay, error)

	// ListInRange retrieves active days with start <= date <= end.
	ListInRange(ctx context.Context, userID, start, end string) ([]AttendanceDay, error)

	// Delete performs a soft delete so that syncing clients learn about it.
	Delete(ctx context.Context, userID, date string) error

	// GetChanges [SYNC] returns creations, updates and soft-deletes after since.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]AttendanceDay, error)
}

const (
	EventAttendanceUpdated = "attendance.updated"
	EventProfileUpdated    = "profile.updated"
	EventHabitsUpdated     = "habits.updated"
	EventTasksUpdated      = "tasks.updated"
	EventExamsUpdated      = "exams.updated"
)

// ChangeEvent tells subscribers that a user's data changed and derived views
// (analytics, forecasts) should be recomputed.
type ChangeEvent struct {
	UserID string    `json:"-"`
	Kind   string    `json:"kind"`
	Date   string    `json:"date,omitempty"`
	At     time.Time `json:"at"`
}

type ChangePublisher interface {
	Publish(event ChangeEvent)
}

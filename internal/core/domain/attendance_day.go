package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidStatus = errors.New("invalid attendance status (must be PRESENT, ABSENT, LEAVE or NONE)")
	ErrInvalidDate   = errors.New("invalid date (expected YYYY-MM-DD)")
	ErrFutureDate    = errors.New("attendance cannot be recorded for a future date")
	ErrUserRequired  = errors.New("user_id is required")
)

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "PRESENT"
	StatusAbsent  AttendanceStatus = "ABSENT"
	StatusLeave   AttendanceStatus = "LEAVE"
	StatusNone    AttendanceStatus = "NONE"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLeave, StatusNone:
		return true
	}
	return false
}

// AttendanceDay is the single record a student keeps per calendar date.
// Writes overwrite; no edit history is kept.
type AttendanceDay struct {
	UserID          string           `json:"-" db:"user_id"`
	Date            string           `json:"date" db:"date" validate:"required,len=10"`
	TotalClasses    int              `json:"total_classes" db:"total_classes" validate:"gte=0"`
	AttendedClasses int              `json:"attended_classes" db:"attended_classes" validate:"gte=0,ltefield=TotalClasses"`
	Status          AttendanceStatus `json:"status" db:"status" validate:"oneof=PRESENT ABSENT LEAVE NONE"`
	LeaveCounted    *bool            `json:"leave_counted,omitempty" db:"leave_counted"`
	Remark          string           `json:"remark,omitempty" db:"remark"`
	ProofURL        string           `json:"proof_url,omitempty" db:"proof_url"`
	ProofName       string           `json:"proof_name,omitempty" db:"proof_name"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

type AttendanceInput struct {
	Date         string
	TotalClasses int
	Status       AttendanceStatus
	LeaveCounted bool
	Remark       string
	ProofURL     string
	ProofName    string
}

// NewAttendanceDay normalises a user submission. Attended classes are derived
// from the status, which is what keeps AttendedClasses <= TotalClasses.
func NewAttendanceDay(userID string, in AttendanceInput) *AttendanceDay {
	now := time.Now().UTC()

	day := &AttendanceDay{
		UserID:       userID,
		Date:         ClampISODate(strings.TrimSpace(in.Date)),
		TotalClasses: max(0, in.TotalClasses),
		Status:       AttendanceStatus(strings.ToUpper(string(in.Status))),
		Remark:       strings.TrimSpace(in.Remark),
		ProofURL:     in.ProofURL,
		ProofName:    in.ProofName,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch day.Status {
	case StatusPresent:
		day.AttendedClasses = day.TotalClasses
	case StatusLeave:
		counted := in.LeaveCounted
		day.LeaveCounted = &counted
		if counted {
			day.AttendedClasses = day.TotalClasses
		}
	}

	return day
}

// Input reconstructs the submission that produced the day, used to merge partial updates.
func (d *AttendanceDay) Input() AttendanceInput {
	return AttendanceInput{
		Date:         d.Date,
		TotalClasses: d.TotalClasses,
		Status:       d.Status,
		LeaveCounted: d.IsLeaveCounted(),
		Remark:       d.Remark,
		ProofURL:     d.ProofURL,
		ProofName:    d.ProofName,
	}
}

func (d *AttendanceDay) IsLeaveCounted() bool {
	return d.Status == StatusLeave && d.LeaveCounted != nil && *d.LeaveCounted
}

func (d *AttendanceDay) HasReport() bool {
	return strings.TrimSpace(d.Remark) != "" || d.ProofURL != ""
}

// Validate checks a normalised day against the student's current date.
func (d *AttendanceDay) Validate(today string) error {
	if strings.TrimSpace(d.UserID) == "" {
		return ErrUserRequired
	}
	if _, ok := ParseISODateUTC(d.Date); !ok || len(d.Date) != 10 {
		return ErrInvalidDate
	}
	if today != "" && d.Date > today {
		return ErrFutureDate
	}
	if !d.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

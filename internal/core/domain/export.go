package domain

import (
	"errors"
	"time"
)

var ErrInvalidImport = errors.New("invalid import bundle")

const ExportFormatVersion = 1

// ExportBundle is the full backup of one student's data.
type ExportBundle struct {
	Version        int             `json:"version" validate:"gte=1"`
	ExportedAt     time.Time       `json:"exported_at"`
	Profile        *Profile        `json:"profile,omitempty"`
	Semester       *SemesterWindow `json:"semester,omitempty"`
	AttendanceDays []AttendanceDay `json:"attendance_days" validate:"dive"`
	Habits         []Habit         `json:"habits" validate:"dive"`
	HabitChecks    []HabitCheck    `json:"habit_checks" validate:"dive"`
	Tasks          []Task          `json:"tasks,omitempty" validate:"dive"`
	Exams          []Exam          `json:"exams,omitempty" validate:"dive"`
}

// AuditReport is the semester-to-date snapshot students hand to their department.
type AuditReport struct {
	GeneratedAt    time.Time           `json:"generated_at"`
	Profile        Profile             `json:"profile"`
	Semester       AuditSemester       `json:"semester"`
	ToDate         ToDateSnapshot      `json:"sem_to_date"`
	Analytics      AttendanceAnalytics `json:"analytics"`
	AttendanceDays []AttendanceDay     `json:"attendance_days"`
}

type AuditSemester struct {
	Configured bool   `json:"configured"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	ToDateEnd  string `json:"to_date_end"`
}

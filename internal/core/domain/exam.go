package domain

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrExamNotFound     = errors.New("exam not found")
	ErrExamTitleEmpty   = errors.New("exam title cannot be empty")
	ErrExamTitleTooLong = errors.New("exam title is too long (max 200 chars)")
	ErrInvalidExamKind  = errors.New("invalid kind (must be exam, assignment, holiday or other)")
)

type ExamKind string

const (
	KindExam       ExamKind = "exam"
	KindAssignment ExamKind = "assignment"
	KindHoliday    ExamKind = "holiday"
	KindOther      ExamKind = "other"
)

func (k ExamKind) Valid() bool {
	switch k {
	case KindExam, KindAssignment, KindHoliday, KindOther:
		return true
	}
	return false
}

// Exam is a dated academic milestone: an exam, a submission deadline, or a
// break the student wants counted down.
type Exam struct {
	ID          string   `json:"id" db:"id"`
	UserID      string   `json:"-" db:"user_id"`
	Title       string   `json:"title" db:"title" validate:"required,max=200"`
	Subject     string   `json:"subject" db:"subject" validate:"max=200"`
	Kind        ExamKind `json:"kind" db:"kind" validate:"omitempty,oneof=exam assignment holiday other"`
	Date        string   `json:"date" db:"date" validate:"required,len=10"`
	Description string   `json:"description" db:"description"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func NewExam(userID, title, subject string, kind ExamKind, date, description string) (*Exam, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserRequired
	}

	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return nil, ErrExamTitleEmpty
	}
	if len(trimmed) > MaxTaskTitleLen {
		return nil, ErrExamTitleTooLong
	}

	if kind == "" {
		kind = KindExam
	}
	kind = ExamKind(strings.ToLower(string(kind)))
	if !kind.Valid() {
		return nil, ErrInvalidExamKind
	}

	iso := ClampISODate(strings.TrimSpace(date))
	if _, ok := ParseISODateUTC(iso); !ok || len(iso) != 10 {
		return nil, ErrInvalidDate
	}

	return &Exam{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       trimmed,
		Subject:     strings.TrimSpace(subject),
		Kind:        kind,
		Date:        iso,
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

type Urgency string

const (
	UrgencyPast     Urgency = "past"
	UrgencyCritical Urgency = "critical"
	UrgencySoon     Urgency = "soon"
	UrgencyNear     Urgency = "near"
	UrgencyLater    Urgency = "later"
)

// UrgencyFor buckets the days left until a milestone: three days or fewer is
// critical, a week is soon, two weeks is near.
func UrgencyFor(daysLeft int) Urgency {
	switch {
	case daysLeft < 0:
		return UrgencyPast
	case daysLeft <= 3:
		return UrgencyCritical
	case daysLeft <= 7:
		return UrgencySoon
	case daysLeft <= 14:
		return UrgencyNear
	default:
		return UrgencyLater
	}
}

type ScheduledExam struct {
	Exam
	DaysLeft int     `json:"days_left"`
	Urgency  Urgency `json:"urgency"`
}

type ExamSchedule struct {
	Upcoming []ScheduledExam `json:"upcoming"`
	Past     []ScheduledExam `json:"past"`
}

// BuildExamSchedule splits exams around today. Both lists run in date order;
// an exam dated today is upcoming.
func BuildExamSchedule(exams []Exam, today string) ExamSchedule {
	sorted := make([]Exam, len(exams))
	copy(sorted, exams)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	schedule := ExamSchedule{Upcoming: []ScheduledExam{}, Past: []ScheduledExam{}}
	for _, e := range sorted {
		days, _ := DaysBetween(today, e.Date)
		item := ScheduledExam{Exam: e, DaysLeft: days, Urgency: UrgencyFor(days)}
		if days < 0 {
			schedule.Past = append(schedule.Past, item)
		} else {
			schedule.Upcoming = append(schedule.Upcoming, item)
		}
	}
	return schedule
}

package domain

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskTitleEmpty    = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong  = errors.New("task title is too long (max 200 chars)")
	ErrInvalidPriority   = errors.New("invalid priority (must be high, medium or low)")
	ErrInvalidTaskFilter = errors.New("invalid task filter (must be all, today, upcoming, overdue or completed)")
	ErrInvalidTaskSort   = errors.New("invalid task sort (must be date, created or name)")
)

const MaxTaskTitleLen = 200

type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Task is a to-do item in the student's academic queue. A task without a due
// date never becomes overdue.
type Task struct {
	ID          string       `json:"id" db:"id"`
	UserID      string       `json:"-" db:"user_id"`
	Title       string       `json:"title" db:"title" validate:"required,max=200"`
	Description string       `json:"description" db:"description"`
	Priority    TaskPriority `json:"priority" db:"priority" validate:"omitempty,oneof=high medium low"`
	DueDate     *string      `json:"due_date,omitempty" db:"due_date" validate:"omitempty,len=10"`
	Completed   bool         `json:"completed" db:"completed"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func normaliseTaskTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ErrTaskTitleEmpty
	}
	if len(trimmed) > MaxTaskTitleLen {
		return "", ErrTaskTitleTooLong
	}
	return trimmed, nil
}

func normalisePriority(p TaskPriority) (TaskPriority, error) {
	if p == "" {
		return PriorityMedium, nil
	}
	p = TaskPriority(strings.ToLower(string(p)))
	if !p.Valid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// normaliseDueDate returns nil for an empty date.
func normaliseDueDate(raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	iso := ClampISODate(raw)
	if _, ok := ParseISODateUTC(iso); !ok || len(iso) != 10 {
		return nil, ErrInvalidDate
	}
	return &iso, nil
}

func NewTask(userID, title, description string, priority TaskPriority, dueDate string) (*Task, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserRequired
	}

	trimmed, err := normaliseTaskTitle(title)
	if err != nil {
		return nil, err
	}
	p, err := normalisePriority(priority)
	if err != nil {
		return nil, err
	}
	due, err := normaliseDueDate(dueDate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       trimmed,
		Description: strings.TrimSpace(description),
		Priority:    p,
		DueDate:     due,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// TaskEdit is a partial change. Nil fields are left alone; an empty DueDate
// clears the due date.
type TaskEdit struct {
	Title       *string
	Description *string
	Priority    *TaskPriority
	DueDate     *string
	Completed   *bool
}

// Apply validates the whole edit before touching the task.
func (t *Task) Apply(e TaskEdit) error {
	title, priority, due := t.Title, t.Priority, t.DueDate

	var err error
	if e.Title != nil {
		if title, err = normaliseTaskTitle(*e.Title); err != nil {
			return err
		}
	}
	if e.Priority != nil {
		if priority, err = normalisePriority(*e.Priority); err != nil {
			return err
		}
	}
	if e.DueDate != nil {
		if due, err = normaliseDueDate(*e.DueDate); err != nil {
			return err
		}
	}

	t.Title, t.Priority, t.DueDate = title, priority, due
	if e.Description != nil {
		t.Description = strings.TrimSpace(*e.Description)
	}
	if e.Completed != nil {
		t.Completed = *e.Completed
	}
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (t *Task) Toggle() {
	t.Completed = !t.Completed
	t.UpdatedAt = time.Now().UTC()
}

// DaysLeft is the whole days from today to the due date, negative once past.
func (t *Task) DaysLeft(today string) (int, bool) {
	if t.DueDate == nil {
		return 0, false
	}
	return DaysBetween(today, *t.DueDate)
}

type TaskState string

const (
	TaskCompleted TaskState = "COMPLETED"
	TaskNoDueDate TaskState = "NO_DUE_DATE"
	TaskOverdue   TaskState = "OVERDUE"
	TaskDueToday  TaskState = "DUE_TODAY"
	TaskDueSoon   TaskState = "DUE_SOON"
	TaskScheduled TaskState = "SCHEDULED"
)

// DueSoonDays is how close a due date has to be for DUE_SOON.
const DueSoonDays = 3

func (t *Task) State(today string) TaskState {
	if t.Completed {
		return TaskCompleted
	}
	days, ok := t.DaysLeft(today)
	switch {
	case !ok:
		return TaskNoDueDate
	case days < 0:
		return TaskOverdue
	case days == 0:
		return TaskDueToday
	case days <= DueSoonDays:
		return TaskDueSoon
	default:
		return TaskScheduled
	}
}

type TaskFilter string

const (
	TaskFilterAll       TaskFilter = "all"
	TaskFilterToday     TaskFilter = "today"
	TaskFilterUpcoming  TaskFilter = "upcoming"
	TaskFilterOverdue   TaskFilter = "overdue"
	TaskFilterCompleted TaskFilter = "completed"
)

type TaskSort string

const (
	TaskSortDate    TaskSort = "date"
	TaskSortCreated TaskSort = "created"
	TaskSortName    TaskSort = "name"
)

// FilterTasks keeps the tasks matching f relative to today. Today and upcoming
// only consider tasks that have a due date.
func FilterTasks(tasks []Task, f TaskFilter, today string) ([]Task, error) {
	var keep func(t *Task) bool
	switch f {
	case "", TaskFilterAll:
		return tasks, nil
	case TaskFilterToday:
		keep = func(t *Task) bool { return t.DueDate != nil && *t.DueDate == today }
	case TaskFilterUpcoming:
		keep = func(t *Task) bool { return t.DueDate != nil && *t.DueDate > today }
	case TaskFilterOverdue:
		keep = func(t *Task) bool { return t.State(today) == TaskOverdue }
	case TaskFilterCompleted:
		keep = func(t *Task) bool { return t.Completed }
	default:
		return nil, ErrInvalidTaskFilter
	}

	out := make([]Task, 0, len(tasks))
	for i := range tasks {
		if keep(&tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	return out, nil
}

// SortTasks orders in place. By date, undated tasks go last; by created,
// newest first; by name, case-insensitive.
func SortTasks(tasks []Task, by TaskSort) error {
	var less func(a, b *Task) bool
	switch by {
	case "", TaskSortDate:
		less = func(a, b *Task) bool {
			switch {
			case a.DueDate == nil:
				return false
			case b.DueDate == nil:
				return true
			}
			return *a.DueDate < *b.DueDate
		}
	case TaskSortCreated:
		less = func(a, b *Task) bool { return a.CreatedAt.After(b.CreatedAt) }
	case TaskSortName:
		less = func(a, b *Task) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	default:
		return ErrInvalidTaskSort
	}

	sort.SliceStable(tasks, func(i, j int) bool { return less(&tasks[i], &tasks[j]) })
	return nil
}

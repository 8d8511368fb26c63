package domain

import (
	"context"
	"errors"
)

var (
	ErrHabitNotFound       = errors.New("habit not found")
	ErrHabitAlreadyChecked = errors.New("habit already checked on this date")
)

type HabitRepository interface {
	// Create persists a new habit definition in the storage.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all habits associated with a specific user.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// Update modifies the state of an existing habit.
	Update(ctx context.Context, habit *Habit) error

	// Delete permanently removes a habit and its checks.
	Delete(ctx context.Context, id string) error

	UpdateStreaks(ctx context.Context, id string, current, longest int) error

	// AddCheck stores a check-in. A second check for the same date returns ErrHabitAlreadyChecked.
	AddCheck(ctx context.Context, check *HabitCheck) error

	// ListCheckDates returns the distinct dates a habit was checked, newest first.
	ListCheckDates(ctx context.Context, habitID string) ([]string, error)

	// ListChecksByUserID is used by the export bundle.
	ListChecksByUserID(ctx context.Context, userID string) ([]HabitCheck, error)
}

type TaskRepository interface {
	Create(ctx context.Context, task *Task) error

	// GetByID returns ErrTaskNotFound for unknown ids.
	GetByID(ctx context.Context, id string) (*Task, error)

	// ListByUserID returns the user's tasks, oldest first.
	ListByUserID(ctx context.Context, userID string) ([]Task, error)

	Update(ctx context.Context, task *Task) error

	Delete(ctx context.Context, id string) error
}

type ExamRepository interface {
	Create(ctx context.Context, exam *Exam) error

	// GetByID returns ErrExamNotFound for unknown ids.
	GetByID(ctx context.Context, id string) (*Exam, error)

	// ListByUserID returns the user's exams in date order.
	ListByUserID(ctx context.Context, userID string) ([]Exam, error)

	Delete(ctx context.Context, id string) error
}

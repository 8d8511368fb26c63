package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

var (
	_ domain.TaskRepository = (*PostgresTaskRepository)(nil)
	_ domain.ExamRepository = (*PostgresExamRepository)(nil)
)

const taskColumns = `
	id, user_id, title, description, priority,
	to_char(due_date, 'YYYY-MM-DD') AS due_date, completed,
	created_at, updated_at`

type PostgresTaskRepository struct {
	db *sqlx.DB
}

func NewPostgresTaskRepository(db *sqlx.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

func (r *PostgresTaskRepository) Create(ctx context.Context, t *domain.Task) error {
	query := `
		INSERT INTO tasks (
			id, user_id, title, description, priority,
			due_date, completed, created_at, updated_at
		) VALUES (
			:id, :user_id, :title, :description, :priority,
			CAST(:due_date AS DATE), :completed, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		if sqlState(err) == codeForeignKeyViolation {
			return domain.ErrStudentNotFound
		}
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (r *PostgresTaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

func (r *PostgresTaskRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Task, error) {
	tasks := []domain.Task{}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY created_at ASC`

	if err := r.db.SelectContext(ctx, &tasks, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (r *PostgresTaskRepository) Update(ctx context.Context, t *domain.Task) error {
	t.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks SET
			title = :title,
			description = :description,
			priority = :priority,
			due_date = CAST(:due_date AS DATE),
			completed = :completed,
			updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return fmt.Errorf("update task failed: %w", err)
	}
	return requireAffected(res, domain.ErrTaskNotFound)
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task failed: %w", err)
	}
	return requireAffected(res, domain.ErrTaskNotFound)
}

const examColumns = `
	id, user_id, title, subject, kind,
	to_char(exam_date, 'YYYY-MM-DD') AS date, description, created_at`

type PostgresExamRepository struct {
	db *sqlx.DB
}

func NewPostgresExamRepository(db *sqlx.DB) *PostgresExamRepository {
	return &PostgresExamRepository{db: db}
}

func (r *PostgresExamRepository) Create(ctx context.Context, e *domain.Exam) error {
	query := `
		INSERT INTO exams (id, user_id, title, subject, kind, exam_date, description, created_at)
		VALUES (:id, :user_id, :title, :subject, :kind, CAST(:date AS DATE), :description, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, e); err != nil {
		if sqlState(err) == codeForeignKeyViolation {
			return domain.ErrStudentNotFound
		}
		return fmt.Errorf("failed to insert exam: %w", err)
	}
	return nil
}

func (r *PostgresExamRepository) GetByID(ctx context.Context, id string) (*domain.Exam, error) {
	var e domain.Exam
	query := `SELECT ` + examColumns + ` FROM exams WHERE id = $1`

	if err := r.db.GetContext(ctx, &e, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return &e, nil
}

func (r *PostgresExamRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Exam, error) {
	exams := []domain.Exam{}
	query := `SELECT ` + examColumns + ` FROM exams WHERE user_id = $1 ORDER BY exam_date ASC, created_at ASC`

	if err := r.db.SelectContext(ctx, &exams, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}
	return exams, nil
}

func (r *PostgresExamRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete exam failed: %w", err)
	}
	return requireAffected(res, domain.ErrExamNotFound)
}

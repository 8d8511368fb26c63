package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ domain.HabitRepository = (*PostgresHabitRepository)(nil)

const habitColumns = `
	id, user_id, title, color, icon,
	current_streak, longest_streak, to_char(last_checked, 'YYYY-MM-DD'),
	created_at, updated_at`

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

func (r *PostgresHabitRepository) scanRow(row scannable) (*domain.Habit, error) {
	var h domain.Habit

	err := row.Scan(
		&h.ID, &h.UserID, &h.Title, &h.Color, &h.Icon,
		&h.CurrentStreak, &h.LongestStreak, &h.LastCheckedAt,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	query := `
		INSERT INTO habits (
			id, user_id, title, color, icon,
			current_streak, longest_streak, last_checked,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, CAST($8 AS DATE),
			$9, $10
		)`

	_, err := r.db.ExecContext(ctx, query,
		h.ID, h.UserID, h.Title, h.Color, h.Icon,
		h.CurrentStreak, h.LongestStreak, h.LastCheckedAt,
		h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		if sqlState(err) == codeForeignKeyViolation {
			return domain.ErrStudentNotFound
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1`

	h, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `
		SELECT ` + habitColumns + ` FROM habits
		WHERE user_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	habits := []*domain.Habit{}
	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	h.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE habits SET
			title = $1, color = $2, icon = $3,
			current_streak = $4, longest_streak = $5, last_checked = CAST($6 AS DATE),
			updated_at = $7
		WHERE id = $8`

	res, err := r.db.ExecContext(ctx, query,
		h.Title, h.Color, h.Icon,
		h.CurrentStreak, h.LongestStreak, h.LastCheckedAt,
		h.UpdatedAt, h.ID,
	)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}
	return requireAffected(res, domain.ErrHabitNotFound)
}

// Delete removes the habit; its checks go with it through ON DELETE CASCADE.
func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}
	return requireAffected(res, domain.ErrHabitNotFound)
}

func (r *PostgresHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	query := `
		UPDATE habits SET
			current_streak = $1,
			longest_streak = $2,
			last_checked = (SELECT MAX(check_date) FROM habit_checks WHERE habit_id = $3),
			updated_at = NOW()
		WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, current, longest, id)
	if err != nil {
		return fmt.Errorf("failed to update streaks: %w", err)
	}
	return requireAffected(res, domain.ErrHabitNotFound)
}

func (r *PostgresHabitRepository) AddCheck(ctx context.Context, c *domain.HabitCheck) error {
	query := `
		INSERT INTO habit_checks (id, habit_id, user_id, check_date, created_at)
		VALUES (:id, :habit_id, :user_id, CAST(:date AS DATE), :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		switch sqlState(err) {
		case codeUniqueViolation:
			return domain.ErrHabitAlreadyChecked
		case codeForeignKeyViolation:
			return domain.ErrHabitNotFound
		}
		return fmt.Errorf("failed to insert habit check: %w", err)
	}
	return nil
}

func (r *PostgresHabitRepository) ListCheckDates(ctx context.Context, habitID string) ([]string, error) {
	dates := []string{}
	query := `
		SELECT to_char(check_date, 'YYYY-MM-DD')
		FROM habit_checks
		WHERE habit_id = $1
		ORDER BY check_date DESC`

	if err := r.db.SelectContext(ctx, &dates, query, habitID); err != nil {
		return nil, fmt.Errorf("failed to list check dates: %w", err)
	}
	return dates, nil
}

func (r *PostgresHabitRepository) ListChecksByUserID(ctx context.Context, userID string) ([]domain.HabitCheck, error) {
	checks := []domain.HabitCheck{}
	query := `
		SELECT id, habit_id, user_id, to_char(check_date, 'YYYY-MM-DD') AS date, created_at
		FROM habit_checks
		WHERE user_id = $1
		ORDER BY check_date ASC`

	if err := r.db.SelectContext(ctx, &checks, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list habit checks: %w", err)
	}
	return checks, nil
}

func requireAffected(res sql.Result, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

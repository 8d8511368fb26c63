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

var _ domain.AttendanceRepository = (*PostgresAttendanceRepository)(nil)

const attendanceColumns = `
	user_id, to_char(day_date, 'YYYY-MM-DD') AS date,
	total_classes, attended_classes, status, leave_counted,
	remark, proof_url, proof_name,
	version, created_at, updated_at, deleted_at`

type PostgresAttendanceRepository struct {
	db *sqlx.DB
}

func NewPostgresAttendanceRepository(db *sqlx.DB) *PostgresAttendanceRepository {
	return &PostgresAttendanceRepository{db: db}
}

func (r *PostgresAttendanceRepository) Upsert(ctx context.Context, day *domain.AttendanceDay) error {
	day.UpdatedAt = time.Now().UTC()
	if day.CreatedAt.IsZero() {
		day.CreatedAt = day.UpdatedAt
	}

	query := `
		INSERT INTO attendance_days (
			user_id, day_date,
			total_classes, attended_classes, status, leave_counted,
			remark, proof_url, proof_name,
			version, created_at, updated_at
		) VALUES (
			:user_id, CAST(:date AS DATE),
			:total_classes, :attended_classes, :status, :leave_counted,
			:remark, :proof_url, :proof_name,
			1, :created_at, :updated_at
		)
		ON CONFLICT (user_id, day_date) DO UPDATE SET
			total_classes = EXCLUDED.total_classes,
			attended_classes = EXCLUDED.attended_classes,
			status = EXCLUDED.status,
			leave_counted = EXCLUDED.leave_counted,
			remark = EXCLUDED.remark,
			proof_url = EXCLUDED.proof_url,
			proof_name = EXCLUDED.proof_name,
			updated_at = EXCLUDED.updated_at,
			deleted_at = NULL,
			version = attendance_days.version + 1
		RETURNING version, created_at`

	rows, err := r.db.NamedQueryContext(ctx, query, day)
	if err != nil {
		if sqlState(err) == codeForeignKeyViolation {
			return domain.ErrStudentNotFound
		}
		return fmt.Errorf("repository: upsert attendance failed: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&day.Version, &day.CreatedAt); err != nil {
			return fmt.Errorf("repository: upsert attendance scan failed: %w", err)
		}
	}
	day.DeletedAt = nil

	return rows.Err()
}

func (r *PostgresAttendanceRepository) UpdateIfVersion(ctx context.Context, day *domain.AttendanceDay, expected int) error {
	day.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE attendance_days
		SET total_classes = $3,
		    attended_classes = $4,
		    status = $5,
		    leave_counted = $6,
		    remark = $7,
		    proof_url = $8,
		    proof_name = $9,
		    updated_at = $10,
		    version = version + 1
		WHERE user_id = $1
		  AND day_date = CAST($2 AS DATE)
		  AND version = $11 -- optimistic lock
		  AND deleted_at IS NULL
		RETURNING version, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		day.UserID, day.Date,
		day.TotalClasses, day.AttendedClasses, day.Status, day.LeaveCounted,
		day.Remark, day.ProofURL, day.ProofName,
		day.UpdatedAt, expected,
	).Scan(&day.Version, &day.CreatedAt)
	if err == nil {
		day.DeletedAt = nil
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("repository: conditional attendance update failed: %w", err)
	}

	if _, getErr := r.GetByDate(ctx, day.UserID, day.Date); getErr != nil {
		return getErr
	}
	return domain.ErrAttendanceConflict
}

func (r *PostgresAttendanceRepository) GetByDate(ctx context.Context, userID, date string) (*domain.AttendanceDay, error) {
	var day domain.AttendanceDay
	query := `SELECT ` + attendanceColumns + `
		FROM attendance_days
		WHERE user_id = $1 AND day_date = CAST($2 AS DATE) AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &day, query, userID, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("repository: get attendance failed: %w", err)
	}
	return &day, nil
}

func (r *PostgresAttendanceRepository) ListByUserID(ctx context.Context, userID string) ([]domain.AttendanceDay, error) {
	days := []domain.AttendanceDay{}
	query := `SELECT ` + attendanceColumns + `
		FROM attendance_days
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY day_date ASC`

	if err := r.db.SelectContext(ctx, &days, query, userID); err != nil {
		return nil, fmt.Errorf("repository: list attendance failed: %w", err)
	}
	return days, nil
}

func (r *PostgresAttendanceRepository) ListInRange(ctx context.Context, userID, start, end string) ([]domain.AttendanceDay, error) {
	days := []domain.AttendanceDay{}
	query := `SELECT ` + attendanceColumns + `
		FROM attendance_days
		WHERE user_id = $1
		  AND day_date >= CAST($2 AS DATE)
		  AND day_date <= CAST($3 AS DATE)
		  AND deleted_at IS NULL
		ORDER BY day_date ASC`

	if err := r.db.SelectContext(ctx, &days, query, userID, start, end); err != nil {
		return nil, fmt.Errorf("repository: list attendance in range failed: %w", err)
	}
	return days, nil
}

func (r *PostgresAttendanceRepository) Delete(ctx context.Context, userID, date string) error {
	query := `
		UPDATE attendance_days
		SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
		WHERE user_id = $1 AND day_date = CAST($2 AS DATE) AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, userID, date)
	if err != nil {
		return fmt.Errorf("repository: delete attendance failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAttendanceNotFound
	}
	return nil
}

func (r *PostgresAttendanceRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]domain.AttendanceDay, error) {
	days := []domain.AttendanceDay{}
	query := `SELECT ` + attendanceColumns + `
		FROM attendance_days
		WHERE user_id = $1 AND updated_at > $2
		ORDER BY updated_at ASC`

	if err := r.db.SelectContext(ctx, &days, query, userID, since); err != nil {
		return nil, fmt.Errorf("repository: attendance changes failed: %w", err)
	}
	return days, nil
}

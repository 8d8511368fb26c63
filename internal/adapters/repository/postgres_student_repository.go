package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

var _ domain.StudentRepository = (*PostgresStudentRepository)(nil)

const studentColumns = `
	id, email, password_hash,
	name, university, department, course, class_name,
	year, semester_number, section, roll_number, avatar,
	to_char(semester_start, 'YYYY-MM-DD'), to_char(semester_end, 'YYYY-MM-DD'),
	created_at, updated_at`

type PostgresStudentRepository struct {
	db *sql.DB
}

func NewPostgresStudentRepository(db *sql.DB) *PostgresStudentRepository {
	return &PostgresStudentRepository{
		db: db,
	}
}

func (r *PostgresStudentRepository) Create(ctx context.Context, s *domain.Student) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `
		INSERT INTO students (
			id, email, password_hash,
			name, university, department, course, class_name,
			year, semester_number, section, roll_number, avatar,
			semester_start, semester_end,
			created_at, updated_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13,
			CAST($14 AS DATE), CAST($15 AS DATE),
			$16, $17
		)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Email, s.PasswordHash,
		s.Name, s.University, s.Department, s.Course, s.ClassName,
		s.Year, s.SemesterNumber, s.Section, s.RollNumber, s.Avatar,
		s.SemesterStart, s.SemesterEnd,
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if sqlState(err) == codeUniqueViolation {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("repository: create student failed: %w", err)
	}

	return nil
}

func (r *PostgresStudentRepository) GetByEmail(ctx context.Context, email string) (*domain.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `SELECT ` + studentColumns + ` FROM students WHERE email = $1`

	s, err := scanStudent(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, fmt.Errorf("repository: get student by email failed: %w", err)
	}
	return s, nil
}

func (r *PostgresStudentRepository) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	s, err := scanStudent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, fmt.Errorf("repository: get student by id failed: %w", err)
	}
	return s, nil
}

func (r *PostgresStudentRepository) Update(ctx context.Context, s *domain.Student) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `
		UPDATE students SET
			name = $1, university = $2, department = $3, course = $4, class_name = $5,
			year = $6, semester_number = $7, section = $8, roll_number = $9, avatar = $10,
			semester_start = CAST($11 AS DATE), semester_end = CAST($12 AS DATE),
			updated_at = $13
		WHERE id = $14`

	res, err := r.db.ExecContext(ctx, query,
		s.Name, s.University, s.Department, s.Course, s.ClassName,
		s.Year, s.SemesterNumber, s.Section, s.RollNumber, s.Avatar,
		s.SemesterStart, s.SemesterEnd,
		s.UpdatedAt, s.ID,
	)
	if err != nil {
		if sqlState(err) == codeCheckViolation {
			return domain.ErrInvalidSemesterWindow
		}
		return fmt.Errorf("repository: update student failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrStudentNotFound
	}
	return nil
}

func scanStudent(row scannable) (*domain.Student, error) {
	var s domain.Student
	err := row.Scan(
		&s.ID, &s.Email, &s.PasswordHash,
		&s.Name, &s.University, &s.Department, &s.Course, &s.ClassName,
		&s.Year, &s.SemesterNumber, &s.Section, &s.RollNumber, &s.Avatar,
		&s.SemesterStart, &s.SemesterEnd,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

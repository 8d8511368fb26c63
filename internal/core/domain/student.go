package domain

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrStudentNotFound       = errors.New("student not found")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidEmail          = errors.New("invalid email format")
	ErrPasswordTooShort      = errors.New("password must be at least 8 characters long")
	ErrInvalidSemesterWindow = errors.New("semester start must be a valid date on or before the end date")
	ErrUnauthorized          = errors.New("resource does not belong to the caller")
)

// SemesterWindow is the inclusive baseline period used by forecasts.
type SemesterWindow struct {
	Start string `json:"start_date" validate:"required,len=10"`
	End   string `json:"end_date" validate:"required,len=10"`
}

func (w SemesterWindow) Validate() error {
	start, okStart := ParseISODateUTC(w.Start)
	end, okEnd := ParseISODateUTC(w.End)
	if !okStart || !okEnd || start.After(end) {
		return ErrInvalidSemesterWindow
	}
	return nil
}

type Profile struct {
	Name           string `json:"name" db:"name"`
	University     string `json:"university" db:"university"`
	Department     string `json:"department,omitempty" db:"department"`
	Course         string `json:"course" db:"course"`
	ClassName      string `json:"class_name,omitempty" db:"class_name"`
	Year           int    `json:"year,omitempty" db:"year" validate:"gte=0,lte=10"`
	SemesterNumber int    `json:"semester" db:"semester_number" validate:"gte=0,lte=20"`
	Section        string `json:"section,omitempty" db:"section"`
	RollNumber     string `json:"roll_number,omitempty" db:"roll_number"`
	Avatar         string `json:"avatar" db:"avatar"`
}

type Student struct {
	ID           string `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`

	Profile
	SemesterStart *string `json:"semester_start_date,omitempty" db:"semester_start"`
	SemesterEnd   *string `json:"semester_end_date,omitempty" db:"semester_end"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewStudent(id, email string) (*Student, error) {
	email = strings.TrimSpace(email)

	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	now := time.Now().UTC()
	return &Student{
		ID:        id,
		Email:     strings.ToLower(email),
		Profile:   Profile{SemesterNumber: 1},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Student) SetPassword(plainPassword string) error {
	if utf8.RuneCountInString(plainPassword) < 8 {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), 12)
	if err != nil {
		return err
	}

	s.PasswordHash = string(hash)
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Student) CheckPassword(plainPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte(plainPassword))
}

// Semester returns the configured window, or nil when either bound is missing or invalid.
func (s *Student) Semester() *SemesterWindow {
	if s.SemesterStart == nil || s.SemesterEnd == nil {
		return nil
	}
	w := SemesterWindow{Start: ClampISODate(*s.SemesterStart), End: ClampISODate(*s.SemesterEnd)}
	if w.Validate() != nil {
		return nil
	}
	return &w
}

func (s *Student) SetSemester(w *SemesterWindow) error {
	if w == nil {
		s.SemesterStart, s.SemesterEnd = nil, nil
		s.UpdatedAt = time.Now().UTC()
		return nil
	}

	if err := w.Validate(); err != nil {
		return err
	}

	start, end := ClampISODate(w.Start), ClampISODate(w.End)
	s.SemesterStart, s.SemesterEnd = &start, &end
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Student) UpdateProfile(p Profile) {
	p.Name = strings.TrimSpace(p.Name)
	p.University = strings.TrimSpace(p.University)
	p.Course = strings.TrimSpace(p.Course)
	if p.SemesterNumber < 1 {
		p.SemesterNumber = 1
	}
	s.Profile = p
	s.UpdatedAt = time.Now().UTC()
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

type StudentRepository interface {
	// Create persists a new student account.
	Create(ctx context.Context, student *Student) error

	// GetByID retrieves a student by their unique identifier.
	GetByID(ctx context.Context, id string) (*Student, error)

	// GetByEmail is used by login.
	GetByEmail(ctx context.Context, email string) (*Student, error)

	// Update writes back the profile and semester window.
	Update(ctx context.Context, student *Student) error
}

package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitTitleEmpty    = errors.New("habit title cannot be empty")
	ErrHabitTitleTooLong  = errors.New("habit title is too long (max 100 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidColor       = errors.New("invalid color format (must be #RRGGBB)")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	DefaultIcon  = "default_icon"
	DefaultColor = "#6366F1"
	MaxTitleLen  = 100
)

// Habit is a daily study habit with a check-in streak.
type Habit struct {
	ID            string  `json:"id" db:"id"`
	UserID        string  `json:"user_id" db:"user_id"`
	Title         string  `json:"title" db:"title" validate:"required,max=100"`
	Color         string  `json:"color" db:"color"`
	Icon          string  `json:"icon" db:"icon"`
	CurrentStreak int     `json:"streak" db:"current_streak" validate:"gte=0"`
	LongestStreak int     `json:"longest_streak" db:"longest_streak" validate:"gte=0"`
	LastCheckedAt *string `json:"last_checked,omitempty" db:"last_checked"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func validateHabit(title, color string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ErrHabitTitleEmpty
	}
	if len(trimmed) > MaxTitleLen {
		return "", ErrHabitTitleTooLong
	}
	if color != "" && !colorRegex.MatchString(color) {
		return "", ErrInvalidColor
	}
	return trimmed, nil
}

func NewHabit(userID, title, color, icon string) (*Habit, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrHabitInvalidUserID
	}

	trimmed, err := validateHabit(title, color)
	if err != nil {
		return nil, err
	}

	if color == "" {
		color = DefaultColor
	}
	if icon == "" {
		icon = DefaultIcon
	}

	now := time.Now().UTC()
	return &Habit{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     trimmed,
		Color:     color,
		Icon:      icon,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (h *Habit) Rename(title, color, icon string) error {
	trimmed, err := validateHabit(title, color)
	if err != nil {
		return err
	}

	h.Title = trimmed
	if color != "" {
		h.Color = color
	}
	if icon != "" {
		h.Icon = icon
	}
	h.UpdatedAt = time.Now().UTC()
	return nil
}

// CheckIn applies a check on date to the streak counters: consecutive days
// extend the streak, a gap restarts it at 1, and a repeat check on the last
// checked date is a no-op. It reports whether anything changed.
func (h *Habit) CheckIn(date string) bool {
	date = ClampISODate(date)

	if h.LastCheckedAt != nil {
		last := ClampISODate(*h.LastCheckedAt)
		if last >= date {
			return false
		}
		if AddDaysISO(last, 1) == date {
			h.CurrentStreak++
		} else {
			h.CurrentStreak = 1
		}
	} else {
		h.CurrentStreak = 1
	}

	h.LongestStreak = max(h.LongestStreak, h.CurrentStreak)
	h.LastCheckedAt = &date
	h.UpdatedAt = time.Now().UTC()
	return true
}

func (h *Habit) UpdateStreak(current, longest int) {
	h.CurrentStreak = current
	h.LongestStreak = longest
	h.UpdatedAt = time.Now().UTC()
}

// HabitCheck is one day a habit was done. (habit, date) is unique.
type HabitCheck struct {
	ID        string    `json:"id" db:"id"`
	HabitID   string    `json:"habit_id" db:"habit_id" validate:"required"`
	UserID    string    `json:"-" db:"user_id"`
	Date      string    `json:"date" db:"date" validate:"required,len=10"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func NewHabitCheck(habitID, userID, date string) (*HabitCheck, error) {
	if strings.TrimSpace(habitID) == "" {
		return nil, ErrHabitNotFound
	}
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserRequired
	}
	date = ClampISODate(strings.TrimSpace(date))
	if _, ok := ParseISODateUTC(date); !ok {
		return nil, ErrInvalidDate
	}

	return &HabitCheck{
		ID:        uuid.New().String(),
		HabitID:   habitID,
		UserID:    userID,
		Date:      date,
		CreatedAt: time.Now().UTC(),
	}, nil
}

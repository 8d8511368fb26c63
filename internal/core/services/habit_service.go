package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

// StreakScheduler recomputes a habit's streaks from its full check history.
type StreakScheduler interface {
	Enqueue(habitID string)
}

type HabitService struct {
	repo      domain.HabitRepository
	streaks   StreakScheduler
	publisher domain.ChangePublisher
	clock     Clock
}

func NewHabitService(repo domain.HabitRepository, streaks StreakScheduler, publisher domain.ChangePublisher, clock Clock) *HabitService {
	return &HabitService{
		repo:      repo,
		streaks:   streaks,
		publisher: publisher,
		clock:     clock,
	}
}

type CreateHabitInput struct {
	UserID string
	Title  string
	Color  string
	Icon   string
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	habit, err := domain.NewHabit(input.UserID, input.Title, input.Color, input.Icon)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("habit service: failed to create habit: %w", err)
	}

	s.notify(input.UserID)
	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *HabitService) Delete(ctx context.Context, id string, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.notify(userID)
	return nil
}

// CheckIn records the habit as done on date (today when empty). A check that
// extends the latest one updates the streak inline; a backdated check is
// handed to the streak worker, which replays the whole history.
func (s *HabitService) CheckIn(ctx context.Context, id, userID, date string) (*domain.Habit, error) {
	habit, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	if date == "" {
		date = today
	}

	check, err := domain.NewHabitCheck(habit.ID, userID, date)
	if err != nil {
		return nil, err
	}
	if check.Date > today {
		return nil, domain.ErrFutureDate
	}

	if err := s.repo.AddCheck(ctx, check); err != nil {
		return nil, err
	}

	if habit.CheckIn(check.Date) {
		if err := s.repo.UpdateStreaks(ctx, habit.ID, habit.CurrentStreak, habit.LongestStreak); err != nil {
			return nil, fmt.Errorf("habit service: failed to update streak: %w", err)
		}
	} else if s.streaks != nil {
		s.streaks.Enqueue(habit.ID)
	}

	s.notify(userID)
	return habit, nil
}

func (s *HabitService) owned(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *HabitService) notify(userID string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(domain.ChangeEvent{
		UserID: userID,
		Kind:   domain.EventHabitsUpdated,
		At:     time.Now().UTC(),
	})
}

func isAlreadyChecked(err error) bool {
	return errors.Is(err, domain.ErrHabitAlreadyChecked)
}

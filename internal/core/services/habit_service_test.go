package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
	"github.com/comitanigiacomo/studo-sync-engine/internal/core/services"
)

func TestHabitService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Should create and persist a valid habit", func(t *testing.T) {
		repo := new(MockHabitRepo)
		pub := &recordingPublisher{}
		svc := services.NewHabitService(repo, nil, pub, testClock)

		repo.On("Create", ctx, mock.AnythingOfType("*domain.Habit")).Return(nil)

		h, err := svc.Create(ctx, services.CreateHabitInput{UserID: "u1", Title: "Revise DSA"})

		require.NoError(t, err)
		assert.Equal(t, "Revise DSA", h.Title)
		assert.Equal(t, []string{domain.EventHabitsUpdated}, pub.Kinds())
	})

	t.Run("Fail: Domain Validation Error (Blocked BEFORE DB)", func(t *testing.T) {
		repo := new(MockHabitRepo)
		svc := services.NewHabitService(repo, nil, nil, testClock)

		_, err := svc.Create(ctx, services.CreateHabitInput{UserID: "u1"})

		assert.ErrorIs(t, err, domain.ErrHabitTitleEmpty)
		repo.AssertNotCalled(t, "Create")
	})
}

func TestHabitService_CheckIn(t *testing.T) {
	ctx := context.Background()

	newHabit := func(lastChecked string, streak int) *domain.Habit {
		h, _ := domain.NewHabit("u1", "Read", "", "")
		if lastChecked != "" {
			h.LastCheckedAt = &lastChecked
			h.CurrentStreak = streak
			h.LongestStreak = streak
		}
		return h
	}

	t.Run("Success: Consecutive check updates streak inline", func(t *testing.T) {
		repo := new(MockHabitRepo)
		sched := &recordingScheduler{}
		svc := services.NewHabitService(repo, sched, nil, testClock)
		h := newHabit("2024-03-14", 4)

		repo.On("GetByID", ctx, h.ID).Return(h, nil)
		repo.On("AddCheck", ctx, mock.MatchedBy(func(c *domain.HabitCheck) bool { return c.Date == testToday })).Return(nil)
		repo.On("UpdateStreaks", ctx, h.ID, 5, 5).Return(nil)

		got, err := svc.CheckIn(ctx, h.ID, "u1", "")

		require.NoError(t, err)
		assert.Equal(t, 5, got.CurrentStreak)
		assert.Empty(t, sched.ids)
		repo.AssertExpectations(t)
	})

	t.Run("Success: Backdated check goes to the worker", func(t *testing.T) {
		repo := new(MockHabitRepo)
		sched := &recordingScheduler{}
		svc := services.NewHabitService(repo, sched, nil, testClock)
		h := newHabit("2024-03-14", 2)

		repo.On("GetByID", ctx, h.ID).Return(h, nil)
		repo.On("AddCheck", ctx, mock.Anything).Return(nil)

		_, err := svc.CheckIn(ctx, h.ID, "u1", "2024-03-10")

		require.NoError(t, err)
		assert.Equal(t, []string{h.ID}, sched.ids)
		repo.AssertNotCalled(t, "UpdateStreaks", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Fail: Duplicate check", func(t *testing.T) {
		repo := new(MockHabitRepo)
		svc := services.NewHabitService(repo, nil, nil, testClock)
		h := newHabit("", 0)

		repo.On("GetByID", ctx, h.ID).Return(h, nil)
		repo.On("AddCheck", ctx, mock.Anything).Return(domain.ErrHabitAlreadyChecked)

		_, err := svc.CheckIn(ctx, h.ID, "u1", testToday)
		assert.ErrorIs(t, err, domain.ErrHabitAlreadyChecked)
	})

	t.Run("Fail: Future check", func(t *testing.T) {
		repo := new(MockHabitRepo)
		svc := services.NewHabitService(repo, nil, nil, testClock)
		h := newHabit("", 0)

		repo.On("GetByID", ctx, h.ID).Return(h, nil)

		_, err := svc.CheckIn(ctx, h.ID, "u1", "2024-03-16")
		assert.ErrorIs(t, err, domain.ErrFutureDate)
		repo.AssertNotCalled(t, "AddCheck", mock.Anything, mock.Anything)
	})

	t.Run("Fail: Security - Cannot check other user's habit (IDOR)", func(t *testing.T) {
		repo := new(MockHabitRepo)
		svc := services.NewHabitService(repo, nil, nil, testClock)
		h := newHabit("", 0)

		repo.On("GetByID", ctx, h.ID).Return(h, nil)

		_, err := svc.CheckIn(ctx, h.ID, "intruder", "")
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})
}

func TestHabitService_Delete(t *testing.T) {
	ctx := context.Background()
	h, _ := domain.NewHabit("u1", "Read", "", "")

	t.Run("Success: Owner deletes", func(t *testing.T) {
		repo := new(MockHabitRepo)
		svc := services.NewHabitService(repo, nil, nil, testClock)

		repo.On("GetByID", ctx, h.ID).Return(h, nil)
		repo.On("Delete", ctx, h.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, h.ID, "u1"))
		repo.AssertExpectations(t)
	})

	t.Run("Fail: Security - Cannot delete other user's habit (IDOR)", func(t *testing.T) {
		repo := new(MockHabitRepo)
		svc := services.NewHabitService(repo, nil, nil, testClock)

		repo.On("GetByID", ctx, h.ID).Return(h, nil)

		assert.ErrorIs(t, svc.Delete(ctx, h.ID, "intruder"), domain.ErrHabitNotFound)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

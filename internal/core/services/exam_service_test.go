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

func TestExamService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Persists and publishes", func(t *testing.T) {
		repo := new(MockExamRepo)
		pub := &recordingPublisher{}
		svc := services.NewExamService(repo, pub, testClock)

		repo.On("Create", ctx, mock.AnythingOfType("*domain.Exam")).Return(nil)

		e, err := svc.Create(ctx, services.CreateExamInput{UserID: "u1", Title: "Midterm", Subject: "DSA", Date: "2024-03-25"})

		require.NoError(t, err)
		assert.Equal(t, domain.KindExam, e.Kind)
		assert.Equal(t, []string{domain.EventExamsUpdated}, pub.Kinds())
	})

	t.Run("Fail: Bad date never reaches the store", func(t *testing.T) {
		repo := new(MockExamRepo)
		svc := services.NewExamService(repo, nil, testClock)

		_, err := svc.Create(ctx, services.CreateExamInput{UserID: "u1", Title: "Midterm", Date: "next week"})

		assert.ErrorIs(t, err, domain.ErrInvalidDate)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestExamService_Schedule(t *testing.T) {
	ctx := context.Background()
	repo := new(MockExamRepo)
	svc := services.NewExamService(repo, nil, testClock)

	past, _ := domain.NewExam("u1", "Quiz", "", "", "2024-03-01", "")
	soon, _ := domain.NewExam("u1", "Midterm", "", "", "2024-03-20", "")
	repo.On("ListByUserID", ctx, "u1").Return([]domain.Exam{*soon, *past}, nil)

	s, err := svc.Schedule(ctx, "u1")

	require.NoError(t, err)
	require.Len(t, s.Upcoming, 1)
	assert.Equal(t, 5, s.Upcoming[0].DaysLeft)
	assert.Equal(t, domain.UrgencySoon, s.Upcoming[0].Urgency)
	require.Len(t, s.Past, 1)
	assert.Equal(t, "Quiz", s.Past[0].Title)
}

func TestExamService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Fail: Foreign exam is not found", func(t *testing.T) {
		repo := new(MockExamRepo)
		svc := services.NewExamService(repo, nil, testClock)
		e, _ := domain.NewExam("u2", "Midterm", "", "", "2024-03-20", "")
		repo.On("GetByID", ctx, e.ID).Return(e, nil)

		assert.ErrorIs(t, svc.Delete(ctx, e.ID, "u1"), domain.ErrExamNotFound)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Success: Owner deletes", func(t *testing.T) {
		repo := new(MockExamRepo)
		svc := services.NewExamService(repo, nil, testClock)
		e, _ := domain.NewExam("u1", "Midterm", "", "", "2024-03-20", "")
		repo.On("GetByID", ctx, e.ID).Return(e, nil)
		repo.On("Delete", ctx, e.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, e.ID, "u1"))
		repo.AssertExpectations(t)
	})
}

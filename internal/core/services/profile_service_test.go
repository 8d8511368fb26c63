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

func TestProfileService(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Update publishes profile change", func(t *testing.T) {
		repo := new(MockStudentRepo)
		pub := &recordingPublisher{}
		svc := services.NewProfileService(repo, pub)
		student := studentWithSemester("u1", "", "")

		repo.On("GetByID", ctx, "u1").Return(student, nil)
		repo.On("Update", ctx, student).Return(nil)

		got, err := svc.Update(ctx, "u1", domain.Profile{Name: "Asha", University: "IIT", SemesterNumber: 4})

		require.NoError(t, err)
		assert.Equal(t, 4, got.SemesterNumber)
		assert.Equal(t, []string{domain.EventProfileUpdated}, pub.Kinds())
	})

	t.Run("Fail: Invalid semester never reaches the store", func(t *testing.T) {
		repo := new(MockStudentRepo)
		svc := services.NewProfileService(repo, nil)

		repo.On("GetByID", ctx, "u1").Return(studentWithSemester("u1", "", ""), nil)

		_, err := svc.SetSemester(ctx, "u1", &domain.SemesterWindow{Start: "2024-06-01", End: "2024-01-01"})

		assert.ErrorIs(t, err, domain.ErrInvalidSemesterWindow)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Success: Nil window clears", func(t *testing.T) {
		repo := new(MockStudentRepo)
		svc := services.NewProfileService(repo, nil)
		student := studentWithSemester("u1", "2024-01-01", "2024-05-31")

		repo.On("GetByID", ctx, "u1").Return(student, nil)
		repo.On("Update", ctx, student).Return(nil)

		got, err := svc.SetSemester(ctx, "u1", nil)

		require.NoError(t, err)
		assert.Nil(t, got.Semester())
	})
}

func TestAnalyticsService(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Semester scope uses the window", func(t *testing.T) {
		att, students := new(MockAttendanceRepo), new(MockStudentRepo)
		svc := services.NewAnalyticsService(att, students)

		students.On("GetByID", ctx, "u1").Return(studentWithSemester("u1", "2024-01-01", "2024-05-31"), nil)
		att.On("ListInRange", ctx, "u1", "2024-01-01", "2024-05-31").Return(presentRun([]string{"2024-02-01"}, 5), nil)

		a, err := svc.GetAnalytics(ctx, services.AnalyticsQuery{UserID: "u1", Scope: services.ScopeSemester})

		require.NoError(t, err)
		assert.Equal(t, 5, a.TotalClasses)
		assert.Equal(t, 100, a.OverallPercentage)
	})

	t.Run("Success: Default scope is all time", func(t *testing.T) {
		att, students := new(MockAttendanceRepo), new(MockStudentRepo)
		svc := services.NewAnalyticsService(att, students)

		att.On("ListByUserID", ctx, "u1").Return([]domain.AttendanceDay{}, nil)

		a, err := svc.GetAnalytics(ctx, services.AnalyticsQuery{UserID: "u1"})

		require.NoError(t, err)
		assert.Equal(t, 0, a.OverallPercentage)
		students.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Success: Explicit range wins", func(t *testing.T) {
		att, students := new(MockAttendanceRepo), new(MockStudentRepo)
		svc := services.NewAnalyticsService(att, students)

		att.On("ListInRange", ctx, "u1", "2024-03-01", "2024-03-31").Return([]domain.AttendanceDay{}, nil)

		_, err := svc.GetAnalytics(ctx, services.AnalyticsQuery{UserID: "u1", From: "2024-03-01", To: "2024-03-31", Scope: services.ScopeSemester})
		require.NoError(t, err)
		att.AssertExpectations(t)
	})
}

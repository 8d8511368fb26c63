package services

import (
	"context"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

const (
	ScopeAll      = "all"
	ScopeSemester = "semester"
)

type AnalyticsService struct {
	attendance domain.AttendanceRepository
	students   domain.StudentRepository
}

func NewAnalyticsService(attendance domain.AttendanceRepository, students domain.StudentRepository) *AnalyticsService {
	return &AnalyticsService{
		attendance: attendance,
		students:   students,
	}
}

type AnalyticsQuery struct {
	UserID string
	From   string
	To     string
	Scope  string
}

// GetAnalytics aggregates an explicit range when both bounds are given,
// otherwise the configured semester (scope=semester) or the whole history.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, q AnalyticsQuery) (*domain.AttendanceAnalytics, error) {
	from, to := domain.ClampISODate(q.From), domain.ClampISODate(q.To)

	if (from == "" || to == "") && q.Scope == ScopeSemester {
		student, err := s.students.GetByID(ctx, q.UserID)
		if err != nil {
			return nil, err
		}
		if w := student.Semester(); w != nil {
			from, to = w.Start, w.End
		}
	}

	var (
		days []domain.AttendanceDay
		err  error
	)
	if from != "" && to != "" {
		days, err = s.attendance.ListInRange(ctx, q.UserID, from, to)
	} else {
		days, err = s.attendance.ListByUserID(ctx, q.UserID)
	}
	if err != nil {
		return nil, err
	}

	a := domain.Aggregate(days)
	return &a, nil
}

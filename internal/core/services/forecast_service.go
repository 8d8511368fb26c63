package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

const (
	ModeSemester = "SEMESTER"
	ModeMonth    = "MONTH"
)

var ErrInvalidMode = errors.New("invalid baseline mode (must be SEMESTER or MONTH)")

type ForecastService struct {
	attendance domain.AttendanceRepository
	students   domain.StudentRepository
	clock      Clock
}

func NewForecastService(attendance domain.AttendanceRepository, students domain.StudentRepository, clock Clock) *ForecastService {
	return &ForecastService{
		attendance: attendance,
		students:   students,
		clock:      clock,
	}
}

type LeavePlanQuery struct {
	UserID        string
	Mode          string
	Month         string
	PlannedLeaves int
	Target        float64
	Today         string
}

type LeavePlanResult struct {
	domain.LeavePlan
	Mode            string   `json:"mode"`
	Month           string   `json:"month,omitempty"`
	AvailableMonths []string `json:"available_months"`
}

// baseline loads the semester days when a semester is configured, otherwise everything.
func (s *ForecastService) baseline(ctx context.Context, userID string) (*domain.SemesterWindow, []domain.AttendanceDay, error) {
	student, err := s.students.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	sem := student.Semester()
	var days []domain.AttendanceDay
	if sem != nil {
		days, err = s.attendance.ListInRange(ctx, userID, sem.Start, sem.End)
	} else {
		days, err = s.attendance.ListByUserID(ctx, userID)
	}
	if err != nil {
		return nil, nil, err
	}
	return sem, days, nil
}

func (s *ForecastService) today(override string) string {
	if _, ok := domain.ParseISODateUTC(override); ok {
		return domain.ClampISODate(override)
	}
	return s.clock.Today()
}

// LeavePlan projects the effect of planned leaves over the semester, or over
// one month of it. Without a semester the month baseline is used.
func (s *ForecastService) LeavePlan(ctx context.Context, q LeavePlanQuery) (*LeavePlanResult, error) {
	mode := strings.ToUpper(strings.TrimSpace(q.Mode))
	if mode == "" {
		mode = ModeSemester
	}
	if mode != ModeSemester && mode != ModeMonth {
		return nil, ErrInvalidMode
	}

	sem, days, err := s.baseline(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	if sem == nil {
		mode = ModeMonth
	}

	analytics := domain.Aggregate(days)
	months := analytics.MonthlyStats.Keys()

	month := strings.TrimSpace(q.Month)
	if _, ok := analytics.MonthlyStats.Lookup(month); !ok {
		month = ""
		if len(months) > 0 {
			month = months[len(months)-1]
		}
	}
	if month == "" {
		month = domain.MonthKeyFromISO(s.today(q.Today))
	}

	semClassesPerDay := analytics.ClassesPerDay(domain.DefaultClassesPerDay)
	fallback := semClassesPerDay

	var periodStart, periodEnd string
	switch mode {
	case ModeSemester:
		periodStart, periodEnd = sem.Start, sem.End
	case ModeMonth:
		if stat, ok := analytics.MonthlyStats.Lookup(month); ok {
			if n := countInMonth(days, month); n > 0 {
				fallback = float64(stat.Total) / float64(n)
			}
		}
		if start, end, ok := domain.MonthRangeFromMonthKey(month); ok {
			periodStart, periodEnd = start, end
			if sem != nil && sem.End < end {
				periodEnd = sem.End
			}
		}
	}

	plan := domain.ProjectLeavePlan(domain.LeavePlanInput{
		Days:                  days,
		PeriodStart:           periodStart,
		PeriodEnd:             periodEnd,
		Today:                 s.today(q.Today),
		Target:                targetOrDefault(q.Target),
		PlannedLeaves:         q.PlannedLeaves,
		FallbackClassesPerDay: max(1, fallback),
	})

	result := &LeavePlanResult{LeavePlan: plan, Mode: mode, AvailableMonths: months}
	if mode == ModeMonth {
		result.Month = month
	}
	return result, nil
}

type RangeForecastQuery struct {
	UserID string
	Start  string
	End    string
	Target float64
	Today  string
}

func (s *ForecastService) RangeForecast(ctx context.Context, q RangeForecastQuery) (*domain.RangeForecast, error) {
	start, end := domain.ClampISODate(q.Start), domain.ClampISODate(q.End)

	var days []domain.AttendanceDay
	if start != "" && end != "" && start <= end {
		var err error
		days, err = s.attendance.ListInRange(ctx, q.UserID, start, end)
		if err != nil {
			return nil, err
		}
	}

	f := domain.ForecastRange(domain.RangeForecastInput{
		Days:                  days,
		Start:                 start,
		End:                   end,
		Today:                 s.today(q.Today),
		Target:                targetOrDefault(q.Target),
		FallbackClassesPerDay: domain.DefaultClassesPerDay,
	})
	return &f, nil
}

func (s *ForecastService) SemesterSummary(ctx context.Context, userID string, target float64, today string) (*domain.SemesterSummary, error) {
	student, err := s.students.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	days, err := s.attendance.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := domain.SafeLeaveBudget(domain.SafeLeaveInput{
		Days:     days,
		Semester: student.Semester(),
		Today:    s.today(today),
		Target:   targetOrDefault(target),
	})
	return &summary, nil
}

// Audit builds the semester-to-date report. Unlogged days inside the logged
// set are estimated at the average daily load.
func (s *ForecastService) Audit(ctx context.Context, userID, today string) (*domain.AuditReport, error) {
	student, err := s.students.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	todayISO := s.today(today)
	report := &domain.AuditReport{
		GeneratedAt: time.Now().UTC(),
		Profile:     student.Profile,
		Semester:    domain.AuditSemester{ToDateEnd: todayISO},
	}

	var days []domain.AttendanceDay
	if sem := student.Semester(); sem != nil {
		toDateEnd := todayISO
		if toDateEnd > sem.End {
			toDateEnd = sem.End
		}
		report.Semester = domain.AuditSemester{Configured: true, StartDate: sem.Start, EndDate: sem.End, ToDateEnd: toDateEnd}

		if days, err = s.attendance.ListInRange(ctx, userID, sem.Start, toDateEnd); err != nil {
			return nil, err
		}
		semDays, err := s.attendance.ListInRange(ctx, userID, sem.Start, sem.End)
		if err != nil {
			return nil, err
		}
		report.Analytics = domain.Aggregate(semDays)
	} else {
		if days, err = s.attendance.ListByUserID(ctx, userID); err != nil {
			return nil, err
		}
		report.Analytics = domain.Aggregate(days)
	}

	if days == nil {
		days = []domain.AttendanceDay{}
	}
	report.AttendanceDays = days
	report.ToDate = domain.SnapshotToDate(days, len(days))
	return report, nil
}

func countInMonth(days []domain.AttendanceDay, monthKey string) int {
	n := 0
	for _, d := range days {
		if domain.MonthKeyFromISO(d.Date) == monthKey {
			n++
		}
	}
	return n
}

func targetOrDefault(t float64) float64 {
	if t <= 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return domain.DefaultTargetPercentage
	}
	return t
}

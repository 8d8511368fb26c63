package domain

import (
	"math"
)

const (
	// MinActiveDaysForAverage is how many logged class days are needed before
	// the observed daily load replaces the caller's fallback.
	MinActiveDaysForAverage = 5
	DefaultClassesPerDay    = 4.0
	DefaultTargetPercentage = 75.0
)

// Baseline sums the active days (TotalClasses > 0) of a period.
type Baseline struct {
	Total            int     `json:"total_classes"`
	Attended         int     `json:"attended_classes"`
	Percentage       float64 `json:"percentage"`
	AvgClassesPerDay float64 `json:"avg_classes_per_day"`
	ActiveDays       int     `json:"active_days"`
}

func ComputeBaseline(days []AttendanceDay, fallbackAvg float64) Baseline {
	var b Baseline
	for _, d := range days {
		if d.TotalClasses <= 0 {
			continue
		}
		b.ActiveDays++
		b.Total += d.TotalClasses
		b.Attended += d.AttendedClasses
	}

	b.Total = max(0, b.Total)
	b.Attended = max(0, b.Attended)
	b.Percentage = percentOf(b.Attended, b.Total)

	b.AvgClassesPerDay = fallbackAvg
	if b.ActiveDays > 0 {
		b.AvgClassesPerDay = float64(b.Total) / float64(b.ActiveDays)
	}
	return b
}

// LoadPerWorkingDay only trusts the observed average once enough days are logged.
func (b Baseline) LoadPerWorkingDay(fallback float64) float64 {
	if b.ActiveDays >= MinActiveDaysForAverage {
		return b.AvgClassesPerDay
	}
	return fallback
}

// NeededClasses is the minimum number of extra classes that must be attended
// (each also adding to the total) to reach target exactly.
func NeededClasses(total, attended int, target float64) int {
	p := target / 100
	if percentOf(attended, total) >= target || p >= 1 {
		return 0
	}
	return int(math.Ceil(math.Max(0, (p*float64(total)-float64(attended))/(1-p))))
}

func RecoverDays(neededClasses int, avg float64) int {
	if avg <= 0 {
		return 0
	}
	return int(math.Ceil(float64(neededClasses) / avg))
}

type LeavePlanInput struct {
	Days                  []AttendanceDay
	PeriodStart           string
	PeriodEnd             string
	Today                 string
	Target                float64
	PlannedLeaves         int
	FallbackClassesPerDay float64
}

type LeavePlan struct {
	PeriodStart          string  `json:"period_start"`
	PeriodEnd            string  `json:"period_end"`
	ToDateEnd            string  `json:"to_date_end"`
	FutureStart          string  `json:"future_start,omitempty"`
	DaysLogged           int     `json:"days_logged"`
	BaseTotal            int     `json:"base_total"`
	BaseAttended         int     `json:"base_attended"`
	AvgClassesPerDay     float64 `json:"avg_classes_per_day"`
	RemainingWorkingDays int     `json:"remaining_working_days"`
	RequestedLeaves      int     `json:"requested_leaves"`
	BoundedLeaves        int     `json:"bounded_leaves"`
	ProjectedTotal       int     `json:"projected_total"`
	ProjectedAttended    int     `json:"projected_attended"`
	CurrentPercentage    float64 `json:"current_percentage"`
	ProjectedPercentage  float64 `json:"projected_percentage"`
	Target               float64 `json:"target"`
	IsSafe               bool    `json:"is_safe"`
	NeededClasses        int     `json:"needed_classes"`
	RecoverDays          int     `json:"recover_days"`
}

// ProjectLeavePlan projects the end-of-period percentage assuming every
// remaining working day is attended except the planned leaves.
func ProjectLeavePlan(in LeavePlanInput) LeavePlan {
	start, end, today := ClampISODate(in.PeriodStart), ClampISODate(in.PeriodEnd), ClampISODate(in.Today)
	fallback := in.FallbackClassesPerDay
	if fallback <= 0 {
		fallback = DefaultClassesPerDay
	}
	fallback = math.Max(1, fallback)

	plan := LeavePlan{
		PeriodStart:     start,
		PeriodEnd:       end,
		Target:          in.Target,
		RequestedLeaves: in.PlannedLeaves,
	}

	plan.ToDateEnd = today
	if end != "" && today > end {
		plan.ToDateEnd = end
	}

	hasPeriod := start != "" && end != "" && start <= end

	var toDate []AttendanceDay
	if hasPeriod {
		toDate = FilterInRange(in.Days, start, plan.ToDateEnd)
	}
	plan.DaysLogged = len(toDate)

	base := ComputeBaseline(toDate, fallback)
	avg := base.LoadPerWorkingDay(fallback)
	plan.BaseTotal = base.Total
	plan.BaseAttended = base.Attended
	plan.AvgClassesPerDay = avg

	todayInPeriod := hasPeriod && today >= start && today <= end
	todayMarked := false
	if todayInPeriod {
		for _, d := range toDate {
			if d.Date == today {
				todayMarked = true
				break
			}
		}
	}

	if hasPeriod {
		switch {
		case plan.ToDateEnd < start:
			plan.FutureStart = start
		case todayInPeriod && !todayMarked:
			plan.FutureStart = today
		default:
			plan.FutureStart = AddDaysISO(plan.ToDateEnd, 1)
		}
	}

	if hasPeriod && plan.FutureStart != "" && plan.FutureStart <= end {
		plan.RemainingWorkingDays = CountWorkingDays(plan.FutureStart, end)
	}

	plan.BoundedLeaves = max(0, min(in.PlannedLeaves, plan.RemainingWorkingDays))

	futureClasses := max(0, int(roundHalfUp(float64(plan.RemainingWorkingDays)*avg)))
	leaveClasses := max(0, int(roundHalfUp(float64(plan.BoundedLeaves)*avg)))

	plan.ProjectedTotal = base.Total + futureClasses
	plan.ProjectedAttended = base.Attended + max(0, futureClasses-leaveClasses)

	projected := base.Percentage
	if plan.ProjectedTotal > 0 {
		projected = percentOf(plan.ProjectedAttended, plan.ProjectedTotal)
	}

	plan.CurrentPercentage = clampPercent(base.Percentage)
	plan.ProjectedPercentage = clampPercent(projected)
	plan.IsSafe = plan.ProjectedPercentage >= in.Target

	plan.NeededClasses = NeededClasses(base.Total, base.Attended, in.Target)
	plan.RecoverDays = RecoverDays(plan.NeededClasses, avg)

	return plan
}

type RangeForecastInput struct {
	Days                  []AttendanceDay
	Start                 string
	End                   string
	Today                 string
	Target                float64
	FallbackClassesPerDay float64
}

type RangeForecast struct {
	Percentage    float64 `json:"percentage"`
	Gap           float64 `json:"gap"`
	NeededClasses int     `json:"needed_classes"`
	RecoverDays   int     `json:"recover_days"`
	RemainingDays int     `json:"remaining_days"`
}

// ForecastRange reports where a period stands today and how many attended
// days are needed to get back to target.
func ForecastRange(in RangeForecastInput) RangeForecast {
	start, end, today := ClampISODate(in.Start), ClampISODate(in.End), ClampISODate(in.Today)
	fallback := in.FallbackClassesPerDay
	if fallback <= 0 {
		fallback = DefaultClassesPerDay
	}

	if start == "" || end == "" || start > end {
		return RangeForecast{Gap: in.Target}
	}

	toDateEnd := today
	if today > end {
		toDateEnd = end
	}
	if start > toDateEnd {
		return RangeForecast{Gap: in.Target, RemainingDays: CountWorkingDays(start, end)}
	}

	base := ComputeBaseline(FilterInRange(in.Days, start, toDateEnd), fallback)
	avg := base.LoadPerWorkingDay(fallback)

	out := RangeForecast{
		Percentage: base.Percentage,
		Gap:        math.Max(0, in.Target-base.Percentage),
	}
	out.NeededClasses = NeededClasses(base.Total, base.Attended, in.Target)
	out.RecoverDays = RecoverDays(out.NeededClasses, avg)

	todayInRange := today >= start && today <= end
	todayMarked := false
	if todayInRange {
		for _, d := range in.Days {
			if d.Date == today && d.TotalClasses > 0 {
				todayMarked = true
				break
			}
		}
	}

	futureStart := AddDaysISO(toDateEnd, 1)
	if todayInRange && !todayMarked {
		futureStart = today
	}
	if futureStart <= end {
		out.RemainingDays = CountWorkingDays(futureStart, end)
	}

	return out
}

type SafeLeaveInput struct {
	Days     []AttendanceDay
	Semester *SemesterWindow
	Today    string
	Target   float64
}

type SemesterSummary struct {
	Configured     bool   `json:"configured"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	TotalClasses   int    `json:"total_classes"`
	TotalAttended  int    `json:"total_attended"`
	Percentage     int    `json:"percentage"`
	PossibleLeaves int    `json:"possible_leaves"`
}

// SafeLeaveBudget answers how many future days can still be skipped without
// dropping below target, capped by the calendar days left in the semester.
func SafeLeaveBudget(in SafeLeaveInput) SemesterSummary {
	if in.Semester == nil || in.Semester.Validate() != nil {
		a := Aggregate(in.Days)
		summary := SemesterSummary{
			TotalClasses:  a.TotalClasses,
			TotalAttended: a.TotalAttended,
			Percentage:    a.OverallPercentage,
		}
		if in.Semester != nil {
			summary.StartDate = ClampISODate(in.Semester.Start)
			summary.EndDate = ClampISODate(in.Semester.End)
		}
		return summary
	}

	start, end := ClampISODate(in.Semester.Start), ClampISODate(in.Semester.End)
	today := ClampISODate(in.Today)
	a := AggregateInRange(in.Days, start, end)

	remainingCalendarDays := 0
	if today <= end {
		if diff, ok := DaysBetween(today, end); ok {
			remainingCalendarDays = diff + 1
		}
	}

	avg := a.ClassesPerDay(DefaultClassesPerDay)
	safeByClasses := 0
	switch {
	case in.Target <= 0:
		safeByClasses = remainingCalendarDays
	case avg > 0:
		safeByClasses = int(math.Floor((float64(a.TotalAttended)/(in.Target/100) - float64(a.TotalClasses)) / avg))
	}

	return SemesterSummary{
		Configured:     true,
		StartDate:      start,
		EndDate:        end,
		TotalClasses:   a.TotalClasses,
		TotalAttended:  a.TotalAttended,
		Percentage:     a.OverallPercentage,
		PossibleLeaves: max(0, min(safeByClasses, remainingCalendarDays)),
	}
}

// ToDateSnapshot estimates the to-date totals, filling unlogged working days
// with the average observed load.
type ToDateSnapshot struct {
	WorkingDays  int     `json:"working_days"`
	LoggedDays   int     `json:"logged_days"`
	TotalClasses int     `json:"total_classes"`
	Present      int     `json:"present"`
	Absent       int     `json:"absent"`
	Percentage   float64 `json:"percentage"`
}

func SnapshotToDate(days []AttendanceDay, workingDays int) ToDateSnapshot {
	base := ComputeBaseline(days, DefaultClassesPerDay)

	missing := max(0, workingDays-base.ActiveDays)
	estimated := int(roundHalfUp(float64(base.Total) + float64(missing)*base.AvgClassesPerDay))
	total := max(0, max(base.Total, estimated))

	return ToDateSnapshot{
		WorkingDays:  workingDays,
		LoggedDays:   base.ActiveDays,
		TotalClasses: total,
		Present:      base.Attended,
		Absent:       max(0, total-base.Attended),
		Percentage:   roundHalfUp(percentOf(base.Attended, total)*10) / 10,
	}
}

func clampPercent(p float64) float64 {
	return math.Max(0, math.Min(100, p))
}

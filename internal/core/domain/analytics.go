package domain

import (
	"math"
	"sort"
)

type MonthlyStat struct {
	Month      string `json:"month"`
	YearMonth  string `json:"year_month"`
	Total      int    `json:"total"`
	Present    int    `json:"present"`
	Percentage int    `json:"percentage"`
}

// MonthlyStats is kept in chronological order of YearMonth.
type MonthlyStats []MonthlyStat

func (m MonthlyStats) Lookup(monthKey string) (MonthlyStat, bool) {
	for _, s := range m {
		if s.Month == monthKey {
			return s, true
		}
	}
	return MonthlyStat{}, false
}

func (m MonthlyStats) Keys() []string {
	keys := make([]string, 0, len(m))
	for _, s := range m {
		keys = append(keys, s.Month)
	}
	return keys
}

type AttendanceAnalytics struct {
	TotalDays         int          `json:"total_days"`
	PresentDays       int          `json:"present_days"`
	AbsentDays        int          `json:"absent_days"`
	LeaveDays         int          `json:"leave_days"`
	TotalClasses      int          `json:"total_classes"`
	TotalAttended     int          `json:"total_attended"`
	OverallPercentage int          `json:"overall_percentage"`
	MonthlyStats      MonthlyStats `json:"monthly_stats"`
}

// ClassesPerDay is the average load over every logged day, or fallback when nothing is logged.
func (a AttendanceAnalytics) ClassesPerDay(fallback float64) float64 {
	if a.TotalDays == 0 {
		return fallback
	}
	return float64(a.TotalClasses) / float64(a.TotalDays)
}

func Aggregate(days []AttendanceDay) AttendanceAnalytics {
	a := AttendanceAnalytics{
		TotalDays:    len(days),
		MonthlyStats: monthlyStats(days),
	}

	for _, d := range days {
		switch d.Status {
		case StatusPresent:
			a.PresentDays++
		case StatusAbsent:
			a.AbsentDays++
		case StatusLeave:
			a.LeaveDays++
		}
		a.TotalClasses += d.TotalClasses
		a.TotalAttended += d.AttendedClasses
	}

	a.OverallPercentage = roundPercent(a.TotalAttended, a.TotalClasses)
	return a
}

func AggregateInRange(days []AttendanceDay, start, end string) AttendanceAnalytics {
	return Aggregate(FilterInRange(days, start, end))
}

// FilterInRange keeps days with start <= date <= end. ISO dates compare
// lexically in chronological order.
func FilterInRange(days []AttendanceDay, start, end string) []AttendanceDay {
	start, end = ClampISODate(start), ClampISODate(end)
	if start == "" || end == "" {
		return nil
	}

	out := make([]AttendanceDay, 0, len(days))
	for _, d := range days {
		if d.Date >= start && d.Date <= end {
			out = append(out, d)
		}
	}
	return out
}

func monthlyStats(days []AttendanceDay) MonthlyStats {
	buckets := make(map[string]*MonthlyStat)

	for _, d := range days {
		iso := ClampISODate(d.Date)
		ym := iso
		if len(ym) > 7 {
			ym = ym[:7]
		}

		b, ok := buckets[ym]
		if !ok {
			b = &MonthlyStat{Month: MonthKeyFromISO(iso), YearMonth: ym}
			buckets[ym] = b
		}
		b.Total += d.TotalClasses
		b.Present += d.AttendedClasses
	}

	stats := make(MonthlyStats, 0, len(buckets))
	for _, b := range buckets {
		b.Percentage = roundPercent(b.Present, b.Total)
		stats = append(stats, *b)
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].YearMonth < stats[j].YearMonth
	})
	return stats
}

func percentOf(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func roundPercent(part, whole int) int {
	return int(roundHalfUp(percentOf(part, whole)))
}

// roundHalfUp rounds .5 toward +Inf, which differs from math.Round only for negatives.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

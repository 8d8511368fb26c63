package services

import (
	"time"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

// Clock decides what "today" is for a student. Attendance dates are calendar
// dates in the student's zone, not UTC instants.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func NewClock(loc *time.Location) Clock {
	return Clock{Now: time.Now, Location: loc}
}

func (c Clock) Today() string {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return domain.TodayISO(now(), c.Location)
}

func (c Clock) CurrentMonthKey() string {
	return domain.MonthKeyFromISO(c.Today())
}

// FixedClock pins today to iso. Used by tests and the ?today= override.
func FixedClock(iso string) Clock {
	t, ok := domain.ParseISODateUTC(iso)
	if !ok {
		t = time.Now().UTC()
	}
	return Clock{Now: func() time.Time { return t }, Location: time.UTC}
}

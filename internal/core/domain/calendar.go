package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	isoDateLayout = "2006-01-02"
	secondsPerDay = 24 * 60 * 60
)

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// ClampISODate truncates a date-like string to its YYYY-MM-DD prefix.
// It does not check that the result is a real calendar date.
func ClampISODate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

// ParseISODateUTC parses the clamped date at UTC midnight. Out-of-range days
// such as 02-31 roll over into the following month.
func ParseISODateUTC(s string) (time.Time, bool) {
	iso := ClampISODate(s)
	if len(iso) != 10 {
		return time.Time{}, false
	}

	y, errY := atoiTrim(iso[0:4])
	m, errM := atoiTrim(iso[5:7])
	d, errD := atoiTrim(iso[8:10])
	if errY != nil || errM != nil || errD != nil {
		return time.Time{}, false
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}

	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), true
}

// CountWorkingDays counts the days in [startISO, endISO] that are not Sundays.
func CountWorkingDays(startISO, endISO string) int {
	start, ok := ParseISODateUTC(startISO)
	if !ok {
		return 0
	}
	end, ok := ParseISODateUTC(endISO)
	if !ok || start.After(end) {
		return 0
	}

	// Both ends sit at UTC midnight, so Unix seconds divide evenly into days.
	total := int((end.Unix()-start.Unix())/secondsPerDay) + 1
	count := total / 7 * 6

	// The leftover days start on the same weekday as start.
	wd := start.Weekday()
	for i := 0; i < total%7; i++ {
		if (wd+time.Weekday(i))%7 != time.Sunday {
			count++
		}
	}
	return count
}

// IsWorkingDay reports whether iso parses to a day other than Sunday.
// Saturdays count as working days.
func IsWorkingDay(iso string) bool {
	t, ok := ParseISODateUTC(iso)
	return ok && t.Weekday() != time.Sunday
}

// AddDaysISO shifts iso by n days. Unparseable input is returned untouched.
func AddDaysISO(iso string, n int) string {
	t, ok := ParseISODateUTC(iso)
	if !ok {
		return iso
	}
	return t.AddDate(0, 0, n).Format(isoDateLayout)
}

// DaysBetween returns the whole days from a to b, or false if either does not parse.
func DaysBetween(a, b string) (int, bool) {
	ta, okA := ParseISODateUTC(a)
	tb, okB := ParseISODateUTC(b)
	if !okA || !okB {
		return 0, false
	}
	return int(tb.Sub(ta).Hours() / 24), true
}

// TodayISO is the caller's local calendar date.
func TodayISO(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(isoDateLayout)
}

// MonthKeyFromISO renders a display bucket such as "March 2024".
func MonthKeyFromISO(iso string) string {
	year := time.Now().Year()
	if len(iso) >= 4 {
		if y, err := atoiTrim(iso[0:4]); err == nil {
			year = y
		}
	}

	month := 1
	if len(iso) >= 7 {
		if m, err := atoiTrim(iso[5:7]); err == nil {
			month = min(12, max(1, m))
		}
	}

	return fmt.Sprintf("%s %d", monthNames[month-1], year)
}

func CurrentMonthKey(now time.Time, loc *time.Location) string {
	return MonthKeyFromISO(TodayISO(now, loc))
}

// YearMonthFromMonthKey is the sortable inverse of MonthKeyFromISO.
// Unknown month names map to "00", unknown years to "0000".
func YearMonthFromMonthKey(monthKey string) string {
	raw := strings.TrimSpace(monthKey)
	if raw == "" {
		return "0000-00"
	}

	parts := strings.Split(raw, " ")
	year, err := atoiTrim(parts[len(parts)-1])
	if err != nil {
		year = 0
	}
	name := strings.Join(parts[:len(parts)-1], " ")

	month := 0
	for i, m := range monthNames {
		if strings.EqualFold(m, name) {
			month = i + 1
			break
		}
	}

	return fmt.Sprintf("%04d-%02d", year, month)
}

// MonthRangeFromMonthKey returns the first and last calendar day of the month.
func MonthRangeFromMonthKey(monthKey string) (start, end string, ok bool) {
	ym := YearMonthFromMonthKey(monthKey)
	year, errY := strconv.Atoi(ym[0:4])
	month, errM := strconv.Atoi(ym[5:7])
	if errY != nil || errM != nil || month < 1 || month > 12 {
		return "", "", false
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(isoDateLayout), last.Format(isoDateLayout), true
}

func atoiTrim(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

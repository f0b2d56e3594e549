// Package dateutil holds the date-only calendar helpers used by the task
// engine. Dates travel as YYYY-MM-DD strings; everything here is pure.
package dateutil

import "time"

const Layout = "2006-01-02"

// Valid reports whether s is a well-formed YYYY-MM-DD calendar date.
func Valid(s string) bool {
	_, err := time.Parse(Layout, s)
	return err == nil
}

// Parse returns the date carried by s, date-only precision.
func Parse(s string) (time.Time, error) {
	return time.Parse(Layout, s)
}

// AddDays shifts s forward by n days. Unparseable input comes back unchanged.
func AddDays(s string, n int) string {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return s
	}
	return t.AddDate(0, 0, n).Format(Layout)
}

// AddMonthsClamped shifts s forward by n months, keeping the day-of-month
// where possible and clamping to the target month's last day otherwise
// (Jan 31 -> Feb 28/29). time.AddDate normalizes overflow forward, which is
// not what a monthly schedule wants.
func AddMonthsClamped(s string, n int) string {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return s
	}
	year, month, day := t.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC).Format(Layout)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

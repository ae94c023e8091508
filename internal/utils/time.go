package utils

import (
	"time"
)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// DayBoundsUTC returns the epoch seconds of 00:00 and 23:59 of t's UTC day.
func DayBoundsUTC(t time.Time) (int64, int64) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 0, 0, time.UTC)
	return start.Unix(), end.Unix()
}

// FormatEpoch formats epoch seconds as "YYYY-MM-DD HH:MM UTC".
func FormatEpoch(sec int64) string {
	return time.Unix(sec, 0).UTC().Format("2006-01-02 15:04") + " UTC"
}

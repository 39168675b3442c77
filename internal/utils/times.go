package utils

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	// TimestampLayout matches the millisecond UTC form browsers emit.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

// DateKey formats t's local wall-clock date as YYYY-MM-DD. No timezone
// normalization is applied.
func DateKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// DayKey builds the key for a calendar day.
func DayKey(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// Timestamp formats t in UTC with millisecond precision.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseDateKey parses a YYYY-MM-DD key in the local zone.
func ParseDateKey(key string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, key, time.Local)
}

// DaysInMonth uses day 0 of the following month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekday is the weekday of day 1, 0 = Sunday.
func FirstWeekday(year int, month time.Month) int {
	return int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday())
}

// FirstDayOfISOWeek returns the Monday starting the given ISO week.
func FirstDayOfISOWeek(year, week int, loc *time.Location) time.Time {
	date := time.Date(year, 1, 1, 0, 0, 0, 0, loc)
	isoYear, isoWeek := date.ISOWeek()

	for date.Weekday() != time.Monday {
		date = date.AddDate(0, 0, -1)
		isoYear, isoWeek = date.ISOWeek()
	}

	for isoYear < year {
		date = date.AddDate(0, 0, 7)
		isoYear, isoWeek = date.ISOWeek()
	}

	for isoWeek < week {
		date = date.AddDate(0, 0, 7)
		_, isoWeek = date.ISOWeek()
	}

	return date
}

package utils

import (
	"fmt"
	"log"
	"time"
)

// TimeNowIST returns the current time in the Indian market timezone.
func TimeNowIST() time.Time {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return time.Now().In(loc)
}

// TruncateDay strips the time-of-day component, keeping the location.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayKey formats a time as a calendar-day key.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekID formats a time as an ISO year-week identifier, e.g. "2026-W35".
func WeekID(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// IsFriday reports whether the given day is a Friday.
func IsFriday(t time.Time) bool {
	return t.Weekday() == time.Friday
}

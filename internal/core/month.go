package core

import (
	"fmt"
	"time"
)

const monthKeyLayout = "2006-01"

// MonthKey is a YYYY-MM bucket. Zero-padded keys sort chronologically as strings.
type MonthKey string

// MonthKeyOf returns the bucket containing t.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey(t.Format(monthKeyLayout))
}

// ParseMonthKey validates a YYYY-MM string.
func ParseMonthKey(s string) (MonthKey, error) {
	if _, err := time.Parse(monthKeyLayout, s); err != nil {
		return "", fmt.Errorf("invalid month key %q: %w", s, err)
	}
	return MonthKey(s), nil
}

// Start returns the first day of the month. Malformed keys yield the zero time.
func (m MonthKey) Start() time.Time {
	t, err := time.Parse(monthKeyLayout, string(m))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Previous returns the calendar month before m.
func (m MonthKey) Previous() MonthKey {
	return MonthKeyOf(m.Start().AddDate(0, -1, 0))
}

// Contains reports whether d falls inside the month.
func (m MonthKey) Contains(d Date) bool {
	return !d.IsZero() && d.MonthKey() == m
}

func (m MonthKey) String() string {
	return string(m)
}

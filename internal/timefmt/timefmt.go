// Package timefmt implements the suite-wide 14-digit timestamp
// contract (yyyymmddhhmmss), used by the query and billing windows.
package timefmt

import (
	"fmt"
	"time"
)

const layout = "20060102150405"

// Parse validates and parses a strict 14-digit yyyymmddhhmmss string.
func Parse(s string) (time.Time, error) {
	if len(s) != 14 {
		return time.Time{}, fmt.Errorf("timestamp must be exactly 14 digits, got %q", s)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return time.Time{}, fmt.Errorf("timestamp must be all digits, got %q", s)
		}
	}
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

func Format(t time.Time) string {
	return t.UTC().Format(layout)
}

// DefaultRange returns (from, to) when either bound is missing from a
// query: from = the first instant of the current month, to = now.
func DefaultRange(fromStr, toStr string, now time.Time) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error

	if fromStr == "" {
		now := now.UTC()
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		from, err = Parse(fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if toStr == "" {
		to = now.UTC()
	} else {
		to, err = Parse(toStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("from (%s) must not be after to (%s)", Format(from), Format(to))
	}

	return from, to, nil
}

package types

import (
	"errors"
	"fmt"
	"time"
)

// DateFormat is the wire and storage format for calendar dates.
const DateFormat = "2006-01-02"

// Date is a calendar date in ISO-8601 "YYYY-MM-DD" format.
//
// It is stored and transmitted as a string on purpose: the format sorts
// lexicographically in date order, so range filters and ordering work with
// plain string comparison both in SQL and in memory.
type Date string

var ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

// NewDate returns the Date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(DateFormat))
}

// ParseDate validates a string and returns it as a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	// Normalize, e.g. reject "2024-1-2" style input that time.Parse
	// would otherwise have errored on anyway
	return Date(t.Format(DateFormat)), nil
}

// DateOf returns the Date on which a time instant falls, in UTC.
func DateOf(t time.Time) Date {
	return Date(t.In(time.UTC).Format(DateFormat))
}

// Today returns the current date in UTC.
func Today() Date {
	return DateOf(time.Now())
}

// Time returns midnight UTC of the date. The zero Date returns the zero time.
func (d Date) Time() time.Time {
	if d == "" {
		return time.Time{}
	}

	t, err := time.Parse(DateFormat, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Valid reports whether d is a well-formed calendar date.
func (d Date) Valid() bool {
	_, err := time.Parse(DateFormat, string(d))
	return err == nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == ""
}

// Month returns the month the date falls in.
func (d Date) Month() Month {
	return MonthOf(d.Time())
}

// AddDays returns the date the given number of days after d.
func (d Date) AddDays(days int) Date {
	return DateOf(d.Time().AddDate(0, 0, days))
}

// DaysSince returns the signed number of whole days from other to d.
func (d Date) DaysSince(other Date) int {
	return int(d.Time().Sub(other.Time()) / (24 * time.Hour))
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return d < other }

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool { return d > other }

func (d Date) String() string { return string(d) }

// Package calendar holds the civil date used by stays, ledgers and calendars.
// A Date has no time of day and no zone; two dates are a whole number of days apart.
package calendar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const layout = time.DateOnly

type Date struct {
	t time.Time
}

func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime keeps the calendar day of t as observed in t's own location.
func FromTime(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}

	y, m, d := t.Date()

	return New(y, m, d)
}

// Parse accepts "2006-01-02" and RFC 3339 timestamps.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}

	if t, err := time.Parse(layout, s); err == nil {
		return FromTime(t), nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, ErrInvalidDate)
	}

	return FromTime(t), nil
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween returns b - a in days.
func DaysBetween(a, b Date) int {
	return int(b.t.Sub(a.t).Hours() / 24) //nolint:gomnd
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) Year() int {
	return d.t.Year()
}

func (d Date) Month() time.Month {
	return d.t.Month()
}

func (d Date) Day() int {
	return d.t.Day()
}

func (d Date) Weekday() time.Weekday {
	return d.t.Weekday()
}

func (d Date) AddDays(n int) Date {
	if d.IsZero() {
		return d
	}

	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool {
	return d.t.Before(o.t)
}

func (d Date) After(o Date) bool {
	return d.t.After(o.t)
}

func (d Date) Equal(o Date) bool {
	return d.t.Equal(o.t)
}

func (d Date) Time() time.Time {
	return d.t
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}

	return d.t.Format(layout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

package availability

import (
	"time"

	"github.com/avstrong/staybook/internal/calendar"
)

// Thresholds the partner calendar colours days by.
const (
	SoldOutThreshold  = 0
	LowStockThreshold = 2
)

type Status string

const (
	StatusSoldOut   Status = "sold_out"
	StatusLowStock  Status = "low_stock"
	StatusAvailable Status = "available"
)

func Classify(available int) Status {
	switch {
	case available <= SoldOutThreshold:
		return StatusSoldOut
	case available <= LowStockThreshold:
		return StatusLowStock
	default:
		return StatusAvailable
	}
}

// LedgerEntry blocks Units over the half-open range [StartDate, EndDate):
// a walk-in, an external channel booking or a manual block.
type LedgerEntry struct {
	ID        string        `json:"id,omitempty"`
	Type      string        `json:"type,omitempty"`
	StartDate calendar.Date `json:"startDate"`
	EndDate   calendar.Date `json:"endDate"`
	Units     int           `json:"units"`
}

func (e LedgerEntry) covers(d calendar.Date) bool {
	return !d.Before(e.StartDate) && d.Before(e.EndDate)
}

// DayAvailability holds the remaining units for each day of one month.
type DayAvailability struct {
	Year           int        `json:"year"`
	Month          time.Month `json:"month"`
	TotalInventory int        `json:"totalInventory"`
	// Available[d-1] is the remaining count on day d.
	Available []int `json:"available"`
}

func (a DayAvailability) Days() int {
	return len(a.Available)
}

// Day returns the remaining units on day d (1-based), or 0 outside the month.
func (a DayAvailability) Day(d int) int {
	if d < 1 || d > len(a.Available) {
		return 0
	}

	return a.Available[d-1]
}

func (a DayAvailability) Status(d int) Status {
	return Classify(a.Day(d))
}

// Date returns the calendar date of day d.
func (a DayAvailability) Date(d int) calendar.Date {
	return calendar.New(a.Year, a.Month, d)
}

// ProjectMonth computes remaining units per day of the month. Overlapping
// entries add up; the result is floored at zero.
func ProjectMonth(totalInventory int, entries []LedgerEntry, year int, month time.Month) DayAvailability {
	totalInventory = max(totalInventory, 0)
	days := calendar.DaysIn(year, month)

	res := DayAvailability{
		Year:           year,
		Month:          month,
		TotalInventory: totalInventory,
		Available:      make([]int, days),
	}

	for d := 1; d <= days; d++ {
		day := calendar.New(year, month, d)
		blocked := 0

		for _, e := range entries {
			if e.Units <= 0 || e.StartDate.IsZero() || e.EndDate.IsZero() {
				continue
			}

			if e.covers(day) {
				blocked += e.Units
			}
		}

		res.Available[d-1] = max(0, totalInventory-blocked)
	}

	return res
}

// Weeks lays the month out as Sunday-first weeks of day numbers, with 0 for
// padding cells.
func (a DayAvailability) Weeks() [][7]int {
	if len(a.Available) == 0 {
		return nil
	}

	var (
		weeks [][7]int
		week  [7]int
	)

	col := int(calendar.New(a.Year, a.Month, 1).Weekday())

	for d := 1; d <= len(a.Available); d++ {
		week[col] = d
		col++

		if col == len(week) {
			weeks = append(weeks, week)
			week = [7]int{}
			col = 0
		}
	}

	if col > 0 {
		weeks = append(weeks, week)
	}

	return weeks
}

package calendar

import "time"

// Cell is one slot of a month grid. Padding cells have a zero Date.
type Cell struct {
	Date time.Time
}

// Empty reports whether c is a padding cell.
func (c Cell) Empty() bool {
	return c.Date.IsZero()
}

// BuildMonthGrid lays out a month in Sunday-to-Saturday weeks: blank cells
// up to the weekday of the 1st, every day of the month, then blank cells
// through Saturday. The result length is a multiple of 7. An out-of-range
// month yields nil.
func BuildMonthGrid(year, month int, loc *time.Location) []Cell {
	if month < 0 || month > 11 {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	first := StartOfMonth(year, time.Month(month+1), loc)
	last := EndOfMonth(year, time.Month(month+1), loc)
	days := DaysInRange(first, last)

	leading := int(first.Weekday())
	trailing := 6 - int(last.Weekday())

	grid := make([]Cell, 0, leading+len(days)+trailing)
	for i := 0; i < leading; i++ {
		grid = append(grid, Cell{})
	}
	for _, d := range days {
		grid = append(grid, Cell{Date: d})
	}
	for i := 0; i < trailing; i++ {
		grid = append(grid, Cell{})
	}
	return grid
}

// Weeks splits a grid into rows of seven cells.
func Weeks(grid []Cell) [][]Cell {
	weeks := make([][]Cell, 0, len(grid)/7)
	for i := 0; i+7 <= len(grid); i += 7 {
		weeks = append(weeks, grid[i:i+7])
	}
	return weeks
}

// ClampMonth keeps a 0-indexed month inside the loaded year.
func ClampMonth(month int) int {
	switch {
	case month < 0:
		return 0
	case month > 11:
		return 11
	default:
		return month
	}
}

// PrevMonth steps back one month; January stays January.
func PrevMonth(month int) int {
	return ClampMonth(month - 1)
}

// NextMonth steps forward one month; December stays December.
func NextMonth(month int) int {
	return ClampMonth(month + 1)
}

package analysis

import (
	"fmt"
	"time"
)

// ISOWeek is a (year, week) pair in the ISO 8601 week-numbering calendar
type ISOWeek struct {
	Year int
	Week int
}

// WeekOf returns the ISO week containing t
func WeekOf(t time.Time) ISOWeek {
	y, w := t.ISOWeek()
	return ISOWeek{Year: y, Week: w}
}

// Monday returns the first day of the week
func (w ISOWeek) Monday() time.Time {
	// January 4th is always in week 1
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, -offset+(w.Week-1)*7)
}

// Next returns the following ISO week, crossing 52- and 53-week years correctly
func (w ISOWeek) Next() ISOWeek {
	return WeekOf(w.Monday().AddDate(0, 0, 7))
}

// Prev returns the preceding ISO week
func (w ISOWeek) Prev() ISOWeek {
	return WeekOf(w.Monday().AddDate(0, 0, -1))
}

// Before reports whether w precedes other
func (w ISOWeek) Before(other ISOWeek) bool {
	if w.Year != other.Year {
		return w.Year < other.Year
	}
	return w.Week < other.Week
}

// String formats the week as "2024-W9"
func (w ISOWeek) String() string {
	return fmt.Sprintf("%d-W%d", w.Year, w.Week)
}

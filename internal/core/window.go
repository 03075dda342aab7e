package core

import (
	"fmt"
	"time"
)

// DateWindow is a closed date range: both Start and End are included.
type DateWindow struct {
	Start Date
	End   Date
}

// NewDateWindow returns ErrInvalidWindow when a bound is missing or start
// comes after end.
func NewDateWindow(start, end Date) (DateWindow, error) {
	w := DateWindow{Start: start, End: end}
	if !w.Valid() {
		return DateWindow{}, fmt.Errorf("%w: %s..%s", ErrInvalidWindow, start, end)
	}
	return w, nil
}

// MonthWindow covers the first to the last day of a calendar month.
func MonthWindow(year, month int) (DateWindow, error) {
	if month < 1 || month > 12 {
		return DateWindow{}, fmt.Errorf("%w: month %d", ErrInvalidWindow, month)
	}
	last := DaysIn(year, time.Month(month))
	return DateWindow{Start: NewDate(year, month, 1), End: NewDate(year, month, last)}, nil
}

// MonthWindowOf returns the calendar month containing d.
func MonthWindowOf(d Date) DateWindow {
	w, _ := MonthWindow(d.Year(), int(d.Month()))
	return w
}

func (w DateWindow) Valid() bool {
	return !w.Start.IsZero() && !w.End.IsZero() && !w.Start.After(w.End)
}

// Contains reports whether d lies inside the window. Zero dates and invalid
// windows contain nothing.
func (w DateWindow) Contains(d Date) bool {
	if d.IsZero() || !w.Valid() {
		return false
	}
	return !d.Before(w.Start) && !d.After(w.End)
}

// Days returns the number of days covered, 0 for an invalid window.
func (w DateWindow) Days() int {
	if !w.Valid() {
		return 0
	}
	return w.Start.DaysUntil(w.End) + 1
}

func (w DateWindow) String() string {
	return w.Start.String() + ".." + w.End.String()
}

// Label renders month windows as "October 2023" and anything else as a range.
func (w DateWindow) Label() string {
	if m := MonthWindowOf(w.Start); w.Valid() && w.Start.Equal(m.Start) && w.End.Equal(m.End) {
		return w.Start.Format("January 2006")
	}
	return w.String()
}

// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for calendar stepping.
// Each periodic frequency (weekly, monthly, annually) has its own stepper
// that knows how to advance a date by one period and how to skip ahead
// towards a window without changing where the series lands.

package services

import (
	"fintrack/internal/core"
)

// Stepper is the strategy interface for advancing a recurring series.
type Stepper interface {
	// Next returns the cursor one period after d.
	Next(d core.Date) core.Date

	// Seek fast-forwards a cursor d that lies before start. The returned
	// cursor is one the step-by-step walk from d would also visit, and it is
	// never later than the first such cursor on or after start.
	Seek(d, start core.Date) core.Date
}

// WeeklyStepper implements Stepper for weekly series.
type WeeklyStepper struct{}

// Next adds seven days.
func (WeeklyStepper) Next(d core.Date) core.Date {
	return d.AddDays(7)
}

// Seek jumps by whole weeks, landing on or before start.
func (WeeklyStepper) Seek(d, start core.Date) core.Date {
	days := d.DaysUntil(start)
	if days < 7 {
		return d
	}
	return d.AddDays(days / 7 * 7)
}

// MonthlyStepper implements Stepper for monthly series.
type MonthlyStepper struct{}

// Next moves to the same day of the following month, clamped to that
// month's last day. The clamped day carries over to later steps: Jan 31
// goes to Feb 28, then Mar 28.
func (MonthlyStepper) Next(d core.Date) core.Date {
	year, month := d.Year(), d.Month()+1
	if month > 12 {
		year, month = year+1, 1
	}
	day := min(d.Day(), core.DaysIn(year, month))
	return core.NewDate(year, int(month), day)
}

// Seek walks normally while the day can still be clamped (29 and later),
// then jumps to the month before start in one step.
func (s MonthlyStepper) Seek(d, start core.Date) core.Date {
	for d.Day() > 28 && d.Before(start) {
		d = s.Next(d)
	}
	if !d.Before(start) {
		return d
	}
	k := (start.Year()-d.Year())*12 + int(start.Month()-d.Month()) - 1
	if k <= 0 {
		return d
	}
	return core.NewDate(d.Year(), int(d.Month())+k, d.Day())
}

// YearlyStepper implements Stepper for annual series.
type YearlyStepper struct{}

// Next moves to the same month and day one year later. Feb 29 becomes Feb
// 28 in a non-leap year and stays on the 28th afterwards.
func (YearlyStepper) Next(d core.Date) core.Date {
	year := d.Year() + 1
	day := min(d.Day(), core.DaysIn(year, d.Month()))
	return core.NewDate(year, int(d.Month()), day)
}

// Seek leaves Feb 29 through a normal step, then jumps to the year before
// start.
func (s YearlyStepper) Seek(d, start core.Date) core.Date {
	if d.Month() == 2 && d.Day() == 29 && d.Before(start) {
		d = s.Next(d)
	}
	if !d.Before(start) {
		return d
	}
	k := start.Year() - d.Year() - 1
	if k <= 0 {
		return d
	}
	return core.NewDate(d.Year()+k, int(d.Month()), d.Day())
}

// recurrenceSteppers maps periodic frequencies to their steppers.
// FrequencyOnce and FrequencyUnknown have no stepper.
var recurrenceSteppers = map[core.Frequency]Stepper{
	core.FrequencyWeekly:   WeeklyStepper{},
	core.FrequencyMonthly:  MonthlyStepper{},
	core.FrequencyAnnually: YearlyStepper{},
}

// AdvanceByPeriod moves d forward by one period of frequency, using the same
// steppers as Occurrences. ok is false when the frequency does not repeat or
// d is the zero Date.
func AdvanceByPeriod(d core.Date, frequency core.Frequency) (next core.Date, ok bool) {
	stepper, ok := recurrenceSteppers[frequency]
	if !ok || d.IsZero() {
		return core.Date{}, false
	}
	return stepper.Next(d), true
}

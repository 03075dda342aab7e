package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	FrequencyOnce     Frequency = "once"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyAnnually Frequency = "annually"

	// FrequencyUnknown is what ParseFrequency returns for anything it does not
	// recognise. Records carrying it expand to zero occurrences.
	FrequencyUnknown Frequency = "unknown"
)

const dateLayout = "2006-01-02"

type (
	Frequency string

	// Date is a calendar day at UTC midnight. The zero Date marks a missing
	// or unparsable date.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Income is either a one-off receipt (FrequencyOnce) or a periodic one
	// anchored at Date.
	Income struct {
		ID        string
		Source    string
		Amount    Money
		Date      Date
		Frequency Frequency
	}

	RecurringExpense struct {
		ID          string
		Description string
		Amount      Money
		Frequency   Frequency
		StartDate   Date
		Tags        []string
	}

	OccasionalExpense struct {
		ID          string
		Description string
		Amount      Money
		Date        Date
		Tags        []string
	}

	// Records groups the three collections a summary is computed over.
	Records struct {
		Incomes            []Income
		RecurringExpenses  []RecurringExpense
		OccasionalExpenses []OccasionalExpense
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidFrequency   = errors.New("invalid frequency")
	ErrInvalidWindow      = errors.New("invalid date window")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptySource        = errors.New("empty income source")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

// ParseFrequency maps user or storage input onto the closed set of
// frequencies. Unrecognised input becomes FrequencyUnknown.
func ParseFrequency(s string) Frequency {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "once", "":
		return FrequencyOnce
	case "weekly":
		return FrequencyWeekly
	case "monthly":
		return FrequencyMonthly
	case "annually", "yearly", "annual":
		return FrequencyAnnually
	default:
		return FrequencyUnknown
	}
}

// IsPeriodic reports whether the frequency repeats.
func (f Frequency) IsPeriodic() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyAnnually:
		return true
	default:
		return false
	}
}

func (f Frequency) String() string {
	return string(f)
}

// UnmarshalText never fails: unknown values decode to FrequencyUnknown.
func (f *Frequency) UnmarshalText(b []byte) error {
	*f = ParseFrequency(string(b))
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// DaysIn returns the number of days of the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

// AddDays moves the date by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysUntil returns the number of calendar days from d to o, negative when o
// comes first. It counts from Unix seconds, so it does not saturate like
// time.Duration does past roughly 292 years.
func (d Date) DaysUntil(o Date) int {
	return int((o.Unix() - d.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON and UnmarshalJSON shadow the ones promoted from time.Time so
// dates travel as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	return d.UnmarshalText([]byte(s))
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NormalizeTags trims tags, drops blanks and duplicates, and keeps the
// input order.
func NormalizeTags(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ParseTags splits comma-separated input such as "food, utility".
func ParseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return NormalizeTags(strings.Split(s, ","))
}

func validateText(s string, empty error) error {
	if len(strings.TrimSpace(s)) == 0 {
		return empty
	}
	if len(s) > 200 {
		return ErrDescriptionTooLong
	}
	return nil
}

func (i Income) Validate() error {
	if err := validateText(i.Source, ErrEmptySource); err != nil {
		return err
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if err := i.Date.Validate(); err != nil {
		return err
	}
	switch i.Frequency {
	case FrequencyOnce, FrequencyWeekly, FrequencyMonthly, FrequencyAnnually:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, i.Frequency)
	}
	return nil
}

func (re RecurringExpense) Validate() error {
	if err := validateText(re.Description, ErrEmptyDescription); err != nil {
		return err
	}
	if err := re.Amount.Validate(); err != nil {
		return err
	}
	if !re.Frequency.IsPeriodic() {
		return fmt.Errorf("%w: %q (must be weekly, monthly or annually)", ErrInvalidFrequency, re.Frequency)
	}
	if err := re.StartDate.Validate(); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	return nil
}

func (oe OccasionalExpense) Validate() error {
	if err := validateText(oe.Description, ErrEmptyDescription); err != nil {
		return err
	}
	if err := oe.Amount.Validate(); err != nil {
		return err
	}
	return oe.Date.Validate()
}

// Clone returns a copy that shares no slices with r.
func (r Records) Clone() Records {
	out := Records{
		Incomes:            slices.Clone(r.Incomes),
		RecurringExpenses:  make([]RecurringExpense, len(r.RecurringExpenses)),
		OccasionalExpenses: make([]OccasionalExpense, len(r.OccasionalExpenses)),
	}
	for i, re := range r.RecurringExpenses {
		re.Tags = slices.Clone(re.Tags)
		out.RecurringExpenses[i] = re
	}
	for i, oe := range r.OccasionalExpenses {
		oe.Tags = slices.Clone(oe.Tags)
		out.OccasionalExpenses[i] = oe
	}
	return out
}

// Len returns the total number of records.
func (r Records) Len() int {
	return len(r.Incomes) + len(r.RecurringExpenses) + len(r.OccasionalExpenses)
}

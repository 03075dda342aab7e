package core

import "sort"

// TagAmount is a spending total attributed to one tag.
type TagAmount struct {
	Tag    string
	Amount Money
}

// Occurrence is one dated instance of an income or recurring expense inside a
// window.
type Occurrence struct {
	Date   Date
	Amount Money
	Tags   []string
	Kind   RecordKind
	// Ref is the description or income source of the record it came from.
	Ref      string
	RecordID string
}

// RecordKind names the collection a record belongs to.
type RecordKind string

const (
	KindIncome            RecordKind = "income"
	KindRecurringExpense  RecordKind = "recurring_expense"
	KindOccasionalExpense RecordKind = "occasional_expense"
)

// Summary holds the totals for one window.
type Summary struct {
	Window                 DateWindow
	TotalIncome            Money
	TotalRecurringExpense  Money
	TotalOccasionalExpense Money
	NetBalance             Money
	TagTotals              map[string]Money
	// Skipped counts records ignored because their date was missing.
	Skipped int
}

// TotalExpenses is recurring plus occasional spending.
func (s Summary) TotalExpenses() Money {
	return s.TotalRecurringExpense.Add(s.TotalOccasionalExpense)
}

// SortedTags returns the tag totals ordered by tag name.
func (s Summary) SortedTags() []TagAmount {
	out := make([]TagAmount, 0, len(s.TagTotals))
	for tag, amount := range s.TagTotals {
		out = append(out, TagAmount{Tag: tag, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

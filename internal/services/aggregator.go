package services

import (
	"slices"

	"fintrack/internal/core"
)

// Aggregate computes the totals and per-tag spending of records inside w.
//
// It is a pure function: records are only read, and identical input in the
// same order gives an identical Summary. Records without a date are skipped
// and counted in Summary.Skipped. An invalid window gives an all-zero
// Summary.
func Aggregate(records core.Records, w core.DateWindow) core.Summary {
	s := core.Summary{Window: w, TagTotals: map[string]core.Money{}}
	if !w.Valid() {
		return s
	}

	var skipped int
	s.TotalIncome, skipped = incomeTotal(records.Incomes, w)
	s.Skipped += skipped
	s.TotalRecurringExpense, skipped = recurringTotal(records.RecurringExpenses, w, s.TagTotals)
	s.Skipped += skipped
	s.TotalOccasionalExpense, skipped = occasionalTotal(records.OccasionalExpenses, w, s.TagTotals)
	s.Skipped += skipped

	s.NetBalance = s.TotalIncome.Sub(s.TotalRecurringExpense).Sub(s.TotalOccasionalExpense)
	return s
}

// TotalIncome sums one-off income dated inside w and amount times
// occurrence count for periodic income.
func TotalIncome(incomes []core.Income, w core.DateWindow) core.Money {
	total, _ := incomeTotal(incomes, w)
	return total
}

// TotalRecurringExpenses sums amount times occurrence count for every
// recurring expense.
func TotalRecurringExpenses(expenses []core.RecurringExpense, w core.DateWindow) core.Money {
	total, _ := recurringTotal(expenses, w, nil)
	return total
}

// TotalOccasionalExpenses sums occasional expenses dated inside w.
func TotalOccasionalExpenses(expenses []core.OccasionalExpense, w core.DateWindow) core.Money {
	total, _ := occasionalTotal(expenses, w, nil)
	return total
}

// WindowOccurrences lists every dated income inside w, one-off or
// periodic, and every instance of recurring expenses, ordered by date.
// Instances on the same day keep input order, incomes first. The income
// amounts listed add up to TotalIncome over the same window.
func WindowOccurrences(records core.Records, w core.DateWindow) []core.Occurrence {
	out := []core.Occurrence{}
	for _, inc := range records.Incomes {
		for d := range Occurrences(inc.Date, inc.Frequency, w) {
			out = append(out, core.Occurrence{
				Date:     d,
				Amount:   inc.Amount,
				Tags:     []string{},
				Kind:     core.KindIncome,
				Ref:      inc.Source,
				RecordID: inc.ID,
			})
		}
	}
	for _, re := range records.RecurringExpenses {
		if !re.Frequency.IsPeriodic() {
			continue
		}
		tags := core.NormalizeTags(re.Tags)
		for d := range Occurrences(re.StartDate, re.Frequency, w) {
			out = append(out, core.Occurrence{
				Date:     d,
				Amount:   re.Amount,
				Tags:     tags,
				Kind:     core.KindRecurringExpense,
				Ref:      re.Description,
				RecordID: re.ID,
			})
		}
	}
	slices.SortStableFunc(out, func(a, b core.Occurrence) int {
		return a.Date.Compare(b.Date.Time)
	})
	return out
}

// ActiveRecurring returns the recurring expenses with at least one
// occurrence inside w.
func ActiveRecurring(records core.Records, w core.DateWindow) []core.RecurringExpense {
	out := []core.RecurringExpense{}
	for _, re := range records.RecurringExpenses {
		if !re.Frequency.IsPeriodic() {
			continue
		}
		for range Occurrences(re.StartDate, re.Frequency, w) {
			out = append(out, re)
			break
		}
	}
	return out
}

// OccasionalInWindow returns the occasional expenses dated inside w.
func OccasionalInWindow(records core.Records, w core.DateWindow) []core.OccasionalExpense {
	out := []core.OccasionalExpense{}
	for _, oe := range records.OccasionalExpenses {
		if w.Contains(oe.Date) {
			out = append(out, oe)
		}
	}
	return out
}

func incomeTotal(incomes []core.Income, w core.DateWindow) (core.Money, int) {
	var total core.Money
	skipped := 0
	for _, inc := range incomes {
		if inc.Date.IsZero() {
			skipped++
			continue
		}
		n := CountOccurrences(inc.Date, inc.Frequency, w)
		total = total.Add(inc.Amount.Mul(int64(n)))
	}
	return total, skipped
}

// recurringTotal also fans each occurrence out to tags when tags is non-nil.
func recurringTotal(expenses []core.RecurringExpense, w core.DateWindow, tags map[string]core.Money) (core.Money, int) {
	var total core.Money
	skipped := 0
	for _, re := range expenses {
		if re.StartDate.IsZero() {
			skipped++
			continue
		}
		// once is not a valid recurring-expense frequency
		if !re.Frequency.IsPeriodic() {
			continue
		}
		n := int64(CountOccurrences(re.StartDate, re.Frequency, w))
		if n == 0 {
			continue
		}
		amount := re.Amount.Mul(n)
		total = total.Add(amount)
		if tags != nil {
			addTags(tags, re.Tags, amount)
		}
	}
	return total, skipped
}

func occasionalTotal(expenses []core.OccasionalExpense, w core.DateWindow, tags map[string]core.Money) (core.Money, int) {
	var total core.Money
	skipped := 0
	for _, oe := range expenses {
		if oe.Date.IsZero() {
			skipped++
			continue
		}
		if !w.Contains(oe.Date) {
			continue
		}
		total = total.Add(oe.Amount)
		if tags != nil {
			addTags(tags, oe.Tags, oe.Amount)
		}
	}
	return total, skipped
}

// addTags credits the full amount to every distinct, non-blank tag.
func addTags(totals map[string]core.Money, tags []string, amount core.Money) {
	for _, tag := range core.NormalizeTags(tags) {
		totals[tag] = totals[tag].Add(amount)
	}
}

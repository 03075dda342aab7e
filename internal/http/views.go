package http

import (
	"fintrack/internal/core"
	"fintrack/internal/services"
)

// JSON shapes of the API. Amounts travel as decimal strings with two places
// so clients never see binary float rounding.
type (
	windowView struct {
		Start core.Date `json:"start"`
		End   core.Date `json:"end"`
		Label string    `json:"label"`
	}

	tagView struct {
		Tag    string `json:"tag"`
		Amount string `json:"amount"`
	}

	summaryView struct {
		Window                 windowView `json:"window"`
		TotalIncome            string     `json:"total_income"`
		TotalRecurringExpense  string     `json:"total_recurring_expense"`
		TotalOccasionalExpense string     `json:"total_occasional_expense"`
		TotalExpenses          string     `json:"total_expenses"`
		NetBalance             string     `json:"net_balance"`
		TagTotals              []tagView  `json:"tag_totals"`
		Skipped                int        `json:"skipped"`
	}

	occurrenceView struct {
		Date      core.Date       `json:"date"`
		Kind      core.RecordKind `json:"kind"`
		Reference string          `json:"reference"`
		RecordID  string          `json:"record_id"`
		Amount    string          `json:"amount"`
		Tags      []string        `json:"tags"`
	}

	recurringView struct {
		ID          string         `json:"id"`
		Description string         `json:"description"`
		Amount      string         `json:"amount"`
		Frequency   core.Frequency `json:"frequency"`
		StartDate   core.Date      `json:"start_date"`
		Tags        []string       `json:"tags"`
	}

	occasionalView struct {
		ID          string    `json:"id"`
		Description string    `json:"description"`
		Amount      string    `json:"amount"`
		Date        core.Date `json:"date"`
		Tags        []string  `json:"tags"`
	}

	listingView struct {
		Window             windowView       `json:"window"`
		Occurrences        []occurrenceView `json:"occurrences"`
		RecurringExpenses  []recurringView  `json:"recurring_expenses"`
		OccasionalExpenses []occasionalView `json:"occasional_expenses"`
	}

	createdView struct {
		ID   string          `json:"id"`
		Kind core.RecordKind `json:"kind"`
	}
)

func newWindowView(w core.DateWindow) windowView {
	return windowView{Start: w.Start, End: w.End, Label: w.Label()}
}

func newSummaryView(s core.Summary) summaryView {
	v := summaryView{
		Window:                 newWindowView(s.Window),
		TotalIncome:            s.TotalIncome.String(),
		TotalRecurringExpense:  s.TotalRecurringExpense.String(),
		TotalOccasionalExpense: s.TotalOccasionalExpense.String(),
		TotalExpenses:          s.TotalExpenses().String(),
		NetBalance:             s.NetBalance.String(),
		TagTotals:              []tagView{},
		Skipped:                s.Skipped,
	}
	for _, ta := range s.SortedTags() {
		v.TagTotals = append(v.TagTotals, tagView{Tag: ta.Tag, Amount: ta.Amount.String()})
	}
	return v
}

func newListingView(l services.WindowListing) listingView {
	v := listingView{
		Window:             newWindowView(l.Window),
		Occurrences:        make([]occurrenceView, 0, len(l.Occurrences)),
		RecurringExpenses:  make([]recurringView, 0, len(l.Recurring)),
		OccasionalExpenses: make([]occasionalView, 0, len(l.Occasional)),
	}
	for _, o := range l.Occurrences {
		v.Occurrences = append(v.Occurrences, occurrenceView{
			Date: o.Date, Kind: o.Kind, Reference: o.Ref, RecordID: o.RecordID,
			Amount: o.Amount.String(), Tags: nonNilTags(o.Tags),
		})
	}
	for _, re := range l.Recurring {
		v.RecurringExpenses = append(v.RecurringExpenses, recurringView{
			ID: re.ID, Description: re.Description, Amount: re.Amount.String(),
			Frequency: re.Frequency, StartDate: re.StartDate, Tags: nonNilTags(re.Tags),
		})
	}
	for _, oe := range l.Occasional {
		v.OccasionalExpenses = append(v.OccasionalExpenses, occasionalView{
			ID: oe.ID, Description: oe.Description, Amount: oe.Amount.String(),
			Date: oe.Date, Tags: nonNilTags(oe.Tags),
		})
	}
	return v
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

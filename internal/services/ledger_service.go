package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

// Publisher announces stored records to other processes.
type Publisher interface {
	PublishRecordAdded(ctx context.Context, kind core.RecordKind, id string, date core.Date) error
}

// WindowListing is everything dated inside one window.
type WindowListing struct {
	Window      core.DateWindow
	Occurrences []core.Occurrence
	Recurring   []core.RecurringExpense
	Occasional  []core.OccasionalExpense
}

// Dated merges the occurrences with the occasional expenses into one list
// ordered by date. Entries on the same day keep occurrences first.
func (l WindowListing) Dated() []core.Occurrence {
	out := slices.Clone(l.Occurrences)
	for _, oe := range l.Occasional {
		out = append(out, core.Occurrence{
			Date:     oe.Date,
			Amount:   oe.Amount,
			Tags:     oe.Tags,
			Kind:     core.KindOccasionalExpense,
			Ref:      oe.Description,
			RecordID: oe.ID,
		})
	}
	slices.SortStableFunc(out, func(a, b core.Occurrence) int { return a.Date.Compare(b.Date.Time) })
	return out
}

// LedgerService validates and stores records and computes summaries over a
// snapshot of the store.
type LedgerService struct {
	store     ledger.Store
	publisher Publisher
	logger    *log.StructuredLogger
	closers   []func() error
}

// NewLedgerService wires a store with an optional publisher. A nil logger
// discards output.
func NewLedgerService(store ledger.Store, publisher Publisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.Discard()
	}
	return &LedgerService{
		store:     store,
		publisher: publisher,
		logger:    log.NewStructuredLogger(logger),
	}
}

// OnClose registers cleanup run by Close, in registration order.
func (s *LedgerService) OnClose(fn func() error) {
	if fn != nil {
		s.closers = append(s.closers, fn)
	}
}

func (s *LedgerService) AddIncome(ctx context.Context, in core.Income) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	id, err := s.store.AddIncome(ctx, in)
	if err != nil {
		return "", fmt.Errorf("save income: %w", err)
	}
	s.recordAdded(ctx, core.KindIncome, id, in.Date, in.Amount)
	return id, nil
}

func (s *LedgerService) AddRecurringExpense(ctx context.Context, re core.RecurringExpense) (string, error) {
	if err := re.Validate(); err != nil {
		return "", err
	}
	id, err := s.store.AddRecurringExpense(ctx, re)
	if err != nil {
		return "", fmt.Errorf("save recurring expense: %w", err)
	}
	s.recordAdded(ctx, core.KindRecurringExpense, id, re.StartDate, re.Amount)
	return id, nil
}

func (s *LedgerService) AddOccasionalExpense(ctx context.Context, oe core.OccasionalExpense) (string, error) {
	if err := oe.Validate(); err != nil {
		return "", err
	}
	id, err := s.store.AddOccasionalExpense(ctx, oe)
	if err != nil {
		return "", fmt.Errorf("save occasional expense: %w", err)
	}
	s.recordAdded(ctx, core.KindOccasionalExpense, id, oe.Date, oe.Amount)
	return id, nil
}

// recordAdded logs the write and publishes it. Publish failures are logged
// only: the record is already stored.
func (s *LedgerService) recordAdded(ctx context.Context, kind core.RecordKind, id string, date core.Date, amount core.Money) {
	s.logger.LogRecordAdded(ctx, kind, id, date, amount)
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordAdded(ctx, kind, id, date); err != nil {
		s.logger.LogError(ctx, "Failed to publish record added message", err,
			log.ComponentAMQP, log.OpPublish, log.NewFields().WithRecord(kind, id, date, amount))
	}
}

// Records returns a snapshot of every stored record.
func (s *LedgerService) Records(ctx context.Context) (core.Records, error) {
	records, err := s.store.Snapshot(ctx)
	if err != nil {
		return core.Records{}, fmt.Errorf("snapshot records: %w", err)
	}
	return records, nil
}

// Summary aggregates the stored records over w. An invalid window is
// reported as core.ErrInvalidWindow so callers can reject the request; the
// engine itself would return an all-zero summary.
func (s *LedgerService) Summary(ctx context.Context, w core.DateWindow) (core.Summary, error) {
	if !w.Valid() {
		return core.Summary{}, fmt.Errorf("%w: %s", core.ErrInvalidWindow, w)
	}
	records, err := s.Records(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	summary := Aggregate(records, w)
	s.logger.LogSummary(ctx, summary)
	return summary, nil
}

// MonthlySummary is Summary over one calendar month.
func (s *LedgerService) MonthlySummary(ctx context.Context, year, month int) (core.Summary, error) {
	w, err := core.MonthWindow(year, month)
	if err != nil {
		return core.Summary{}, err
	}
	return s.Summary(ctx, w)
}

// Occurrences lists what happens inside w: dated recurring instances, the
// recurring expenses active in w and the occasional expenses dated in w.
func (s *LedgerService) Occurrences(ctx context.Context, w core.DateWindow) (WindowListing, error) {
	if !w.Valid() {
		return WindowListing{}, fmt.Errorf("%w: %s", core.ErrInvalidWindow, w)
	}
	records, err := s.Records(ctx)
	if err != nil {
		return WindowListing{}, err
	}
	return WindowListing{
		Window:      w,
		Occurrences: WindowOccurrences(records, w),
		Recurring:   ActiveRecurring(records, w),
		Occasional:  OccasionalInWindow(records, w),
	}, nil
}

// Close runs the registered cleanups and joins their errors.
func (s *LedgerService) Close() error {
	var errs []error
	for _, fn := range s.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}
	return nil
}

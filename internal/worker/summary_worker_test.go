package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/ledger/memory"
	"fintrack/internal/services"
)

type countingSource struct {
	SummarySource
	windows []core.DateWindow
	err     error
}

func (s *countingSource) Summary(ctx context.Context, w core.DateWindow) (core.Summary, error) {
	s.windows = append(s.windows, w)
	if s.err != nil {
		return core.Summary{}, s.err
	}
	return s.SummarySource.Summary(ctx, w)
}

func newLedger(t *testing.T) *services.LedgerService {
	t.Helper()
	svc := services.NewLedgerService(memory.New(core.Records{}), nil, nil)
	_, err := svc.AddRecurringExpense(context.Background(), core.RecurringExpense{
		Description: "Rent", Amount: core.NewMoney(500, 0), Frequency: core.FrequencyMonthly, StartDate: core.NewDate(2023, 1, 31),
	})
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestHandleRecordAddedRefreshesMonthOfRecord(t *testing.T) {
	src := &countingSource{SummarySource: newLedger(t)}
	w := NewSummaryWorker(src, "", nil)
	w.now = func() time.Time { return time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC) }

	msg := amqp.NewRecordAddedMessage(core.KindOccasionalExpense, "abc", core.NewDate(2024, 2, 17))
	if err := w.HandleRecordAdded(context.Background(), msg); err != nil {
		t.Fatalf("HandleRecordAdded() error = %v", err)
	}

	if len(src.windows) != 1 {
		t.Fatalf("summaries computed = %d, want 1", len(src.windows))
	}
	got := src.windows[0]
	if got.Start.String() != "2024-02-01" || got.End.String() != "2024-02-29" {
		t.Errorf("window = %s, want February 2024", got)
	}
}

func TestHandleRecordAddedRefreshesCurrentMonthForRepeatingRecords(t *testing.T) {
	tests := []struct {
		name string
		kind core.RecordKind
		date core.Date
		want []string
	}{
		{"recurring expense from an earlier month", core.KindRecurringExpense, core.NewDate(2023, 7, 31), []string{"July 2023", "October 2023"}},
		{"income from an earlier month", core.KindIncome, core.NewDate(2023, 9, 29), []string{"September 2023", "October 2023"}},
		{"recurring expense in the current month", core.KindRecurringExpense, core.NewDate(2023, 10, 2), []string{"October 2023"}},
		{"recurring expense starting later", core.KindRecurringExpense, core.NewDate(2024, 1, 1), []string{"January 2024"}},
		{"occasional expense from an earlier month", core.KindOccasionalExpense, core.NewDate(2023, 7, 31), []string{"July 2023"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &countingSource{SummarySource: newLedger(t)}
			w := NewSummaryWorker(src, "", nil)
			w.now = func() time.Time { return time.Date(2023, 10, 19, 15, 4, 5, 0, time.UTC) }

			msg := amqp.NewRecordAddedMessage(tt.kind, "abc", tt.date)
			if err := w.HandleRecordAdded(context.Background(), msg); err != nil {
				t.Fatalf("HandleRecordAdded() error = %v", err)
			}
			var got []string
			for _, win := range src.windows {
				got = append(got, win.Label())
			}
			if len(got) != len(tt.want) {
				t.Fatalf("refreshed %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("refresh %d = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestHandleRecordAddedPropagatesErrors(t *testing.T) {
	src := &countingSource{SummarySource: newLedger(t), err: errors.New("store unavailable")}
	w := NewSummaryWorker(src, "", nil)

	msg := amqp.NewRecordAddedMessage(core.KindIncome, "abc", core.NewDate(2023, 10, 1))
	if err := w.HandleRecordAdded(context.Background(), msg); err == nil {
		t.Fatal("expected error so the message is requeued")
	}
}

func TestRefreshWritesReport(t *testing.T) {
	dir := t.TempDir()
	w := NewSummaryWorker(newLedger(t), dir, nil)

	win, _ := core.MonthWindow(2023, 2)
	path, err := w.Refresh(context.Background(), win)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if path != filepath.Join(dir, "summary-2023-02.xlsx") {
		t.Errorf("path = %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("report missing: %v", err)
	}
}

func TestRefreshCurrentMonthUsesCurrentMonth(t *testing.T) {
	src := &countingSource{SummarySource: newLedger(t)}
	w := NewSummaryWorker(src, "", nil)
	w.now = func() time.Time { return time.Date(2023, 10, 19, 15, 4, 5, 0, time.UTC) }

	if err := w.RefreshCurrentMonth(context.Background()); err != nil {
		t.Fatalf("RefreshCurrentMonth() error = %v", err)
	}
	if len(src.windows) != 1 || src.windows[0].Label() != "October 2023" {
		t.Errorf("windows = %v", src.windows)
	}
}

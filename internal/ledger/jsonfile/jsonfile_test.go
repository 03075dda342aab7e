package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

func TestStoreRoundTripsThroughFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "financial_data.json")

	s, err := Open(path, log.Discard())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.AddIncome(ctx, core.Income{Source: "Part-time job", Amount: core.NewMoney(200, 0), Date: core.NewDate(2023, 10, 27), Frequency: core.FrequencyWeekly}); err != nil {
		t.Fatalf("add income: %v", err)
	}
	if _, err := s.AddRecurringExpense(ctx, core.RecurringExpense{Description: "Rent", Amount: core.NewMoney(500, 0), Frequency: core.FrequencyMonthly, StartDate: core.NewDate(2023, 11, 1), Tags: []string{"housing"}}); err != nil {
		t.Fatalf("add recurring: %v", err)
	}
	if _, err := s.AddOccasionalExpense(ctx, core.OccasionalExpense{Description: "Biology textbook", Amount: core.NewMoney(75, 50), Date: core.NewDate(2023, 10, 15)}); err != nil {
		t.Fatalf("add occasional: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	for _, want := range []string{`"amount": 75.50`, `"start_date": "2023-11-01"`, `"tags": []`, `"frequency": "weekly"`} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("file missing %s:\n%s", want, raw)
		}
	}

	reopened, err := Open(path, log.Discard())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	before, _ := s.Snapshot(ctx)
	after, _ := reopened.Snapshot(ctx)
	if after.Len() != 3 {
		t.Fatalf("reopened store has %d records", after.Len())
	}
	if after.Incomes[0].ID != before.Incomes[0].ID || !after.Incomes[0].Date.Equal(before.Incomes[0].Date) {
		t.Errorf("income changed across reload: %+v vs %+v", after.Incomes[0], before.Incomes[0])
	}
	if after.OccasionalExpenses[0].Amount != core.NewMoney(75, 50) {
		t.Errorf("amount changed across reload: %v", after.OccasionalExpenses[0].Amount)
	}
	if tags := after.RecurringExpenses[0].Tags; len(tags) != 1 || tags[0] != "housing" {
		t.Errorf("tags changed across reload: %v", tags)
	}
}

func TestOpenLegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "financial_data.json")
	legacy := `{
    "incomes": [
        {"source": "Scholarship", "amount": 1000.0, "date": "2023-09-01"},
        {"source": "Job", "amount": "200", "date": "2023-10-27", "frequency": "weekly"}
    ],
    "recurring_expenses": [
        {"description": "Gym", "amount": 30.0, "frequency": "monthly", "start_date": "2023-10-01"},
        {"description": "Odd", "amount": 5, "frequency": "once", "start_date": "2023-10-01"}
    ],
    "occasional_expenses": [
        {"description": "Concert", "amount": 65.005, "date": "2023-11-05"},
        {"description": "Broken", "amount": 10, "date": "not-a-date", "tags": ["fun"]}
    ]
}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := Open(path, log.Discard())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	r, _ := s.Snapshot(context.Background())

	if r.Incomes[0].Frequency != core.FrequencyOnce || r.Incomes[0].Amount.Cents != 100000 || r.Incomes[0].ID == "" {
		t.Errorf("unexpected first income: %+v", r.Incomes[0])
	}
	if r.Incomes[1].Frequency != core.FrequencyWeekly || r.Incomes[1].Amount.Cents != 20000 {
		t.Errorf("unexpected second income: %+v", r.Incomes[1])
	}
	if r.RecurringExpenses[0].Tags == nil || len(r.RecurringExpenses[0].Tags) != 0 {
		t.Errorf("missing tags should load as empty, got %#v", r.RecurringExpenses[0].Tags)
	}
	if r.RecurringExpenses[1].Frequency != core.FrequencyUnknown {
		t.Errorf("non-periodic recurring frequency should load as unknown, got %s", r.RecurringExpenses[1].Frequency)
	}
	if r.OccasionalExpenses[0].Amount.Cents != 6501 {
		t.Errorf("amount rounding: got %d cents", r.OccasionalExpenses[0].Amount.Cents)
	}
	if !r.OccasionalExpenses[1].Date.IsZero() {
		t.Errorf("unreadable date should load as zero, got %s", r.OccasionalExpenses[1].Date)
	}
}

func TestOpenMissingAndEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "absent.json"), nil)
	if err != nil {
		t.Fatalf("open missing: %v", err)
	}
	if r, _ := s.Snapshot(context.Background()); r.Len() != 0 {
		t.Fatalf("expected empty store")
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(empty, nil); err != nil {
		t.Fatalf("open empty: %v", err)
	}
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"incomes": [`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path, nil); err == nil {
		t.Fatalf("expected error for corrupt file")
	}
}

func TestAddLeavesStoreUnchangedWhenPersistFails(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	s, err := Open(filepath.Join(dir, "data.json"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(dir); err != nil {
		t.Fatal(err)
	}
	_, err = s.AddOccasionalExpense(context.Background(), core.OccasionalExpense{
		Description: "Lunch", Amount: core.NewMoney(9, 0), Date: core.NewDate(2023, 10, 2),
	})
	if err == nil {
		t.Fatalf("expected persist error")
	}
	if r, _ := s.Snapshot(context.Background()); r.Len() != 0 {
		t.Fatalf("failed add must not stay in memory")
	}
}

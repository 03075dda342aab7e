package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fintrack/internal/core"
)

func TestMemoryStoreAddAndSnapshot(t *testing.T) {
	ctx := context.Background()
	s := New(core.Records{})

	id, err := s.AddIncome(ctx, core.Income{
		Source:    "Part-time job",
		Amount:    core.NewMoney(200, 0),
		Date:      core.NewDate(2023, 10, 27),
		Frequency: core.FrequencyWeekly,
	})
	if err != nil || id == "" {
		t.Fatalf("unexpected add: id=%q err=%v", id, err)
	}
	if _, err := s.AddRecurringExpense(ctx, core.RecurringExpense{
		Description: "Rent",
		Amount:      core.NewMoney(500, 0),
		Frequency:   core.FrequencyMonthly,
		StartDate:   core.NewDate(2023, 11, 1),
		Tags:        []string{"housing", " housing", ""},
	}); err != nil {
		t.Fatalf("add recurring: %v", err)
	}
	if _, err := s.AddOccasionalExpense(ctx, core.OccasionalExpense{
		Description: "Biology textbook",
		Amount:      core.NewMoney(75, 50),
		Date:        core.NewDate(2023, 10, 15),
	}); err != nil {
		t.Fatalf("add occasional: %v", err)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Len() != 3 || snap.Incomes[0].ID != id {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if tags := snap.RecurringExpenses[0].Tags; len(tags) != 1 || tags[0] != "housing" {
		t.Fatalf("tags not normalized: %v", tags)
	}

	// Mutating the snapshot must not leak into the store.
	snap.RecurringExpenses[0].Tags[0] = "changed"
	again, _ := s.Snapshot(ctx)
	if again.RecurringExpenses[0].Tags[0] != "housing" {
		t.Fatalf("snapshot shares memory with store")
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New(core.Records{})
	_, err := s.AddOccasionalExpense(context.Background(), core.OccasionalExpense{
		Description: "x",
		Amount:      core.Money{},
		Date:        core.NewDate(2023, 10, 1),
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	snap, _ := s.Snapshot(context.Background())
	if snap.Len() != 0 {
		t.Fatalf("invalid record stored")
	}
}

func TestNewAssignsSeedIDs(t *testing.T) {
	s := New(core.Records{
		Incomes: []core.Income{{ID: "keep", Source: "a"}, {Source: "b"}},
	})
	snap, _ := s.Snapshot(context.Background())
	if snap.Incomes[0].ID != "keep" || snap.Incomes[1].ID == "" {
		t.Fatalf("unexpected IDs: %+v", snap.Incomes)
	}
}

func TestMemoryStoreConcurrentAdds(t *testing.T) {
	s := New(core.Records{})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.AddOccasionalExpense(context.Background(), core.OccasionalExpense{
				Description: "coffee",
				Amount:      core.NewMoney(3, 0),
				Date:        core.NewDate(2023, 10, 1),
			})
		}()
	}
	wg.Wait()
	snap, _ := s.Snapshot(context.Background())
	if len(snap.OccasionalExpenses) != 50 {
		t.Fatalf("got %d records, want 50", len(snap.OccasionalExpenses))
	}
}

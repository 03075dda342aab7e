package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// Store keeps records in process memory. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	records core.Records
}

// New returns a store preloaded with seed. Seed records without an ID get one.
func New(seed core.Records) *Store {
	s := &Store{records: seed.Clone()}
	for i := range s.records.Incomes {
		s.records.Incomes[i].ID = ensureID(s.records.Incomes[i].ID)
	}
	for i := range s.records.RecurringExpenses {
		s.records.RecurringExpenses[i].ID = ensureID(s.records.RecurringExpenses[i].ID)
	}
	for i := range s.records.OccasionalExpenses {
		s.records.OccasionalExpenses[i].ID = ensureID(s.records.OccasionalExpenses[i].ID)
	}
	return s
}

func (s *Store) AddIncome(_ context.Context, in core.Income) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	in.ID = ensureID(in.ID)
	s.records.Incomes = append(s.records.Incomes, in)
	return in.ID, nil
}

func (s *Store) AddRecurringExpense(_ context.Context, re core.RecurringExpense) (string, error) {
	if err := re.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	re.ID = ensureID(re.ID)
	re.Tags = core.NormalizeTags(re.Tags)
	s.records.RecurringExpenses = append(s.records.RecurringExpenses, re)
	return re.ID, nil
}

func (s *Store) AddOccasionalExpense(_ context.Context, oe core.OccasionalExpense) (string, error) {
	if err := oe.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	oe.ID = ensureID(oe.ID)
	oe.Tags = core.NormalizeTags(oe.Tags)
	s.records.OccasionalExpenses = append(s.records.OccasionalExpenses, oe)
	return oe.ID, nil
}

// Snapshot returns a deep copy of the stored records.
func (s *Store) Snapshot(_ context.Context) (core.Records, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.Clone(), nil
}

func ensureID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// Package jsonfile stores records in a single JSON document of the form
//
//	{"incomes": [...], "recurring_expenses": [...], "occasional_expenses": [...]}
//
// Dates are ISO (YYYY-MM-DD). Amounts are read from JSON numbers or strings
// and written as numbers with two decimals.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// DefaultFile is the file name used when none is configured.
const DefaultFile = "financial_data.json"

type (
	amount core.Money

	incomeJSON struct {
		ID        string `json:"id,omitempty"`
		Source    string `json:"source"`
		Amount    amount `json:"amount"`
		Date      string `json:"date"`
		Frequency string `json:"frequency,omitempty"`
	}

	recurringJSON struct {
		ID          string   `json:"id,omitempty"`
		Description string   `json:"description"`
		Amount      amount   `json:"amount"`
		Frequency   string   `json:"frequency"`
		StartDate   string   `json:"start_date"`
		Tags        []string `json:"tags"`
	}

	occasionalJSON struct {
		ID          string   `json:"id,omitempty"`
		Description string   `json:"description"`
		Amount      amount   `json:"amount"`
		Date        string   `json:"date"`
		Tags        []string `json:"tags"`
	}

	document struct {
		Incomes            []incomeJSON     `json:"incomes"`
		RecurringExpenses  []recurringJSON  `json:"recurring_expenses"`
		OccasionalExpenses []occasionalJSON `json:"occasional_expenses"`
	}
)

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(core.Money(a).String()), nil
}

func (a *amount) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("amount %s: %w", b, core.ErrInvalidAmount)
	}
	m, err := core.MoneyFromDecimal(d)
	if err != nil {
		return fmt.Errorf("amount %s: %w", b, err)
	}
	*a = amount(m)
	return nil
}

// Store keeps records in memory and rewrites the whole file after each add.
type Store struct {
	mu      sync.Mutex
	path    string
	records core.Records
	logger  *log.Logger
}

// Open loads path, or starts empty when the file does not exist yet.
// Records whose date cannot be parsed are kept with a zero date, so the
// aggregator skips them, and a warning is logged. A file that is not valid
// JSON is an error.
func Open(path string, logger *log.Logger) (*Store, error) {
	if path == "" {
		path = DefaultFile
	}
	if logger == nil {
		logger = log.Discard()
	}
	s := &Store{path: path, logger: logger.WithComponent(log.ComponentLedger)}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return s, nil
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	s.records = s.fromDocument(doc)
	s.logger.Info("Records loaded",
		log.FieldFile, path,
		"incomes", len(s.records.Incomes),
		"recurring_expenses", len(s.records.RecurringExpenses),
		"occasional_expenses", len(s.records.OccasionalExpenses))
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

func (s *Store) AddIncome(_ context.Context, in core.Income) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	in.ID = ensureID(in.ID)
	s.records.Incomes = append(s.records.Incomes, in)
	if err := s.persist(); err != nil {
		s.records.Incomes = s.records.Incomes[:len(s.records.Incomes)-1]
		return "", err
	}
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
	if err := s.persist(); err != nil {
		s.records.RecurringExpenses = s.records.RecurringExpenses[:len(s.records.RecurringExpenses)-1]
		return "", err
	}
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
	if err := s.persist(); err != nil {
		s.records.OccasionalExpenses = s.records.OccasionalExpenses[:len(s.records.OccasionalExpenses)-1]
		return "", err
	}
	return oe.ID, nil
}

// Snapshot returns a deep copy of the stored records.
func (s *Store) Snapshot(_ context.Context) (core.Records, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.Clone(), nil
}

// persist writes to a temp file next to the target and renames it over the
// target. Callers hold s.mu.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(toDocument(s.records), "", "    ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	s.logger.Debug("Records saved", log.FieldFile, s.path, "records", s.records.Len())
	return nil
}

func (s *Store) fromDocument(doc document) core.Records {
	var out core.Records
	for _, in := range doc.Incomes {
		out.Incomes = append(out.Incomes, core.Income{
			ID:        ensureID(in.ID),
			Source:    in.Source,
			Amount:    core.Money(in.Amount),
			Date:      s.loadDate(in.Date, "income", in.Source),
			Frequency: core.ParseFrequency(in.Frequency),
		})
	}
	for _, re := range doc.RecurringExpenses {
		freq := core.ParseFrequency(re.Frequency)
		if !freq.IsPeriodic() {
			freq = core.FrequencyUnknown
		}
		out.RecurringExpenses = append(out.RecurringExpenses, core.RecurringExpense{
			ID:          ensureID(re.ID),
			Description: re.Description,
			Amount:      core.Money(re.Amount),
			Frequency:   freq,
			StartDate:   s.loadDate(re.StartDate, "recurring expense", re.Description),
			Tags:        core.NormalizeTags(re.Tags),
		})
	}
	for _, oe := range doc.OccasionalExpenses {
		out.OccasionalExpenses = append(out.OccasionalExpenses, core.OccasionalExpense{
			ID:          ensureID(oe.ID),
			Description: oe.Description,
			Amount:      core.Money(oe.Amount),
			Date:        s.loadDate(oe.Date, "occasional expense", oe.Description),
			Tags:        core.NormalizeTags(oe.Tags),
		})
	}
	return out
}

func (s *Store) loadDate(raw, kind, name string) core.Date {
	d, err := core.ParseDate(raw)
	if err != nil {
		s.logger.Warn("Record has an unreadable date and will be skipped in summaries",
			"kind", kind, "name", name, log.FieldError, err)
		return core.Date{}
	}
	return d
}

func toDocument(r core.Records) document {
	doc := document{
		Incomes:            make([]incomeJSON, 0, len(r.Incomes)),
		RecurringExpenses:  make([]recurringJSON, 0, len(r.RecurringExpenses)),
		OccasionalExpenses: make([]occasionalJSON, 0, len(r.OccasionalExpenses)),
	}
	for _, in := range r.Incomes {
		doc.Incomes = append(doc.Incomes, incomeJSON{
			ID:        in.ID,
			Source:    in.Source,
			Amount:    amount(in.Amount),
			Date:      in.Date.String(),
			Frequency: in.Frequency.String(),
		})
	}
	for _, re := range r.RecurringExpenses {
		doc.RecurringExpenses = append(doc.RecurringExpenses, recurringJSON{
			ID:          re.ID,
			Description: re.Description,
			Amount:      amount(re.Amount),
			Frequency:   re.Frequency.String(),
			StartDate:   re.StartDate.String(),
			Tags:        nonNil(re.Tags),
		})
	}
	for _, oe := range r.OccasionalExpenses {
		doc.OccasionalExpenses = append(doc.OccasionalExpenses, occasionalJSON{
			ID:          oe.ID,
			Description: oe.Description,
			Amount:      amount(oe.Amount),
			Date:        oe.Date.String(),
			Tags:        nonNil(oe.Tags),
		})
	}
	return doc
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func ensureID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists records in SQLite and implements ledger.Store.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) AddIncome(ctx context.Context, in core.Income) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	id := ensureID(in.ID)
	err := r.queries.CreateIncome(ctx, CreateIncomeParams{
		ID:          id,
		Source:      in.Source,
		AmountCents: in.Amount.Cents,
		Date:        in.Date.String(),
		Frequency:   in.Frequency.String(),
	})
	if err != nil {
		return "", fmt.Errorf("create income: %w", err)
	}

	slog.InfoContext(ctx, "Income saved to SQLite",
		"id", id,
		"source", in.Source,
		"amount_cents", in.Amount.Cents,
		"frequency", in.Frequency)

	return id, nil
}

func (r *SQLiteRepository) AddRecurringExpense(ctx context.Context, re core.RecurringExpense) (string, error) {
	if err := re.Validate(); err != nil {
		return "", err
	}
	tags, err := encodeTags(re.Tags)
	if err != nil {
		return "", err
	}
	id := ensureID(re.ID)
	err = r.queries.CreateRecurringExpense(ctx, CreateRecurringExpenseParams{
		ID:          id,
		Description: re.Description,
		AmountCents: re.Amount.Cents,
		Frequency:   re.Frequency.String(),
		StartDate:   re.StartDate.String(),
		Tags:        tags,
	})
	if err != nil {
		return "", fmt.Errorf("create recurring expense: %w", err)
	}

	slog.InfoContext(ctx, "Recurring expense saved to SQLite",
		"id", id,
		"description", re.Description,
		"amount_cents", re.Amount.Cents,
		"frequency", re.Frequency)

	return id, nil
}

func (r *SQLiteRepository) AddOccasionalExpense(ctx context.Context, oe core.OccasionalExpense) (string, error) {
	if err := oe.Validate(); err != nil {
		return "", err
	}
	tags, err := encodeTags(oe.Tags)
	if err != nil {
		return "", err
	}
	id := ensureID(oe.ID)
	err = r.queries.CreateOccasionalExpense(ctx, CreateOccasionalExpenseParams{
		ID:          id,
		Description: oe.Description,
		AmountCents: oe.Amount.Cents,
		Date:        oe.Date.String(),
		Tags:        tags,
	})
	if err != nil {
		return "", fmt.Errorf("create occasional expense: %w", err)
	}

	slog.InfoContext(ctx, "Occasional expense saved to SQLite",
		"id", id,
		"description", oe.Description,
		"amount_cents", oe.Amount.Cents,
		"date", oe.Date)

	return id, nil
}

// Snapshot reads all three tables inside one transaction so the result is
// consistent. Rows with an unreadable date come back with a zero date.
func (r *SQLiteRepository) Snapshot(ctx context.Context) (core.Records, error) {
	var out core.Records

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return out, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	incomes, err := q.ListIncomes(ctx)
	if err != nil {
		return out, fmt.Errorf("list incomes: %w", err)
	}
	for _, in := range incomes {
		out.Incomes = append(out.Incomes, core.Income{
			ID:        in.ID,
			Source:    in.Source,
			Amount:    core.Money{Cents: in.AmountCents},
			Date:      loadDate(ctx, in.Date, in.ID),
			Frequency: core.ParseFrequency(in.Frequency),
		})
	}

	recurring, err := q.ListRecurringExpenses(ctx)
	if err != nil {
		return out, fmt.Errorf("list recurring expenses: %w", err)
	}
	for _, re := range recurring {
		out.RecurringExpenses = append(out.RecurringExpenses, core.RecurringExpense{
			ID:          re.ID,
			Description: re.Description,
			Amount:      core.Money{Cents: re.AmountCents},
			Frequency:   core.ParseFrequency(re.Frequency),
			StartDate:   loadDate(ctx, re.StartDate, re.ID),
			Tags:        decodeTags(ctx, re.Tags, re.ID),
		})
	}

	occasional, err := q.ListOccasionalExpenses(ctx)
	if err != nil {
		return out, fmt.Errorf("list occasional expenses: %w", err)
	}
	for _, oe := range occasional {
		out.OccasionalExpenses = append(out.OccasionalExpenses, core.OccasionalExpense{
			ID:          oe.ID,
			Description: oe.Description,
			Amount:      core.Money{Cents: oe.AmountCents},
			Date:        loadDate(ctx, oe.Date, oe.ID),
			Tags:        decodeTags(ctx, oe.Tags, oe.ID),
		})
	}

	return out, nil
}

// Count returns the number of stored records across all tables.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.queries.CountRecords(ctx)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

func loadDate(ctx context.Context, raw, id string) core.Date {
	d, err := core.ParseDate(raw)
	if err != nil {
		slog.WarnContext(ctx, "Stored record has an unreadable date", "id", id, "date", raw)
		return core.Date{}
	}
	return d
}

func encodeTags(tags []string) (string, error) {
	b, err := json.Marshal(core.NormalizeTags(tags))
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(ctx context.Context, raw, id string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		slog.WarnContext(ctx, "Stored record has unreadable tags", "id", id, "error", err)
		return []string{}
	}
	return core.NormalizeTags(tags)
}

func ensureID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

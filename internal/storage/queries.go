package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Income struct {
	ID          string
	Source      string
	AmountCents int64
	Date        string
	Frequency   string
}

type RecurringExpense struct {
	ID          string
	Description string
	AmountCents int64
	Frequency   string
	StartDate   string
	Tags        string
}

type OccasionalExpense struct {
	ID          string
	Description string
	AmountCents int64
	Date        string
	Tags        string
}

const createIncome = `-- name: CreateIncome :exec
INSERT INTO incomes (id, source, amount_cents, date, frequency)
VALUES (?, ?, ?, ?, ?)
`

type CreateIncomeParams = Income

func (q *Queries) CreateIncome(ctx context.Context, arg CreateIncomeParams) error {
	_, err := q.db.ExecContext(ctx, createIncome,
		arg.ID,
		arg.Source,
		arg.AmountCents,
		arg.Date,
		arg.Frequency,
	)
	return err
}

const createRecurringExpense = `-- name: CreateRecurringExpense :exec
INSERT INTO recurring_expenses (id, description, amount_cents, frequency, start_date, tags)
VALUES (?, ?, ?, ?, ?, ?)
`

type CreateRecurringExpenseParams = RecurringExpense

func (q *Queries) CreateRecurringExpense(ctx context.Context, arg CreateRecurringExpenseParams) error {
	_, err := q.db.ExecContext(ctx, createRecurringExpense,
		arg.ID,
		arg.Description,
		arg.AmountCents,
		arg.Frequency,
		arg.StartDate,
		arg.Tags,
	)
	return err
}

const createOccasionalExpense = `-- name: CreateOccasionalExpense :exec
INSERT INTO occasional_expenses (id, description, amount_cents, date, tags)
VALUES (?, ?, ?, ?, ?)
`

type CreateOccasionalExpenseParams = OccasionalExpense

func (q *Queries) CreateOccasionalExpense(ctx context.Context, arg CreateOccasionalExpenseParams) error {
	_, err := q.db.ExecContext(ctx, createOccasionalExpense,
		arg.ID,
		arg.Description,
		arg.AmountCents,
		arg.Date,
		arg.Tags,
	)
	return err
}

const listIncomes = `-- name: ListIncomes :many
SELECT id, source, amount_cents, date, frequency
FROM incomes
ORDER BY seq
`

func (q *Queries) ListIncomes(ctx context.Context) ([]Income, error) {
	rows, err := q.db.QueryContext(ctx, listIncomes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Income
	for rows.Next() {
		var i Income
		if err := rows.Scan(
			&i.ID,
			&i.Source,
			&i.AmountCents,
			&i.Date,
			&i.Frequency,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listRecurringExpenses = `-- name: ListRecurringExpenses :many
SELECT id, description, amount_cents, frequency, start_date, tags
FROM recurring_expenses
ORDER BY seq
`

func (q *Queries) ListRecurringExpenses(ctx context.Context) ([]RecurringExpense, error) {
	rows, err := q.db.QueryContext(ctx, listRecurringExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecurringExpense
	for rows.Next() {
		var i RecurringExpense
		if err := rows.Scan(
			&i.ID,
			&i.Description,
			&i.AmountCents,
			&i.Frequency,
			&i.StartDate,
			&i.Tags,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOccasionalExpenses = `-- name: ListOccasionalExpenses :many
SELECT id, description, amount_cents, date, tags
FROM occasional_expenses
ORDER BY seq
`

func (q *Queries) ListOccasionalExpenses(ctx context.Context) ([]OccasionalExpense, error) {
	rows, err := q.db.QueryContext(ctx, listOccasionalExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OccasionalExpense
	for rows.Next() {
		var i OccasionalExpense
		if err := rows.Scan(
			&i.ID,
			&i.Description,
			&i.AmountCents,
			&i.Date,
			&i.Tags,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countRecords = `-- name: CountRecords :one
SELECT
    (SELECT COUNT(*) FROM incomes) +
    (SELECT COUNT(*) FROM recurring_expenses) +
    (SELECT COUNT(*) FROM occasional_expenses)
`

func (q *Queries) CountRecords(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countRecords)
	var count int64
	err := row.Scan(&count)
	return count, err
}

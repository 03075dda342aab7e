// Package ledger defines the ports through which record stores feed the
// aggregation engine.
package ledger

import (
	"context"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	// RecordReader hands out a copy of every stored record. Callers may keep
	// and read the copy while the store keeps accepting writes.
	RecordReader interface {
		Snapshot(ctx context.Context) (core.Records, error)
	}

	// RecordWriter appends records and returns the ID assigned to them.
	RecordWriter interface {
		AddIncome(ctx context.Context, in core.Income) (id string, err error)
		AddRecurringExpense(ctx context.Context, re core.RecurringExpense) (id string, err error)
		AddOccasionalExpense(ctx context.Context, oe core.OccasionalExpense) (id string, err error)
	}

	Store interface {
		RecordReader
		RecordWriter
	}
)

// Package worker recomputes period summaries when records are added.
package worker

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/services"
)

// SummarySource computes what a report needs for one window.
// *services.LedgerService implements it.
type SummarySource interface {
	Summary(ctx context.Context, w core.DateWindow) (core.Summary, error)
	Occurrences(ctx context.Context, w core.DateWindow) (services.WindowListing, error)
}

// SummaryWorker refreshes the summary of the month a new record falls in and,
// when reportDir is set, saves it as a workbook.
type SummaryWorker struct {
	source    SummarySource
	reportDir string
	logger    *log.Logger
	now       func() time.Time
}

func NewSummaryWorker(source SummarySource, reportDir string, logger *log.Logger) *SummaryWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &SummaryWorker{
		source:    source,
		reportDir: reportDir,
		logger:    logger.WithComponent(log.ComponentWorker),
		now:       time.Now,
	}
}

// HandleRecordAdded processes a single record added message from AMQP.
// Returning an error makes the client requeue the message.
func (w *SummaryWorker) HandleRecordAdded(ctx context.Context, msg *amqp.RecordAddedMessage) error {
	w.logger.InfoContext(ctx, "Processing record added message",
		log.FieldRecordID, msg.ID,
		log.FieldRecordKind, string(msg.Kind),
		log.FieldRecordDate, msg.Date.String())

	recordMonth := core.MonthWindowOf(msg.Date)
	if _, err := w.Refresh(ctx, recordMonth); err != nil {
		return fmt.Errorf("refresh summary for record %s: %w", msg.ID, err)
	}

	// Incomes and recurring expenses may repeat into every later month, so
	// the current month changes too when the record started before it.
	if msg.Kind == core.KindOccasionalExpense {
		return nil
	}
	if current := w.currentMonth(); current.Start.After(recordMonth.Start) {
		if _, err := w.Refresh(ctx, current); err != nil {
			return fmt.Errorf("refresh current month for record %s: %w", msg.ID, err)
		}
	}
	return nil
}

// RefreshCurrentMonth refreshes the current month so a report exists even when
// messages were missed. It runs at startup and periodically.
func (w *SummaryWorker) RefreshCurrentMonth(ctx context.Context) error {
	if _, err := w.Refresh(ctx, w.currentMonth()); err != nil {
		return fmt.Errorf("refresh current month: %w", err)
	}
	return nil
}

func (w *SummaryWorker) currentMonth() core.DateWindow {
	now := w.now()
	return core.MonthWindowOf(core.NewDate(now.Year(), int(now.Month()), now.Day()))
}

// Refresh computes the summary for win and writes its report. It returns the
// report path, empty when no report directory is configured.
func (w *SummaryWorker) Refresh(ctx context.Context, win core.DateWindow) (string, error) {
	summary, err := w.source.Summary(ctx, win)
	if err != nil {
		return "", fmt.Errorf("compute summary: %w", err)
	}

	w.logger.InfoContext(ctx, "Summary refreshed", log.NewFields().WithSummary(summary).ToSlice()...)

	if w.reportDir == "" {
		return "", nil
	}

	listing, err := w.source.Occurrences(ctx, win)
	if err != nil {
		return "", fmt.Errorf("list occurrences: %w", err)
	}
	path, err := report.SaveWorkbook(w.reportDir, summary, listing)
	if err != nil {
		return "", err
	}

	w.logger.InfoContext(ctx, "Report written", log.FieldFile, path, log.FieldWindowStart, win.Start.String())
	return path, nil
}

// Package report renders period summaries as Excel workbooks.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

// Sheet names, in workbook order.
const (
	SheetSummary     = "Summary"
	SheetTags        = "Tags"
	SheetOccurrences = "Occurrences"
)

// amountFormat is the built-in "#,##0.00" number format.
const amountFormat = 4

// WriteWorkbook writes a workbook with the summary totals, the per-tag
// spending and every dated occurrence in the listing.
func WriteWorkbook(w io.Writer, summary core.Summary, listing services.WindowListing) error {
	f, err := build(summary, listing)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveWorkbook writes the workbook to dir as summary-YYYY-MM.xlsx for month
// windows, or summary-START_END.xlsx otherwise, and returns the file path.
func SaveWorkbook(dir string, summary core.Summary, listing services.WindowListing) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, FileName(summary.Window))

	f, err := build(summary, listing)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook %s: %w", path, err)
	}
	return path, nil
}

// FileName names the report file for a window.
func FileName(w core.DateWindow) string {
	if m := core.MonthWindowOf(w.Start); w.Valid() && w.Start.Equal(m.Start) && w.End.Equal(m.End) {
		return "summary-" + w.Start.Format("2006-01") + ".xlsx"
	}
	return "summary-" + w.Start.String() + "_" + w.End.String() + ".xlsx"
}

func build(summary core.Summary, listing services.WindowListing) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetTags, SheetOccurrences} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{NumFmt: amountFormat})
	if err != nil {
		f.Close()
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	steps := []func() error{
		func() error { return writeSummary(f, summary, style) },
		func() error { return writeTags(f, summary, style, bold) },
		func() error { return writeOccurrences(f, listing, style, bold) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, fmt.Errorf("build workbook: %w", err)
		}
	}
	return f, nil
}

func writeSummary(f *excelize.File, s core.Summary, amountStyle int) error {
	rows := [][]any{
		{"Period", s.Window.Label()},
		{"Start", s.Window.Start.String()},
		{"End", s.Window.End.String()},
		{"Total income", s.TotalIncome.Float64()},
		{"Recurring expenses", s.TotalRecurringExpense.Float64()},
		{"Occasional expenses", s.TotalOccasionalExpense.Float64()},
		{"Total expenses", s.TotalExpenses().Float64()},
		{"Net balance", s.NetBalance.Float64()},
		{"Skipped records", s.Skipped},
	}
	if err := setRows(f, SheetSummary, 1, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "B4", "B8", amountStyle); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "A", "B", 22)
}

func writeTags(f *excelize.File, s core.Summary, amountStyle, headerStyle int) error {
	rows := [][]any{{"Tag", "Amount"}}
	for _, ta := range s.SortedTags() {
		rows = append(rows, []any{ta.Tag, ta.Amount.Float64()})
	}
	if err := setRows(f, SheetTags, 1, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetTags, "A1", "B1", headerStyle); err != nil {
		return err
	}
	return f.SetColStyle(SheetTags, "B", amountStyle)
}

func writeOccurrences(f *excelize.File, listing services.WindowListing, amountStyle, headerStyle int) error {
	rows := [][]any{{"Date", "Kind", "Reference", "Amount", "Tags"}}
	for _, o := range listing.Dated() {
		rows = append(rows, []any{o.Date.String(), string(o.Kind), o.Ref, o.Amount.Float64(), strings.Join(o.Tags, ", ")})
	}
	if err := setRows(f, SheetOccurrences, 1, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetOccurrences, "A1", "E1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetOccurrences, "A", "C", 18); err != nil {
		return err
	}
	return f.SetColStyle(SheetOccurrences, "D", amountStyle)
}

func setRows(f *excelize.File, sheet string, firstRow int, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, firstRow+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, firstRow+i, err)
		}
	}
	return nil
}

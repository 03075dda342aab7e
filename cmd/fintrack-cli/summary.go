package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/report"
	"fintrack/internal/services"
)

var windowFlags struct {
	year, month int
	from, to    string
}

var xlsxPath string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show income, expenses and tag totals for a month or date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		win, err := windowFromFlags(time.Now())
		if err != nil {
			return err
		}
		svc, _, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		summary, err := svc.Summary(cmd.Context(), win)
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), summary)

		if xlsxPath == "" {
			return nil
		}
		listing, err := svc.Occurrences(cmd.Context(), win)
		if err != nil {
			return err
		}
		return saveWorkbook(xlsxPath, summary, listing, cmd.OutOrStdout())
	},
}

var occurrencesCmd = &cobra.Command{
	Use:   "occurrences",
	Short: "List every dated income and expense inside a month or date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		win, err := windowFromFlags(time.Now())
		if err != nil {
			return err
		}
		svc, _, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		listing, err := svc.Occurrences(cmd.Context(), win)
		if err != nil {
			return err
		}
		printListing(cmd.OutOrStdout(), listing)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{summaryCmd, occurrencesCmd} {
		c.Flags().IntVar(&windowFlags.year, "year", 0, "Year of the month to summarize (default: current)")
		c.Flags().IntVar(&windowFlags.month, "month", 0, "Month 1-12 to summarize (default: current)")
		c.Flags().StringVar(&windowFlags.from, "from", "", "First day of a custom range, YYYY-MM-DD")
		c.Flags().StringVar(&windowFlags.to, "to", "", "Last day of a custom range, YYYY-MM-DD")
		c.MarkFlagsRequiredTogether("from", "to")
		c.MarkFlagsMutuallyExclusive("from", "year")
		c.MarkFlagsMutuallyExclusive("from", "month")
		rootCmd.AddCommand(c)
	}
	summaryCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the summary as an Excel workbook to this path")
}

func windowFromFlags(now time.Time) (core.DateWindow, error) {
	if windowFlags.from != "" || windowFlags.to != "" {
		start, err := core.ParseDate(windowFlags.from)
		if err != nil {
			return core.DateWindow{}, err
		}
		end, err := core.ParseDate(windowFlags.to)
		if err != nil {
			return core.DateWindow{}, err
		}
		return core.NewDateWindow(start, end)
	}
	year, month := windowFlags.year, windowFlags.month
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	return core.MonthWindow(year, month)
}

func printSummary(w io.Writer, s core.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "Summary for %s\n\n", s.Window.Label())
	fmt.Fprintf(tw, "Total income\t%s\t\n", s.TotalIncome.Display())
	fmt.Fprintf(tw, "Recurring expenses\t%s\t\n", s.TotalRecurringExpense.Display())
	fmt.Fprintf(tw, "Occasional expenses\t%s\t\n", s.TotalOccasionalExpense.Display())
	fmt.Fprintf(tw, "Net balance\t%s\t\n", s.NetBalance.Display())
	_ = tw.Flush()

	if tags := s.SortedTags(); len(tags) > 0 {
		fmt.Fprintln(w, "\nSpending by tag")
		for _, ta := range tags {
			fmt.Fprintf(tw, "%s\t%s\t\n", ta.Tag, ta.Amount.Display())
		}
		_ = tw.Flush()
	}
	if s.Skipped > 0 {
		fmt.Fprintf(w, "\n%d record(s) skipped because their date is missing\n", s.Skipped)
	}
}

func printListing(w io.Writer, l services.WindowListing) {
	fmt.Fprintf(w, "Occurrences for %s\n\n", l.Window.Label())
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tKIND\tREFERENCE\tAMOUNT\tTAGS")
	for _, o := range l.Dated() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.Date, o.Kind, o.Ref, o.Amount.Display(), strings.Join(o.Tags, ","))
	}
	_ = tw.Flush()
}

func saveWorkbook(path string, s core.Summary, l services.WindowListing, out io.Writer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteWorkbook(f, s, l); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nWorkbook written to %s\n", path)
	return nil
}

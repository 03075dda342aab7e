package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
)

var recordFlags struct {
	source, description, amount string
	date, startDate             string
	tags                        []string

	// separate because the defaults differ
	incomeFrequency, recurringFrequency string
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an income, a recurring expense or an occasional expense",
}

var addIncomeCmd = &cobra.Command{
	Use:   "income",
	Short: "Add a one-off or periodic income",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, date, err := amountAndDate(recordFlags.date)
		if err != nil {
			return err
		}
		in := core.Income{
			Source:    recordFlags.source,
			Amount:    amount,
			Date:      date,
			Frequency: core.ParseFrequency(recordFlags.incomeFrequency),
		}
		svc, _, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		id, err := svc.AddIncome(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added income %s: %s %s (%s)\n", id, in.Source, in.Amount.Display(), in.Frequency)
		return nil
	},
}

var addRecurringCmd = &cobra.Command{
	Use:   "recurring",
	Short: "Add a weekly, monthly or annual expense",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, start, err := amountAndDate(recordFlags.startDate)
		if err != nil {
			return err
		}
		re := core.RecurringExpense{
			Description: recordFlags.description,
			Amount:      amount,
			Frequency:   core.ParseFrequency(recordFlags.recurringFrequency),
			StartDate:   start,
			Tags:        core.NormalizeTags(recordFlags.tags),
		}
		svc, _, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		id, err := svc.AddRecurringExpense(cmd.Context(), re)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added recurring expense %s: %s %s %s from %s\n", id, re.Description, re.Amount.Display(), re.Frequency, re.StartDate)
		return nil
	},
}

var addOccasionalCmd = &cobra.Command{
	Use:   "occasional",
	Short: "Add a one-time expense",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, date, err := amountAndDate(recordFlags.date)
		if err != nil {
			return err
		}
		oe := core.OccasionalExpense{
			Description: recordFlags.description,
			Amount:      amount,
			Date:        date,
			Tags:        core.NormalizeTags(recordFlags.tags),
		}
		svc, _, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		id, err := svc.AddOccasionalExpense(cmd.Context(), oe)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added occasional expense %s: %s %s on %s\n", id, oe.Description, oe.Amount.Display(), oe.Date)
		return nil
	},
}

func init() {
	addIncomeCmd.Flags().StringVar(&recordFlags.source, "source", "", "Where the income comes from")
	addIncomeCmd.Flags().StringVar(&recordFlags.date, "date", "", "Date received, YYYY-MM-DD (default: today)")
	addIncomeCmd.Flags().StringVar(&recordFlags.incomeFrequency, "frequency", "once", "once, weekly, monthly or annually")
	_ = addIncomeCmd.MarkFlagRequired("source")

	addRecurringCmd.Flags().StringVar(&recordFlags.description, "description", "", "What the expense is for")
	addRecurringCmd.Flags().StringVar(&recordFlags.startDate, "start-date", "", "First due date, YYYY-MM-DD (default: today)")
	addRecurringCmd.Flags().StringVar(&recordFlags.recurringFrequency, "frequency", "monthly", "weekly, monthly or annually")
	addRecurringCmd.Flags().StringSliceVar(&recordFlags.tags, "tags", nil, "Comma-separated tags")
	_ = addRecurringCmd.MarkFlagRequired("description")

	addOccasionalCmd.Flags().StringVar(&recordFlags.description, "description", "", "What the expense is for")
	addOccasionalCmd.Flags().StringVar(&recordFlags.date, "date", "", "Date spent, YYYY-MM-DD (default: today)")
	addOccasionalCmd.Flags().StringSliceVar(&recordFlags.tags, "tags", nil, "Comma-separated tags")
	_ = addOccasionalCmd.MarkFlagRequired("description")

	for _, c := range []*cobra.Command{addIncomeCmd, addRecurringCmd, addOccasionalCmd} {
		c.Flags().StringVar(&recordFlags.amount, "amount", "", "Amount, e.g. 75.50")
		_ = c.MarkFlagRequired("amount")
		addCmd.AddCommand(c)
	}
	rootCmd.AddCommand(addCmd)
}

// amountAndDate parses the shared flags; an empty date means today.
func amountAndDate(rawDate string) (core.Money, core.Date, error) {
	cents, err := core.ParseDecimalToCents(recordFlags.amount)
	if err != nil {
		return core.Money{}, core.Date{}, fmt.Errorf("amount %q: %w", recordFlags.amount, err)
	}
	if rawDate == "" {
		now := time.Now()
		return core.Money{Cents: cents}, core.NewDate(now.Year(), int(now.Month()), now.Day()), nil
	}
	date, err := core.ParseDate(rawDate)
	if err != nil {
		return core.Money{}, core.Date{}, err
	}
	return core.Money{Cents: cents}, date, nil
}

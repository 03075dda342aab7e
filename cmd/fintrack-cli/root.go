package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "fintrack-cli",
	Short: "Record income and expenses and summarize them by period",
	Long: `fintrack-cli works directly on the configured data backend.

Example Usage:
  fintrack-cli summary --year 2023 --month 10
  fintrack-cli summary --from 2023-10-01 --to 2023-12-31 --xlsx q4.xlsx
  fintrack-cli add occasional --description "Movie night" --amount 20 --tags fun`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a YAML configuration file (default: $CONFIG_FILE, then environment only)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// openLedger loads configuration and opens the ledger for one command.
func openLedger(ctx context.Context) (*services.LedgerService, *config.Config, error) {
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	level := "error"
	if verbose {
		level = "debug"
	}
	logger := cli.SetupLogger(level).WithComponent(log.ComponentCLI)

	svc, _, err := cli.OpenLedger(ctx, logger, cfg)
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

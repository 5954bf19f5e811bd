package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/sdksniff/internal/config"
	"github.com/nao1215/sdksniff/internal/log"
	"github.com/nao1215/sdksniff/internal/report"
	"github.com/nao1215/sdksniff/internal/risk"
	"github.com/nao1215/sdksniff/internal/store"
)

// NewScoreCmd creates the score command.
// This command scores an existing detection log without replaying traffic.
func NewScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute the privacy risk score for the stored detection log",
		Long: `Score reads the JSON detection log written by 'sdksniff replay' and
computes the weighted privacy risk score without replaying any traffic.

Findings are grouped into five buckets (personal info, unique IDs, app
info, device info, sensor info). Each bucket's count is log-scaled and
weighted; the result is a 0-100 score where personal data and durable
identifiers dominate.

Examples:
  # Score the default detection log
  sdksniff score

  # Score a specific log file as JSON
  sdksniff score -l ./sdk_logs.json --json

  # Write a Markdown report to a file
  sdksniff score --markdown -o report.md`,
		Args: cobra.NoArgs,
		RunE: runScoreCmd,
	}

	cmd.Flags().StringP("log-file", "l", "",
		"Detection log path (default: sdk_logs.json in the XDG data directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runScoreCmd executes the score command.
func runScoreCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()

	var err error
	logFile, err := cmd.Flags().GetString("log-file")
	if err != nil {
		return err
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	cfg.Verbose = getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	return runScore(cfg, logger)
}

// runScore scores the stored detection log and emits the report.
func runScore(cfg *config.Config, logger *slog.Logger) error {
	st := store.Load(cfg.LogFile, logger)
	entries := st.Entries()

	logger.Info("scoring detection log", "logFile", cfg.LogFile, "entries", len(entries))

	summary := report.BuildSummary(entries, risk.Compute(entries), nil)
	return outputReport(cfg, summary)
}

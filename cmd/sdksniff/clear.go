package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/sdksniff/internal/config"
	"github.com/nao1215/sdksniff/internal/store"
)

// NewClearCmd creates the clear command.
func NewClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Reset the detection log",
		Long: `Clear resets the JSON detection log to an empty array.

The SQLite session archive is untouched; archived sessions remain
available through 'sdksniff history'.

Examples:
  # Clear the default detection log
  sdksniff clear

  # Clear a specific log file
  sdksniff clear -l ./sdk_logs.json`,
		Args: cobra.NoArgs,
		RunE: runClearCmd,
	}

	cmd.Flags().StringP("log-file", "l", "",
		"Detection log path (default: sdk_logs.json in the XDG data directory)")

	return cmd
}

// runClearCmd executes the clear command.
func runClearCmd(cmd *cobra.Command, _ []string) error {
	logFile, err := cmd.Flags().GetString("log-file")
	if err != nil {
		return err
	}

	cfg := config.NewConfig()
	if logFile != "" {
		cfg.LogFile = logFile
	}

	if _, err := store.Open(cfg.LogFile); err != nil {
		return fmt.Errorf("failed to reset detection log: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cleared detection log: %s\n", cfg.LogFile)
	return nil
}

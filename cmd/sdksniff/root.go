// Package main provides the entry point for the sdksniff CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sdksniff.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sdksniff",
		Short: "Privacy analysis tool for mobile SDK network traffic",
		Long: `sdksniff analyzes decoded outbound HTTP(S) traffic captured from mobile
apps and their bundled SDKs. It detects PII and device identifiers leaving
the device, deduplicates findings per destination domain, and computes a
weighted privacy risk score for the observed data collection.

Capture traffic with an intercepting proxy such as mitmproxy, export the
flows as JSON Lines, and replay them through sdksniff for analysis.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewReplayCmd())
	cmd.AddCommand(NewScoreCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewClearCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

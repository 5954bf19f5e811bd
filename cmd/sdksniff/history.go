package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/sdksniff/internal/config"
	"github.com/nao1215/sdksniff/internal/store"
)

// NewHistoryCmd creates the history command.
// This command browses the SQLite archive of past capture sessions.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [domain]",
		Short: "Browse archived capture sessions and per-domain history",
		Long: `History reads the SQLite archive that 'sdksniff replay' writes alongside
the JSON detection log. While the log is reset per session, the archive
accumulates across sessions.

Without arguments, history lists all archived sessions with their entry
counts and final risk scores. With a domain argument, it lists every
archived detection for that destination domain across all sessions.

Examples:
  # List all archived capture sessions
  sdksniff history

  # Show every archived detection for one destination
  sdksniff history analytics.vendor.example.com

  # Output session list in JSON format
  sdksniff history --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("db-dir", "d", "",
		"Archive database directory (default: XDG data directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Open the archive without starting a session; browsing history must
	// not add rows to the sessions table.
	archive, err := store.OpenArchiveReader(dbDir)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		return listDomainHistory(ctx, archive, args[0], jsonOutput, out)
	}
	return listSessions(ctx, archive, jsonOutput, out)
}

// listSessions lists all archived capture sessions.
func listSessions(ctx context.Context, archive *store.Archive, jsonOutput bool, out io.Writer) error {
	sessions, err := archive.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(sessions)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(out, "No archived sessions found.")
		fmt.Fprintln(out, "\nUse 'sdksniff replay <flows-file>' to analyze a capture.")
		return nil
	}

	fmt.Fprintf(out, "Archived sessions (%d):\n\n", len(sessions))
	fmt.Fprintf(out, "  %-10s  %-20s  %-28s  %-8s  %s\n", "ID", "Date", "App", "Entries", "Score")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 78))

	for _, session := range sessions {
		score := "N/A"
		if session.Risk != nil {
			score = fmt.Sprintf("%.1f", session.Risk.FinalScore)
		}
		fmt.Fprintf(out, "  %-10s  %-20s  %-28s  %-8d  %s\n",
			shortSessionID(session.ID),
			session.StartedAt.Format("2006-01-02 15:04:05"),
			session.AppPackage,
			session.EntryCount,
			score,
		)
	}

	fmt.Fprintln(out, "\nUse 'sdksniff history <domain>' to see detections for one destination.")
	return nil
}

// listDomainHistory lists archived detections for one destination domain.
func listDomainHistory(ctx context.Context, archive *store.Archive, domain string, jsonOutput bool, out io.Writer) error {
	entries, err := archive.DomainHistory(ctx, domain)
	if err != nil {
		return fmt.Errorf("failed to get domain history: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintf(out, "No archived detections found for %s\n", domain)
		return nil
	}

	fmt.Fprintf(out, "Detections for %s (%d entries):\n\n", domain, len(entries))
	for _, entry := range entries {
		tags := make([]string, 0)
		if entry.Findings != nil {
			for _, tag := range entry.Findings.Categories() {
				tags = append(tags, string(tag))
			}
		}
		fmt.Fprintf(out, "  %-20s  %s\n", entry.Timestamp, strings.Join(tags, ", "))
		if entry.RequestURL != "" {
			fmt.Fprintf(out, "      url: %s\n", entry.RequestURL)
		}
	}

	return nil
}

// shortSessionID truncates a session UUID for table display.
func shortSessionID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

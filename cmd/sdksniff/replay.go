package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sdksniff/internal/classifier"
	"github.com/nao1215/sdksniff/internal/config"
	"github.com/nao1215/sdksniff/internal/decoder"
	"github.com/nao1215/sdksniff/internal/log"
	"github.com/nao1215/sdksniff/internal/report"
	"github.com/nao1215/sdksniff/internal/risk"
	"github.com/nao1215/sdksniff/internal/sniffer"
	"github.com/nao1215/sdksniff/internal/store"
)

// NewReplayCmd creates the replay command.
func NewReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay [flows-file...]",
		Short: "Replay captured traffic dumps and detect data leakage",
		Long: `Replay analyzes exported traffic captures (JSON Lines, one request per
line) from an intercepting proxy such as mitmproxy.

Each request body is decoded (JSON, form-encoded, multipart, GraphQL,
gzip), classified for PII and device identifiers, and deduplicated per
destination domain. The run finishes with a privacy risk report.

Examples:
  # Replay a single capture
  sdksniff replay flows.jsonl

  # Replay several captures into one detection log
  sdksniff replay session1.jsonl session2.jsonl

  # Keep previous detections and dedup against them
  sdksniff replay --append flows.jsonl

  # Output JSON report to a file
  sdksniff replay --json -o report.json flows.jsonl

  # Use a custom rules file
  sdksniff replay -c myrules.yaml flows.jsonl

Rules file (.sdksniff) example:
  junkWords:
    - placeholder
  ignoreDomains:
    - api.myapp.example.com
  domains:
    analytics.vendor.example.com:
      junkWords:
        - session_token`,
		Args: cobra.ArbitraryArgs,
		RunE: runReplayCmd,
	}

	// Detection log flags
	cmd.Flags().StringP("log-file", "l", "",
		"Detection log path (default: sdk_logs.json in the XDG data directory)")
	cmd.Flags().BoolP("append", "a", false,
		"Keep existing log entries instead of resetting the log")

	// Replay behavior flags
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of events processed concurrently")
	cmd.Flags().Int("max-body-bytes", config.DefaultMaxBodyBytes,
		"Request body size ceiling in bytes; larger bodies are truncated")
	cmd.Flags().Int("truncate-bytes", config.DefaultTruncateBytes,
		"Prefix length classified for oversized bodies")

	// Archive flags
	cmd.Flags().StringP("app", "p", "",
		"Package name of the app under analysis, recorded with the session")
	cmd.Flags().StringP("db-dir", "d", "",
		"Archive database directory (default: XDG data directory)")
	cmd.Flags().Bool("no-db", false,
		"Do not archive this session in the SQLite history database")

	// Rules file
	cmd.Flags().StringP("rules", "c", "",
		"Rules file path (default: .sdksniff in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runReplayCmd executes the replay command.
func runReplayCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildReplayConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with sensitive-value redaction
	cfg.Verbose = getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runReplay(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildReplayConfig creates a Config from cobra command flags.
func buildReplayConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	logFile, err := cmd.Flags().GetString("log-file")
	if err != nil {
		return nil, err
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}

	cfg.AppendLog, err = cmd.Flags().GetBool("append")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.MaxBodyBytes, err = cmd.Flags().GetInt("max-body-bytes")
	if err != nil {
		return nil, err
	}

	cfg.TruncateBytes, err = cmd.Flags().GetInt("truncate-bytes")
	if err != nil {
		return nil, err
	}

	cfg.AppPackage, err = cmd.Flags().GetString("app")
	if err != nil {
		return nil, err
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	if !noDB {
		cfg.SaveToDB = true
		cfg.DBDir = dbDir
		if cfg.DBDir == "" {
			cfg.DBDir = config.XDGDataDir()
		}
	}

	cfg.RulesFilePath, err = cmd.Flags().GetString("rules")
	if err != nil {
		return nil, err
	}

	// Load analysis rules from the rules file.
	// If user explicitly specified a rules file path, error if not found.
	// If no path specified, silently run without rules if no file found.
	explicitRulesPath := cfg.RulesFilePath != ""
	rulesPath := config.FindRulesFile(cfg.RulesFilePath)

	if rulesPath != "" {
		cfg.Rules, err = config.LoadRulesFile(rulesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules file %s: %w", rulesPath, err)
		}
	} else if explicitRulesPath {
		// User explicitly specified a rules file that doesn't exist
		return nil, fmt.Errorf("rules file not found: %s", cfg.RulesFilePath)
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Get positional arguments (capture dump files)
	cfg.DumpFiles = args

	return cfg, nil
}

// runReplay executes the replay.
func runReplay(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.DumpFiles) == 0 {
		return config.ErrNoDumpFile
	}

	logger.Info("starting replay",
		"dumpFiles", cfg.DumpFiles,
		"logFile", cfg.LogFile,
		"concurrency", cfg.Concurrency,
		"saveToDB", cfg.SaveToDB,
	)

	// Open the detection log. By default the log is reset so the run
	// mirrors a fresh capture session; --append keeps prior entries and
	// dedups against them.
	var st *store.Store
	if cfg.AppendLog {
		st = store.Load(cfg.LogFile, logger)
	} else {
		var err error
		st, err = store.Open(cfg.LogFile)
		if err != nil {
			return fmt.Errorf("failed to open detection log: %w", err)
		}
	}

	// Open session archive if enabled
	var archive *store.Archive
	if cfg.SaveToDB {
		var err error
		archive, err = store.OpenArchive(cfg.DBDir, cfg.AppPackage)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer archive.Close()
		logger.Info("archive session started", "sessionID", archive.SessionID())
	}

	sn := newSniffer(cfg, st, archive, logger)
	replayer := sniffer.NewReplayer(sn, cfg.Concurrency)

	for _, dumpFile := range cfg.DumpFiles {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Printf("Replaying %s...\n", dumpFile)
		result, err := replayer.ReplayFile(ctx, dumpFile)
		if err != nil {
			logger.Error("replay failed", "dumpFile", dumpFile, "error", err)
			fmt.Fprintf(os.Stderr, "Replay error for %s: %v\n", dumpFile, err)
			continue
		}

		fmt.Printf("Replayed %d events (%d detections, %d malformed) in %s\n\n",
			result.Events, result.Accepted, result.Malformed,
			result.Elapsed.Round(time.Millisecond))
	}

	// Score the full detection log and emit the report
	entries := st.Entries()
	riskReport := risk.Compute(entries)

	if archive != nil {
		if err := archive.FinalizeSession(ctx, riskReport); err != nil {
			logger.Warn("failed to record session risk report", "error", err)
		}
	}

	summary := report.BuildSummary(entries, riskReport, sn.RequestCounts())
	return outputReport(cfg, summary)
}

// newSniffer wires decoder, classifier, store, and archive into a sniffer
// according to the configuration.
func newSniffer(cfg *config.Config, st *store.Store, archive *store.Archive, logger *slog.Logger) *sniffer.Sniffer {
	decoderOpts := []decoder.Option{
		decoder.WithLogger(logger),
	}
	if cfg.MaxBodyBytes > 0 {
		decoderOpts = append(decoderOpts, decoder.WithMaxBodyBytes(cfg.MaxBodyBytes))
	}
	if cfg.TruncateBytes > 0 {
		decoderOpts = append(decoderOpts, decoder.WithTruncateBytes(cfg.TruncateBytes))
	}

	classifierOpts := []classifier.Option{}
	if cfg.Rules != nil {
		classifierOpts = append(classifierOpts, classifier.WithExtraJunkWords(cfg.Rules.EffectiveJunkWords()))
	}

	snifferOpts := []sniffer.Option{
		sniffer.WithLogger(logger),
	}
	if cfg.Rules != nil {
		snifferOpts = append(snifferOpts, sniffer.WithIgnoreDomains(cfg.Rules.EffectiveIgnoreDomains()))
	}
	if archive != nil {
		snifferOpts = append(snifferOpts, sniffer.WithArchive(archive))
	}

	return sniffer.New(
		decoder.New(decoderOpts...),
		classifier.New(classifierOpts...),
		st,
		snifferOpts...,
	)
}

// outputReport outputs the risk report in the requested format.
func outputReport(cfg *config.Config, summary *report.Summary) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600)
		// Reports may contain sensitive information that should only be readable by the owner
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// Pick the report writer
	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	if _, err := writer.Write(summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

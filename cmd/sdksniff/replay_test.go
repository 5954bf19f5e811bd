package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/sdksniff/internal/config"
	"github.com/nao1215/sdksniff/internal/report"
	"github.com/nao1215/sdksniff/internal/sniffer"
	"github.com/nao1215/sdksniff/internal/store"
)

// TestNewReplayCmd tests the replay command creation.
func TestNewReplayCmd(t *testing.T) {
	t.Parallel()

	cmd := NewReplayCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "replay [flows-file...]" {
			t.Errorf("expected use 'replay [flows-file...]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	tests := []struct {
		flag      string
		shorthand string
	}{
		{"log-file", "l"},
		{"append", "a"},
		{"concurrency", "b"},
		{"app", "p"},
		{"rules", "c"},
		{"json", "j"},
		{"markdown", "m"},
		{"output", "o"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run("has "+tt.flag+" flag", func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.flag)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.flag)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
		})
	}

	t.Run("has no-db flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("no-db") == nil {
			t.Error("expected no-db flag")
		}
	})
}

// TestBuildReplayConfig tests config construction from command flags.
func TestBuildReplayConfig(t *testing.T) {
	// t.Setenv is used to isolate rules file discovery; no t.Parallel.
	t.Setenv("HOME", t.TempDir())

	t.Run("defaults", func(t *testing.T) {
		cmd := NewReplayCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildReplayConfig(cmd, []string{"flows.jsonl"})
		if err != nil {
			t.Fatal(err)
		}

		if len(cfg.DumpFiles) != 1 || cfg.DumpFiles[0] != "flows.jsonl" {
			t.Errorf("want dump files [flows.jsonl], got %v", cfg.DumpFiles)
		}
		if !cfg.SaveToDB {
			t.Error("archive should be enabled by default")
		}
		if cfg.AppendLog {
			t.Error("append should be disabled by default")
		}
		if cfg.Concurrency != config.DefaultConcurrency {
			t.Errorf("want default concurrency %d, got %d", config.DefaultConcurrency, cfg.Concurrency)
		}
		if cfg.MaxBodyBytes != config.DefaultMaxBodyBytes {
			t.Errorf("want default body limit %d, got %d", config.DefaultMaxBodyBytes, cfg.MaxBodyBytes)
		}
	})

	t.Run("flags override defaults", func(t *testing.T) {
		cmd := NewReplayCmd()
		args := []string{"--json", "--no-db", "--append", "-l", "custom.json", "-b", "2", "-p", "com.example.app"}
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildReplayConfig(cmd, []string{"flows.jsonl"})
		if err != nil {
			t.Fatal(err)
		}

		if cfg.LogFile != "custom.json" {
			t.Errorf("want log file custom.json, got %q", cfg.LogFile)
		}
		if !cfg.JSONReport {
			t.Error("want JSON report enabled")
		}
		if cfg.SaveToDB {
			t.Error("--no-db should disable the archive")
		}
		if !cfg.AppendLog {
			t.Error("want append enabled")
		}
		if cfg.Concurrency != 2 {
			t.Errorf("want concurrency 2, got %d", cfg.Concurrency)
		}
		if cfg.AppPackage != "com.example.app" {
			t.Errorf("want app package recorded, got %q", cfg.AppPackage)
		}
	})

	t.Run("explicit missing rules file", func(t *testing.T) {
		cmd := NewReplayCmd()
		if err := cmd.ParseFlags([]string{"-c", filepath.Join(t.TempDir(), "nope.yaml")}); err != nil {
			t.Fatal(err)
		}

		if _, err := buildReplayConfig(cmd, []string{"flows.jsonl"}); err == nil {
			t.Error("want error for explicitly specified missing rules file")
		}
	})
}

// writeDump writes capture events as a JSON Lines dump file.
func writeDump(t *testing.T, events ...sniffer.Event) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "flows.jsonl")
	f, err := os.Create(path) //nolint:gosec // Path is under t.TempDir
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	for _, event := range events {
		event := event
		if err := encoder.Encode(event); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func postEvent(url, body string) sniffer.Event {
	return sniffer.Event{
		Method:      "POST",
		URL:         url,
		ContentType: "application/json",
		Body:        []byte(body),
	}
}

// TestRunReplay tests the replay workflow end-to-end: dump file in,
// detection log, archive session, and risk report out.
func TestRunReplay(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dump := writeDump(t,
		postEvent("https://analytics.vendor-sdk.com/v1/track", `{"email":"a@b.com"}`),
		postEvent("https://api.otherco.io/v1/ping", `{"zzz":"qqq"}`),
	)

	cfg := config.NewConfig()
	cfg.LogFile = filepath.Join(dir, "sdk_logs.json")
	cfg.DBDir = filepath.Join(dir, "db")
	cfg.SaveToDB = true
	cfg.AppPackage = "com.example.app"
	cfg.DumpFiles = []string{dump}
	cfg.JSONReport = true
	cfg.ReportFile = filepath.Join(dir, "report.json")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := runReplay(context.Background(), cfg, logger); err != nil {
		t.Fatalf("runReplay() error = %v", err)
	}

	// Detection log holds the single accepted entry
	st := store.Load(cfg.LogFile, logger)
	if st.Len() != 1 {
		t.Errorf("want 1 log entry, got %d", st.Len())
	}

	// Report file carries the computed score
	data, err := os.ReadFile(cfg.ReportFile)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	var summary report.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if summary.Risk.FinalScore != 40.0 {
		t.Errorf("want final score 40.0 for one email leak, got %v", summary.Risk.FinalScore)
	}
	if summary.Risk.TotalEntries != 1 {
		t.Errorf("want 1 total entry, got %d", summary.Risk.TotalEntries)
	}
	if len(summary.Vendors) != 1 || summary.Vendors[0].RegisteredDomain != "vendor-sdk.com" {
		t.Errorf("want one vendor vendor-sdk.com, got %v", summary.Vendors)
	}

	// Archive recorded and finalized the session
	archive, err := store.OpenArchiveReader(cfg.DBDir)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer archive.Close()

	sessions, err := archive.ListSessions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("want 1 archived session, got %d", len(sessions))
	}
	if sessions[0].EntryCount != 1 {
		t.Errorf("want 1 archived entry, got %d", sessions[0].EntryCount)
	}
	if sessions[0].Risk == nil || sessions[0].Risk.FinalScore != 40.0 {
		t.Errorf("want finalized session with score 40.0, got %+v", sessions[0].Risk)
	}
}

// TestRunReplayNoDumpFiles tests that replay without dump files fails.
func TestRunReplayNoDumpFiles(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "sdk_logs.json")

	err := runReplay(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if !errors.Is(err, config.ErrNoDumpFile) {
		t.Errorf("want ErrNoDumpFile, got %v", err)
	}
}

// TestRunReplayAppend tests that --append keeps prior log entries.
func TestRunReplayAppend(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logFile := filepath.Join(dir, "sdk_logs.json")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	first := config.NewConfig()
	first.LogFile = logFile
	first.DumpFiles = []string{writeDump(t, postEvent("https://analytics.vendor-sdk.com/v1/track", `{"email":"a@b.com"}`))}
	first.ReportFile = filepath.Join(dir, "report1.txt")
	if err := runReplay(context.Background(), first, logger); err != nil {
		t.Fatal(err)
	}

	second := config.NewConfig()
	second.LogFile = logFile
	second.AppendLog = true
	second.DumpFiles = []string{writeDump(t, postEvent("https://api.otherco.io/v1/collect", `{"android_id":"a1b2c3d4e5f67890"}`))}
	second.ReportFile = filepath.Join(dir, "report2.txt")
	if err := runReplay(context.Background(), second, logger); err != nil {
		t.Fatal(err)
	}

	if got := store.Load(logFile, logger).Len(); got != 2 {
		t.Errorf("want 2 entries after appending run, got %d", got)
	}
}

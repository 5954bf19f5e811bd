package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewClearCmd tests the clear command creation.
func TestNewClearCmd(t *testing.T) {
	t.Parallel()

	cmd := NewClearCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "clear" {
			t.Errorf("expected use 'clear', got %q", cmd.Use)
		}
	})

	t.Run("has log-file flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("log-file")
		if flag == nil {
			t.Fatal("expected log-file flag")
		}
		if flag.Shorthand != "l" {
			t.Errorf("expected shorthand 'l', got %q", flag.Shorthand)
		}
	})
}

// TestClearResetsLog tests that clear rewrites the log as an empty array.
func TestClearResetsLog(t *testing.T) {
	t.Parallel()

	logFile := filepath.Join(t.TempDir(), "sdk_logs.json")
	if err := os.WriteFile(logFile, []byte(`[{"App Domain":"x.example.com"}]`), 0600); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	cmd := NewClearCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"-l", logFile})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("want empty array after clear, got %q", string(data))
	}
	if !strings.Contains(buf.String(), "Cleared detection log") {
		t.Errorf("expected confirmation message, got: %s", buf.String())
	}
}

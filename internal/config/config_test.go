package config

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	c := NewConfig()
	if c.LogFile == "" {
		t.Error("default log file path should not be empty")
	}
	if filepath.Base(c.LogFile) != DefaultLogFileName {
		t.Errorf("want default log file name %q, got %q", DefaultLogFileName, filepath.Base(c.LogFile))
	}
	if c.Concurrency != DefaultConcurrency {
		t.Errorf("want concurrency %d, got %d", DefaultConcurrency, c.Concurrency)
	}
	if c.MaxBodyBytes != DefaultMaxBodyBytes {
		t.Errorf("want max body bytes %d, got %d", DefaultMaxBodyBytes, c.MaxBodyBytes)
	}
	if c.TruncateBytes != DefaultTruncateBytes {
		t.Errorf("want truncate bytes %d, got %d", DefaultTruncateBytes, c.TruncateBytes)
	}
	if c.SaveToDB {
		t.Error("archiving should be off by default")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: nil,
		},
		{
			name:    "missing log file",
			mutate:  func(c *Config) { c.LogFile = "" },
			wantErr: ErrNoLogFile,
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Concurrency = 0 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name:    "negative concurrency",
			mutate:  func(c *Config) { c.Concurrency = -1 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name: "conflicting report formats",
			mutate: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
		{
			name:    "negative max body bytes",
			mutate:  func(c *Config) { c.MaxBodyBytes = -1 },
			wantErr: ErrInvalidBodyLimit,
		},
		{
			name:    "negative truncate bytes",
			mutate:  func(c *Config) { c.TruncateBytes = -1 },
			wantErr: ErrInvalidBodyLimit,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewConfig()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRulesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".sdksniff")
	content := `
junkWords:
  - placeholder
  - sample
ignoreDomains:
  - api.myapp.example.com
domains:
  sdk.vendor.example.com:
    ignore: true
    junkWords:
      - vendor-default
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRulesFile(path)
	if err != nil {
		t.Fatal(err)
	}

	ignored := rules.EffectiveIgnoreDomains()
	sort.Strings(ignored)
	want := []string{"api.myapp.example.com", "sdk.vendor.example.com"}
	if len(ignored) != len(want) {
		t.Fatalf("want %d ignored domains, got %d", len(want), len(ignored))
	}
	for i := range want {
		if ignored[i] != want[i] {
			t.Errorf("ignored[%d] = %q, want %q", i, ignored[i], want[i])
		}
	}

	words := rules.EffectiveJunkWords()
	sort.Strings(words)
	wantWords := []string{"placeholder", "sample", "vendor-default"}
	if len(words) != len(wantWords) {
		t.Fatalf("want %d junk words, got %d", len(wantWords), len(words))
	}
	for i := range wantWords {
		if words[i] != wantWords[i] {
			t.Errorf("words[%d] = %q, want %q", i, words[i], wantWords[i])
		}
	}
}

func TestLoadRulesFileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadRulesFile(filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, ErrRulesNotFound) {
		t.Errorf("want ErrRulesNotFound, got %v", err)
	}
}

func TestLoadRulesFileMalformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".sdksniff")
	if err := os.WriteFile(path, []byte("junkWords: {not a list"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRulesFile(path); err == nil {
		t.Error("want error for malformed YAML")
	}
}

func TestFindRulesFileExplicitPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom-rules.yml")
	if err := os.WriteFile(path, []byte("junkWords: []"), 0600); err != nil {
		t.Fatal(err)
	}

	if got := FindRulesFile(path); got != path {
		t.Errorf("want %q, got %q", path, got)
	}
	if got := FindRulesFile(filepath.Join(t.TempDir(), "absent")); got != "" {
		t.Errorf("want empty path for missing explicit file, got %q", got)
	}
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if filepath.Base(XDGDataDir()) != AppName {
		t.Errorf("data dir should end with %q, got %q", AppName, XDGDataDir())
	}
	if filepath.Base(XDGConfigDir()) != AppName {
		t.Errorf("config dir should end with %q, got %q", AppName, XDGConfigDir())
	}
}

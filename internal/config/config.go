package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultConcurrency of 8 concurrent events balances replay throughput
	// against lock contention on the store, whose appends are serialized
	// anyway. Higher values only help while decoding large bodies.
	DefaultConcurrency = 8

	// DefaultLogFileName is the detection log file name inside the XDG
	// data directory. The file is a JSON array of deduplicated entries.
	DefaultLogFileName = "sdk_logs.json"

	// DefaultMaxBodyBytes limits how large a request body is parsed in
	// full. Larger bodies are truncated before classification to bound
	// regex cost per request.
	DefaultMaxBodyBytes = 1_000_000

	// DefaultTruncateBytes is the prefix length classified when a body
	// exceeds DefaultMaxBodyBytes.
	DefaultTruncateBytes = 1000

	// AppName is the application name used for XDG directory paths.
	AppName = "sdksniff"
)

// Config holds all configuration options for sdksniff.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., StoreConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// LogFile is the path of the JSON detection log. When empty, the
	// default location inside the XDG data directory is used.
	LogFile string

	// DBDir is the directory path for the SQLite session archive.
	// When empty, accepted entries are not archived.
	DBDir string

	// SaveToDB indicates whether to archive accepted entries.
	// This is automatically set to true when DBDir is configured.
	SaveToDB bool

	// AppPackage is the package name of the app under analysis, recorded
	// with the archive session. Informational only.
	AppPackage string

	// Concurrency is the number of events processed simultaneously during
	// replay. Store appends stay serialized regardless.
	Concurrency int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// RulesFilePath is the path to the YAML rules file.
	// If empty, the tool searches for .sdksniff in the current directory
	// and then in the user's home directory.
	RulesFilePath string

	// Rules holds analysis overrides loaded from the rules file.
	Rules *Rules

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the risk report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// DumpFiles is the list of capture dump files to replay.
	DumpFiles []string

	// AppendLog keeps entries already in the detection log and dedupes
	// new detections against them. When false, the log is reset at the
	// start of the run, matching a fresh capture session.
	AppendLog bool

	// MaxBodyBytes is the request body size ceiling in bytes.
	// Set to 0 to use the default.
	MaxBodyBytes int

	// TruncateBytes is the prefix length classified for oversized bodies.
	// Set to 0 to use the default.
	TruncateBytes int
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		LogFile:       filepath.Join(XDGDataDir(), DefaultLogFileName),
		Concurrency:   DefaultConcurrency,
		MaxBodyBytes:  DefaultMaxBodyBytes,
		TruncateBytes: DefaultTruncateBytes,
	}
}

// XDGDataDir returns the XDG data directory for sdksniff.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/sdksniff
// On macOS: ~/Library/Application Support/sdksniff
// On Windows: %LOCALAPPDATA%\sdksniff
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sdksniff.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/sdksniff
// On macOS: ~/Library/Application Support/sdksniff
// On Windows: %APPDATA%\sdksniff
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any processing begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.LogFile == "" {
		return ErrNoLogFile
	}

	// Concurrency must be positive; zero would mean no processing
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// Body limits must be non-negative; zero means use the default
	if c.MaxBodyBytes < 0 || c.TruncateBytes < 0 {
		return ErrInvalidBodyLimit
	}

	return nil
}

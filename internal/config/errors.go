package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoLogFile is returned when the detection log path is empty.
	// Every pipeline operation reads or writes the log, so a path is required.
	ErrNoLogFile = errors.New("no detection log path specified")

	// ErrNoDumpFile is returned when replay is requested without any
	// capture dump file to read.
	ErrNoDumpFile = errors.New("no capture dump specified: provide at least one flows file")

	// ErrInvalidConcurrency is returned when the replay concurrency is not
	// positive. Zero concurrency would mean no events are processed.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidBodyLimit is returned when a body size limit is negative.
	// Use 0 to fall back to the default limit.
	ErrInvalidBodyLimit = errors.New("invalid body limit: must be non-negative")
)

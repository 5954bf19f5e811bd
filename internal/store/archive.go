package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sdksniff/internal/model"
	"github.com/nao1215/sdksniff/internal/risk"
)

// Archive provides SQLite-based history across capture sessions. While
// the JSON log is reset per session, the archive accumulates: it answers
// "what did this app leak last month" after the log has been cleared.
//
// Design decision: one database file for all sessions rather than a file
// per session. Cross-session queries (per-domain history, session
// comparison) stay single-file joins.
type Archive struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// sessionID identifies the capture session rows written by this
	// process.
	sessionID string

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// OpenArchive opens or creates the archive database in dbDir and starts
// a new capture session identified by a random UUID.
func OpenArchive(dbDir, appPackage string) (*Archive, error) {
	a, err := openArchive(dbDir)
	if err != nil {
		return nil, err
	}
	a.sessionID = uuid.NewString()
	if err := a.startSession(appPackage); err != nil {
		_ = a.db.Close()
		return nil, err
	}
	return a, nil
}

// OpenArchiveReader opens the archive without starting a capture session.
// Read-only commands like history listings use this so browsing the
// archive does not pollute the sessions table.
func OpenArchiveReader(dbDir string) (*Archive, error) {
	return openArchive(dbDir)
}

// openArchive opens the database and ensures the schema exists.
func openArchive(dbDir string) (*Archive, error) {
	if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	dbPath := filepath.Join(dbDir, "sdksniff.db")

	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	a := &Archive{
		db:     db,
		dbPath: dbPath,
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := a.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create archive tables: %w", err)
	}
	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// SessionID returns the identifier of the current capture session.
func (a *Archive) SessionID() string {
	return a.sessionID
}

// createTables creates the archive schema if it doesn't exist.
func (a *Archive) createTables() error {
	schema := `
	-- Sessions record one capture run each
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		app_package TEXT,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		entry_count INTEGER DEFAULT 0,
		risk_json TEXT
	);

	-- Entries mirror the JSON log's accepted entries
	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		domain TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		request_url TEXT,
		findings_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_session ON entries(session_id);
	CREATE INDEX IF NOT EXISTS idx_entries_domain ON entries(domain);
	`

	_, err := a.db.ExecContext(context.Background(), schema)
	return err
}

// startSession inserts the session row.
func (a *Archive) startSession(appPackage string) error {
	query := `INSERT INTO sessions (id, app_package) VALUES (?, ?)`
	if _, err := a.db.ExecContext(context.Background(), query, a.sessionID, appPackage); err != nil {
		return fmt.Errorf("failed to start archive session: %w", err)
	}
	return nil
}

// RecordEntry archives one accepted log entry under the current session.
func (a *Archive) RecordEntry(ctx context.Context, entry model.LogEntry) error {
	findingsJSON, err := json.Marshal(entry.Findings)
	if err != nil {
		return fmt.Errorf("failed to serialize findings: %w", err)
	}

	insert := `
	INSERT INTO entries (session_id, domain, timestamp, request_url, findings_json)
	VALUES (?, ?, ?, ?, ?)
	`
	if _, err := a.db.ExecContext(ctx, insert,
		a.sessionID,
		entry.Domain,
		entry.Timestamp,
		entry.RequestURL,
		string(findingsJSON),
	); err != nil {
		return fmt.Errorf("failed to archive entry: %w", err)
	}

	bump := `UPDATE sessions SET entry_count = entry_count + 1 WHERE id = ?`
	if _, err := a.db.ExecContext(ctx, bump, a.sessionID); err != nil {
		return fmt.Errorf("failed to update session entry count: %w", err)
	}
	return nil
}

// FinalizeSession stores the session's computed risk report. Called once
// at the end of a capture run; calling it again overwrites the stored
// report.
func (a *Archive) FinalizeSession(ctx context.Context, riskReport risk.Report) error {
	riskJSON, err := json.Marshal(riskReport)
	if err != nil {
		return fmt.Errorf("failed to serialize risk report: %w", err)
	}

	query := `UPDATE sessions SET risk_json = ? WHERE id = ?`
	if _, err := a.db.ExecContext(ctx, query, string(riskJSON), a.sessionID); err != nil {
		return fmt.Errorf("failed to finalize archive session: %w", err)
	}
	return nil
}

// SessionSummary describes one archived capture session.
type SessionSummary struct {
	// ID is the session identifier.
	ID string

	// AppPackage is the package name the session was captured for.
	AppPackage string

	// StartedAt is when the session began.
	StartedAt time.Time

	// EntryCount is the number of entries archived in the session.
	EntryCount int

	// Risk is the final risk report computed at the end of the session.
	// Nil when the session was never finalized.
	Risk *risk.Report
}

// ListSessions returns all archived sessions, newest first.
func (a *Archive) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	query := `
	SELECT id, app_package, started_at, entry_count, risk_json
	FROM sessions
	ORDER BY started_at DESC
	`

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive sessions: %w", err)
	}
	defer rows.Close()

	var results []SessionSummary
	for rows.Next() {
		var summary SessionSummary
		var appPackage, riskJSON sql.NullString
		var startedAt string
		if err := rows.Scan(&summary.ID, &appPackage, &startedAt, &summary.EntryCount, &riskJSON); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		summary.AppPackage = appPackage.String
		summary.StartedAt = parseTimestamp(startedAt)
		if riskJSON.Valid && riskJSON.String != "" {
			var r risk.Report
			if err := json.Unmarshal([]byte(riskJSON.String), &r); err == nil {
				summary.Risk = &r
			}
		}
		results = append(results, summary)
	}
	return results, rows.Err()
}

// DomainHistory returns archived entries for one destination domain
// across all sessions, newest first.
func (a *Archive) DomainHistory(ctx context.Context, domain string) ([]model.LogEntry, error) {
	query := `
	SELECT domain, timestamp, request_url, findings_json
	FROM entries
	WHERE domain = ?
	ORDER BY id DESC
	`

	rows, err := a.db.QueryContext(ctx, query, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to query domain history: %w", err)
	}
	defer rows.Close()

	var results []model.LogEntry
	for rows.Next() {
		var entry model.LogEntry
		var requestURL sql.NullString
		var findingsJSON string
		if err := rows.Scan(&entry.Domain, &entry.Timestamp, &requestURL, &findingsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entry.RequestURL = requestURL.String

		var findings model.FindingSet
		if err := json.Unmarshal([]byte(findingsJSON), &findings); err != nil {
			continue // skip malformed archived findings
		}
		entry.Findings = findings
		results = append(results, entry)
	}
	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending
// on configuration; an unparseable value yields the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Package store persists detection results. The primary artifact is a
// human-readable JSON log of deduplicated entries, rewritten in full on
// every accepted append so the file is always a complete, valid document
// that dashboards can tail. A SQLite archive keeps per-session history
// across runs; the JSON log is reset at the start of each capture
// session, the archive is not.
package store

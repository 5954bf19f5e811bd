package model

import (
	"encoding/json"
	"testing"
)

// TestFindingSet tests merging, canonical serialization, and fingerprints.
func TestFindingSet(t *testing.T) {
	t.Parallel()

	t.Run("collapses duplicate values", func(t *testing.T) {
		t.Parallel()

		fs := NewFindingSet()
		fs.Add(CategoryEmail, "a@example.com")
		fs.Add(CategoryEmail, "a@example.com")

		if got := fs.Values(CategoryEmail); len(got) != 1 {
			t.Errorf("expected 1 distinct value, got %d", len(got))
		}
	})

	t.Run("serializes values sorted", func(t *testing.T) {
		t.Parallel()

		fs := NewFindingSet()
		fs.Add(CategoryEmail, "b@example.com")
		fs.Add(CategoryEmail, "a@example.com")

		data, err := json.Marshal(fs)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"email":["a@example.com","b@example.com"]}`
		if string(data) != want {
			t.Errorf("expected %s, got %s", want, data)
		}
	})

	t.Run("fingerprint ignores insertion order", func(t *testing.T) {
		t.Parallel()

		a := NewFindingSet()
		a.Add(CategoryPhone, "9876543210")
		a.Add(CategoryEmail, "a@example.com")

		b := NewFindingSet()
		b.Add(CategoryEmail, "a@example.com")
		b.Add(CategoryPhone, "9876543210")

		if a.Fingerprint() != b.Fingerprint() {
			t.Error("expected identical fingerprints for identical content")
		}
	})

	t.Run("fingerprint distinguishes extra category", func(t *testing.T) {
		t.Parallel()

		a := NewFindingSet()
		a.Add(CategoryPhone, "9876543210")

		b := NewFindingSet()
		b.Add(CategoryPhone, "9876543210")
		b.Add(CategoryEmail, "a@example.com")

		if a.Fingerprint() == b.Fingerprint() {
			t.Error("expected different fingerprints for different content")
		}
	})

	t.Run("merge unions categories", func(t *testing.T) {
		t.Parallel()

		a := NewFindingSet()
		a.Add(CategoryPhone, "9876543210")

		b := NewFindingSet()
		b.Add(CategoryPhone, "1234567890")
		b.Add(CategoryCity, "Springfield")

		a.Merge(b)
		if len(a.Values(CategoryPhone)) != 2 {
			t.Errorf("expected 2 phone values, got %d", len(a.Values(CategoryPhone)))
		}
		if !a.Has(CategoryCity, "Springfield") {
			t.Error("expected merged city finding")
		}
	})

	t.Run("round trips through JSON", func(t *testing.T) {
		t.Parallel()

		fs := NewFindingSet()
		fs.Add(CategoryIMEI, "356938035643809")

		data, err := json.Marshal(fs)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded FindingSet
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !decoded.Has(CategoryIMEI, "356938035643809") {
			t.Error("expected imei finding after round trip")
		}
	})
}

// TestLogEntry tests entry construction and tolerant decoding.
func TestLogEntry(t *testing.T) {
	t.Parallel()

	t.Run("registered domain groups subdomains", func(t *testing.T) {
		t.Parallel()

		entry := LogEntry{Domain: "api.app-measurement.com"}
		if got := entry.RegisteredDomain(); got != "app-measurement.com" {
			t.Errorf("expected app-measurement.com, got %q", got)
		}
	})

	t.Run("registered domain falls back for unresolvable hosts", func(t *testing.T) {
		t.Parallel()

		entry := LogEntry{Domain: "localhost"}
		if got := entry.RegisteredDomain(); got != "localhost" {
			t.Errorf("expected localhost, got %q", got)
		}
	})

	t.Run("decodes mapping findings", func(t *testing.T) {
		t.Parallel()

		raw := `{"App Domain":"tracker.example.com","Timestamp":"2025-01-02 03:04:05","Data Sent":{"email":["a@example.com"]},"Request URL":"https://tracker.example.com/v1"}`

		var entry LogEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !entry.Findings.Has(CategoryEmail, "a@example.com") {
			t.Error("expected email finding")
		}
		if entry.LegacyData() != "" {
			t.Error("expected no legacy data for mapping findings")
		}
	})

	t.Run("keeps non-mapping findings as legacy data", func(t *testing.T) {
		t.Parallel()

		raw := `{"App Domain":"tracker.example.com","Timestamp":"2025-01-02 03:04:05","Data Sent":"android_id=abc","Request URL":"https://tracker.example.com/v1"}`

		var entry LogEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry.Findings != nil {
			t.Error("expected nil findings for legacy entry")
		}
		if entry.LegacyData() == "" {
			t.Error("expected legacy data to be retained")
		}
	})
}

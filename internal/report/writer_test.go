package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nao1215/sdksniff/internal/model"
	"github.com/nao1215/sdksniff/internal/risk"
)

// testEntries builds a detection log spanning two vendors, one of them
// contacted through two distinct subdomains.
func testEntries() []model.LogEntry {
	entry := func(domain string, tags ...model.CategoryTag) model.LogEntry {
		findings := model.NewFindingSet()
		for _, tag := range tags {
			findings.Add(tag, string(tag)+"-value")
		}
		return model.NewLogEntry(domain, findings, "https://"+domain+"/v1/events")
	}
	return []model.LogEntry{
		entry("api.tracker-sdk.com", model.CategoryEmail),
		entry("cdn.tracker-sdk.com", model.CategoryAndroidID),
		entry("stats.otherco.io", model.CategoryOSVersion),
	}
}

func testSummary() *Summary {
	entries := testEntries()
	return BuildSummary(entries, risk.Compute(entries), map[string]int{
		"api.tracker-sdk.com": 12,
		"stats.otherco.io":    3,
	})
}

func TestBuildSummaryVendorGrouping(t *testing.T) {
	t.Parallel()

	summary := testSummary()

	if len(summary.Vendors) != 2 {
		t.Fatalf("want 2 vendors after registered-domain grouping, got %d", len(summary.Vendors))
	}

	// Busiest vendor sorts first.
	tracker := summary.Vendors[0]
	if tracker.RegisteredDomain != "tracker-sdk.com" {
		t.Errorf("want tracker-sdk.com first, got %q", tracker.RegisteredDomain)
	}
	if tracker.Entries != 2 {
		t.Errorf("want 2 entries for tracker vendor, got %d", tracker.Entries)
	}
	if len(tracker.Domains) != 2 {
		t.Errorf("want 2 distinct hosts, got %v", tracker.Domains)
	}
	if len(tracker.Categories) != 2 {
		t.Errorf("want 2 distinct categories, got %v", tracker.Categories)
	}

	other := summary.Vendors[1]
	if other.RegisteredDomain != "otherco.io" {
		t.Errorf("want otherco.io second, got %q", other.RegisteredDomain)
	}
	if other.Entries != 1 {
		t.Errorf("want 1 entry for other vendor, got %d", other.Entries)
	}
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes all sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		writer := NewSimpleWriter(&buf, WithVerbose(true))
		n, err := writer.Write(testSummary())
		if err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		output := buf.String()
		for _, want := range []string{
			"SDK PRIVACY RISK REPORT",
			"CATEGORY BREAKDOWN",
			"Personal Info",
			"tracker-sdk.com",
			"host: api.tracker-sdk.com",
			"REQUEST VOLUME",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("simple report missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("empty log reads as clean", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		summary := BuildSummary(nil, risk.Compute(nil), nil)
		if _, err := NewSimpleWriter(&buf).Write(summary); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "clean") {
			t.Errorf("empty log should read as clean:\n%s", output)
		}
		if strings.Contains(output, "DESTINATIONS") {
			t.Errorf("empty destinations section should be hidden:\n%s", output)
		}
	})

	t.Run("shows empty sections when configured", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		summary := BuildSummary(nil, risk.Compute(nil), nil)
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true)).Write(summary); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		if !strings.Contains(buf.String(), "No detections logged") {
			t.Errorf("want empty destinations placeholder:\n%s", buf.String())
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output round-trips", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(testSummary()); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		var decoded Summary
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("JSON output does not parse: %v", err)
		}
		if len(decoded.Vendors) != 2 {
			t.Errorf("want 2 vendors in JSON output, got %d", len(decoded.Vendors))
		}
		if decoded.Risk.TotalEntries != 3 {
			t.Errorf("want 3 total entries in JSON output, got %d", decoded.Risk.TotalEntries)
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(testSummary()); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("pretty-printed output should contain indentation")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes all sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(testSummary()); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# SDK Privacy Risk Report",
			"## Category Breakdown",
			"## Destinations",
			"mermaid",
			"`tracker-sdk.com`",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("markdown report missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("clean log skips the pie chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		summary := BuildSummary(nil, risk.Compute(nil), nil)
		if _, err := NewMarkdownWriter(&buf).Write(summary); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if strings.Contains(buf.String(), "mermaid") {
			t.Error("clean report should not include a pie chart")
		}
	})
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))
	n, err := mw.Write(testSummary())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if text.Len() == 0 || js.Len() == 0 {
		t.Error("multi writer should write to every destination")
	}
	if n != text.Len()+js.Len() {
		t.Errorf("reported %d bytes, wrote %d", n, text.Len()+js.Len())
	}
}

func TestScoreLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  string
	}{
		{0, "clean"},
		{10, "low"},
		{25, "moderate"},
		{50, "high"},
		{75, "critical"},
		{100, "critical"},
	}
	for _, tt := range tests {
		if got := scoreLabel(tt.score); got != tt.want {
			t.Errorf("scoreLabel(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	if got := displayName(risk.CategoryPersonalInfo); got != "Personal Info" {
		t.Errorf("displayName(personal_info) = %q, want %q", got, "Personal Info")
	}
	if got := displayName(risk.CategoryUniqueIDs); got != "Unique Ids" {
		t.Errorf("displayName(unique_ids) = %q, want %q", got, "Unique Ids")
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	if got := truncateString("short", 80); got != "short" {
		t.Errorf("want unchanged string, got %q", got)
	}
	long := strings.Repeat("a", 100)
	got := truncateString(long, 80)
	if len(got) != 80 || !strings.HasSuffix(got, "...") {
		t.Errorf("want 80-char truncation with ellipsis, got %q (len %d)", got, len(got))
	}
}

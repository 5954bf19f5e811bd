package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nao1215/sdksniff/internal/risk"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no data are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeCategories(&sb, summary)
	w.writeVendors(&sb, summary)
	w.writeTraffic(&sb, summary)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with the headline score.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       SDK PRIVACY RISK REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Generated:   %s\n", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Log Entries: %d\n", summary.Risk.TotalEntries))
	sb.WriteString(fmt.Sprintf("Risk Score:  %.1f / 100 (%s)\n", summary.Risk.FinalScore, scoreLabel(summary.Risk.FinalScore)))
	sb.WriteString("\n")
}

// writeCategories writes the per-bucket score breakdown.
func (w *SimpleWriter) writeCategories(sb *strings.Builder, summary *Summary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CATEGORY BREAKDOWN\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, c := range risk.Categories {
		score := summary.Risk.Categories[c]
		sb.WriteString(fmt.Sprintf("  %-16s count: %-4d subscore: %5.2f  weight: %.2f\n",
			displayName(c), score.Count, score.Subscore, score.Weight))
	}
	sb.WriteString("\n")
}

// writeVendors writes the per-vendor aggregation.
func (w *SimpleWriter) writeVendors(sb *strings.Builder, summary *Summary) {
	if len(summary.Vendors) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DESTINATIONS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(summary.Vendors) == 0 {
		sb.WriteString("  No detections logged\n")
	}
	for _, vendor := range summary.Vendors {
		sb.WriteString(fmt.Sprintf("  [+] %s (%d entries)\n", vendor.RegisteredDomain, vendor.Entries))
		if w.verbose {
			for _, domain := range vendor.Domains {
				sb.WriteString(fmt.Sprintf("      host: %s\n", domain))
			}
		}
		if len(vendor.Categories) > 0 {
			tags := make([]string, len(vendor.Categories))
			for i, tag := range vendor.Categories {
				tags[i] = string(tag)
			}
			sb.WriteString(fmt.Sprintf("      data: %s\n", strings.Join(tags, ", ")))
		}
	}
	sb.WriteString("\n")
}

// writeTraffic writes observed request volume per domain.
func (w *SimpleWriter) writeTraffic(sb *strings.Builder, summary *Summary) {
	if len(summary.RequestCounts) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("REQUEST VOLUME\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	domains := make([]string, 0, len(summary.RequestCounts))
	for domain := range summary.RequestCounts {
		domains = append(domains, domain)
	}
	sort.Strings(domains)
	for _, domain := range domains {
		sb.WriteString(fmt.Sprintf("  %-50s %d\n", domain, summary.RequestCounts[domain]))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by sdksniff\n")
	sb.WriteString("https://github.com/nao1215/sdksniff\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// scoreLabel maps a 0-100 score onto a coarse severity label.
func scoreLabel(score float64) string {
	switch {
	case score >= 75:
		return "critical"
	case score >= 50:
		return "high"
	case score >= 25:
		return "moderate"
	case score > 0:
		return "low"
	default:
		return "clean"
	}
}

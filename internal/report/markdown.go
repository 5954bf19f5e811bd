package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/sdksniff/internal/risk"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeCategories(md, summary)
	w.writeVendors(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with the headline score.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *Summary) {
	md.H1("SDK Privacy Risk Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Log Entries", strconv.Itoa(summary.Risk.TotalEntries)},
			{"Risk Score", fmt.Sprintf("**%.1f / 100** (%s)", summary.Risk.FinalScore, scoreLabel(summary.Risk.FinalScore))},
		},
	})
	md.PlainText("")

	w.writeAlert(md, summary)
}

// writeAlert writes an appropriate alert based on the final score.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *Summary) {
	score := summary.Risk.FinalScore
	switch {
	case score >= 75:
		md.Cautionf(
			"Critical privacy risk: score %.1f. The analyzed traffic leaks personal data or durable identifiers at scale.",
			score,
		)
	case score >= 50:
		md.Warningf(
			"High privacy risk: score %.1f. Significant data collection was observed across multiple categories.",
			score,
		)
	case score >= 25:
		md.Importantf(
			"Moderate privacy risk: score %.1f. Some identifying data leaves the device.",
			score,
		)
	case score > 0:
		md.Note("Low privacy risk. Only limited device or app metadata was observed.")
	default:
		md.Tip("No data leakage detected in the analyzed traffic.")
	}
	md.PlainText("")
}

// writeCategories writes the per-bucket breakdown with a weighted
// contribution pie chart.
func (w *MarkdownWriter) writeCategories(md *markdown.Markdown, summary *Summary) {
	md.H2("Category Breakdown")
	md.PlainText("")

	rows := make([][]string, 0, len(risk.Categories))
	for _, c := range risk.Categories {
		score := summary.Risk.Categories[c]
		rows = append(rows, []string{
			displayName(c),
			strconv.Itoa(score.Count),
			fmt.Sprintf("%.2f", score.Subscore),
			fmt.Sprintf("%.2f", score.Weight),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Count", "Subscore", "Weight"},
		Rows:   rows,
	})
	md.PlainText("")

	if summary.Risk.FinalScore > 0 {
		w.writePieChart(md, summary)
	}
}

// writePieChart writes a mermaid pie chart of each bucket's weighted
// contribution to the final score.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Weighted Risk Contribution"),
		piechart.WithShowData(true),
	)

	for _, c := range risk.Categories {
		score := summary.Risk.Categories[c]
		contribution := uint64(score.Subscore * score.Weight * 100)
		if contribution > 0 {
			chart.LabelAndIntValue(displayName(c), contribution)
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeVendors writes the per-vendor aggregation table.
func (w *MarkdownWriter) writeVendors(md *markdown.Markdown, summary *Summary) {
	md.H2("Destinations")
	md.PlainText("")

	if len(summary.Vendors) == 0 {
		md.PlainText("No detections logged.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(summary.Vendors))
	for i, vendor := range summary.Vendors {
		tags := make([]string, len(vendor.Categories))
		for j, tag := range vendor.Categories {
			tags[j] = string(tag)
		}
		rows[i] = []string{
			"`" + vendor.RegisteredDomain + "`",
			strconv.Itoa(vendor.Entries),
			strconv.Itoa(len(vendor.Domains)),
			truncateString(strings.Join(tags, ", "), 80),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Vendor", "Entries", "Hosts", "Data Observed"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sdksniff](https://github.com/nao1215/sdksniff)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

package report

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/sdksniff/internal/model"
	"github.com/nao1215/sdksniff/internal/risk"
)

// VendorStat aggregates detections for one SDK vendor, identified by the
// registered domain (eTLD+1) of the destination hosts. Subdomains like
// api.vendor.com and cdn.vendor.com fold into one row.
type VendorStat struct {
	// RegisteredDomain is the vendor's eTLD+1.
	RegisteredDomain string `json:"registered_domain"` //nolint:tagliatelle // report schema is fixed

	// Domains lists the distinct destination hosts, sorted.
	Domains []string `json:"domains"`

	// Entries is the number of deduplicated log entries for the vendor.
	Entries int `json:"entries"`

	// Categories lists the distinct finding categories observed, sorted.
	Categories []model.CategoryTag `json:"categories"`
}

// Summary is the report input: the scored detection log plus vendor
// grouping and traffic volume.
type Summary struct {
	// GeneratedAt is when the summary was built.
	GeneratedAt time.Time `json:"generated_at"` //nolint:tagliatelle // report schema is fixed

	// Risk is the computed risk assessment.
	Risk risk.Report `json:"risk"`

	// Vendors holds per-vendor aggregates, busiest first.
	Vendors []VendorStat `json:"vendors"`

	// RequestCounts is the number of observed requests per destination
	// domain, including requests that produced no findings. Empty when
	// the report is built from a stored log rather than a live session.
	RequestCounts map[string]int `json:"request_counts,omitempty"` //nolint:tagliatelle // report schema is fixed
}

// BuildSummary aggregates log entries into a report summary.
// requestCounts may be nil.
func BuildSummary(entries []model.LogEntry, riskReport risk.Report, requestCounts map[string]int) *Summary {
	type vendorAccum struct {
		domains    map[string]struct{}
		categories map[model.CategoryTag]struct{}
		entries    int
	}
	accum := make(map[string]*vendorAccum)

	for _, entry := range entries {
		registered := entry.RegisteredDomain()
		va, ok := accum[registered]
		if !ok {
			va = &vendorAccum{
				domains:    make(map[string]struct{}),
				categories: make(map[model.CategoryTag]struct{}),
			}
			accum[registered] = va
		}
		va.entries++
		va.domains[entry.Domain] = struct{}{}
		if entry.Findings != nil {
			for _, tag := range entry.Findings.Categories() {
				va.categories[tag] = struct{}{}
			}
		}
	}

	vendors := make([]VendorStat, 0, len(accum))
	for registered, va := range accum {
		stat := VendorStat{
			RegisteredDomain: registered,
			Domains:          make([]string, 0, len(va.domains)),
			Entries:          va.entries,
			Categories:       make([]model.CategoryTag, 0, len(va.categories)),
		}
		for domain := range va.domains {
			stat.Domains = append(stat.Domains, domain)
		}
		sort.Strings(stat.Domains)
		for tag := range va.categories {
			stat.Categories = append(stat.Categories, tag)
		}
		sort.Slice(stat.Categories, func(i, j int) bool { return stat.Categories[i] < stat.Categories[j] })
		vendors = append(vendors, stat)
	}
	sort.Slice(vendors, func(i, j int) bool {
		if vendors[i].Entries != vendors[j].Entries {
			return vendors[i].Entries > vendors[j].Entries
		}
		return vendors[i].RegisteredDomain < vendors[j].RegisteredDomain
	})

	return &Summary{
		GeneratedAt:   time.Now(),
		Risk:          riskReport,
		Vendors:       vendors,
		RequestCounts: requestCounts,
	}
}

var titleCaser = cases.Title(language.English)

// displayName renders a snake_case category identifier as a heading,
// e.g. "personal_info" becomes "Personal Info".
func displayName(c risk.Category) string {
	return titleCaser.String(strings.ReplaceAll(string(c), "_", " "))
}

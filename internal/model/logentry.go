package model

import (
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// TimestampLayout is the second-resolution timestamp format used in
// persisted log entries. The format is part of the on-disk contract and
// must not change.
const TimestampLayout = "2006-01-02 15:04:05"

// LogEntry is one deduplicated detection record for a destination domain.
//
// The JSON field names (with spaces) are the persisted store format and
// are fixed; dashboards and external tooling consume them as-is.
type LogEntry struct {
	// Domain is the destination host the request was sent to.
	Domain string `json:"App Domain"` //nolint:tagliatelle // persisted log schema is fixed

	// Timestamp is the detection time at second resolution.
	Timestamp string `json:"Timestamp"` //nolint:tagliatelle // persisted log schema is fixed

	// Findings holds the classified data observed in the request.
	Findings FindingSet `json:"Data Sent"` //nolint:tagliatelle // persisted log schema is fixed

	// RequestURL is the full URL of the originating request.
	RequestURL string `json:"Request URL"` //nolint:tagliatelle // persisted log schema is fixed

	// legacyData holds the stringified "Data Sent" content for entries
	// whose findings were not a category mapping (hand-edited or older
	// store files). The risk scorer falls back to substring matching over
	// this form rather than dropping the entry.
	legacyData string
}

// NewLogEntry builds a log entry stamped with the current time.
func NewLogEntry(domain string, findings FindingSet, requestURL string) LogEntry {
	return LogEntry{
		Domain:     domain,
		Timestamp:  time.Now().Format(TimestampLayout),
		Findings:   findings,
		RequestURL: requestURL,
	}
}

// LegacyData returns the stringified findings content for entries whose
// "Data Sent" field was not a category mapping. It is empty for entries
// produced by this process.
func (e LogEntry) LegacyData() string {
	return e.legacyData
}

// RegisteredDomain returns the eTLD+1 of the entry's domain, grouping
// subdomains of one SDK vendor together (api.vendor.com and
// cdn.vendor.com both report as vendor.com). When the domain has no
// derivable registered domain (IP addresses, "localhost"), the raw
// domain is returned unchanged.
func (e LogEntry) RegisteredDomain() string {
	host := strings.ToLower(strings.TrimSuffix(e.Domain, "."))
	registered, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return registered
}

// UnmarshalJSON decodes an entry, tolerating non-mapping "Data Sent"
// content. A malformed findings field never fails the whole store load;
// the raw content is kept in LegacyData for the scorer's fallback path.
func (e *LogEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Domain     string          `json:"App Domain"`  //nolint:tagliatelle // persisted log schema is fixed
		Timestamp  string          `json:"Timestamp"`   //nolint:tagliatelle // persisted log schema is fixed
		Findings   json.RawMessage `json:"Data Sent"`   //nolint:tagliatelle // persisted log schema is fixed
		RequestURL string          `json:"Request URL"` //nolint:tagliatelle // persisted log schema is fixed
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.Domain = raw.Domain
	e.Timestamp = raw.Timestamp
	e.RequestURL = raw.RequestURL
	e.Findings = nil
	e.legacyData = ""

	if len(raw.Findings) == 0 {
		return nil
	}

	var findings FindingSet
	if err := json.Unmarshal(raw.Findings, &findings); err != nil {
		e.legacyData = string(raw.Findings)
		return nil
	}
	e.Findings = findings
	return nil
}

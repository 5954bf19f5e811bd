package sniffer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nao1215/sdksniff/internal/classifier"
	"github.com/nao1215/sdksniff/internal/decoder"
	"github.com/nao1215/sdksniff/internal/model"
	"github.com/nao1215/sdksniff/internal/store"
)

// Sniffer runs the per-request detection pipeline. It is safe for
// concurrent use: the decoder and classifier are stateless, the store
// serializes internally, and the request counter holds its own lock.
type Sniffer struct {
	// decoder normalizes raw requests into classification targets.
	decoder *decoder.Decoder

	// classifier produces findings from decoded value trees.
	classifier *classifier.Classifier

	// store is the deduplicated JSON detection log.
	store *store.Store

	// archive receives accepted entries for cross-session history. May be
	// nil when archiving is disabled.
	archive *store.Archive

	// ignoreDomains holds destination hosts excluded from analysis, such
	// as the instrumented app's own backend.
	ignoreDomains map[string]struct{}

	// logger receives pipeline diagnostics.
	logger *slog.Logger

	// mu guards requestCounts.
	mu sync.Mutex

	// requestCounts tracks observed requests per destination domain,
	// including requests that produced no findings.
	requestCounts map[string]int
}

// Option configures a Sniffer.
type Option func(*Sniffer)

// WithArchive attaches a SQLite archive that records accepted entries.
func WithArchive(archive *store.Archive) Option {
	return func(s *Sniffer) { s.archive = archive }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sniffer) { s.logger = logger }
}

// WithIgnoreDomains excludes destination hosts from analysis. Matching
// is case-insensitive and exact on the host, not the registered domain.
func WithIgnoreDomains(domains []string) Option {
	return func(s *Sniffer) {
		for _, d := range domains {
			s.ignoreDomains[normalizeDomain(d)] = struct{}{}
		}
	}
}

// New creates a Sniffer writing accepted detections to st.
func New(d *decoder.Decoder, c *classifier.Classifier, st *store.Store, opts ...Option) *Sniffer {
	s := &Sniffer{
		decoder:       d,
		classifier:    c,
		store:         st,
		ignoreDomains: make(map[string]struct{}),
		requestCounts: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Record runs one intercepted request through the pipeline. It reports
// whether a new log entry was accepted: false means the request carried
// no classifiable data, was a duplicate, or targeted an ignored domain.
func (s *Sniffer) Record(ctx context.Context, event Event) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	domain := event.Domain()
	if domain == "" {
		s.logger.Debug("dropping event with unparseable URL", "url", event.URL)
		return false, nil
	}
	if _, ignored := s.ignoreDomains[domain]; ignored {
		return false, nil
	}

	s.countRequest(domain)

	findings := model.NewFindingSet()
	for _, target := range s.decoder.Decode(event.request()) {
		findings.Merge(s.classifier.Classify(target.Key, target.Value))
	}
	if findings.Empty() {
		return false, nil
	}

	entry := model.NewLogEntry(domain, findings, event.URL)
	accepted, err := s.store.AppendIfNew(entry)
	if err != nil {
		return accepted, fmt.Errorf("failed to persist detection: %w", err)
	}
	if !accepted {
		s.logger.Debug("duplicate detection suppressed", "domain", domain)
		return false, nil
	}

	s.logger.Info("detection logged",
		"domain", domain,
		"categories", findings.Categories(),
	)

	// Archive failures degrade to a warning: the JSON log already holds
	// the entry, and a broken archive must not stall live capture.
	if s.archive != nil {
		if err := s.archive.RecordEntry(ctx, entry); err != nil {
			s.logger.Warn("failed to archive detection", "domain", domain, "error", err)
		}
	}
	return true, nil
}

// RequestCounts returns a snapshot of observed requests per domain.
func (s *Sniffer) RequestCounts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int, len(s.requestCounts))
	for domain, count := range s.requestCounts {
		out[domain] = count
	}
	return out
}

func (s *Sniffer) countRequest(domain string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestCounts[domain]++
}

func normalizeDomain(d string) string {
	return strings.ToLower(strings.TrimSpace(d))
}

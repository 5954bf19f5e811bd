package sniffer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// maxEventLineBytes bounds a single capture dump line. Bodies are
// base64-encoded, so this comfortably covers the decoder's body ceiling.
const maxEventLineBytes = 4 * 1024 * 1024

// ReplayResult summarizes one replay run.
type ReplayResult struct {
	// Events is the number of events read from the dump.
	Events int

	// Accepted is the number of new log entries produced.
	Accepted int

	// Malformed is the number of dump lines that could not be parsed.
	Malformed int

	// Elapsed is the wall-clock replay duration.
	Elapsed time.Duration
}

// Replayer feeds a captured traffic dump (one JSON event per line)
// through a Sniffer. Replaying an old session against an updated rule
// table shows what the new rules would have caught.
//
// Design decision: we use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Dedup order between concurrent duplicates is irrelevant: whichever
// event wins, the surviving entry is the same.
type Replayer struct {
	// sniffer processes the replayed events.
	sniffer *Sniffer

	// concurrency is the number of events processed simultaneously.
	concurrency int
}

// NewReplayer creates a Replayer. A non-positive concurrency falls back
// to 1.
func NewReplayer(s *Sniffer, concurrency int) *Replayer {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Replayer{sniffer: s, concurrency: concurrency}
}

// ReplayFile replays every event in the dump at path. Malformed lines
// are counted and skipped; processing errors abort the replay.
func (r *Replayer) ReplayFile(ctx context.Context, path string) (ReplayResult, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return ReplayResult{}, fmt.Errorf("failed to open capture dump: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	start := time.Now()
	var result ReplayResult
	var accepted atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxEventLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		result.Events++

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			result.Malformed++
			r.sniffer.logger.Warn("skipping malformed dump line",
				"line", result.Events,
				"error", err,
			)
			continue
		}

		g.Go(func() error {
			ok, err := r.sniffer.Record(ctx, event)
			if err != nil {
				return err
			}
			if ok {
				accepted.Add(1)
			}
			return nil
		})
	}

	scanErr := scanner.Err()
	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("replay aborted: %w", err)
	}
	if scanErr != nil {
		return result, fmt.Errorf("failed to read capture dump: %w", scanErr)
	}

	result.Accepted = int(accepted.Load())
	result.Elapsed = time.Since(start)
	return result, nil
}

package main

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leijurv/rna_grammar_go/rnacode"
)

type verifyResult struct {
	name  string
	bases int
	bits  int
	err   error
}

func (r verifyResult) ok() bool {
	return r.err == nil
}

type verifySummary struct {
	passed int
	failed int
	bases  int
	bits   int
}

func summarize(results []verifyResult) verifySummary {
	var s verifySummary
	for _, r := range results {
		if !r.ok() {
			s.failed++
			continue
		}
		s.passed++
		s.bases += r.bases
		s.bits += r.bits
	}
	return s
}

func (s verifySummary) bitsPerBase() float64 {
	if s.bases == 0 {
		return 0
	}
	return float64(s.bits) / float64(s.bases)
}

// verifyRecord encodes rec, decodes the result and compares
func verifyRecord(s rnacode.Session, rec Record) verifyResult {
	result := verifyResult{name: rec.Name, bases: rec.RNA.Len()}
	c, err := s.Encode(rec.RNA)
	if err != nil {
		result.err = err
		return result
	}
	result.bits = c.Code.Len()
	decoded, err := s.Decode(c)
	if err != nil {
		result.err = err
		return result
	}
	if decoded != rec.RNA {
		result.err = rnacode.NewCodingError(rnacode.CodeVerificationMismatch, "decoded molecule differs")
	}
	return result
}

// verifyAll round-trips every record on a pool of workers. Per-record failures
// are reported in the results; only cancellation stops the pool.
func verifyAll(ctx context.Context, s rnacode.Session, records []Record, workers int, logger *slog.Logger) ([]verifyResult, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]verifyResult, len(records))
	var processed atomic.Int64

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logger.Info("progress", "processed", processed.Load(), "total", len(records))
			case <-done:
				return
			}
		}
	}()

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rec := range records {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = verifyRecord(s, rec)
			processed.Add(1)
			if r := results[i]; !r.ok() {
				logger.Warn("round trip failed", "name", r.name, "error", r.err)
			} else {
				logger.Debug("round trip ok", "name", r.name, "bases", r.bases, "bits", r.bits)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

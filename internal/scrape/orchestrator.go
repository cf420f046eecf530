// Package scrape runs listing strategies in priority order and shapes the winner's output.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/jobscraper/internal/listing"
	"github.com/JakeFAU/jobscraper/internal/metrics"
)

// DefaultMaxResults applies when the caller passes a non-positive limit.
const DefaultMaxResults = 10

// ErrEmptyKeyword is returned when the keyword is blank after trimming.
var ErrEmptyKeyword = errors.New("keyword must not be empty")

// Orchestrator tries strategies strictly in sequence and returns the first non-empty result.
type Orchestrator struct {
	strategies []listing.Strategy
	logger     *zap.Logger
	now        func() time.Time
}

// NewOrchestrator creates an orchestrator over strategies in priority order.
func NewOrchestrator(strategies []listing.Strategy, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		strategies: append([]listing.Strategy(nil), strategies...),
		logger:     logger.Named("orchestrator"),
		now:        time.Now,
	}
}

// Strategies returns the configured strategy names in priority order.
func (o *Orchestrator) Strategies() []string {
	names := make([]string, 0, len(o.strategies))
	for _, s := range o.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Scrape returns at most maxResults unique listings for keyword. Strategy
// failures never surface; when every strategy comes back empty the result is
// an empty, non-nil slice.
func (o *Orchestrator) Scrape(ctx context.Context, keyword string, maxResults int) ([]listing.Record, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	for _, s := range o.strategies {
		if err := ctx.Err(); err != nil {
			metrics.ObserveScrape(metrics.OutcomeError, -1)
			return nil, fmt.Errorf("scrape %q: %w", keyword, err)
		}

		records := o.attempt(ctx, s, keyword, maxResults)
		if len(records) == 0 {
			continue
		}

		out := listing.Cap(listing.Dedupe(records), maxResults)
		o.logger.Info("scrape complete",
			zap.String("keyword", keyword),
			zap.String("strategy", s.Name()),
			zap.Int("found", len(records)),
			zap.Int("returned", len(out)),
		)
		metrics.ObserveScrape(metrics.OutcomeHit, len(out))
		return out, nil
	}

	o.logger.Warn("no strategy produced listings", zap.String("keyword", keyword))
	metrics.ObserveScrape(metrics.OutcomeEmpty, 0)
	return []listing.Record{}, nil
}

// attempt runs one strategy, converting errors and panics into an empty result.
func (o *Orchestrator) attempt(ctx context.Context, s listing.Strategy, keyword string, maxResults int) []listing.Record {
	start := o.now()
	logger := o.logger.With(zap.String("strategy", s.Name()), zap.String("keyword", keyword))

	records, err := o.execute(ctx, s, keyword, maxResults)
	elapsed := o.now().Sub(start)

	if err == nil {
		records = valid(records)
	}

	switch {
	case err != nil:
		logger.Warn("strategy failed", zap.Error(err), zap.Duration("duration", elapsed))
		metrics.ObserveStrategy(s.Name(), metrics.OutcomeError, elapsed)
		return nil
	case len(records) == 0:
		logger.Info("strategy returned no listings", zap.Duration("duration", elapsed))
		metrics.ObserveStrategy(s.Name(), metrics.OutcomeEmpty, elapsed)
		return nil
	default:
		logger.Info("strategy returned listings", zap.Int("count", len(records)), zap.Duration("duration", elapsed))
		metrics.ObserveStrategy(s.Name(), metrics.OutcomeHit, elapsed)
		return records
	}
}

func (o *Orchestrator) execute(
	ctx context.Context,
	s listing.Strategy,
	keyword string,
	maxResults int,
) (records []listing.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy %s panicked: %v", s.Name(), r)
		}
	}()
	return s.Execute(ctx, keyword, maxResults)
}

// valid drops records missing required fields.
func valid(records []listing.Record) []listing.Record {
	out := make([]listing.Record, 0, len(records))
	for _, r := range records {
		if r.Valid() {
			out = append(out, r)
		}
	}
	return out
}

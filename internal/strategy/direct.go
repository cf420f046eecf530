package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/jobscraper/internal/extract"
	"github.com/JakeFAU/jobscraper/internal/listing"
	"github.com/JakeFAU/jobscraper/internal/metrics"
)

// Endpoint is a keyword-templated URL and the table used to read its markup.
type Endpoint struct {
	URLTemplate string
	Table       extract.Table
}

// DirectConfig controls the direct-HTTP strategy.
type DirectConfig struct {
	Endpoints      []Endpoint
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
}

// Direct requests candidate endpoints in order until one yields records.
type Direct struct {
	fetcher  listing.Fetcher
	cfg      DirectConfig
	detector *AuthWallDetector
	logger   *zap.Logger
}

// NewDirect wires a direct strategy around fetcher.
func NewDirect(fetcher listing.Fetcher, cfg DirectConfig, logger *zap.Logger) *Direct {
	return &Direct{
		fetcher:  fetcher,
		cfg:      cfg,
		detector: NewAuthWallDetector(0),
		logger:   named(logger, NameDirect),
	}
}

// Name implements listing.Strategy.
func (d *Direct) Name() string { return NameDirect }

// Execute implements listing.Strategy. It returns an error only when every
// endpoint failed outright; endpoints that answered without records do not count.
func (d *Direct) Execute(ctx context.Context, keyword string, _ int) ([]listing.Record, error) {
	var failures []error
	for _, ep := range d.cfg.Endpoints {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		target := ExpandTemplate(ep.URLTemplate, keyword)
		records, err := d.tryEndpoint(ctx, target, ep.Table)
		if err != nil {
			d.logger.Warn("endpoint failed", zap.String("url", target), zap.Error(err))
			failures = append(failures, err)
			continue
		}
		if len(records) > 0 {
			return records, nil
		}
		d.logger.Debug("endpoint yielded no records", zap.String("url", target))
	}
	if len(failures) > 0 && len(failures) == len(d.cfg.Endpoints) {
		return nil, errors.Join(failures...)
	}
	return []listing.Record{}, nil
}

func (d *Direct) tryEndpoint(ctx context.Context, target string, table extract.Table) ([]listing.Record, error) {
	resp, err := d.fetcher.Fetch(ctx, listing.FetchRequest{
		URL:     target,
		Headers: BrowserHeaders(d.cfg.UserAgent, d.cfg.AcceptLanguage),
		Timeout: d.cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", target, resp.StatusCode)
	}

	if reason := d.detector.Detect(resp.URL, resp.StatusCode, resp.Body); reason != "" {
		d.logger.Warn("degraded page served",
			zap.String("url", target),
			zap.String("final_url", resp.URL),
			zap.String("reason", reason),
		)
		metrics.ObserveDegradedPage(NameDirect)
	}

	outcomes, err := extract.ParseCards(resp.Body, table)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", target, err)
	}
	records := collect(d.logger, NameDirect, target, outcomes)
	d.logger.Debug("endpoint page extracted",
		zap.String("url", target),
		zap.String("table", table.Name),
		zap.String("table_version", table.Version),
		zap.Int("candidates", len(outcomes)),
		zap.Int("records", len(records)),
	)
	return records, nil
}

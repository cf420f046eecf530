package strategy

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/jobscraper/internal/extract"
	"github.com/JakeFAU/jobscraper/internal/listing"
	"github.com/JakeFAU/jobscraper/internal/metrics"
)

// RenderedConfig controls the rendered-page strategy.
type RenderedConfig struct {
	SearchURLTemplate string
	Table             extract.Table
	Settle            time.Duration
	ScrollWait        time.Duration
	AcceptLanguage    string
}

// Rendered loads the search page in a headless browser and extracts cards from the DOM.
type Rendered struct {
	renderer listing.Renderer
	cfg      RenderedConfig
	detector *AuthWallDetector
	logger   *zap.Logger
}

// NewRendered wires a rendered strategy around renderer.
func NewRendered(renderer listing.Renderer, cfg RenderedConfig, logger *zap.Logger) *Rendered {
	return &Rendered{
		renderer: renderer,
		cfg:      cfg,
		detector: NewAuthWallDetector(0),
		logger:   named(logger, NameRendered),
	}
}

// Name implements listing.Strategy.
func (r *Rendered) Name() string { return NameRendered }

// Execute implements listing.Strategy.
func (r *Rendered) Execute(ctx context.Context, keyword string, _ int) ([]listing.Record, error) {
	target := ExpandTemplate(r.cfg.SearchURLTemplate, keyword)
	resp, err := r.renderer.Render(ctx, listing.RenderRequest{
		URL:        target,
		Headers:    BrowserHeaders("", r.cfg.AcceptLanguage),
		Settle:     r.cfg.Settle,
		ScrollWait: r.cfg.ScrollWait,
	})
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", target, err)
	}

	if reason := r.detector.Detect(resp.FinalURL, resp.StatusCode, resp.HTML); reason != "" {
		r.logger.Warn("degraded page served",
			zap.String("url", target),
			zap.String("final_url", resp.FinalURL),
			zap.String("reason", reason),
		)
		metrics.ObserveDegradedPage(NameRendered)
	}

	outcomes, err := extract.ParseCards(resp.HTML, r.cfg.Table)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", target, err)
	}
	records := collect(r.logger, NameRendered, target, outcomes)
	r.logger.Debug("rendered page extracted",
		zap.String("url", target),
		zap.String("table", r.cfg.Table.Name),
		zap.String("table_version", r.cfg.Table.Version),
		zap.Int("candidates", len(outcomes)),
		zap.Int("records", len(records)),
		zap.Duration("duration", resp.Duration),
	)
	return records, nil
}

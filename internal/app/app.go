// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/jobscraper/internal/config"
	"github.com/JakeFAU/jobscraper/internal/extract"
	collyfetcher "github.com/JakeFAU/jobscraper/internal/fetcher/colly"
	"github.com/JakeFAU/jobscraper/internal/fetcher/headless"
	"github.com/JakeFAU/jobscraper/internal/listing"
	"github.com/JakeFAU/jobscraper/internal/scrape"
	"github.com/JakeFAU/jobscraper/internal/strategy"
)

// App holds the shared, long-lived services for the process: the outbound
// fetcher, the optional browser renderer, and the orchestrator built on top of
// them. It is initialized once at startup and handed to the API server or CLI.
type App struct {
	cfg          config.Config
	logger       *zap.Logger
	fetcher      listing.Fetcher
	renderer     listing.Renderer
	rendererNote string
	orchestrator *scrape.Orchestrator
}

// Option overrides a capability App would otherwise build from config.
type Option func(*options)

type options struct {
	fetcher     listing.Fetcher
	renderer    listing.Renderer
	rendererSet bool
}

// WithFetcher replaces the HTTP capability used by the direct and feed strategies.
func WithFetcher(f listing.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithRenderer replaces the browser capability. A nil renderer marks the
// rendered strategy unavailable.
func WithRenderer(r listing.Renderer) Option {
	return func(o *options) {
		o.renderer = r
		o.rendererSet = true
	}
}

// New validates cfg and wires every configured strategy in priority order.
// A browser that cannot be started does not fail startup; the rendered
// strategy is replaced by one that always returns nothing.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{cfg: cfg, logger: logger}

	a.fetcher = o.fetcher
	if a.fetcher == nil {
		a.fetcher = collyfetcher.New(collyfetcher.Config{
			UserAgent:     cfg.HTTP.UserAgent,
			RespectRobots: cfg.HTTP.RespectRobots,
			Timeout:       cfg.HTTPTimeout(),
			MaxBodySize:   cfg.HTTP.MaxBodyBytes,
		})
	}

	if o.rendererSet {
		a.renderer = o.renderer
		if a.renderer == nil {
			a.rendererNote = "renderer not provided"
		}
	} else {
		a.renderer, a.rendererNote = newRenderer(cfg, logger)
	}

	strategies, err := a.buildStrategies()
	if err != nil {
		return nil, err
	}
	a.orchestrator = scrape.NewOrchestrator(strategies, logger)

	logger.Info("application services initialized",
		zap.Strings("strategies", a.orchestrator.Strategies()),
		zap.Bool("chrome_available", a.ChromeAvailable()),
		zap.String("environment", cfg.Environment),
	)
	return a, nil
}

func newRenderer(cfg config.Config, logger *zap.Logger) (listing.Renderer, string) {
	if !cfg.Headless.Enabled {
		return nil, "headless disabled by configuration"
	}
	renderer, err := headless.NewChromedp(headless.Config{
		MaxParallel:       cfg.Headless.MaxParallel,
		UserAgent:         cfg.HTTP.UserAgent,
		ExecPath:          cfg.Headless.ChromeBin,
		NoSandbox:         cfg.Headless.NoSandbox,
		NavigationTimeout: time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
	}, logger.Named("headless"))
	if err != nil {
		if errors.Is(err, headless.ErrRendererDisabled) {
			logger.Warn("headless renderer unavailable", zap.Error(err))
		} else {
			logger.Error("headless renderer init failed", zap.Error(err))
		}
		return nil, err.Error()
	}
	return renderer, ""
}

func (a *App) buildStrategies() ([]listing.Strategy, error) {
	strategies := make([]listing.Strategy, 0, len(a.cfg.Scrape.Strategies))
	for _, name := range a.cfg.Scrape.Strategies {
		s, err := a.buildStrategy(name)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}
	return strategies, nil
}

func (a *App) buildStrategy(name string) (listing.Strategy, error) {
	cfg := a.cfg
	switch name {
	case strategy.NameRendered:
		if a.renderer == nil {
			return strategy.NewUnavailable(name, a.rendererNote, a.logger), nil
		}
		return strategy.NewRendered(a.renderer, strategy.RenderedConfig{
			SearchURLTemplate: cfg.Scrape.SearchURLTemplate,
			Table:             extract.Tables[cfg.Scrape.SearchTable],
			Settle:            time.Duration(cfg.Headless.SettleMs) * time.Millisecond,
			ScrollWait:        time.Duration(cfg.Headless.ScrollWaitMs) * time.Millisecond,
			AcceptLanguage:    cfg.HTTP.AcceptLanguage,
		}, a.logger), nil
	case strategy.NameDirect:
		endpoints := make([]strategy.Endpoint, 0, len(cfg.Direct.Endpoints))
		for _, ep := range cfg.Direct.Endpoints {
			endpoints = append(endpoints, strategy.Endpoint{
				URLTemplate: ep.URL,
				Table:       extract.Tables[ep.Table],
			})
		}
		return strategy.NewDirect(a.fetcher, strategy.DirectConfig{
			Endpoints:      endpoints,
			UserAgent:      cfg.HTTP.UserAgent,
			AcceptLanguage: cfg.HTTP.AcceptLanguage,
			Timeout:        cfg.HTTPTimeout(),
		}, a.logger), nil
	case strategy.NameFeed:
		return strategy.NewFeed(a.fetcher, strategy.FeedConfig{
			URLTemplate:    cfg.Feed.URLTemplate,
			Platform:       cfg.Feed.Platform,
			UserAgent:      cfg.HTTP.UserAgent,
			AcceptLanguage: cfg.HTTP.AcceptLanguage,
			Timeout:        cfg.HTTPTimeout(),
		}, a.logger), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Config returns the validated configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Orchestrator returns the fallback orchestrator.
func (a *App) Orchestrator() *scrape.Orchestrator {
	return a.orchestrator
}

// ChromeAvailable reports whether the rendered strategy has a working browser.
func (a *App) ChromeAvailable() bool {
	return a.renderer != nil
}

// RendererNote explains why the browser is unavailable, or is empty.
func (a *App) RendererNote() string {
	return a.rendererNote
}

// Close flushes the logger. Errors are ignored because the logger itself may be the failure.
func (a *App) Close() {
	a.logger.Info("shutting down application services")
	_ = a.logger.Sync()
}

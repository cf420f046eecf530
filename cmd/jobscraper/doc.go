// Package main hosts the job scraper entrypoint.
//
// Architecture overview:
//   - HTTP API: internal/api.Server exposes /, /health, /info, /scrape and /metrics. Query parameters are validated
//     before the orchestrator is invoked; failures inside the pipeline never leak details to clients.
//   - Orchestrator: internal/scrape tries the configured strategies strictly in order (rendered page, direct HTTP,
//     syndication feed by default) and returns the first non-empty result, deduplicated by apply link and capped.
//   - Capabilities: the rendered strategy drives headless Chrome through chromedp with one browser per request; the
//     direct and feed strategies share a Colly-based fetcher. A missing browser downgrades the rendered strategy to
//     one that always returns nothing instead of failing startup.
//   - Configuration & plumbing: Viper populates config from an optional YAML file and JOBSCRAPER_* env vars (PORT,
//     GOOGLE_CHROME_BIN and ENVIRONMENT are honored too); .env files are loaded first with godotenv; zap provides
//     structured logging; Prometheus collectors are exported on /metrics.
//
// Quick checklist:
//   - Run the API: go run ./cmd/jobscraper serve --config config.yaml
//   - One-off scrape: go run ./cmd/jobscraper scrape --keyword "python developer" --max 5
//   - Without Chrome: set JOBSCRAPER_HEADLESS_ENABLED=false or JOBSCRAPER_SCRAPE_STRATEGIES=direct,feed.
package main

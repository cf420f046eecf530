// Package metrics exposes Prometheus collectors for the scraping service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	fetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscraper_fetches_total",
			Help: "Total number of upstream HTTP fetches, labeled by site and status.",
		},
		[]string{"site", "status"},
	)

	fetchBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscraper_fetch_bytes_total",
			Help: "Total number of bytes fetched from upstream sites, labeled by site.",
		},
		[]string{"site"},
	)

	scrapeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscraper_scrape_requests_total",
			Help: "Total number of scrape invocations, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	strategyAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscraper_strategy_attempts_total",
			Help: "Total number of strategy executions, labeled by strategy and outcome.",
		},
		[]string{"strategy", "outcome"},
	)

	strategyDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobscraper_strategy_duration_seconds",
			Help:    "Histogram of strategy execution time, labeled by strategy.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 45},
		},
		[]string{"strategy"},
	)

	candidatesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscraper_candidates_skipped_total",
			Help: "Total number of listing candidates skipped, labeled by strategy and reason.",
		},
		[]string{"strategy", "reason"},
	)

	degradedPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscraper_degraded_pages_total",
			Help: "Total number of pages served behind an auth wall or similar, labeled by strategy.",
		},
		[]string{"strategy"},
	)

	listingsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobscraper_listings_returned",
			Help:    "Number of listings returned per scrape invocation.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)
)

// Strategy outcome labels.
const (
	OutcomeHit   = "hit"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveFetch records an upstream fetch.
func ObserveFetch(rawURL, status string, bytesFetched int) {
	site := SanitizeSite(rawURL)
	fetchesTotal.WithLabelValues(site, status).Inc()
	if bytesFetched > 0 {
		fetchBytesTotal.WithLabelValues(site).Add(float64(bytesFetched))
	}
}

// ObserveScrape records one orchestrator invocation and the number of listings returned.
func ObserveScrape(outcome string, returned int) {
	scrapeRequestsTotal.WithLabelValues(outcome).Inc()
	if returned >= 0 {
		listingsReturned.Observe(float64(returned))
	}
}

// ObserveStrategy records a strategy execution.
func ObserveStrategy(strategy, outcome string, duration time.Duration) {
	strategyAttemptsTotal.WithLabelValues(strategy, outcome).Inc()
	strategyDurationSeconds.WithLabelValues(strategy).Observe(duration.Seconds())
}

// ObserveSkippedCandidate records a candidate that did not become a record.
func ObserveSkippedCandidate(strategy, reason string) {
	candidatesSkippedTotal.WithLabelValues(strategy, reason).Inc()
}

// ObserveDegradedPage records a page served behind an auth wall.
func ObserveDegradedPage(strategy string) {
	degradedPagesTotal.WithLabelValues(strategy).Inc()
}

// StrategyAttempts returns the attempt counter for one strategy and outcome.
func StrategyAttempts(strategy, outcome string) prometheus.Counter {
	return strategyAttemptsTotal.WithLabelValues(strategy, outcome)
}

// SkippedCandidates returns the skip counter for one strategy and reason.
func SkippedCandidates(strategy, reason string) prometheus.Counter {
	return candidatesSkippedTotal.WithLabelValues(strategy, reason)
}

// DegradedPages returns the degraded-page counter for one strategy.
func DegradedPages(strategy string) prometheus.Counter {
	return degradedPagesTotal.WithLabelValues(strategy)
}

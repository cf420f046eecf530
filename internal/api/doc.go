// Package api hosts the HTTP server, middleware, and handlers for the job
// scraper. Notable routes:
//   - GET / describes the available endpoints.
//   - GET /health and /info for liveness checks and capability reporting.
//   - GET /scrape?keyword=&max_jobs= runs one scrape and returns a JSON array.
//   - GET /metrics for Prometheus scraping.
package api

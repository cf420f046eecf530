// Package strategy implements the independent techniques the scraper tries in
// order to obtain listings for a keyword: a headless-rendered search page,
// direct HTTP requests against known endpoints, and a syndication feed.
//
// Every strategy returns records before deduplication and capping; shaping is
// the orchestrator's job. Candidates that cannot be turned into records are
// skipped, logged, and counted, never surfaced as errors.
package strategy

// Package listing defines the job listing record, the capability interfaces the
// scraping pipeline depends on, and the result-shaping helpers shared by every strategy.
package listing

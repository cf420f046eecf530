package strategy

import (
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/jobscraper/internal/extract"
	"github.com/JakeFAU/jobscraper/internal/listing"
	"github.com/JakeFAU/jobscraper/internal/metrics"
)

// Strategy names accepted in configuration.
const (
	NameRendered = "rendered"
	NameDirect   = "direct"
	NameFeed     = "feed"
)

// KeywordPlaceholder is replaced by the query-escaped keyword in URL templates.
const KeywordPlaceholder = "{keyword}"

// Known reports whether name is a configurable strategy.
func Known(name string) bool {
	switch name {
	case NameRendered, NameDirect, NameFeed:
		return true
	default:
		return false
	}
}

// ExpandTemplate substitutes the escaped keyword into tmpl.
func ExpandTemplate(tmpl, keyword string) string {
	return strings.ReplaceAll(tmpl, KeywordPlaceholder, url.QueryEscape(keyword))
}

// BrowserHeaders returns request headers resembling a desktop browser.
func BrowserHeaders(userAgent, acceptLanguage string) http.Header {
	h := http.Header{}
	if userAgent != "" {
		h.Set("User-Agent", userAgent)
	}
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if acceptLanguage != "" {
		h.Set("Accept-Language", acceptLanguage)
	}
	h.Set("Cache-Control", "no-cache")
	return h
}

// collect keeps successful outcomes and reports every skipped candidate.
func collect(logger *zap.Logger, strategy, source string, outcomes []extract.Outcome) []listing.Record {
	records := make([]listing.Record, 0, len(outcomes))
	for i, o := range outcomes {
		if !o.OK() {
			logger.Warn("candidate skipped",
				zap.String("source", source),
				zap.Int("index", i),
				zap.String("reason", o.SkipReason),
				zap.String("detail", o.Detail),
			)
			metrics.ObserveSkippedCandidate(strategy, o.SkipReason)
			continue
		}
		records = append(records, o.Record)
	}
	return records
}

func named(logger *zap.Logger, name string) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger.Named(name)
}

package strategy

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/JakeFAU/jobscraper/internal/extract"
	"github.com/JakeFAU/jobscraper/internal/listing"
)

// FeedConfig controls the syndication feed strategy.
type FeedConfig struct {
	URLTemplate    string
	Platform       string
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
	Patterns       extract.LabelPatterns
}

// Feed reads listings from an RSS or Atom search feed.
type Feed struct {
	fetcher listing.Fetcher
	cfg     FeedConfig
	logger  *zap.Logger
}

// NewFeed wires a feed strategy around fetcher. Unset label patterns fall back
// to extract.DefaultLabelPatterns.
func NewFeed(fetcher listing.Fetcher, cfg FeedConfig, logger *zap.Logger) *Feed {
	if cfg.Patterns.Organization == nil && cfg.Patterns.Location == nil {
		cfg.Patterns = extract.DefaultLabelPatterns
	}
	return &Feed{fetcher: fetcher, cfg: cfg, logger: named(logger, NameFeed)}
}

// Name implements listing.Strategy.
func (f *Feed) Name() string { return NameFeed }

// Execute implements listing.Strategy.
func (f *Feed) Execute(ctx context.Context, keyword string, _ int) ([]listing.Record, error) {
	target := ExpandTemplate(f.cfg.URLTemplate, keyword)
	headers := BrowserHeaders(f.cfg.UserAgent, f.cfg.AcceptLanguage)
	headers.Set("Accept", "application/rss+xml,application/atom+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.fetcher.Fetch(ctx, listing.FetchRequest{URL: target, Headers: headers, Timeout: f.cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", target, resp.StatusCode)
	}

	parsed, err := gofeed.NewParser().ParseString(string(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", target, err)
	}

	origin := extract.OriginOf(target)
	outcomes := make([]extract.Outcome, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		outcomes = append(outcomes, f.itemOutcome(origin, item))
	}
	return collect(f.logger, NameFeed, target, outcomes), nil
}

func (f *Feed) itemOutcome(origin string, item *gofeed.Item) extract.Outcome {
	if item == nil {
		return extract.Outcome{SkipReason: extract.SkipMissingTitle}
	}
	title := extract.CleanText(html.UnescapeString(item.Title))
	if title == "" {
		return extract.Outcome{SkipReason: extract.SkipMissingTitle}
	}
	if strings.TrimSpace(item.Link) == "" {
		return extract.Outcome{SkipReason: extract.SkipMissingLink, Detail: title}
	}
	link, err := extract.AbsoluteURL(origin, item.Link)
	if err != nil {
		return extract.Outcome{SkipReason: extract.SkipInvalidLink, Detail: err.Error()}
	}

	text := descriptionText(item)
	return extract.Outcome{Record: listing.Record{
		Title:           title,
		Organization:    labelOrSentinel(f.cfg.Patterns.Organization, text),
		Location:        labelOrSentinel(f.cfg.Patterns.Location, text),
		ExperienceLevel: listing.NotSpecified,
		ApplyURL:        link,
		SourcePlatform:  f.cfg.Platform,
		PublishedAt:     publishedAt(item),
	}}
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// descriptionText flattens the item summary so labels end at former tag boundaries.
func descriptionText(item *gofeed.Item) string {
	raw := item.Description
	if raw == "" {
		raw = item.Content
	}
	return html.UnescapeString(tagPattern.ReplaceAllString(raw, "\n"))
}

func labelOrSentinel(re *regexp.Regexp, text string) string {
	if v, ok := extract.MatchLabel(re, text); ok {
		return v
	}
	return listing.NotSpecified
}

func publishedAt(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC().Format(time.RFC3339)
	}
	return strings.TrimSpace(item.Published)
}

package extract

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/jobscraper/internal/listing"
)

// Skip reasons reported for candidates that did not become records.
const (
	SkipMissingTitle = "missing_title"
	SkipMissingLink  = "missing_link"
	SkipInvalidLink  = "invalid_link"
)

// Outcome is the per-candidate result: a record, or the reason it was skipped.
type Outcome struct {
	Record     listing.Record
	SkipReason string
	Detail     string
}

// OK reports whether the candidate produced a record.
func (o Outcome) OK() bool {
	return o.SkipReason == ""
}

func skip(reason, detail string) Outcome {
	return Outcome{SkipReason: reason, Detail: detail}
}

// ParseCards parses body and extracts one outcome per candidate container.
func ParseCards(body []byte, table Table) ([]Outcome, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	fragments := LocateCandidates(doc.Selection, table.Containers)
	outcomes := make([]Outcome, 0, len(fragments))
	for _, fragment := range fragments {
		outcomes = append(outcomes, table.Extract(fragment))
	}
	return outcomes, nil
}

// Extract turns one candidate fragment into an outcome.
func (t Table) Extract(fragment *goquery.Selection) Outcome {
	title, ok := Lookup(fragment, t.Title)
	if !ok {
		return skip(SkipMissingTitle, "")
	}
	link, out := t.applyLink(fragment)
	if !out.OK() {
		if out.SkipReason == SkipMissingLink {
			out.Detail = title
		}
		return out
	}
	return Outcome{Record: listing.Record{
		Title:           title,
		Organization:    ExtractField(fragment, t.Organization),
		Location:        ExtractField(fragment, t.Location),
		ExperienceLevel: listing.NotSpecified,
		ApplyURL:        link,
		SourcePlatform:  t.Platform,
	}}
}

// applyLink walks the link locators and returns the first href that resolves
// to a navigable page. Placeholder hrefs such as "#" fall through to the next locator.
func (t Table) applyLink(fragment *goquery.Selection) (string, Outcome) {
	var (
		seen   bool
		detail string
	)
	for _, loc := range t.Link {
		href := loc.read(fragment)
		if href == "" {
			continue
		}
		seen = true
		link, err := AbsoluteURL(t.Origin, href)
		if err != nil {
			detail = err.Error()
			continue
		}
		if !IsPageURL(link) {
			detail = fmt.Sprintf("unusable link %q", href)
			continue
		}
		if t.CanonicalLinks {
			link = Canonical(link)
		}
		return link, Outcome{}
	}
	if !seen {
		return "", skip(SkipMissingLink, "")
	}
	return "", skip(SkipInvalidLink, detail)
}

// Records returns the records of successful outcomes in order.
func Records(outcomes []Outcome) []listing.Record {
	out := make([]listing.Record, 0, len(outcomes))
	for _, o := range outcomes {
		if o.OK() && o.Record.Valid() {
			out = append(out, o.Record)
		}
	}
	return out
}

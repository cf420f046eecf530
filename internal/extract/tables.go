package extract

import (
	"regexp"
	"strings"
)

// Table is a versioned set of locators describing one site layout.
type Table struct {
	Name     string
	Version  string
	Origin   string
	Platform string

	Containers   []Locator
	Title        LocatorSet
	Organization LocatorSet
	Location     LocatorSet
	Link         LocatorSet

	// CanonicalLinks strips query and fragment from apply links.
	CanonicalLinks bool
}

const linkedInOrigin = "https://www.linkedin.com"

var (
	linkedInTitle = LocatorSet{
		Text(`h3.base-search-card__title`),
		Text(`h3.job-search-card__title`),
		Text(`h3[class*="title"]`),
		Text(`h3`),
	}
	linkedInOrganization = LocatorSet{
		Text(`h4.base-search-card__subtitle`),
		Text(`h4.job-search-card__subtitle`),
		Text(`a[class*="company"]`),
		Text(`h4`),
	}
	linkedInLocation = LocatorSet{
		Text(`span.job-search-card__location`),
		Text(`span[class*="location"]`),
		Text(`div[class*="location"]`),
		Text(`span`),
	}
	linkedInLink = LocatorSet{
		Attr(`a.base-card__full-link`, "href"),
		Attr(`a.job-search-card__link`, "href"),
		Attr(`a[href*="/jobs/"]`, "href"),
	}
)

// LinkedInSearch covers the public job search page across its known layouts.
var LinkedInSearch = Table{
	Name:     "linkedin-search",
	Version:  "2024-01",
	Origin:   linkedInOrigin,
	Platform: "LinkedIn",
	Containers: []Locator{
		Text(`div.base-card`),
		Text(`li.jobs-search-results__list-item`),
		Text(`div.job-search-card`),
		Text(`div[data-entity-urn*="jobPosting"]`),
		Text(`section.jobs-search-results__list-item`),
	},
	Title:          linkedInTitle,
	Organization:   linkedInOrganization,
	Location:       linkedInLocation,
	Link:           linkedInLink,
	CanonicalLinks: true,
}

// LinkedInGuest covers the guest pagination endpoint, which returns bare <li> cards.
var LinkedInGuest = Table{
	Name:     "linkedin-guest",
	Version:  "2024-01",
	Origin:   linkedInOrigin,
	Platform: "LinkedIn",
	Containers: []Locator{
		Text(`li`),
	},
	Title:          linkedInTitle,
	Organization:   linkedInOrganization,
	Location:       linkedInLocation,
	Link:           linkedInLink,
	CanonicalLinks: true,
}

// Tables lists the built-in tables by name.
var Tables = map[string]Table{
	LinkedInSearch.Name: LinkedInSearch,
	LinkedInGuest.Name:  LinkedInGuest,
}

// LabelPatterns pull labeled values such as "Company: Acme" out of free text.
// Each pattern captures the value in group 1.
type LabelPatterns struct {
	Organization *regexp.Regexp
	Location     *regexp.Regexp
}

// DefaultLabelPatterns stop a value at a newline, a pipe, or the next known label.
var DefaultLabelPatterns = LabelPatterns{
	Organization: regexp.MustCompile(`(?i)\bcompany\s*:\s*(.*?)\s*(?:[|\n]|\blocation\s*:|$)`),
	Location:     regexp.MustCompile(`(?i)\blocation\s*:\s*(.*?)\s*(?:[|\n]|\bcompany\s*:|$)`),
}

// MatchLabel returns the cleaned first capture of re in text, without trailing
// separators.
func MatchLabel(re *regexp.Regexp, text string) (string, bool) {
	if re == nil {
		return "", false
	}
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	v := strings.TrimRight(CleanText(m[1]), ",;- ")
	return v, v != ""
}

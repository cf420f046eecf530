package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/text/unicode/norm"

	"github.com/JakeFAU/jobscraper/internal/listing"
)

// Locator finds an element inside a fragment and names what to read from it.
type Locator struct {
	Selector string
	// Attr is read instead of the element text when set.
	Attr    string
	matcher goquery.Matcher
}

// Text returns a locator reading the trimmed text of the first element matching selector.
// It panics if selector does not compile, so it is meant for static tables.
func Text(selector string) Locator {
	return Locator{Selector: selector, matcher: cascadia.MustCompile(selector)}
}

// Attr returns a locator reading attr from the first element matching selector.
func Attr(selector, attr string) Locator {
	return Locator{Selector: selector, Attr: attr, matcher: cascadia.MustCompile(selector)}
}

// LocatorSet is the ordered list of locators for one field.
type LocatorSet []Locator

func (l Locator) find(root *goquery.Selection) *goquery.Selection {
	if l.matcher == nil {
		return root.Find(l.Selector)
	}
	return root.FindMatcher(l.matcher)
}

func (l Locator) read(fragment *goquery.Selection) string {
	first := l.find(fragment).First()
	if first.Length() == 0 {
		return ""
	}
	if l.Attr != "" {
		v, _ := first.Attr(l.Attr)
		return strings.TrimSpace(v)
	}
	return CleanText(first.Text())
}

// Lookup walks set in order and returns the first non-empty value.
func Lookup(fragment *goquery.Selection, set LocatorSet) (string, bool) {
	if fragment == nil {
		return "", false
	}
	for _, loc := range set {
		if v := loc.read(fragment); v != "" {
			return v, true
		}
	}
	return "", false
}

// ExtractField returns the first non-empty match of set within fragment, or
// listing.NotSpecified when nothing matches.
func ExtractField(fragment *goquery.Selection, set LocatorSet) string {
	if v, ok := Lookup(fragment, set); ok {
		return v
	}
	return listing.NotSpecified
}

// LocateCandidates returns every element matched by each container locator,
// concatenated in locator order. Locators without matches contribute nothing.
func LocateCandidates(root *goquery.Selection, containers []Locator) []*goquery.Selection {
	var out []*goquery.Selection
	if root == nil {
		return out
	}
	for _, loc := range containers {
		loc.find(root).Each(func(_ int, s *goquery.Selection) {
			out = append(out, s)
		})
	}
	return out
}

// CleanText normalizes Unicode compatibility forms and collapses whitespace.
func CleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

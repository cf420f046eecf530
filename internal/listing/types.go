package listing

import (
	"net/http"
	"time"
)

// NotSpecified is the sentinel stored in any field that could not be determined.
const NotSpecified = "Not specified"

// Record is a single job listing returned to callers.
type Record struct {
	Title           string `json:"jobTitle"`
	Organization    string `json:"company"`
	Location        string `json:"location"`
	ExperienceLevel string `json:"experience"`
	ApplyURL        string `json:"applyLink"`
	SourcePlatform  string `json:"platform"`
	PublishedAt     string `json:"publishedAt,omitempty"`
}

// Valid reports whether the record carries the fields required for inclusion.
func (r Record) Valid() bool {
	return r.Title != "" && r.Title != NotSpecified &&
		r.ApplyURL != "" && r.ApplyURL != NotSpecified
}

// FetchRequest captures everything needed to fetch a URL over plain HTTP.
type FetchRequest struct {
	URL     string
	Headers http.Header
	Timeout time.Duration
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// RenderRequest describes a browser navigation and its wait policy.
type RenderRequest struct {
	URL     string
	Headers http.Header
	// Settle is how long to wait after navigation before inspecting the page.
	Settle time.Duration
	// ScrollWait is how long to wait after the single scroll-to-bottom.
	// Zero skips the scroll.
	ScrollWait time.Duration
}

// RenderResponse is the markup produced by a Renderer.
type RenderResponse struct {
	RequestURL string
	FinalURL   string
	StatusCode int
	HTML       []byte
	Duration   time.Duration
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/jobscraper/internal/config"
	"github.com/JakeFAU/jobscraper/internal/listing"
	"github.com/JakeFAU/jobscraper/internal/scrape"
)

type fakeScraper struct {
	mu       sync.Mutex
	records  []listing.Record
	err      error
	panics   bool
	block    bool
	calls    int
	keywords []string
	limits   []int
}

func (f *fakeScraper) Scrape(ctx context.Context, keyword string, maxResults int) ([]listing.Record, error) {
	f.mu.Lock()
	f.calls++
	f.keywords = append(f.keywords, keyword)
	f.limits = append(f.limits, maxResults)
	f.mu.Unlock()
	if f.panics {
		panic("scraper exploded")
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	if len(f.records) > maxResults {
		return f.records[:maxResults], nil
	}
	return f.records, nil
}

func (f *fakeScraper) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testConfig() config.Config {
	return config.Config{
		Environment: "test",
		Server:      config.ServerConfig{Port: 8000, RequestTimeoutSeconds: 5},
		HTTP:        config.HTTPConfig{TimeoutSeconds: 15},
		Scrape: config.ScrapeConfig{
			DefaultMaxResults: 10,
			MaxResultsLimit:   50,
		},
	}
}

func testRecord(i int) listing.Record {
	return listing.Record{
		Title:           "Python Developer",
		Organization:    "Acme",
		Location:        "Remote",
		ExperienceLevel: listing.NotSpecified,
		ApplyURL:        "https://jobs.example.com/" + string(rune('a'+i)),
		SourcePlatform:  "LinkedIn",
	}
}

func newTestServer(scraper Scraper) *Server {
	return NewServer(scraper, testConfig(), Info{
		ChromeAvailable: false,
		Environment:     "test",
		Strategies:      []string{"rendered", "direct", "feed"},
		Version:         "dev",
	}, zap.NewNop())
}

func serve(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Root(t *testing.T) {
	t.Parallel()

	rec := serve(t, newTestServer(&fakeScraper{}), "/")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Message   string            `json:"message"`
		Endpoints map[string]string `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Message)
	require.Contains(t, body.Endpoints, "/scrape")
	require.Contains(t, body.Endpoints, "/health")
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	rec := serve(t, newTestServer(&fakeScraper{}), "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"healthy","message":"API is running"}`, rec.Body.String())
}

func TestServer_Info(t *testing.T) {
	t.Parallel()

	rec := serve(t, newTestServer(&fakeScraper{}), "/info")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{
		"chrome_available": false,
		"environment": "test",
		"strategies": ["rendered", "direct", "feed"],
		"credentials_configured": false,
		"version": "dev"
	}`, rec.Body.String())
}

func TestServer_ScrapeReturnsListings(t *testing.T) {
	t.Parallel()

	scraper := &fakeScraper{records: []listing.Record{testRecord(0), testRecord(1), testRecord(2)}}
	rec := serve(t, newTestServer(scraper), "/scrape?keyword=python&max_jobs=2")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	require.Equal(t, "Python Developer", got[0]["jobTitle"])
	require.Equal(t, "Acme", got[0]["company"])
	require.Equal(t, "Remote", got[0]["location"])
	require.Equal(t, listing.NotSpecified, got[0]["experience"])
	require.Equal(t, "https://jobs.example.com/a", got[0]["applyLink"])
	require.Equal(t, "LinkedIn", got[0]["platform"])
	require.NotContains(t, got[0], "publishedAt")
	require.Equal(t, []string{"python"}, scraper.keywords)
	require.Equal(t, []int{2}, scraper.limits)
}

func TestServer_ScrapeTrailingSlashAndDefaults(t *testing.T) {
	t.Parallel()

	scraper := &fakeScraper{}
	rec := serve(t, newTestServer(scraper), "/scrape/?keyword=%20golang%20")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"golang"}, scraper.keywords)
	require.Equal(t, []int{10}, scraper.limits)
}

func TestServer_ScrapeEmptyResultIsArray(t *testing.T) {
	t.Parallel()

	rec := serve(t, newTestServer(&fakeScraper{}), "/scrape?keyword=nothing")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestServer_ScrapeClampsMaxJobs(t *testing.T) {
	t.Parallel()

	scraper := &fakeScraper{}
	rec := serve(t, newTestServer(scraper), "/scrape?keyword=go&max_jobs=500")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []int{50}, scraper.limits)
}

func TestServer_ScrapeValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{name: "missing keyword", target: "/scrape", want: "keyword must not be empty"},
		{name: "blank keyword", target: "/scrape?keyword=%20%20", want: "keyword must not be empty"},
		{name: "zero max", target: "/scrape?keyword=go&max_jobs=0", want: "max_jobs must be a positive integer"},
		{name: "negative max", target: "/scrape?keyword=go&max_jobs=-4", want: "max_jobs must be a positive integer"},
		{name: "non-numeric max", target: "/scrape?keyword=go&max_jobs=lots", want: "max_jobs must be a positive integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			scraper := &fakeScraper{}
			rec := serve(t, newTestServer(scraper), tt.target)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Contains(t, rec.Body.String(), tt.want)
			require.Zero(t, scraper.callCount())
		})
	}
}

func TestServer_ScrapeEmptyKeywordFromScraper(t *testing.T) {
	t.Parallel()

	rec := serve(t, newTestServer(&fakeScraper{err: scrape.ErrEmptyKeyword}), "/scrape?keyword=x")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ScrapeFailureIsGeneric(t *testing.T) {
	t.Parallel()

	rec := serve(t, newTestServer(&fakeScraper{err: errors.New("dial tcp 10.0.0.1: refused")}), "/scrape?keyword=go")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"scraping failed"}`, rec.Body.String())
}

func TestServer_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	rec := serve(t, newTestServer(&fakeScraper{panics: true}), "/scrape?keyword=go")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "internal server error")
}

func TestServer_ScrapeTimeout(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Server.RequestTimeoutSeconds = 1
	s := NewServer(&fakeScraper{block: true}, cfg, Info{}, zap.NewNop())

	start := time.Now()
	rec := serve(t, s, "/scrape?keyword=go")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.JSONEq(t, requestTimeoutMessage, rec.Body.String())
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestServer_APIKeyMiddleware(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, APIKey: "secret"}
	s := NewServer(&fakeScraper{}, cfg, Info{}, zap.NewNop())

	rec := serve(t, s, "/scrape?keyword=go")
	require.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/scrape?keyword=go", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, s, "/scrape?keyword=go&api_key=secret")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, s, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakeScraper{})
	rec := serve(t, s, "/health")
	_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	require.NoError(t, err)

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", incoming)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, incoming, rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.NotEqual(t, "not-a-uuid", rec.Header().Get("X-Request-ID"))
}

func TestServer_CORSAllowsAnyOrigin(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodOptions, "/scrape?keyword=go", nil)
	req.Header.Set("Origin", "https://frontend.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	newTestServer(&fakeScraper{}).Handler().ServeHTTP(rec, req)

	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_MetricsEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakeScraper{})
	serve(t, s, "/health")
	rec := serve(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "http_requests_total")
}

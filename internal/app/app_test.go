// Package app_test contains unit tests for the app package.
package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/jobscraper/internal/app"
	"github.com/JakeFAU/jobscraper/internal/config"
	"github.com/JakeFAU/jobscraper/internal/listing"
)

// MockFetcher mocks the listing.Fetcher interface.
type MockFetcher struct {
	mock.Mock
}

// Fetch satisfies listing.Fetcher for the mock.
func (m *MockFetcher) Fetch(ctx context.Context, req listing.FetchRequest) (listing.FetchResponse, error) {
	args := m.Called(ctx, req.URL)
	return args.Get(0).(listing.FetchResponse), args.Error(1)
}

// MockRenderer mocks the listing.Renderer interface.
type MockRenderer struct {
	mock.Mock
}

// Render satisfies listing.Renderer for the mock.
func (m *MockRenderer) Render(ctx context.Context, req listing.RenderRequest) (listing.RenderResponse, error) {
	args := m.Called(ctx, req.URL)
	return args.Get(0).(listing.RenderResponse), args.Error(1)
}

const cards = `<ul><li><div class="base-card">
<a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/9?trk=x"></a>
<h3 class="base-search-card__title">Go Engineer</h3>
<h4 class="base-search-card__subtitle">Acme</h4>
<span class="job-search-card__location">Remote</span>
</div></li></ul>`

const guestURL = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search?keywords=golang&start=0"

func baseConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Headless.Enabled = false
	return cfg
}

func TestNew_HeadlessDisabledFallsThroughToDirect(t *testing.T) {
	t.Parallel()

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, guestURL).
		Return(listing.FetchResponse{URL: guestURL, StatusCode: 200, Body: []byte(cards)}, nil).Once()

	a, err := app.New(baseConfig(t), zap.NewNop(), app.WithFetcher(fetcher))
	require.NoError(t, err)

	assert.False(t, a.ChromeAvailable())
	assert.Contains(t, a.RendererNote(), "disabled")
	assert.Equal(t, []string{"rendered", "direct", "feed"}, a.Orchestrator().Strategies())

	records, err := a.Orchestrator().Scrape(context.Background(), "golang", 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Go Engineer", records[0].Title)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/9", records[0].ApplyURL)
	fetcher.AssertExpectations(t)
}

func TestNew_RendererWinsFirst(t *testing.T) {
	t.Parallel()

	renderer := new(MockRenderer)
	renderer.On("Render", mock.Anything, "https://www.linkedin.com/jobs/search/?keywords=golang").
		Return(listing.RenderResponse{StatusCode: 200, HTML: []byte(cards)}, nil).Once()
	fetcher := new(MockFetcher)

	cfg := baseConfig(t)
	cfg.Headless.SettleMs = 0
	cfg.Headless.ScrollWaitMs = 0

	a, err := app.New(cfg, zap.NewNop(), app.WithFetcher(fetcher), app.WithRenderer(renderer))
	require.NoError(t, err)
	assert.True(t, a.ChromeAvailable())

	records, err := a.Orchestrator().Scrape(context.Background(), "golang", 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	renderer.AssertExpectations(t)
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestNew_StrategyOrderFollowsConfig(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	cfg.Scrape.Strategies = []string{"feed", "direct"}

	a, err := app.New(cfg, nil, app.WithFetcher(new(MockFetcher)))
	require.NoError(t, err)
	assert.Equal(t, []string{"feed", "direct"}, a.Orchestrator().Strategies())
	assert.NotNil(t, a.Logger())
	assert.Equal(t, cfg.Scrape.Strategies, a.Config().Scrape.Strategies)
}

func TestNew_MissingChromeBinaryIsNotFatal(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	cfg.Headless.Enabled = true
	cfg.Headless.ChromeBin = filepath.Join(t.TempDir(), "missing-chrome")

	a, err := app.New(cfg, zap.NewNop(), app.WithFetcher(new(MockFetcher)))
	require.NoError(t, err)
	assert.False(t, a.ChromeAvailable())
	assert.Contains(t, a.RendererNote(), "headless renderer disabled")
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	cfg.Scrape.Strategies = []string{"mock"}

	_, err := app.New(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown strategy")
}

func TestApp_Close(t *testing.T) {
	t.Parallel()

	a, err := app.New(baseConfig(t), zap.NewNop(), app.WithFetcher(new(MockFetcher)))
	require.NoError(t, err)
	a.Close()
}

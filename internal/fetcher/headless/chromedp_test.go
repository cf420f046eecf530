package headless

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/jobscraper/internal/listing"
)

var _ listing.Renderer = (*Renderer)(nil)

func fakeChrome(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chrome")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

func TestNewChromedpValidation(t *testing.T) {
	t.Parallel()

	_, err := NewChromedp(Config{MaxParallel: -1, ExecPath: fakeChrome(t)}, zap.NewNop())
	require.Error(t, err)

	renderer, err := NewChromedp(Config{MaxParallel: 2, ExecPath: fakeChrome(t)}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, cap(renderer.limiter))
	require.NotEmpty(t, renderer.allocOpts)
}

func TestNewChromedpMissingBinary(t *testing.T) {
	t.Parallel()

	_, err := NewChromedp(Config{ExecPath: filepath.Join(t.TempDir(), "nope")}, zap.NewNop())
	require.ErrorIs(t, err, ErrRendererDisabled)
}

func TestRendererNavTimeoutDefault(t *testing.T) {
	t.Parallel()

	renderer := &Renderer{}
	require.Equal(t, 45*time.Second, renderer.navTimeout())
	renderer.cfg.NavigationTimeout = time.Second
	require.Equal(t, time.Second, renderer.navTimeout())
}

func TestAcquireRespectsContext(t *testing.T) {
	t.Parallel()

	renderer := &Renderer{limiter: make(chan struct{}, 1)}
	require.NoError(t, renderer.acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, renderer.acquire(ctx), context.Canceled)

	renderer.release()
	require.NoError(t, renderer.acquire(context.Background()))
}

func TestToNetworkHeaders(t *testing.T) {
	t.Parallel()

	src := http.Header{"X-Test": {"a", "b"}, "Accept-Language": {"en-US"}, "Empty": {}}
	netHeaders := toNetworkHeaders(src)

	require.Equal(t, "en-US", netHeaders["Accept-Language"])
	require.Equal(t, []string{"a", "b"}, netHeaders["X-Test"])
	_, ok := netHeaders["Empty"]
	require.False(t, ok)
}

func TestResponseMetaResolve(t *testing.T) {
	t.Parallel()

	meta := newResponseMeta()
	meta.capture(&network.EventResponseReceived{
		Type: network.ResourceTypeDocument,
		Response: &network.Response{
			Status: 204,
			URL:    "https://example.com/rendered",
		},
	})
	status, finalURL := meta.resolve("https://req", "")
	require.Equal(t, 204, status)
	require.Equal(t, "https://example.com/rendered", finalURL)

	status, finalURL = meta.resolve("https://req", "https://example.com/location")
	require.Equal(t, 204, status)
	require.Equal(t, "https://example.com/location", finalURL)

	meta = newResponseMeta()
	meta.capture(&network.EventResponseReceived{Type: network.ResourceTypeScript, Response: &network.Response{Status: 500}})
	status, finalURL = meta.resolve("https://req", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "https://req", finalURL)
}

func TestRenderReleasesSlotWhenBrowserFailsToStart(t *testing.T) {
	t.Parallel()

	renderer, err := NewChromedp(Config{
		MaxParallel:       1,
		ExecPath:          fakeChrome(t),
		NavigationTimeout: 10 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := renderer.Render(context.Background(), listing.RenderRequest{URL: "https://example.com"})
		require.Error(t, err)
		require.ErrorContains(t, err, "start browser")
		require.Len(t, renderer.limiter, 0)
	}
}

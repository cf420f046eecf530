// Package headless renders pages in headless Chrome via chromedp.
package headless

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/JakeFAU/jobscraper/internal/listing"
)

// ErrRendererDisabled reports that no usable browser is available.
var ErrRendererDisabled = errors.New("headless renderer disabled")

const scrollToBottomJS = `window.scrollTo(0, document.body.scrollHeight);`

var chromeCandidates = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

// Config controls the behavior of the headless renderer.
type Config struct {
	MaxParallel       int
	UserAgent         string
	ExecPath          string
	NoSandbox         bool
	NavigationTimeout time.Duration
}

// Renderer implements listing.Renderer using chromedp. Every Render call runs in
// its own browser process which is torn down before Render returns.
type Renderer struct {
	cfg       Config
	limiter   chan struct{}
	allocOpts []chromedp.ExecAllocatorOption
	logger    *zap.Logger
}

// NewChromedp creates a renderer backed by chromedp. It fails with
// ErrRendererDisabled when no Chrome binary can be located.
func NewChromedp(cfg Config, logger *zap.Logger) (*Renderer, error) {
	if cfg.MaxParallel < 0 {
		return nil, fmt.Errorf("max parallel must be >= 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	execPath, err := resolveExecPath(cfg.ExecPath)
	if err != nil {
		return nil, err
	}
	cfg.ExecPath = execPath

	var limiter chan struct{}
	if cfg.MaxParallel > 0 {
		limiter = make(chan struct{}, cfg.MaxParallel)
	}

	return &Renderer{
		cfg:       cfg,
		limiter:   limiter,
		allocOpts: allocatorOptions(cfg),
		logger:    logger,
	}, nil
}

func allocatorOptions(cfg Config) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
		chromedp.WindowSize(1920, 1080),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	return opts
}

func resolveExecPath(override string) (string, error) {
	if override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", fmt.Errorf("%w: chrome binary %q: %v", ErrRendererDisabled, override, err)
		}
		return override, nil
	}
	for _, name := range chromeCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no chrome binary found in PATH", ErrRendererDisabled)
}

// Render navigates with a fresh browser and returns the rendered DOM.
func (r *Renderer) Render(ctx context.Context, request listing.RenderRequest) (listing.RenderResponse, error) {
	if err := r.acquire(ctx); err != nil {
		return listing.RenderResponse{}, err
	}
	defer r.release()

	ctx, cancel := context.WithTimeout(ctx, r.navTimeout()+request.Settle+request.ScrollWait)
	defer cancel()

	sess, err := r.openSession(ctx)
	if err != nil {
		return listing.RenderResponse{}, err
	}
	defer sess.Close()

	meta := newResponseMeta()
	chromedp.ListenTarget(sess.ctx, meta.captureEvent)

	start := time.Now()
	html, location, err := r.run(sess.ctx, request)
	if err != nil {
		return listing.RenderResponse{}, err
	}
	status, finalURL := meta.resolve(request.URL, location)

	return listing.RenderResponse{
		RequestURL: request.URL,
		FinalURL:   finalURL,
		StatusCode: status,
		HTML:       []byte(html),
		Duration:   time.Since(start),
	}, nil
}

func (r *Renderer) run(ctx context.Context, request listing.RenderRequest) (string, string, error) {
	var (
		html     string
		finalURL string
	)
	actions := []chromedp.Action{
		r.networkSetupAction(request.Headers),
		chromedp.Navigate(request.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(request.Settle),
		chromedp.Location(&finalURL),
	}
	if request.ScrollWait > 0 {
		actions = append(actions,
			chromedp.Evaluate(scrollToBottomJS, nil),
			chromedp.Sleep(request.ScrollWait),
		)
	}
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	if err := chromedp.Run(ctx, actions...); err != nil {
		return "", "", fmt.Errorf("chromedp run: %w", err)
	}
	return html, finalURL, nil
}

func (r *Renderer) networkSetupAction(headers http.Header) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if r.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(r.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		if len(headers) > 0 {
			if err := network.SetExtraHTTPHeaders(toNetworkHeaders(headers)).Do(ctx); err != nil {
				return fmt.Errorf("set extra headers: %w", err)
			}
		}
		return nil
	})
}

func (r *Renderer) acquire(ctx context.Context) error {
	if r.limiter == nil {
		return nil
	}
	select {
	case r.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("headless slot wait canceled: %w", ctx.Err())
	}
}

func (r *Renderer) release() {
	if r.limiter == nil {
		return
	}
	select {
	case <-r.limiter:
	default:
	}
}

func (r *Renderer) navTimeout() time.Duration {
	if r.cfg.NavigationTimeout > 0 {
		return r.cfg.NavigationTimeout
	}
	return 45 * time.Second
}

// responseMeta records the status and URL of the main document response.
type responseMeta struct {
	mu     sync.RWMutex
	status int
	url    string
}

func newResponseMeta() *responseMeta {
	return &responseMeta{}
}

func (m *responseMeta) capture(event *network.EventResponseReceived) {
	if event.Type != network.ResourceTypeDocument || event.Response == nil {
		return
	}
	m.mu.Lock()
	m.status = int(event.Response.Status)
	m.url = event.Response.URL
	m.mu.Unlock()
}

func (m *responseMeta) captureEvent(ev any) {
	if resp, ok := ev.(*network.EventResponseReceived); ok {
		m.capture(resp)
	}
}

// resolve returns the document status (200 when none was seen) and the final
// URL, preferring the browser location over the document response URL.
func (m *responseMeta) resolve(requestURL, location string) (int, string) {
	m.mu.RLock()
	status, docURL := m.status, m.url
	m.mu.RUnlock()

	finalURL := location
	switch {
	case finalURL != "":
	case docURL != "":
		finalURL = docURL
	default:
		finalURL = requestURL
	}
	if status == 0 {
		status = http.StatusOK
	}
	return status, finalURL
}

func toNetworkHeaders(h http.Header) network.Headers {
	headers := network.Headers{}
	for key, values := range h {
		switch len(values) {
		case 0:
		case 1:
			headers[key] = values[0]
		default:
			headers[key] = append([]string(nil), values...)
		}
	}
	return headers
}

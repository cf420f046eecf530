package headless

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// session owns one browser process. Close must run on every exit path.
type session struct {
	ctx         context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	logger      *zap.Logger
}

func (r *Renderer) openSession(ctx context.Context) (*session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, r.allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	sess := &session{
		ctx:         tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		logger:      r.logger,
	}
	// An empty Run starts the browser so launch failures surface here.
	if err := chromedp.Run(tabCtx); err != nil {
		sess.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	r.logger.Debug("browser session started")
	return sess, nil
}

// Close shuts the browser down. Failures are logged and otherwise ignored.
func (s *session) Close() {
	if err := chromedp.Cancel(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("browser close failed", zap.Error(err))
	}
	s.tabCancel()
	s.allocCancel()
	s.logger.Debug("browser session closed")
}

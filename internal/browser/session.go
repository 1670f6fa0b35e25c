// Package browser drives a headless Chrome instance for the lookups that
// need a rendered page: the YouTube Music lyrics panel and YouTube search
// results. Each operation runs in a fresh tab that is released when the
// operation returns, so a wedged page cannot leak into the next one.
package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"lyricsense/internal/core"
)

// opTimeout bounds a single browser operation including navigation.
const opTimeout = 15 * time.Second

// Session owns the Chrome allocator shared by all browser operations.
type Session struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	logger   *zap.Logger
}

// NewSession prepares a Chrome allocator. The browser process itself starts
// lazily with the first operation.
func NewSession(config *core.BrowserConfig, logger *zap.Logger) *Session {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	if !config.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if config.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Session{
		allocCtx: allocCtx,
		cancel:   cancel,
		logger:   logger,
	}
}

// Close shuts down the allocator and any browser it started.
func (s *Session) Close() {
	s.cancel()
}

// run executes actions in a fresh tab bounded by opTimeout and by the
// caller's context. Chrome contexts must derive from the allocator, so the
// caller's deadline propagates through AfterFunc instead of direct
// parenting.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	tabCtx, cancelTab := chromedp.NewContext(s.allocCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, opTimeout)
	defer cancelTimeout()

	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

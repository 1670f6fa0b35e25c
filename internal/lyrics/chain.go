package lyrics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"lyricsense/internal/core"
)

// Throttler gates provider attempts so scrape targets are not hammered.
type Throttler interface {
	Allow(key string) bool
}

// Chain runs providers in policy order. Unavailable providers are skipped
// without an attempt, a miss moves to the next provider, and a provider
// failure is isolated and logged. Only when the final attempted provider
// fails hard does the chain report an error instead of a miss, since at that
// point the cause is more useful than "not found".
type Chain struct {
	providers   []Provider
	stepTimeout time.Duration
	throttle    Throttler
	metrics     core.MetricsRecorder
	logger      *zap.Logger
}

// NewChain creates a chain over already-ordered providers. throttle and
// metrics may be nil.
func NewChain(providers []Provider, stepTimeout time.Duration, throttle Throttler, metrics core.MetricsRecorder, logger *zap.Logger) *Chain {
	return &Chain{
		providers:   providers,
		stepTimeout: stepTimeout,
		throttle:    throttle,
		metrics:     metrics,
		logger:      logger,
	}
}

// BuildChain assembles the chain in the order named by the configuration.
// Unknown provider names fail at startup so a typo cannot silently shorten
// the chain. When browser automation supplies a video searcher, the
// caption-search provider joins the end of the order.
func BuildChain(
	config *core.Config,
	searcher VideoSearcher,
	captions core.CaptionSource,
	throttle Throttler,
	metrics core.MetricsRecorder,
	logger *zap.Logger,
) (*Chain, error) {
	registry := map[string]Provider{
		geniusName:        NewGeniusProvider(&config.Lyrics, logger),
		azlyricsName:      NewAZLyricsProvider(&config.Lyrics, logger),
		lrclibName:        NewLRCLIBProvider(logger),
		youtubeSearchName: NewYouTubeSearchProvider(searcher, captions, logger),
	}

	names := append([]string(nil), config.Lyrics.Providers...)
	if searcher != nil && !containsName(names, youtubeSearchName) {
		names = append(names, youtubeSearchName)
	}

	providers := make([]Provider, 0, len(names))
	for _, name := range names {
		provider, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("unknown lyrics provider %q", name)
		}
		providers = append(providers, provider)
	}

	return NewChain(providers, config.StepTimeout(), throttle, metrics, logger), nil
}

// Search implements core.LyricsSearcher.
func (c *Chain) Search(ctx context.Context, title, artist string) core.SearchResult {
	query := strings.TrimSpace(title + " " + artist)

	var attempts []core.ProviderAttempt
	var lastProvider string
	var lastErr error

	for _, provider := range c.providers {
		if ctx.Err() != nil {
			lastProvider, lastErr = provider.Name(), ctx.Err()
			break
		}
		if !provider.Available() {
			continue
		}
		if c.throttle != nil && !c.throttle.Allow(provider.Name()) {
			c.logger.Warn("Lyrics provider throttled", zap.String("provider", provider.Name()))
			c.record(provider.Name(), core.AttemptSkipped)
			continue
		}

		text, err := c.searchOne(ctx, provider, title, artist)
		switch {
		case err == nil && text != "":
			c.record(provider.Name(), core.AttemptHit)
			attempts = append(attempts, core.ProviderAttempt{Provider: provider.Name(), Query: query})
			return core.SearchResult{Text: text, Provider: provider.Name(), Attempts: attempts}
		case err == nil || errors.Is(err, ErrNotFound):
			c.logger.Debug("Lyrics provider miss",
				zap.String("provider", provider.Name()),
				zap.String("title", title),
				zap.String("artist", artist),
			)
			c.record(provider.Name(), core.AttemptMiss)
			attempts = append(attempts, core.ProviderAttempt{Provider: provider.Name(), Query: query})
			lastProvider, lastErr = provider.Name(), nil
		default:
			c.logger.Warn("Lyrics provider failed",
				zap.String("provider", provider.Name()),
				zap.Error(err),
			)
			c.record(provider.Name(), core.AttemptError)
			attempts = append(attempts, core.ProviderAttempt{Provider: provider.Name(), Query: query, Err: err})
			lastProvider, lastErr = provider.Name(), err
		}
	}

	if lastErr != nil {
		return core.SearchResult{Provider: lastProvider, Err: lastErr, Attempts: attempts}
	}
	return core.SearchResult{Attempts: attempts}
}

func (c *Chain) searchOne(ctx context.Context, provider Provider, title, artist string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.stepTimeout)
	defer cancel()
	return provider.Search(ctx, title, artist)
}

func (c *Chain) record(provider, disposition string) {
	if c.metrics != nil {
		c.metrics.RecordProviderAttempt(provider, disposition)
	}
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

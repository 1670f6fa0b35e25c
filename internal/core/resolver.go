package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"lyricsense/pkg/songref"
)

// Resolver is the acquisition state machine. One call to Resolve walks the
// fallback chain for a single line of input and always terminates in
// Success, NotFound, or Error. It holds no per-request state; concurrent
// calls are independent.
type Resolver struct {
	config   *Config
	captions CaptionSource
	metadata MetadataSource
	tracks   TrackSource
	page     PageLyricsSource
	searcher LyricsSearcher
	metrics  MetricsRecorder
	logger   *zap.Logger
}

// NewResolver wires the resolver from its injected sources. page may be nil
// when browser automation is disabled; metrics may be nil to disable
// telemetry.
func NewResolver(
	config *Config,
	captions CaptionSource,
	metadata MetadataSource,
	tracks TrackSource,
	page PageLyricsSource,
	searcher LyricsSearcher,
	metrics MetricsRecorder,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		config:   config,
		captions: captions,
		metadata: metadata,
		tracks:   tracks,
		page:     page,
		searcher: searcher,
		metrics:  metrics,
		logger:   logger,
	}
}

// Resolve runs one full acquisition pass. It never returns a Go error:
// every failure mode is encoded in the result's Outcome and Status.
func (r *Resolver) Resolve(ctx context.Context, input string) LyricsResult {
	start := time.Now()
	if r.metrics != nil {
		r.metrics.ResolveStarted()
		defer r.metrics.ResolveFinished()
	}
	ref := songref.Classify(input)

	r.logger.Debug("Classified input",
		zap.String("kind", ref.Kind.String()),
		zap.String("platform", ref.Platform),
		zap.String("input", input),
	)

	var result LyricsResult
	switch ref.Kind {
	case songref.KindVideo:
		result = r.resolveVideo(ctx, ref)
	case songref.KindTrack:
		result = r.resolveTrack(ctx, ref)
	case songref.KindQuery:
		result = r.resolveQuery(ctx, ref)
	default:
		result = NotFoundResult("", StatusQueryNotFound(ref.Raw))
	}

	elapsed := time.Since(start)
	r.logger.Info("Resolution finished",
		zap.String("outcome", result.Outcome.String()),
		zap.String("source", result.Source),
		zap.Duration("elapsed", elapsed),
	)
	if r.metrics != nil {
		r.metrics.RecordResolve(result.Source, result.Outcome, elapsed)
	}

	return result
}

func (r *Resolver) resolveVideo(ctx context.Context, ref songref.Reference) LyricsResult {
	// Music-subdomain pages carry their own lyrics panel; that beats caption
	// text when it is there.
	if ref.Platform == songref.PlatformYouTubeMusic && r.page != nil && ref.VideoID != "" {
		text, err := r.fetchPageLyrics(ctx, ref.VideoID)
		if err != nil {
			r.logger.Debug("Music page scrape produced nothing",
				zap.String("videoID", ref.VideoID), zap.Error(err))
		}
		if text != "" {
			return SuccessResult(text, SourceMusicPage, StatusMusicPageLyrics())
		}
	}

	if ref.VideoID == "" {
		return NotFoundResult("", StatusNoVideoID())
	}

	segments, err := r.fetchTranscript(ctx, ref.VideoID)
	if err != nil {
		r.logger.Debug("Caption fetch failed",
			zap.String("videoID", ref.VideoID), zap.Error(err))
	}
	if text := JoinSegments(segments); text != "" {
		return SuccessResult(text, SourceCaptions, StatusCaptionsExtracted(ref.VideoID))
	}

	title, artist, err := r.fetchTitleArtist(ctx, ref.VideoID)
	if err != nil {
		r.logger.Debug("Metadata lookup failed",
			zap.String("videoID", ref.VideoID), zap.Error(err))
	}
	if title == "" {
		return NotFoundResult("", StatusVideoNotFound(ref.VideoID))
	}

	r.logger.Info("No captions, searching lyrics sites",
		zap.String("videoID", ref.VideoID),
		zap.String("title", title),
		zap.String("artist", artist),
	)

	res := r.searchProviders(ctx, title, artist)
	switch {
	case res.Text != "":
		return SuccessResult(res.Text, res.Provider, statusForChainHit(res.Provider, displayName(artist, title)))
	case res.Err != nil:
		return ErrorResult(res.Provider, StatusLookupFailed(res.Err))
	default:
		return NotFoundResult("", StatusVideoNotFound(ref.VideoID))
	}
}

func (r *Resolver) resolveTrack(ctx context.Context, ref songref.Reference) LyricsResult {
	if ref.TrackID == "" {
		return NotFoundResult("", StatusNoTrackID())
	}

	title, artist, err := r.fetchTrack(ctx, ref.TrackID)
	if err != nil {
		r.logger.Debug("Track metadata unavailable",
			zap.String("trackID", ref.TrackID), zap.Error(err))
	}
	if title == "" {
		return NotFoundResult("", StatusSpotifyAuthRequired())
	}

	res := r.searchProviders(ctx, title, artist)
	switch {
	case res.Text != "":
		return SuccessResult(res.Text, res.Provider, StatusLyricsFound(displayName(artist, title)))
	case res.Err != nil:
		return ErrorResult(res.Provider, StatusLookupFailed(res.Err))
	default:
		return NotFoundResult("", StatusTrackNoLyrics(artist, title))
	}
}

func (r *Resolver) resolveQuery(ctx context.Context, ref songref.Reference) LyricsResult {
	res := r.searchProviders(ctx, ref.Title, ref.Artist)
	switch {
	case res.Text != "":
		return SuccessResult(res.Text, res.Provider, statusForChainHit(res.Provider, ref.Raw))
	case res.Err != nil:
		return ErrorResult(res.Provider, StatusLookupFailed(res.Err))
	default:
		return NotFoundResult("", StatusQueryNotFound(ref.Raw))
	}
}

// searchProviders runs the chain and logs the attempt trail when nothing
// matched. The chain times its providers individually, so it runs on the
// caller's context rather than a single step budget.
func (r *Resolver) searchProviders(ctx context.Context, title, artist string) SearchResult {
	res := r.searcher.Search(ctx, title, artist)
	if res.Text == "" {
		tried := make([]string, 0, len(res.Attempts))
		for _, attempt := range res.Attempts {
			tried = append(tried, attempt.Provider)
		}
		r.logger.Debug("Provider chain exhausted",
			zap.Strings("tried", tried),
			zap.Error(res.Err),
		)
	}
	return res
}

// Single-step fetch helpers. Each external call runs under the per-step
// budget layered on the caller's context.

func (r *Resolver) fetchPageLyrics(ctx context.Context, videoID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.StepTimeout())
	defer cancel()
	return r.page.FetchPageLyrics(ctx, videoID)
}

func (r *Resolver) fetchTranscript(ctx context.Context, videoID string) ([]TranscriptSegment, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.StepTimeout())
	defer cancel()
	return r.captions.FetchTranscript(ctx, videoID)
}

func (r *Resolver) fetchTitleArtist(ctx context.Context, videoID string) (title, artist string, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.StepTimeout())
	defer cancel()
	return r.metadata.FetchTitleArtist(ctx, videoID)
}

func (r *Resolver) fetchTrack(ctx context.Context, trackID string) (title, artist string, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.StepTimeout())
	defer cancel()
	return r.tracks.FetchTrack(ctx, trackID)
}

func displayName(artist, title string) string {
	if artist == "" {
		return title
	}
	return artist + " - " + title
}

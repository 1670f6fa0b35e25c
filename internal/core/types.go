package core

import (
	"context"
	"strings"
	"time"
)

// Outcome is the terminal state of one resolution pass.
type Outcome int

const (
	// OutcomeSuccess indicates lyrics text was acquired.
	OutcomeSuccess Outcome = iota
	// OutcomeNotFound indicates every source was tried and none produced text.
	OutcomeNotFound
	// OutcomeError indicates the final fallback failed with a hard error.
	OutcomeError
)

// String returns a short name for the outcome, used in logs and metrics labels.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotFound:
		return "notfound"
	default:
		return "error"
	}
}

// Source tags attached to results produced outside the provider chain.
// Chain hits carry the provider's own name instead.
const (
	SourceCaptions  = "youtube-captions"
	SourceMusicPage = "ytmusic-page"
	SourcePasted    = "pasted"
)

// LyricsResult is the normalized output of one resolution pass. Text is
// non-empty exactly when Outcome is OutcomeSuccess. The constructors below
// are the only way resolution code builds one, which keeps that invariant
// out of the hands of individual fallback branches. Status carries the exact
// line the shell shows the user.
type LyricsResult struct {
	Text    string
	Source  string
	Status  string
	Outcome Outcome
}

// SuccessResult builds a successful result carrying lyrics text.
func SuccessResult(text, source, status string) LyricsResult {
	return LyricsResult{Text: text, Source: source, Status: status, Outcome: OutcomeSuccess}
}

// NotFoundResult builds an exhausted-fallbacks result.
func NotFoundResult(source, status string) LyricsResult {
	return LyricsResult{Source: source, Status: status, Outcome: OutcomeNotFound}
}

// ErrorResult builds a terminal-failure result.
func ErrorResult(source, status string) LyricsResult {
	return LyricsResult{Source: source, Status: status, Outcome: OutcomeError}
}

// TranscriptSegment is one time-coded cue from a video caption track.
type TranscriptSegment struct {
	Text     string
	Start    time.Duration
	Duration time.Duration
}

// JoinSegments flattens an ordered caption track into lyrics-shaped text.
// Whitespace runs inside a segment collapse to single spaces, empty segments
// are dropped, and segment order is preserved.
func JoinSegments(segments []TranscriptSegment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		line := strings.Join(strings.Fields(seg.Text), " ")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// ProviderAttempt records one provider query for logging and metrics. It is
// observational only and never feeds back into control flow.
type ProviderAttempt struct {
	Provider string
	Query    string
	Err      error
}

// SearchResult is the outcome of one provider-chain pass. Text empty and Err
// nil means nothing matched anywhere. Err is set only when the last
// attempted provider failed hard, in which case the resolver turns it into
// OutcomeError.
type SearchResult struct {
	Text     string
	Provider string
	Err      error
	Attempts []ProviderAttempt
}

// CaptionSource fetches the caption track for a hosted video. A video
// without usable captions yields a nil slice; the returned error exists for
// diagnostics and the resolver treats every failure uniformly as absence.
type CaptionSource interface {
	FetchTranscript(ctx context.Context, videoID string) ([]TranscriptSegment, error)
}

// MetadataSource resolves a video's title and uploader, best effort.
type MetadataSource interface {
	FetchTitleArtist(ctx context.Context, videoID string) (title, artist string, err error)
}

// TrackSource resolves a streaming-catalog track to title and artist.
type TrackSource interface {
	FetchTrack(ctx context.Context, trackID string) (title, artist string, err error)
}

// PageLyricsSource scrapes lyrics straight off a platform page for a video,
// where the platform exposes them alongside the player.
type PageLyricsSource interface {
	FetchPageLyrics(ctx context.Context, videoID string) (string, error)
}

// LyricsSearcher runs the ordered lyrics-provider chain for a title/artist
// pair. Provider failures stay inside the chain; only the disposition of the
// final attempt surfaces in the SearchResult.
type LyricsSearcher interface {
	Search(ctx context.Context, title, artist string) SearchResult
}

// Interpreter produces an interpretation of acquired lyrics.
type Interpreter interface {
	Name() string
	Interpret(ctx context.Context, lyrics string) (string, error)
}

// Dispositions recorded for provider attempts and interpretations.
const (
	AttemptHit     = "hit"
	AttemptMiss    = "miss"
	AttemptError   = "error"
	AttemptSkipped = "skipped"
	AttemptOK      = "ok"
)

// MetricsRecorder receives resolution telemetry. Implementations must be
// safe for concurrent use. A nil recorder disables recording.
type MetricsRecorder interface {
	// ResolveStarted and ResolveFinished bracket one in-flight resolution
	// pass. Every started pass finishes.
	ResolveStarted()
	ResolveFinished()
	RecordResolve(source string, outcome Outcome, duration time.Duration)
	RecordProviderAttempt(provider, disposition string)
	RecordInterpretation(provider, disposition string)
}

// Package songref classifies free-form user input into song source
// references: hosted-video URLs, streaming-track URLs, or free-text
// artist/title queries.
package songref

import (
	"net/url"
	"regexp"
	"strings"
)

// Kind identifies what a piece of input refers to.
type Kind int

const (
	// KindUnknown marks input that could not be classified at all.
	KindUnknown Kind = iota
	// KindVideo marks input referring to a hosted video.
	KindVideo
	// KindTrack marks input referring to a streaming-catalog track.
	KindTrack
	// KindQuery marks free-text artist/title input.
	KindQuery
)

// String returns a short name for the kind, used in logs and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindTrack:
		return "track"
	case KindQuery:
		return "query"
	default:
		return "unknown"
	}
}

// Platform names attached to classified references.
const (
	PlatformYouTube      = "youtube"
	PlatformYouTubeMusic = "youtubemusic"
	PlatformSpotify      = "spotify"
)

// Reference is a classified song reference. Only the fields implied by Kind
// are set: VideoID for KindVideo, TrackID for KindTrack, Artist/Title for
// KindQuery. A recognized video or track URL whose identifier could not be
// extracted keeps its Kind with an empty ID; callers must check before use.
type Reference struct {
	Kind     Kind
	Platform string
	VideoID  string
	TrackID  string
	Artist   string
	Title    string
	Raw      string
}

// querySplitParts is the number of parts an "Artist - Title" query splits into.
const querySplitParts = 2

var (
	videoIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\s?#/]+)`),
		regexp.MustCompile(`(?i)music\.youtube\.com/watch\?v=([^&\s?#/]+)`),
	}

	trackIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)spotify\.com/track/([a-zA-Z0-9]+)`),
		regexp.MustCompile(`(?i)spotify:track:([a-zA-Z0-9]+)`),
	}
)

// Classify inspects one line of user input and returns the reference it
// names. Classification is pure and total: it performs no I/O, never fails,
// and anything that is not a recognized URL falls through to a free-text
// query.
func Classify(input string) Reference {
	input = strings.TrimSpace(input)
	if input == "" {
		return Reference{Kind: KindUnknown}
	}

	lower := strings.ToLower(input)

	switch {
	case strings.Contains(lower, "youtube.com") || strings.Contains(lower, "youtu.be"):
		return videoReference(input, lower)
	case strings.Contains(lower, "spotify.com") || strings.Contains(lower, "spotify:track:"):
		return Reference{
			Kind:     KindTrack,
			Platform: PlatformSpotify,
			TrackID:  ExtractTrackID(input),
			Raw:      input,
		}
	}

	return queryReference(input)
}

func videoReference(input, lower string) Reference {
	platform := PlatformYouTube
	if strings.Contains(lower, "music.youtube.com") {
		platform = PlatformYouTubeMusic
	}

	return Reference{
		Kind:     KindVideo,
		Platform: platform,
		VideoID:  ExtractVideoID(input),
		Raw:      input,
	}
}

// ExtractVideoID pulls the video identifier out of any recognized YouTube
// URL form: watch, short-link, embed, and the music subdomain. Returns the
// empty string when no identifier is present.
func ExtractVideoID(input string) string {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(input); m != nil {
			return m[1]
		}
	}

	// The patterns miss reordered forms like watch?app=desktop&v=ID; fall
	// back to parsing the v query parameter.
	u, err := url.Parse(strings.TrimSpace(input))
	if err != nil {
		return ""
	}
	return u.Query().Get("v")
}

// ExtractTrackID pulls the track identifier out of a Spotify track URL or
// spotify:track: URI. Returns the empty string when no identifier is present.
func ExtractTrackID(input string) string {
	for _, re := range trackIDPatterns {
		if m := re.FindStringSubmatch(input); m != nil {
			return m[1]
		}
	}
	return ""
}

func queryReference(input string) Reference {
	ref := Reference{Kind: KindQuery, Raw: input, Title: input}

	if artist, title, ok := SplitQuery(input); ok {
		ref.Artist = artist
		ref.Title = title
	}

	return ref
}

// SplitQuery splits "Artist - Title" input on the first " - " occurrence
// only, so "A - B - C" yields artist "A" and title "B - C". Hyphens without
// surrounding spaces never split.
func SplitQuery(input string) (artist, title string, ok bool) {
	parts := strings.SplitN(input, " - ", querySplitParts)
	if len(parts) != querySplitParts {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

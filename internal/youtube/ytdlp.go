package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"

	"lyricsense/internal/core"
)

// subtitleFormats is the download preference ladder for yt-dlp subtitle
// listings, best first. The structured JSON format is never in the ladder.
var subtitleFormats = []string{"srv3", "vtt", "srv2", "srv1"}

type ytdlpInfo struct {
	ID                string                     `json:"id"`
	Title             string                     `json:"title"`
	Subtitles         map[string][]ytdlpSubtitle `json:"subtitles"`
	AutomaticCaptions map[string][]ytdlpSubtitle `json:"automatic_captions"`
}

type ytdlpSubtitle struct {
	Ext string `json:"ext"`
	URL string `json:"url"`
}

// YtdlpCaptionSource lists caption tracks through a yt-dlp binary. Opt-in
// alternative to the player endpoint: slower, needs yt-dlp on PATH, but
// copes with videos the player API refuses.
type YtdlpCaptionSource struct {
	config *core.CaptionsConfig
	client *http.Client
	logger *zap.Logger
}

// NewYtdlpCaptionSource creates a caption source backed by yt-dlp.
func NewYtdlpCaptionSource(config *core.CaptionsConfig, logger *zap.Logger) *YtdlpCaptionSource {
	return &YtdlpCaptionSource{
		config: config,
		client: &http.Client{Timeout: captionRequestTimeout},
		logger: logger,
	}
}

// FetchTranscript extracts the video's subtitle listing with yt-dlp and
// downloads the best track, with the same preference rules as the player
// endpoint client.
func (y *YtdlpCaptionSource) FetchTranscript(ctx context.Context, videoID string) ([]core.TranscriptSegment, error) {
	videoURL := "https://www.youtube.com/watch?v=" + videoID

	result, err := ytdlp.New().
		SkipDownload().
		NoWarnings().
		NoPlaylist().
		DumpSingleJSON().
		Run(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp extraction failed: %w", err)
	}

	var info ytdlpInfo
	if err := json.Unmarshal([]byte(result.Stdout), &info); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}

	subs, language, auto := pickSubtitleList(&info, y.config.Language)
	if len(subs) == 0 {
		return nil, ErrNoCaptions
	}
	y.logger.Debug("Selected yt-dlp subtitle track",
		zap.String("videoID", videoID),
		zap.String("language", language),
		zap.Bool("auto", auto),
	)

	subURL, ext := preferredSubtitle(subs)
	if subURL == "" {
		return nil, ErrNoCaptions
	}

	body, err := downloadTrack(ctx, y.client, subURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subtitle track: %w", err)
	}

	if ext == "vtt" {
		return parseVTT(body), nil
	}
	return parseTimedText(body)
}

// pickSubtitleList walks manual tracks in the requested language, manual
// tracks in any language, then the same two steps over automatic captions.
func pickSubtitleList(info *ytdlpInfo, language string) (subs []ytdlpSubtitle, lang string, auto bool) {
	if subs, lang := lookupLanguage(info.Subtitles, language); len(subs) > 0 {
		return subs, lang, false
	}
	if subs, lang := anyLanguage(info.Subtitles); len(subs) > 0 {
		return subs, lang, false
	}
	if subs, lang := lookupLanguage(info.AutomaticCaptions, language); len(subs) > 0 {
		return subs, lang, true
	}
	if subs, lang := anyLanguage(info.AutomaticCaptions); len(subs) > 0 {
		return subs, lang, true
	}
	return nil, "", false
}

func lookupLanguage(tracks map[string][]ytdlpSubtitle, language string) ([]ytdlpSubtitle, string) {
	if language == "" {
		return nil, ""
	}
	if subs, ok := tracks[language]; ok {
		return subs, language
	}
	for _, lang := range sortedKeys(tracks) {
		if languageMatches(lang, language) {
			return tracks[lang], lang
		}
	}
	return nil, ""
}

func anyLanguage(tracks map[string][]ytdlpSubtitle) ([]ytdlpSubtitle, string) {
	for _, lang := range sortedKeys(tracks) {
		if len(tracks[lang]) > 0 {
			return tracks[lang], lang
		}
	}
	return nil, ""
}

func sortedKeys(tracks map[string][]ytdlpSubtitle) []string {
	keys := make([]string, 0, len(tracks))
	for k := range tracks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// preferredSubtitle returns the URL and extension of the best-format track.
func preferredSubtitle(subs []ytdlpSubtitle) (subURL, ext string) {
	for _, format := range subtitleFormats {
		for _, s := range subs {
			if s.Ext == format && s.URL != "" {
				return s.URL, s.Ext
			}
		}
	}
	for _, s := range subs {
		if s.Ext != "json3" && s.URL != "" {
			return s.URL, s.Ext
		}
	}
	return "", ""
}

// Package youtube fetches caption tracks and video metadata without
// credentials, through the endpoints the platform's own clients use.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"lyricsense/internal/core"
)

const (
	// playerEndpoint is the public player API consulted for caption track
	// listings.
	playerEndpoint = "https://www.youtube.com/youtubei/v1/player"
	// androidClientName identifies the Android app client context, which is
	// served caption metadata without an API key.
	androidClientName = "ANDROID"
	// androidClientVersion is the app version reported with the client context.
	androidClientVersion = "20.10.38"
	// androidSDKVersion is the Android SDK level reported with the client context.
	androidSDKVersion = 30
	// androidUserAgent is the user agent of the Android app.
	androidUserAgent = "com.google.android.youtube/20.10.38 (Linux; U; Android 11) gzip"
	// captionRequestTimeout bounds every caption-related HTTP call.
	captionRequestTimeout = 10 * time.Second
	// maxTrackBytes caps how much of a caption track is read.
	maxTrackBytes = 2 << 20
	// asrKind marks auto-generated (speech recognition) caption tracks.
	asrKind = "asr"
)

// ErrNoCaptions is returned when a video has no usable caption track.
var ErrNoCaptions = errors.New("no caption tracks available")

// trackFormats is the fetch preference ladder: plain XML first, cue-text VTT
// second, then whatever the base URL serves by default. The structured JSON
// format is deliberately never requested.
var trackFormats = []string{"srv3", "vtt", ""}

type playerRequest struct {
	Context playerContext `json:"context"`
	VideoID string        `json:"videoId"`
}

type playerContext struct {
	Client playerClient `json:"client"`
}

type playerClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSDKVersion int    `json:"androidSdkVersion"`
	HL                string `json:"hl"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// CaptionClient fetches caption tracks through the public player endpoint.
type CaptionClient struct {
	config   *core.CaptionsConfig
	client   *http.Client
	endpoint string
	logger   *zap.Logger
}

// NewCaptionClient creates a caption client for the configured language.
func NewCaptionClient(config *core.CaptionsConfig, logger *zap.Logger) *CaptionClient {
	return &CaptionClient{
		config:   config,
		client:   &http.Client{Timeout: captionRequestTimeout},
		endpoint: playerEndpoint,
		logger:   logger,
	}
}

// FetchTranscript returns the cues of the best available caption track for
// the video: manually authored tracks beat auto-generated ones, and the
// configured language beats the any-language retry.
func (c *CaptionClient) FetchTranscript(ctx context.Context, videoID string) ([]core.TranscriptSegment, error) {
	if videoID == "" {
		return nil, errors.New("empty video ID")
	}

	tracks, err := c.listTracks(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list caption tracks: %w", err)
	}
	if len(tracks) == 0 {
		return nil, ErrNoCaptions
	}

	track := selectTrack(tracks, c.config.Language)
	c.logger.Debug("Selected caption track",
		zap.String("videoID", videoID),
		zap.String("language", track.LanguageCode),
		zap.Bool("auto", track.Kind == asrKind),
	)

	segments, err := c.fetchTrack(ctx, track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch caption track: %w", err)
	}
	return segments, nil
}

func (c *CaptionClient) listTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	reqBody := playerRequest{
		Context: playerContext{
			Client: playerClient{
				ClientName:        androidClientName,
				ClientVersion:     androidClientVersion,
				AndroidSDKVersion: androidSDKVersion,
				HL:                c.config.Language,
			},
		},
		VideoID: videoID,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", androidUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("player API returned status %d", resp.StatusCode)
	}

	var playerResp playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&playerResp); err != nil {
		return nil, fmt.Errorf("failed to decode player response: %w", err)
	}

	if status := playerResp.PlayabilityStatus.Status; status != "" && status != "OK" {
		return nil, fmt.Errorf("video not playable: %s (%s)", status, playerResp.PlayabilityStatus.Reason)
	}

	return playerResp.Captions.Renderer.CaptionTracks, nil
}

func (c *CaptionClient) fetchTrack(ctx context.Context, baseURL string) ([]core.TranscriptSegment, error) {
	var lastErr error

	for _, format := range trackFormats {
		trackURL := baseURL
		if format != "" {
			trackURL += "&fmt=" + format
		}

		body, err := downloadTrack(ctx, c.client, trackURL)
		if err != nil {
			lastErr = err
			continue
		}

		var segments []core.TranscriptSegment
		if format == "vtt" {
			segments = parseVTT(body)
		} else {
			segments, err = parseTimedText(body)
			if err != nil {
				lastErr = err
				continue
			}
		}

		if len(segments) > 0 {
			return segments, nil
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoCaptions
}

// selectTrack picks the best of the available tracks. Manual tracks always
// beat ASR tracks, even when only the ASR track matches the requested
// language; within each class the requested language wins.
func selectTrack(tracks []captionTrack, language string) captionTrack {
	best := 0
	bestScore := trackScore(tracks[0], language)
	for i := 1; i < len(tracks); i++ {
		if score := trackScore(tracks[i], language); score < bestScore {
			best, bestScore = i, score
		}
	}
	return tracks[best]
}

func trackScore(track captionTrack, language string) int {
	manual := track.Kind != asrKind
	match := languageMatches(track.LanguageCode, language)
	switch {
	case manual && match:
		return 0
	case manual:
		return 1
	case match:
		return 2
	default:
		return 3
	}
}

// languageMatches accepts regional variants, so "en" matches "en-US".
func languageMatches(code, language string) bool {
	if language == "" {
		return true
	}
	return code == language || strings.HasPrefix(code, language+"-")
}

func downloadTrack(ctx context.Context, client *http.Client, trackURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, http.NoBody)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("caption track returned status %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxTrackBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read caption track: %w", err)
	}
	return string(bodyBytes), nil
}

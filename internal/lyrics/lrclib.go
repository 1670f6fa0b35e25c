package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	lrclibName     = "lrclib"
	lrclibEndpoint = "https://lrclib.net"
)

var lrcTimestampRegex = regexp.MustCompile(`^\[\d+:\d+(?:\.\d+)?\]\s*`)

type lrclibTrack struct {
	TrackName    string `json:"trackName"`
	ArtistName   string `json:"artistName"`
	Instrumental bool   `json:"instrumental"`
	PlainLyrics  string `json:"plainLyrics"`
	SyncedLyrics string `json:"syncedLyrics"`
}

// LRCLIBProvider queries the LRCLIB API. Exact artist+title lookups use the
// get endpoint; artistless queries fall back to the search endpoint.
type LRCLIBProvider struct {
	client   *http.Client
	endpoint string
	logger   *zap.Logger
}

// NewLRCLIBProvider creates the LRCLIB provider.
func NewLRCLIBProvider(logger *zap.Logger) *LRCLIBProvider {
	return &LRCLIBProvider{
		client:   newHTTPClient(),
		endpoint: lrclibEndpoint,
		logger:   logger,
	}
}

// Name implements Provider.
func (l *LRCLIBProvider) Name() string { return lrclibName }

// Available implements Provider. The API is open.
func (l *LRCLIBProvider) Available() bool { return true }

// Search implements Provider.
func (l *LRCLIBProvider) Search(ctx context.Context, title, artist string) (string, error) {
	if title == "" {
		return "", ErrNotFound
	}

	track, err := l.lookup(ctx, title, artist)
	if err != nil {
		return "", err
	}
	if track == nil || track.Instrumental {
		return "", ErrNotFound
	}

	lyrics := track.PlainLyrics
	if lyrics == "" && track.SyncedLyrics != "" {
		lyrics = stripLRCTimestamps(track.SyncedLyrics)
	}
	lyrics = strings.TrimSpace(lyrics)
	if lyrics == "" {
		return "", ErrNotFound
	}

	l.logger.Debug("LRCLIB lyrics found",
		zap.String("track", track.TrackName),
		zap.String("artist", track.ArtistName),
	)
	return lyrics, nil
}

func (l *LRCLIBProvider) lookup(ctx context.Context, title, artist string) (*lrclibTrack, error) {
	if artist != "" {
		return l.get(ctx, title, artist)
	}
	return l.search(ctx, title)
}

// get does an exact lookup. A 404 means the catalog has no such track.
func (l *LRCLIBProvider) get(ctx context.Context, title, artist string) (*lrclibTrack, error) {
	params := url.Values{}
	params.Set("artist_name", artist)
	params.Set("track_name", title)

	body, status, err := l.do(ctx, l.endpoint+"/api/get?"+params.Encode())
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}

	var track lrclibTrack
	if err := json.Unmarshal(body, &track); err != nil {
		return nil, fmt.Errorf("failed to decode lrclib response: %w", err)
	}
	return &track, nil
}

// search does a free-text query and takes the first result with lyrics.
func (l *LRCLIBProvider) search(ctx context.Context, query string) (*lrclibTrack, error) {
	params := url.Values{}
	params.Set("q", query)

	body, status, err := l.do(ctx, l.endpoint+"/api/search?"+params.Encode())
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}

	var tracks []lrclibTrack
	if err := json.Unmarshal(body, &tracks); err != nil {
		return nil, fmt.Errorf("failed to decode lrclib search response: %w", err)
	}
	for i := range tracks {
		if tracks[i].PlainLyrics != "" || tracks[i].SyncedLyrics != "" {
			return &tracks[i], nil
		}
	}
	return nil, nil
}

func (l *LRCLIBProvider) do(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", commonUserAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("lrclib request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, http.StatusNotFound, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("lrclib returned status %d", resp.StatusCode)
	}

	body, err := readLimitedBody(resp)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// stripLRCTimestamps turns synced LRC lines into plain text.
func stripLRCTimestamps(synced string) string {
	lines := strings.Split(synced, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(lrcTimestampRegex.ReplaceAllString(strings.TrimSpace(line), ""))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// Package spotify resolves track links to public catalog metadata.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"lyricsense/internal/core"
)

const (
	// oembedEndpoint serves title metadata for any public track without
	// credentials.
	oembedEndpoint = "https://open.spotify.com/oembed"
	// requestTimeout bounds a single metadata request.
	requestTimeout = 10 * time.Second
)

// Client resolves track IDs to title and artist. With API credentials it
// uses the Web API under the client-credentials grant, which reaches public
// catalog data only. Without credentials it falls back to the oEmbed
// endpoint, which knows the title but not the artist.
type Client struct {
	config     *core.SpotifyConfig
	logger     *zap.Logger
	client     *spotify.Client
	httpClient *http.Client
	oembedURL  string
}

// NewClient creates a track metadata client. ctx scopes the token source
// used for Web API calls.
func NewClient(ctx context.Context, config *core.SpotifyConfig, logger *zap.Logger) *Client {
	c := &Client{
		config:     config,
		logger:     logger,
		httpClient: &http.Client{Timeout: requestTimeout},
		oembedURL:  oembedEndpoint,
	}

	if config.ClientID != "" && config.ClientSecret != "" {
		creds := &clientcredentials.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			TokenURL:     spotifyauth.TokenURL,
		}
		c.client = spotify.New(creds.Client(ctx))
		c.logger.Debug("Spotify Web API client configured")
	} else {
		c.logger.Debug("No Spotify credentials, track lookups use oEmbed only")
	}

	return c
}

// FetchTrack implements core.TrackSource.
func (c *Client) FetchTrack(ctx context.Context, trackID string) (string, string, error) {
	if trackID == "" {
		return "", "", errors.New("empty track ID")
	}

	if c.client != nil {
		title, artist, err := c.fetchFromAPI(ctx, trackID)
		if err == nil {
			return title, artist, nil
		}
		c.logger.Debug("Web API track lookup failed, trying oEmbed",
			zap.String("trackID", trackID),
			zap.Error(err),
		)
	}

	return c.fetchFromOEmbed(ctx, trackID)
}

func (c *Client) fetchFromAPI(ctx context.Context, trackID string) (string, string, error) {
	track, err := c.client.GetTrack(ctx, spotify.ID(trackID))
	if err != nil {
		return "", "", fmt.Errorf("failed to get track: %w", err)
	}

	artists := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		artists = append(artists, artist.Name)
	}

	c.logger.Debug("Track resolved via Web API",
		zap.String("trackID", trackID),
		zap.String("title", track.Name),
	)
	return track.Name, strings.Join(artists, ", "), nil
}

// fetchFromOEmbed reads the public embed metadata. The response carries the
// track title only, so the artist comes back empty.
func (c *Client) fetchFromOEmbed(ctx context.Context, trackID string) (string, string, error) {
	trackURL := fmt.Sprintf("https://open.spotify.com/track/%s", trackID)
	reqURL := fmt.Sprintf("%s?url=%s", c.oembedURL, url.QueryEscape(trackURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return "", "", fmt.Errorf("failed to create oEmbed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("oEmbed request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("oEmbed API returned status %d", resp.StatusCode)
	}

	var oembedResp struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&oembedResp); err != nil {
		return "", "", fmt.Errorf("failed to decode oEmbed response: %w", err)
	}

	c.logger.Debug("Track resolved via oEmbed",
		zap.String("trackID", trackID),
		zap.String("title", oembedResp.Title),
	)
	return oembedResp.Title, "", nil
}

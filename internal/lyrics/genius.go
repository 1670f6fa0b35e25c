package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"lyricsense/internal/core"
	"lyricsense/pkg/fuzzy"
)

const (
	geniusName        = "genius"
	geniusAPIEndpoint = "https://api.genius.com/search"
	// geniusMinLyricsChars rejects pages whose lyrics container holds only a
	// stub ("Lyrics for this song have yet to be released").
	geniusMinLyricsChars = 100
	// geniusArtistThreshold accepts a search hit whose primary artist is a
	// close but not exact match for the requested one.
	geniusArtistThreshold = 0.6
)

var (
	breakTagRegex     = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlTagRegex      = regexp.MustCompile(`<[^>]+>`)
	sectionLabelRegex = regexp.MustCompile(`\[[^\]\n]*\]`)
	blankRunRegex     = regexp.MustCompile(`\n{3,}`)
)

type geniusSearchResponse struct {
	Response struct {
		Hits []geniusHit `json:"hits"`
	} `json:"response"`
}

type geniusHit struct {
	Result geniusSong `json:"result"`
}

type geniusSong struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	PrimaryArtist struct {
		Name string `json:"name"`
	} `json:"primary_artist"`
}

// GeniusProvider searches the Genius API and scrapes the song page, since
// the API itself never serves lyrics text. Requires an API token; without
// one the provider reports itself unavailable.
type GeniusProvider struct {
	token    string
	client   *http.Client
	endpoint string
	norm     *fuzzy.Normalizer
	logger   *zap.Logger
}

// NewGeniusProvider creates the Genius provider from the lyrics configuration.
func NewGeniusProvider(config *core.LyricsConfig, logger *zap.Logger) *GeniusProvider {
	return &GeniusProvider{
		token:    config.GeniusToken,
		client:   newHTTPClient(),
		endpoint: geniusAPIEndpoint,
		norm:     fuzzy.NewNormalizer(),
		logger:   logger,
	}
}

// Name implements Provider.
func (g *GeniusProvider) Name() string { return geniusName }

// Available implements Provider. The provider needs an API token.
func (g *GeniusProvider) Available() bool { return g.token != "" }

// Search implements Provider.
func (g *GeniusProvider) Search(ctx context.Context, title, artist string) (string, error) {
	song, err := g.findSong(ctx, title, artist)
	if err != nil {
		return "", err
	}

	lyrics, err := g.scrapeSongPage(ctx, song.URL)
	if err != nil {
		return "", err
	}
	if len(lyrics) < geniusMinLyricsChars {
		return "", ErrNotFound
	}

	g.logger.Debug("Genius lyrics extracted",
		zap.String("song", song.Title),
		zap.String("artist", song.PrimaryArtist.Name),
		zap.Int("chars", len(lyrics)),
	)
	return lyrics, nil
}

func (g *GeniusProvider) findSong(ctx context.Context, title, artist string) (geniusSong, error) {
	query := strings.TrimSpace(title + " " + artist)
	reqURL := fmt.Sprintf("%s?q=%s", g.endpoint, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return geniusSong{}, err
	}
	req.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.client.Do(req)
	if err != nil {
		return geniusSong{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return geniusSong{}, fmt.Errorf("genius API returned status %d", resp.StatusCode)
	}

	var searchResp geniusSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return geniusSong{}, fmt.Errorf("failed to decode genius response: %w", err)
	}

	hits := searchResp.Response.Hits
	if len(hits) == 0 {
		return geniusSong{}, ErrNotFound
	}
	return g.bestHit(hits, artist), nil
}

// bestHit returns the first hit whose primary artist matches the requested
// one, or the top hit when no artist was given or nothing matches.
func (g *GeniusProvider) bestHit(hits []geniusHit, artist string) geniusSong {
	if artist == "" {
		return hits[0].Result
	}

	want := strings.ToLower(artist)
	for _, hit := range hits {
		got := strings.ToLower(hit.Result.PrimaryArtist.Name)
		if got == "" {
			continue
		}
		if strings.Contains(got, want) || strings.Contains(want, got) {
			return hit.Result
		}
		if g.norm.CalculateSimilarity(g.norm.NormalizeArtist(artist), g.norm.NormalizeArtist(hit.Result.PrimaryArtist.Name)) >= geniusArtistThreshold {
			return hit.Result
		}
	}
	return hits[0].Result
}

func (g *GeniusProvider) scrapeSongPage(ctx context.Context, songURL string) (string, error) {
	if songURL == "" {
		return "", ErrNotFound
	}

	doc, err := fetchDocument(ctx, g.client, songURL, "genius")
	if err != nil {
		return "", err
	}

	var parts []string
	doc.Find(`div[data-lyrics-container="true"]`).Each(func(_ int, s *goquery.Selection) {
		if text := containerText(s); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		return "", ErrNotFound
	}

	return cleanLyrics(strings.Join(parts, "\n")), nil
}

// containerText converts a lyrics container to plain text, turning <br>
// into line breaks before stripping the remaining markup.
func containerText(s *goquery.Selection) string {
	rawHTML, err := s.Html()
	if err != nil {
		return ""
	}
	text := breakTagRegex.ReplaceAllString(rawHTML, "\n")
	text = htmlTagRegex.ReplaceAllString(text, "")
	return strings.TrimSpace(html.UnescapeString(text))
}

// cleanLyrics drops [Verse]/[Chorus] section labels and collapses the blank
// runs they leave behind.
func cleanLyrics(lyrics string) string {
	lyrics = sectionLabelRegex.ReplaceAllString(lyrics, "")

	lines := strings.Split(lyrics, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	lyrics = strings.Join(lines, "\n")
	lyrics = blankRunRegex.ReplaceAllString(lyrics, "\n\n")
	return strings.TrimSpace(lyrics)
}

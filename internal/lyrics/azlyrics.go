package lyrics

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"lyricsense/internal/core"
	"lyricsense/pkg/fuzzy"
)

const (
	azlyricsName     = "azlyrics"
	azlyricsEndpoint = "https://www.azlyrics.com"
)

// AZLyricsProvider scrapes azlyrics.com pages addressed by artist and title
// slugs. The site serves lyrics in the one div that carries neither a class
// nor an id, with no structural marker, so that div is identified by its
// size and line breaks. A site redesign breaks this provider before anything
// else does.
type AZLyricsProvider struct {
	client   *http.Client
	endpoint string
	minChars int
	logger   *zap.Logger
}

// NewAZLyricsProvider creates the AZLyrics provider from the lyrics configuration.
func NewAZLyricsProvider(config *core.LyricsConfig, logger *zap.Logger) *AZLyricsProvider {
	return &AZLyricsProvider{
		client:   newHTTPClient(),
		endpoint: azlyricsEndpoint,
		minChars: config.MinLyricsChars,
		logger:   logger,
	}
}

// Name implements Provider.
func (a *AZLyricsProvider) Name() string { return azlyricsName }

// Available implements Provider. No credentials are needed.
func (a *AZLyricsProvider) Available() bool { return true }

// Search implements Provider. Page URLs are built from slugs, so an unknown
// artist means no URL can be built and the search is a miss, never a guess.
func (a *AZLyricsProvider) Search(ctx context.Context, title, artist string) (string, error) {
	artistSlug := fuzzy.Slug(artist)
	titleSlug := fuzzy.Slug(title)
	if artistSlug == "" || titleSlug == "" {
		return "", ErrNotFound
	}

	pageURL := fmt.Sprintf("%s/lyrics/%s/%s.html", a.endpoint, artistSlug, titleSlug)
	doc, err := fetchDocument(ctx, a.client, pageURL, "azlyrics")
	if err != nil {
		return "", err
	}

	lyrics := a.findLyricsDiv(doc)
	if lyrics == "" {
		return "", ErrNotFound
	}

	a.logger.Debug("AZLyrics page scraped",
		zap.String("url", pageURL),
		zap.Int("chars", len(lyrics)),
	)
	return lyrics, nil
}

func (a *AZLyricsProvider) findLyricsDiv(doc *goquery.Document) string {
	var lyrics string
	doc.Find("div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if _, ok := s.Attr("class"); ok {
			return true
		}
		if _, ok := s.Attr("id"); ok {
			return true
		}
		text := strings.TrimSpace(s.Text())
		if len(text) > a.minChars && strings.Contains(text, "\n") {
			lyrics = normalizeScrapedText(text)
			return false
		}
		return true
	})
	return lyrics
}

// normalizeScrapedText squares up raw page text: CR stripped, per-line
// whitespace trimmed, blank runs collapsed.
func normalizeScrapedText(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	return strings.TrimSpace(blankRunRegex.ReplaceAllString(text, "\n\n"))
}

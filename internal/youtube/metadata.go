package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// oembedEndpoint is the oEmbed API, which serves title and uploader for any
// public video without credentials.
const oembedEndpoint = "https://www.youtube.com/oembed"

// titleNoisePatterns are decorations uploaders append to video titles that
// carry no signal for a lyrics search.
var titleNoisePatterns = []string{
	`\(Official Video\)`,
	`\(Official Music Video\)`,
	`\(Official Audio\)`,
	`\(Official Visualizer\)`,
	`\(Lyric Video\)`,
	`\(Lyrics\)`,
	`\(Audio\)`,
	`\[Official Video\]`,
	`\[Official Music Video\]`,
	`\[Official Audio\]`,
	`\[Lyric Video\]`,
	`\[Lyrics\]`,
	`\(HD\)`,
	`\[HD\]`,
	`\(4K\)`,
	`\[4K\]`,
}

var (
	titleNoiseRegexes = compileNoisePatterns()
	camelCaseRegex    = regexp.MustCompile(`([a-z])([A-Z])`)
)

func compileNoisePatterns() []*regexp.Regexp {
	regexes := make([]*regexp.Regexp, 0, len(titleNoisePatterns))
	for _, pattern := range titleNoisePatterns {
		regexes = append(regexes, regexp.MustCompile(`(?i)`+pattern))
	}
	return regexes
}

type oembedResponse struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

// MetadataClient resolves a video's title and artist through the oEmbed API.
type MetadataClient struct {
	client   *http.Client
	endpoint string
	logger   *zap.Logger
}

// NewMetadataClient creates an oEmbed-backed metadata client.
func NewMetadataClient(logger *zap.Logger) *MetadataClient {
	return &MetadataClient{
		client:   &http.Client{Timeout: captionRequestTimeout},
		endpoint: oembedEndpoint,
		logger:   logger,
	}
}

// FetchTitleArtist returns the cleaned video title and a best-effort artist
// name. The artist may be empty when nothing in the title or channel name
// identifies one.
func (m *MetadataClient) FetchTitleArtist(ctx context.Context, videoID string) (string, string, error) {
	if videoID == "" {
		return "", "", errors.New("empty video ID")
	}

	videoURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
	reqURL := fmt.Sprintf("%s?url=%s&format=json", m.endpoint, url.QueryEscape(videoURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return "", "", err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("oEmbed API returned status %d", resp.StatusCode)
	}

	var oembedResp oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&oembedResp); err != nil {
		return "", "", fmt.Errorf("failed to decode oEmbed response: %w", err)
	}

	title, artist := parseTitleArtist(oembedResp.Title, oembedResp.AuthorName)
	m.logger.Debug("Resolved video metadata",
		zap.String("videoID", videoID),
		zap.String("title", title),
		zap.String("artist", artist),
	)
	return title, artist, nil
}

// parseTitleArtist derives a song title and artist from the raw video title
// and channel name. A leading "Artist - " segment moves out of the title so
// the two fields never duplicate each other.
func parseTitleArtist(rawTitle, authorName string) (title, artist string) {
	title = cleanTitle(rawTitle)
	artist = channelArtist(authorName)

	if !strings.Contains(title, " - ") {
		return title, artist
	}

	parts := strings.SplitN(title, " - ", 2)
	head := strings.TrimSpace(parts[0])
	rest := strings.TrimSpace(parts[1])
	if head == "" || rest == "" {
		return title, artist
	}

	if artist == "" {
		return rest, head
	}
	if strings.EqualFold(head, artist) {
		return rest, artist
	}
	return title, artist
}

// cleanTitle strips common video decorations from a title.
func cleanTitle(title string) string {
	cleaned := title
	for _, re := range titleNoiseRegexes {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	return strings.TrimSpace(cleaned)
}

// channelArtist recovers an artist name from official channel naming
// conventions. Returns "" for channels that look like ordinary uploaders.
func channelArtist(authorName string) string {
	// VEVO channels concatenate the artist name ("RickAstleyVEVO").
	if strings.HasSuffix(authorName, "VEVO") {
		return splitCamelCase(strings.TrimSuffix(authorName, "VEVO"))
	}
	// Auto-generated artist channels.
	if strings.HasSuffix(authorName, " - Topic") {
		return strings.TrimSuffix(authorName, " - Topic")
	}
	return ""
}

// splitCamelCase inserts spaces before interior capitals.
func splitCamelCase(s string) string {
	return camelCaseRegex.ReplaceAllString(s, "$1 $2")
}

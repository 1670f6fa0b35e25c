package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	// musicWatchEndpoint is the YouTube Music watch page base URL.
	musicWatchEndpoint = "https://music.youtube.com/watch?v="
	// tabStripSelector matches the UP NEXT / LYRICS / RELATED tab strip on
	// the watch page.
	tabStripSelector = `tp-yt-paper-tab`
	// lyricsShelfSelector matches the lyrics text inside the lyrics panel.
	// The footer with the source attribution sits outside this node.
	lyricsShelfSelector = `ytmusic-description-shelf-renderer yt-formatted-string.description`
	// minPageLyricsChars rejects shelf text too short to be a song.
	minPageLyricsChars = 50
)

// clickLyricsTabJS clicks the tab labelled "Lyrics" and reports whether one
// exists. The panel content only renders after the click.
const clickLyricsTabJS = `(() => {
	for (const tab of document.querySelectorAll('tp-yt-paper-tab')) {
		if (/lyrics/i.test(tab.innerText)) {
			tab.click();
			return true;
		}
	}
	return false;
})()`

// ErrNoPageLyrics reports a watch page without a usable lyrics panel.
var ErrNoPageLyrics = errors.New("watch page has no lyrics panel")

// FetchPageLyrics implements core.PageLyricsSource by opening the YouTube
// Music watch page and reading its lyrics tab.
func (s *Session) FetchPageLyrics(ctx context.Context, videoID string) (string, error) {
	if videoID == "" {
		return "", errors.New("empty video ID")
	}

	var clicked bool
	var text string
	err := s.run(ctx,
		chromedp.Navigate(musicWatchEndpoint+videoID),
		chromedp.WaitReady(tabStripSelector, chromedp.ByQuery),
		chromedp.Evaluate(clickLyricsTabJS, &clicked),
		chromedp.ActionFunc(func(context.Context) error {
			if !clicked {
				return ErrNoPageLyrics
			}
			return nil
		}),
		chromedp.WaitVisible(lyricsShelfSelector, chromedp.ByQuery),
		chromedp.Text(lyricsShelfSelector, &text, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("music page scrape failed: %w", err)
	}

	text = strings.TrimSpace(text)
	if len(text) < minPageLyricsChars {
		return "", ErrNoPageLyrics
	}

	s.logger.Debug("Lyrics read from music watch page",
		zap.String("videoID", videoID),
		zap.Int("chars", len(text)),
	)
	return text, nil
}

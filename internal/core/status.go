package core

import "fmt"

// Status lines shown to the user. The shell prints these verbatim, so the
// exact wording is observable behavior; change it deliberately or not at all.

// StatusMusicPageLyrics reports lyrics lifted straight off a YouTube Music page.
func StatusMusicPageLyrics() string {
	return "✅ Extracted lyrics from YouTube Music page"
}

// StatusCaptionsExtracted reports a successful caption fetch.
func StatusCaptionsExtracted(videoID string) string {
	return fmt.Sprintf("✅ Extracted captions from YouTube video: %s", videoID)
}

// StatusGeniusFound reports a Genius hit; Genius gets named in the line.
func StatusGeniusFound(what string) string {
	return fmt.Sprintf("✅ Found lyrics on Genius for: %s", what)
}

// StatusLyricsFound reports a hit from any other lyrics source.
func StatusLyricsFound(what string) string {
	return fmt.Sprintf("✅ Found lyrics for: %s", what)
}

// StatusPastedLyrics reports lyrics supplied directly by the user.
func StatusPastedLyrics() string {
	return "✅ Using pasted lyrics"
}

// StatusNoVideoID reports a recognized video URL without an extractable id.
func StatusNoVideoID() string {
	return "❌ Could not extract video ID from YouTube URL"
}

// StatusVideoNotFound reports a video that yielded neither captions nor lyrics.
func StatusVideoNotFound(videoID string) string {
	return fmt.Sprintf("❌ No captions or lyrics found for video %s", videoID)
}

// StatusNoTrackID reports a recognized track URL without an extractable id.
func StatusNoTrackID() string {
	return "❌ Could not extract track ID from Spotify URL"
}

// StatusTrackNoLyrics reports a resolved track whose lyrics search came up empty.
func StatusTrackNoLyrics(artist, title string) string {
	return fmt.Sprintf("❌ Found Spotify track '%s - %s' but couldn't find lyrics", artist, title)
}

// StatusSpotifyAuthRequired reports track metadata being out of reach.
func StatusSpotifyAuthRequired() string {
	return "❌ Spotify requires authentication. Please use 'Artist - Song Name' format instead."
}

// StatusQueryNotFound reports an exhausted free-text search.
func StatusQueryNotFound(query string) string {
	return fmt.Sprintf("❌ Could not find lyrics for '%s'. Try being more specific with 'Artist - Song Name' format.", query)
}

// StatusLookupFailed reports a terminal failure with its cause, for the one
// case where the last fallback died hard instead of merely missing.
func StatusLookupFailed(err error) string {
	return fmt.Sprintf("⚠️ Lyrics lookup failed: %v", err)
}

// statusForChainHit picks the success wording for a provider-chain hit.
func statusForChainHit(provider, what string) string {
	if provider == "genius" {
		return StatusGeniusFound(what)
	}
	return StatusLyricsFound(what)
}

package songref

import (
	"testing"
)

func TestClassify_VideoURLForms(t *testing.T) {
	// Every recognized URL form of the same video must extract the identical
	// identifier.
	const wantID = "dQw4w9WgXcQ"

	tests := []struct {
		name         string
		input        string
		wantPlatform string
	}{
		{
			name:         "Standard watch URL",
			input:        "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			wantPlatform: PlatformYouTube,
		},
		{
			name:         "Short link",
			input:        "https://youtu.be/dQw4w9WgXcQ",
			wantPlatform: PlatformYouTube,
		},
		{
			name:         "Embed URL",
			input:        "https://www.youtube.com/embed/dQw4w9WgXcQ",
			wantPlatform: PlatformYouTube,
		},
		{
			name:         "Music subdomain",
			input:        "https://music.youtube.com/watch?v=dQw4w9WgXcQ",
			wantPlatform: PlatformYouTubeMusic,
		},
		{
			name:         "Watch URL with extra params",
			input:        "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=30s",
			wantPlatform: PlatformYouTube,
		},
		{
			name:         "Short link with query",
			input:        "https://youtu.be/dQw4w9WgXcQ?si=abc123",
			wantPlatform: PlatformYouTube,
		},
		{
			name:         "Mobile host",
			input:        "https://m.youtube.com/watch?v=dQw4w9WgXcQ",
			wantPlatform: PlatformYouTube,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := Classify(tt.input)
			if ref.Kind != KindVideo {
				t.Fatalf("Classify() kind = %v, want %v", ref.Kind, KindVideo)
			}
			if ref.VideoID != wantID {
				t.Errorf("Classify() video ID = %q, want %q", ref.VideoID, wantID)
			}
			if ref.Platform != tt.wantPlatform {
				t.Errorf("Classify() platform = %q, want %q", ref.Platform, tt.wantPlatform)
			}
		})
	}
}

func TestClassify_VideoURLWithoutID(t *testing.T) {
	// A recognized video host without an extractable identifier keeps its
	// kind and signals absence through the empty ID.
	ref := Classify("https://www.youtube.com/feed/subscriptions")
	if ref.Kind != KindVideo {
		t.Fatalf("Classify() kind = %v, want %v", ref.Kind, KindVideo)
	}
	if ref.VideoID != "" {
		t.Errorf("Classify() video ID = %q, want empty", ref.VideoID)
	}
}

func TestClassify_TrackURLForms(t *testing.T) {
	const wantID = "4uLU6hMCjMI75M1A2tKUQC"

	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "Open spotify URL",
			input: "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:  "Track URL with share params",
			input: "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC?si=xyz",
		},
		{
			name:  "Spotify URI",
			input: "spotify:track:4uLU6hMCjMI75M1A2tKUQC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := Classify(tt.input)
			if ref.Kind != KindTrack {
				t.Fatalf("Classify() kind = %v, want %v", ref.Kind, KindTrack)
			}
			if ref.TrackID != wantID {
				t.Errorf("Classify() track ID = %q, want %q", ref.TrackID, wantID)
			}
			if ref.Platform != PlatformSpotify {
				t.Errorf("Classify() platform = %q, want %q", ref.Platform, PlatformSpotify)
			}
		})
	}
}

func TestClassify_FreeText(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantArtist string
		wantTitle  string
	}{
		{
			name:       "Artist and title",
			input:      "Pink Floyd - Time",
			wantArtist: "Pink Floyd",
			wantTitle:  "Time",
		},
		{
			name:       "Splits on first separator only",
			input:      "A - B - C",
			wantArtist: "A",
			wantTitle:  "B - C",
		},
		{
			name:       "No separator leaves artist empty",
			input:      "Bohemian Rhapsody",
			wantArtist: "",
			wantTitle:  "Bohemian Rhapsody",
		},
		{
			name:       "Hyphen without spaces does not split",
			input:      "Blink-182 All The Small Things",
			wantArtist: "",
			wantTitle:  "Blink-182 All The Small Things",
		},
		{
			name:       "Surrounding whitespace trimmed",
			input:      "  Daft Punk -  Around the World ",
			wantArtist: "Daft Punk",
			wantTitle:  "Around the World",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := Classify(tt.input)
			if ref.Kind != KindQuery {
				t.Fatalf("Classify() kind = %v, want %v", ref.Kind, KindQuery)
			}
			if ref.Artist != tt.wantArtist {
				t.Errorf("Classify() artist = %q, want %q", ref.Artist, tt.wantArtist)
			}
			if ref.Title != tt.wantTitle {
				t.Errorf("Classify() title = %q, want %q", ref.Title, tt.wantTitle)
			}
		})
	}
}

func TestClassify_EmptyInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "Empty string", input: ""},
		{name: "Whitespace only", input: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := Classify(tt.input)
			if ref.Kind != KindUnknown {
				t.Errorf("Classify() kind = %v, want %v", ref.Kind, KindUnknown)
			}
		})
	}
}

func TestExtractVideoID_QueryParameterFallback(t *testing.T) {
	// Reordered query parameters defeat the pattern match but not the
	// URL-parse fallback.
	got := ExtractVideoID("https://www.youtube.com/watch?app=desktop&v=dQw4w9WgXcQ")
	if got != "dQw4w9WgXcQ" {
		t.Errorf("ExtractVideoID() = %q, want %q", got, "dQw4w9WgXcQ")
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		expected string
	}{
		{name: "Video", kind: KindVideo, expected: "video"},
		{name: "Track", kind: KindTrack, expected: "track"},
		{name: "Query", kind: KindQuery, expected: "query"},
		{name: "Unknown", kind: KindUnknown, expected: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

package core

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Captions.Backend != "innertube" {
		t.Errorf("Captions.Backend = %q, want %q", cfg.Captions.Backend, "innertube")
	}
	if cfg.Captions.Language != "en" {
		t.Errorf("Captions.Language = %q, want %q", cfg.Captions.Language, "en")
	}
	if cfg.LLM.Provider != "none" {
		t.Errorf("LLM.Provider = %q, want %q", cfg.LLM.Provider, "none")
	}
	if cfg.Hardware.CPUPick != "second-smallest" {
		t.Errorf("Hardware.CPUPick = %q, want %q", cfg.Hardware.CPUPick, "second-smallest")
	}
	if cfg.Browser.Enabled {
		t.Error("Browser.Enabled = true, want false by default")
	}
	if cfg.Lyrics.MinLyricsChars != 200 {
		t.Errorf("Lyrics.MinLyricsChars = %d, want 200", cfg.Lyrics.MinLyricsChars)
	}

	wantProviders := []string{"genius", "azlyrics", "lrclib"}
	if len(cfg.Lyrics.Providers) != len(wantProviders) {
		t.Fatalf("Lyrics.Providers = %v, want %v", cfg.Lyrics.Providers, wantProviders)
	}
	for i, p := range wantProviders {
		if cfg.Lyrics.Providers[i] != p {
			t.Errorf("Lyrics.Providers[%d] = %q, want %q", i, cfg.Lyrics.Providers[i], p)
		}
	}
}

func TestConfig_StepTimeout(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.StepTimeout(); got != 12*time.Second {
		t.Errorf("StepTimeout() = %v, want %v", got, 12*time.Second)
	}

	cfg.App.StepTimeoutSecs = 15
	if got := cfg.StepTimeout(); got != 15*time.Second {
		t.Errorf("StepTimeout() = %v, want %v", got, 15*time.Second)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "unknown captions backend",
			mutate:  func(c *Config) { c.Captions.Backend = "scrape" },
			wantErr: true,
		},
		{
			name:    "ytdlp backend accepted",
			mutate:  func(c *Config) { c.Captions.Backend = "ytdlp" },
			wantErr: false,
		},
		{
			name:    "unknown lyrics provider",
			mutate:  func(c *Config) { c.Lyrics.Providers = []string{"genius", "musixmatch"} },
			wantErr: true,
		},
		{
			name:    "unknown llm provider",
			mutate:  func(c *Config) { c.LLM.Provider = "bard" },
			wantErr: true,
		},
		{
			name:    "remote llm provider without key",
			mutate:  func(c *Config) { c.LLM.Provider = "groq" },
			wantErr: true,
		},
		{
			name: "remote llm provider with key",
			mutate: func(c *Config) {
				c.LLM.Provider = "groq"
				c.LLM.APIKey = "gsk_test"
			},
			wantErr: false,
		},
		{
			name:    "ollama needs no key",
			mutate:  func(c *Config) { c.LLM.Provider = "ollama" },
			wantErr: false,
		},
		{
			name:    "unknown cpu pick",
			mutate:  func(c *Config) { c.Hardware.CPUPick = "median" },
			wantErr: true,
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "zero step timeout",
			mutate:  func(c *Config) { c.App.StepTimeoutSecs = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

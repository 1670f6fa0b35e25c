package core

import (
	"fmt"
	"time"
)

type Config struct {
	App      AppConfig
	Captions CaptionsConfig
	Lyrics   LyricsConfig
	Spotify  SpotifyConfig
	Browser  BrowserConfig
	LLM      LLMConfig
	Hardware HardwareConfig
	Server   ServerConfig
	Log      LogConfig
}

type AppConfig struct {
	StepTimeoutSecs int
	Interpret       bool
}

type CaptionsConfig struct {
	Backend  string
	Language string
}

type LyricsConfig struct {
	Providers      []string
	GeniusToken    string
	MinLyricsChars int
	ThrottlePerMin int
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
}

type BrowserConfig struct {
	Enabled   bool
	Headless  bool
	NoSandbox bool
}

type LLMConfig struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	MaxChars int
}

type HardwareConfig struct {
	CPUPick string
}

type ServerConfig struct {
	Enabled      bool
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			StepTimeoutSecs: 12,
			Interpret:       true,
		},
		Captions: CaptionsConfig{
			Backend:  "innertube",
			Language: "en",
		},
		Lyrics: LyricsConfig{
			Providers:      []string{"genius", "azlyrics", "lrclib"},
			MinLyricsChars: 200,
			ThrottlePerMin: 20,
		},
		Browser: BrowserConfig{
			Enabled:  false,
			Headless: true,
		},
		LLM: LLMConfig{
			Provider: "none",
			Model:    "",
			MaxChars: 0,
		},
		Hardware: HardwareConfig{
			CPUPick: "second-smallest",
		},
		Server: ServerConfig{
			Enabled:      true,
			Host:         "127.0.0.1",
			Port:         9836,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// StepTimeout is the per-fallback-step budget derived from config.
func (c *Config) StepTimeout() time.Duration {
	return time.Duration(c.App.StepTimeoutSecs) * time.Second
}

// remoteLLMProviders are the providers that need an API key up front.
var remoteLLMProviders = map[string]bool{
	"groq":      true,
	"openai":    true,
	"anthropic": true,
}

var knownLyricsProviders = map[string]bool{
	"genius":         true,
	"azlyrics":       true,
	"lrclib":         true,
	"youtube-search": true,
}

// Validate rejects configurations that would only fail mid-flight. Called
// once at startup so a bad provider name or missing key never reaches a
// resolve.
func (c *Config) Validate() error {
	if c.App.StepTimeoutSecs < 1 {
		return fmt.Errorf("step timeout must be at least 1 second, got %d", c.App.StepTimeoutSecs)
	}

	switch c.Captions.Backend {
	case "innertube", "ytdlp":
	default:
		return fmt.Errorf("unknown captions backend: %s", c.Captions.Backend)
	}

	for _, name := range c.Lyrics.Providers {
		if !knownLyricsProviders[name] {
			return fmt.Errorf("unknown lyrics provider: %s", name)
		}
	}

	switch c.LLM.Provider {
	case "groq", "openai", "anthropic", "ollama", "none", "":
	default:
		return fmt.Errorf("unknown LLM provider: %s", c.LLM.Provider)
	}
	if remoteLLMProviders[c.LLM.Provider] && c.LLM.APIKey == "" {
		return fmt.Errorf("LLM provider %s requires an API key", c.LLM.Provider)
	}

	switch c.Hardware.CPUPick {
	case "smallest", "second-smallest", "largest":
	default:
		return fmt.Errorf("unknown hardware CPU pick: %s", c.Hardware.CPUPick)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	return nil
}

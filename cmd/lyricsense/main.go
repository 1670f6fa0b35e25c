// Package main provides the LyricSense CLI application entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"lyricsense/internal/browser"
	"lyricsense/internal/core"
	"lyricsense/internal/hardware"
	httpserver "lyricsense/internal/http"
	"lyricsense/internal/llm"
	"lyricsense/internal/lyrics"
	"lyricsense/internal/shell"
	"lyricsense/internal/spotify"
	"lyricsense/internal/throttle"
	"lyricsense/internal/youtube"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lyricsense [song or URL]",
	Short: "LyricSense - song lyrics and what they mean",
	Long: `LyricSense finds song lyrics from YouTube captions, YouTube Music pages, and
lyrics sites, then explains them through a configurable LLM backend. Run it
with no arguments for an interactive shell, or pass one song reference for a
single lookup.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runLyricSense,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var hardwareCmd = &cobra.Command{
	Use:   "hardware",
	Short: "Show this machine's profile and a local model recommendation",
	Run: func(_ *cobra.Command, _ []string) {
		hardware.WriteReport(os.Stdout, hardware.Detect(logger), hardware.PolicyFromConfig(&config.Hardware))
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(hardwareCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (json, console)")
	rootCmd.PersistentFlags().Int("step-timeout-secs", 12, "Per-step resolution timeout in seconds")
	rootCmd.PersistentFlags().Bool("no-interpret", false, "Stop after acquisition, skip interpretation")
	rootCmd.PersistentFlags().String("captions-backend", "innertube", "Caption backend (innertube, ytdlp)")
	rootCmd.PersistentFlags().String("captions-language", "en", "Preferred caption language code")
	rootCmd.PersistentFlags().StringSlice("lyrics-providers", []string{"genius", "azlyrics", "lrclib"}, "Lyrics provider order")
	rootCmd.PersistentFlags().String("genius-token", "", "Genius API access token")
	rootCmd.PersistentFlags().Int("lyrics-min-chars", 200, "Minimum characters for scraped lyrics to count")
	rootCmd.PersistentFlags().Int("throttle-per-minute", 20, "Maximum requests per minute per lyrics site")
	rootCmd.PersistentFlags().String("spotify-client-id", "", "Spotify client ID")
	rootCmd.PersistentFlags().String("spotify-client-secret", "", "Spotify client secret")
	rootCmd.PersistentFlags().Bool("browser-enabled", false, "Enable browser automation for YouTube Music pages")
	rootCmd.PersistentFlags().Bool("browser-headless", true, "Run the browser headless")
	rootCmd.PersistentFlags().Bool("browser-no-sandbox", false, "Disable the browser sandbox (containers)")
	rootCmd.PersistentFlags().String("llm-provider", "none", "LLM provider (groq, openai, anthropic, ollama, none)")
	rootCmd.PersistentFlags().String("llm-model", "", "LLM model name")
	rootCmd.PersistentFlags().String("llm-api-key", "", "LLM API key")
	rootCmd.PersistentFlags().String("llm-base-url", "", "LLM base URL override")
	rootCmd.PersistentFlags().Int("llm-max-chars", 0, "Lyrics character budget for prompts (0 uses the provider default)")
	rootCmd.PersistentFlags().String("hardware-cpu-pick", "second-smallest", "CPU model pick (smallest, second-smallest, largest)")
	rootCmd.PersistentFlags().Bool("server-enabled", true, "Serve health and metrics endpoints while the shell runs")
	rootCmd.PersistentFlags().String("server-host", "127.0.0.1", "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", 9836, "HTTP server port")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	// Load .env file explicitly using gotenv
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		// Don't exit if .env file doesn't exist, just warn
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix("LYRICSENSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(&config.Log)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureApp(cfg)
	configureCaptions(cfg)
	configureLyrics(cfg)
	configureSpotify(cfg)
	configureBrowser(cfg)
	configureLLM(cfg)
	configureHardware(cfg)
	configureServer(cfg)

	return cfg
}

func configureApp(cfg *core.Config) {
	if secs := viper.GetInt("step-timeout-secs"); secs > 0 {
		cfg.App.StepTimeoutSecs = secs
	}
	cfg.App.Interpret = !viper.GetBool("no-interpret")
}

func configureCaptions(cfg *core.Config) {
	if backend := viper.GetString("captions-backend"); backend != "" {
		cfg.Captions.Backend = backend
	}
	if language := viper.GetString("captions-language"); language != "" {
		cfg.Captions.Language = language
	}
}

func configureLyrics(cfg *core.Config) {
	if providers := viper.GetStringSlice("lyrics-providers"); len(providers) > 0 {
		cfg.Lyrics.Providers = providers
	}
	cfg.Lyrics.GeniusToken = viper.GetString("genius-token")
	if cfg.Lyrics.GeniusToken == "" {
		cfg.Lyrics.GeniusToken = os.Getenv("GENIUS_ACCESS_TOKEN")
	}
	if minChars := viper.GetInt("lyrics-min-chars"); minChars > 0 {
		cfg.Lyrics.MinLyricsChars = minChars
	}
	cfg.Lyrics.ThrottlePerMin = viper.GetInt("throttle-per-minute")
}

func configureSpotify(cfg *core.Config) {
	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")
}

func configureBrowser(cfg *core.Config) {
	cfg.Browser.Enabled = viper.GetBool("browser-enabled")
	cfg.Browser.Headless = viper.GetBool("browser-headless")
	cfg.Browser.NoSandbox = viper.GetBool("browser-no-sandbox")
}

func configureLLM(cfg *core.Config) {
	cfg.LLM.Provider = viper.GetString("llm-provider")
	cfg.LLM.Model = viper.GetString("llm-model")
	cfg.LLM.APIKey = viper.GetString("llm-api-key")
	cfg.LLM.BaseURL = viper.GetString("llm-base-url")
	cfg.LLM.MaxChars = viper.GetInt("llm-max-chars")

	// Fall back to the keys the provider SDKs conventionally read.
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "groq":
			cfg.LLM.APIKey = os.Getenv("GROQ_API_KEY")
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
}

func configureHardware(cfg *core.Config) {
	if pick := viper.GetString("hardware-cpu-pick"); pick != "" {
		cfg.Hardware.CPUPick = pick
	}
}

func configureServer(cfg *core.Config) {
	cfg.Server.Enabled = viper.GetBool("server-enabled")
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	cfg.Server.Port = viper.GetInt("server-port")
	cfg.Log.Level = viper.GetString("log-level")
	cfg.Log.Format = viper.GetString("log-format")
}

func buildLogger(config *core.LogConfig) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(config.Level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if strings.ToLower(config.Format) == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runLyricSense(_ *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := config.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logger.Info("Starting LyricSense",
		zap.String("llm_provider", config.LLM.Provider),
		zap.String("captions_backend", config.Captions.Backend),
		zap.Strings("lyrics_providers", config.Lyrics.Providers),
		zap.Bool("browser_enabled", config.Browser.Enabled))

	oneShot := len(args) == 1

	svcs, err := initializeServices(ctx, oneShot)
	if err != nil {
		return err
	}
	defer svcs.close()

	if oneShot {
		return svcs.shell.RunOnce(ctx, args[0])
	}
	return runServices(ctx, svcs)
}

type services struct {
	session    *browser.Session
	httpServer *httpserver.Server
	shell      *shell.Shell
}

func (s *services) close() {
	if s.session != nil {
		s.session.Close()
	}
}

func initializeServices(ctx context.Context, oneShot bool) (*services, error) {
	captions := createCaptionSource()
	metadata := youtube.NewMetadataClient(logger.Named("metadata"))
	tracks := spotify.NewClient(ctx, &config.Spotify, logger.Named("spotify"))

	var (
		session *browser.Session
		page    core.PageLyricsSource
		videos  lyrics.VideoSearcher
	)
	if config.Browser.Enabled {
		session = browser.NewSession(&config.Browser, logger.Named("browser"))
		page = session
		videos = session
	}

	// The metrics server only makes sense alongside the long-running shell.
	var (
		httpServer *httpserver.Server
		metrics    core.MetricsRecorder
	)
	if !oneShot && config.Server.Enabled {
		httpServer = httpserver.NewServer(&config.Server, logger.Named("http"))
		metrics = httpServer
	}

	limiter := throttle.New(config.Lyrics.ThrottlePerMin)
	chain, err := lyrics.BuildChain(config, videos, captions, limiter, metrics, logger.Named("lyrics"))
	if err != nil {
		return nil, err
	}

	interpreter, err := llm.NewProvider(&config.LLM, logger.Named("llm"))
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	resolver := core.NewResolver(config, captions, metadata, tracks, page, chain, metrics,
		logger.Named("resolver"))
	sh := shell.New(resolver, interpreter, metrics, config, os.Stdin, os.Stdout, logger.Named("shell"))

	return &services{
		session:    session,
		httpServer: httpServer,
		shell:      sh,
	}, nil
}

func createCaptionSource() core.CaptionSource {
	if config.Captions.Backend == "ytdlp" {
		return youtube.NewYtdlpCaptionSource(&config.Captions, logger.Named("captions"))
	}
	return youtube.NewCaptionClient(&config.Captions, logger.Named("captions"))
}

func runServices(ctx context.Context, svcs *services) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	if svcs.httpServer != nil {
		g.Go(func() error {
			return svcs.httpServer.Start(gCtx)
		})
		logger.Info("Metrics server listening",
			zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))
	}

	g.Go(func() error {
		// Quitting the shell takes the server down with it.
		defer cancel()
		return svcs.shell.Run(gCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("LyricSense stopped with error", zap.Error(err))
		return err
	}

	logger.Info("LyricSense stopped gracefully")
	return nil
}

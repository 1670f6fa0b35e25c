package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"lyricsense/internal/core"
)

// Server exposes health probes and Prometheus metrics for the resolver. It
// implements core.MetricsRecorder over a private registry, so constructing
// more than one server never collides on metric names.
type Server struct {
	config  *core.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	metrics *Metrics
}

type Metrics struct {
	ResolvesTotal    *prometheus.CounterVec
	ProviderAttempts *prometheus.CounterVec
	Interpretations  *prometheus.CounterVec
	ResolveDuration  *prometheus.HistogramVec
	ActiveResolves   prometheus.Gauge
}

func newMetrics(registry *prometheus.Registry) *Metrics {
	metrics := &Metrics{
		ResolvesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lyricsense_resolves_total",
				Help: "Total number of resolution passes",
			},
			[]string{"source", "outcome"},
		),
		ProviderAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lyricsense_provider_attempts_total",
				Help: "Total number of lyrics provider attempts",
			},
			[]string{"provider", "status"},
		),
		Interpretations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lyricsense_interpretations_total",
				Help: "Total number of interpretation calls",
			},
			[]string{"provider", "status"},
		),
		ResolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lyricsense_resolve_duration_seconds",
				Help:    "Time spent resolving one input line",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		ActiveResolves: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lyricsense_active_resolves",
				Help: "Number of resolution passes in flight",
			},
		),
	}

	registry.MustRegister(
		metrics.ResolvesTotal,
		metrics.ProviderAttempts,
		metrics.Interpretations,
		metrics.ResolveDuration,
		metrics.ActiveResolves,
	)

	return metrics
}

func setupRoutes(registry *prometheus.Registry, logger *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok","service":"lyricsense"}`)); err != nil {
			logger.Debug("Failed to write health response", zap.Error(err))
		}
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ready","service":"lyricsense"}`)); err != nil {
			logger.Debug("Failed to write ready response", zap.Error(err))
		}
	})

	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/", homeHandler(logger))

	return mux
}

func homeHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>LyricSense</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .header { color: #333; }
        .endpoint { margin: 10px 0; }
        .endpoint a { text-decoration: none; color: #0066cc; }
        .endpoint a:hover { text-decoration: underline; }
    </style>
</head>
<body>
    <h1 class="header">🎤 LyricSense</h1>
    <p>Song Lyrics Resolver and Interpreter</p>

    <h2>Endpoints</h2>
    <div class="endpoint">📊 <a href="/metrics">Metrics</a> - Prometheus metrics</div>
    <div class="endpoint">💚 <a href="/healthz">Health</a> - Health check</div>
    <div class="endpoint">✅ <a href="/readyz">Ready</a> - Readiness check</div>

    <h2>Status</h2>
    <p>Service is running and ready to resolve lyrics.</p>
</body>
</html>`)); err != nil {
			logger.Debug("Failed to write index page", zap.Error(err))
		}
	}
}

func createHTTPServer(config *core.ServerConfig, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}

func NewServer(config *core.ServerConfig, logger *zap.Logger) *Server {
	registry := prometheus.NewRegistry()
	metrics := newMetrics(registry)
	mux := setupRoutes(registry, logger)

	return &Server{
		config:  config,
		logger:  logger,
		server:  createHTTPServer(config, mux),
		metrics: metrics,
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) ResolveStarted() {
	s.metrics.ActiveResolves.Inc()
}

func (s *Server) ResolveFinished() {
	s.metrics.ActiveResolves.Dec()
}

func (s *Server) RecordResolve(source string, outcome core.Outcome, duration time.Duration) {
	// Exhausted passes carry no source tag.
	if source == "" {
		source = "none"
	}
	s.metrics.ResolvesTotal.WithLabelValues(source, outcome.String()).Inc()
	s.metrics.ResolveDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func (s *Server) RecordProviderAttempt(provider, disposition string) {
	s.metrics.ProviderAttempts.WithLabelValues(provider, disposition).Inc()
}

func (s *Server) RecordInterpretation(provider, disposition string) {
	s.metrics.Interpretations.WithLabelValues(provider, disposition).Inc()
}

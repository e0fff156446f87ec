// Package devserver implements a local stand-in for the password analysis
// service, used for development and end-to-end tests.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/verte-zerg/passintel/internal/generator"
	"github.com/verte-zerg/passintel/internal/model"
	"github.com/verte-zerg/passintel/internal/scoring"
	"github.com/verte-zerg/passintel/internal/store"
)

const (
	// DefaultAddr is where the service listens unless configured otherwise.
	DefaultAddr = "127.0.0.1:8000"
	// DefaultRate is the sustained /analyze rate in requests per second.
	DefaultRate = 5.0
	// DefaultBurst is the /analyze burst size.
	DefaultBurst = 10

	shutdownTimeout = 5 * time.Second
)

// Recorder persists and lists analyses.
type Recorder interface {
	InsertAnalysis(ctx context.Context, a store.Analysis) (int64, error)
	ListAnalyses(ctx context.Context, q model.HistoryQuery) (model.HistoryPage, error)
}

// Config controls the stand-in service.
type Config struct {
	Addr       string
	DBPath     string
	BreachFile string
	// Rate is the /analyze limit in requests per second; zero disables limiting.
	Rate  float64
	Burst int
}

// Deps are the collaborators of a Server.
type Deps struct {
	Store     Recorder
	Breaches  *scoring.BreachList
	Generator *generator.Generator
	Registry  *prometheus.Registry
	Logger    *slog.Logger
}

// Server serves the analysis API.
type Server struct {
	store     Recorder
	breaches  *scoring.BreachList
	generator *generator.Generator
	registry  *prometheus.Registry
	metrics   *Collector
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// New builds a Server. Missing optional dependencies get defaults.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("devserver: store is required")
	}
	if deps.Breaches == nil {
		deps.Breaches = scoring.NewBreachList(nil)
	}
	if deps.Generator == nil {
		deps.Generator = generator.New()
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &Server{
		store:     deps.Store,
		breaches:  deps.Breaches,
		generator: deps.Generator,
		registry:  deps.Registry,
		metrics:   NewCollector(deps.Registry),
		limiter:   rate.NewLimiter(limit, burst),
		logger:    deps.Logger,
	}, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.observe)

	r.Get("/", s.handleHealth)
	r.With(limitMiddleware(s.limiter, s.metrics)).Post("/analyze", s.handleAnalyze)
	r.Get("/history", s.handleHistory)
	r.Method(http.MethodGet, "/metrics", MetricsHandler(s.registry))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}

// observe logs and counts every response. Request bodies are never logged.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(started)
		s.metrics.RecordRequest(route, ww.Status(), elapsed)
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("route", route),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", elapsed),
			slog.String("request_id", r.Header.Get("X-Request-ID")),
		)
	})
}

// Serve runs the HTTP server on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("devserver listening", slog.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("devserver shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Run opens the configured database and breach list and serves until ctx is done.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("failed to close store", slog.Any("error", cerr))
		}
	}()
	breaches, err := scoring.LoadBreachList(cfg.BreachFile)
	if err != nil {
		return fmt.Errorf("failed to load breach list: %w", err)
	}
	srv, err := New(cfg, Deps{Store: st, Breaches: breaches, Logger: logger})
	if err != nil {
		return err
	}
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return srv.Serve(ctx, ln)
}

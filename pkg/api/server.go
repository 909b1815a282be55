package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/hybridnet/pkg/observability"
	"github.com/matzehuels/hybridnet/pkg/pipeline"
	"github.com/matzehuels/hybridnet/pkg/store"
)

// Defaults for [Config].
const (
	DefaultTimeout = 10 * time.Minute
	DefaultMaxJobs = 4
)

// Config configures a [Server].
type Config struct {
	Runner *pipeline.Runner
	Store  store.Store
	Logger *log.Logger

	// Gatherer backs /metrics. Nil uses prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Timeout bounds a single search.
	Timeout time.Duration

	// MaxJobs bounds the number of searches running at once.
	MaxJobs int

	// JobTTL is how long finished jobs are kept.
	JobTTL time.Duration
}

// Server is the HTTP API. It owns the background jobs it starts.
type Server struct {
	cfg    Config
	logger *log.Logger
	slots  chan struct{}

	// ctx is cancelled by Shutdown to stop background jobs.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a server.
func New(cfg Config) *Server {
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = DefaultMaxJobs
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		slots:  make(chan struct{}, cfg.MaxJobs),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Handler returns the router of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/solve", s.handleSolve)
		r.Route("/results/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetResult)
			r.Delete("/", s.handleDeleteResult)
			r.Get("/networks/{index}/{format}", s.handleNetwork)
		})
	})
	return r
}

// Shutdown cancels running jobs and waits for them to record their outcome
// or for ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// observe reports every request to the HTTP hooks and logs it.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, ww.Status(), time.Since(start))

		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}

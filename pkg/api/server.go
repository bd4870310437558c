package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/observability"
	"github.com/matzehuels/dendro/pkg/pipeline"
	"github.com/matzehuels/dendro/pkg/registry"
)

const (
	// DefaultMaxBody bounds request bodies when Options.MaxBody is unset.
	DefaultMaxBody = 16 << 20

	shutdownTimeout = 10 * time.Second
	cleanupInterval = time.Minute
)

// Options configures a Server.
type Options struct {
	Runner   *pipeline.Runner
	Registry *registry.Registry
	Logger   *log.Logger

	// Metrics records per-route request counts and latency. Nil disables it.
	Metrics *observability.PrometheusHooks
	// Gatherer backs GET /metrics. Nil selects the default registry.
	Gatherer prometheus.Gatherer

	// MaxBody bounds request bodies in bytes.
	MaxBody int64
	// Defaults fills unset request options before validation, typically
	// from the config file.
	Defaults func(*pipeline.Options)
}

// Server is the dendro HTTP API.
type Server struct {
	runner   *pipeline.Runner
	registry *registry.Registry
	logger   *log.Logger
	metrics  *observability.PrometheusHooks
	maxBody  int64
	defaults func(*pipeline.Options)
	router   chi.Router
}

// New builds a server. A nil Runner or Registry is replaced by an uncached
// runner and an empty registry.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Registry == nil {
		opts.Registry = registry.New(registry.Options{})
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = DefaultMaxBody
	}
	s := &Server{
		runner:   opts.Runner,
		registry: opts.Registry,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		maxBody:  opts.MaxBody,
		defaults: opts.Defaults,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/cluster", s.handleCluster)
		r.Post("/render", s.handleRender)
		r.Route("/widgets", func(r chi.Router) {
			r.Post("/", s.handleCreateWidget)
			r.Get("/{id}", s.handleGetWidget)
			r.Delete("/{id}", s.handleDestroyWidget)
			r.Post("/{id}/click", s.handleClick)
			r.Post("/{id}/select", s.handleSelect)
		})
	})
	s.router = r
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully. Expired widgets are swept while the server runs.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go s.registry.Run(ctx, cleanupInterval)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// observe logs each request and records it under its route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		if s.metrics != nil {
			s.metrics.ObserveRequest(route, r.Method, status, elapsed)
		}
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// decode reads a JSON body into v, rejecting unknown fields and bodies over
// the size limit.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		if stderrors.Is(err, io.EOF) {
			return errors.New(errors.ErrCodeInvalidInput, "request body is empty")
		}
		return errors.Wrap(errors.ErrCodeParse, err, "decode request")
	}
	return nil
}

// options decodes pipeline options from the body and applies the server
// defaults. Only inline data is accepted.
func (s *Server) options(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	var opts pipeline.Options
	if err := s.decode(w, r, &opts); err != nil {
		return opts, err
	}
	if opts.Source != "" {
		return opts, errors.New(errors.ErrCodeInvalidInput, "source is not accepted over HTTP; send dataset or result inline")
	}
	if opts.Dataset == nil && opts.Result == nil {
		return opts, errors.New(errors.ErrCodeInvalidInput, "one of dataset or result is required")
	}
	requested := len(opts.Formats) > 0
	if s.defaults != nil {
		s.defaults(&opts)
	}
	if !requested {
		opts.Formats = []string{pipeline.FormatSVG}
	}
	opts.Logger = s.logger
	return opts, nil
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/umputun/venuescope/pkg/bulk"
	"github.com/umputun/venuescope/pkg/cache"
	"github.com/umputun/venuescope/pkg/domain"
	"github.com/umputun/venuescope/pkg/fetch"
	"github.com/umputun/venuescope/pkg/parser"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/parser.go -pkg mocks -skip-ensure -fmt goimports . Parser
//go:generate moq -out mocks/analyzer.go -pkg mocks -skip-ensure -fmt goimports . Analyzer
//go:generate moq -out mocks/batch.go -pkg mocks -skip-ensure -fmt goimports . BatchRunner
//go:generate moq -out mocks/run_store.go -pkg mocks -skip-ensure -fmt goimports . RunStore
//go:generate moq -out mocks/gateway.go -pkg mocks -skip-ensure -fmt goimports . Gateway

// Server represents HTTP server instance
type Server struct {
	config   ConfigProvider
	parser   Parser
	analyzer Analyzer
	batch    BatchRunner
	runs     RunStore
	gateway  Gateway
	registry *prometheus.Registry
	version  string
	debug    bool

	runCtx      context.Context // batch runs outlive the request that started them
	batchActive atomic.Bool
	batchWG     sync.WaitGroup

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Deps are the services the server exposes
type Deps struct {
	Config     ConfigProvider
	Parser     Parser
	Analyzer   Analyzer
	Batch      BatchRunner
	Runs       RunStore
	Gateway    Gateway
	Collectors []prometheus.Collector
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// Parser parses venues adaptively
type Parser interface {
	ParseVenue(ctx context.Context, url string) (domain.Outcome, error)
	ParseWithStrategy(ctx context.Context, url string, name domain.Strategy) (domain.Outcome, error)
	ParseBatch(ctx context.Context, urls []string, opts parser.BatchOptions) ([]domain.Outcome, error)
	LearningStats() map[string]parser.LearningSummary
	CacheStats() cache.Stats
	ClearCache()
}

// Analyzer fetches and analyzes a page
type Analyzer interface {
	AnalyzeURL(ctx context.Context, url string) (*domain.Analysis, error)
}

// BatchRunner runs bulk parsing, one run at a time
type BatchRunner interface {
	Run(ctx context.Context, urls []string, opts bulk.Options) (*domain.Report, error)
	Stop()
	Status() bulk.Status
}

// RunStore keeps finished run reports
type RunStore interface {
	SaveRun(ctx context.Context, report *domain.Report) error
	GetRun(ctx context.Context, id string) (*domain.Report, error)
	ListRuns(ctx context.Context, limit int) ([]domain.RunInfo, error)
}

// Gateway reports proxy rotation tallies
type Gateway interface {
	Stats() fetch.Stats
	ResetStats()
}

// New initializes a new server instance
func New(deps Deps, version string, debug bool) *Server {
	s := &Server{
		config:   deps.Config,
		parser:   deps.Parser,
		analyzer: deps.Analyzer,
		batch:    deps.Batch,
		runs:     deps.Runs,
		gateway:  deps.Gateway,
		registry: prometheus.NewRegistry(),
		version:  version,
		debug:    debug,
		runCtx:   context.Background(),
		router:   routegroup.New(http.NewServeMux()),
	}

	s.registry.MustRegister(collectors.NewGoCollector())
	for _, c := range deps.Collectors {
		if err := s.registry.Register(c); err != nil {
			lgr.Printf("[WARN] can't register metrics collector: %v", err)
		}
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown. Batch runs started through
// the server are stopped when ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	lgr.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.runCtx = ctx
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		WriteTimeout:      2 * timeout, // parse requests fetch remote pages
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	s.batchWG.Wait()
	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("venuescope", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("POST /parse", s.parseHandler)
		r.HandleFunc("POST /analyze", s.analyzeHandler)
		r.HandleFunc("POST /cache/clear", s.clearCacheHandler)
		r.HandleFunc("GET /learning", s.learningHandler)
		r.HandleFunc("GET /gateway", s.gatewayHandler)
		r.HandleFunc("POST /gateway/reset", s.gatewayResetHandler)

		r.HandleFunc("POST /batch", s.startBatchHandler)
		r.HandleFunc("GET /batch", s.batchStatusHandler)
		r.HandleFunc("POST /batch/stop", s.stopBatchHandler)
		r.HandleFunc("GET /runs", s.listRunsHandler)
		r.HandleFunc("GET /runs/{id}", s.getRunHandler)
		r.HandleFunc("GET /runs/{id}/export", s.exportRunHandler)
	})

	s.router.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}

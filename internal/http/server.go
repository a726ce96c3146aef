// Package http serves the kaamgarau JSON API: public level tables, the
// caller's level, stats and spending analytics, and job recording.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"kaamgarau/internal/auth"
	"kaamgarau/internal/cache"
	"kaamgarau/internal/core"
	"kaamgarau/internal/log"
	"kaamgarau/internal/metrics"
	"kaamgarau/internal/middleware/ratelimit"
	"kaamgarau/internal/middleware/security"
	"kaamgarau/internal/middleware/trace"
	"kaamgarau/internal/ports"
	"kaamgarau/internal/services"
)

const (
	requestTimeout       = 7 * time.Second
	readyTimeout         = 5 * time.Second
	cacheCleanupInterval = 10 * time.Minute
)

// Config holds the transport settings.
type Config struct {
	Addr               string
	RateLimitPerMinute int
	TrustedProxies     []string
}

// Deps are the services the handlers call. Checks are probed by /readyz.
type Deps struct {
	Dashboard *services.DashboardService
	Jobs      *services.JobService
	Auth      auth.TokenValidator
	Metrics   *metrics.Manager
	Logger    *log.Logger
	Checks    map[string]ports.Pinger
}

type Server struct {
	http.Server

	dashboard *services.DashboardService
	jobs      *services.JobService
	metrics   *metrics.Manager
	logger    *log.Logger
	checks    map[string]ports.Pinger
	validate  *validator.Validate

	detector     *security.Detector
	rateLimiter  *ratelimit.Limiter
	tracer       *trace.Middleware
	cacheManager *cache.Manager

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware. The returned server owns a rate
// limiter and a cache cleanup goroutine; Shutdown stops both.
func NewServer(cfg Config, deps Deps) (*Server, error) {
	if deps.Dashboard == nil || deps.Jobs == nil || deps.Auth == nil {
		return nil, errors.New("http: dashboard, jobs and auth are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	detector, err := security.NewDetector(cfg.TrustedProxies...)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	s := &Server{
		Server: http.Server{
			Addr:              cfg.Addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		dashboard: deps.Dashboard,
		jobs:      deps.Jobs,
		metrics:   deps.Metrics,
		logger:    logger.WithComponent(log.ComponentHTTP),
		checks:    deps.Checks,
		validate:  newValidator(),
		detector:  detector,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
			Methods:           []string{http.MethodPost},
		}),
		cacheManager: cache.NewManager(),
		startedAt:    time.Now(),
	}

	if c := deps.Dashboard.Cache(); c != nil {
		s.cacheManager.Register(c)
	}
	s.cacheManager.StartCleanup(cacheCleanupInterval)

	mux := http.NewServeMux()
	s.routes(mux, deps.Auth)

	s.tracer = trace.NewMiddleware(logger, detector.ExtractClientIP,
		trace.WithPrometheus(deps.Metrics),
		trace.WithRoute(func(r *http.Request) string {
			if _, pattern := mux.Handler(r); pattern != "" {
				return pattern
			}
			return "unmatched"
		}),
	)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(detector.ExtractClientIP, nil)(handler)
	handler = detector.Middleware(logger)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)
	s.Handler = handler

	return s, nil
}

func (s *Server) routes(mux *http.ServeMux, tokens auth.TokenValidator) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("GET /api/v1/levels", s.handleLevels)
	mux.HandleFunc("GET /api/v1/levels/lookup", s.handleLevelLookup)
	mux.HandleFunc("GET /api/v1/analytics/options", s.handleAnalyticsOptions)

	authed := auth.Middleware(tokens)
	freelancer := func(h http.HandlerFunc) http.Handler {
		return authed(auth.RequireRole(core.RoleFreelancer)(h))
	}
	client := func(h http.HandlerFunc) http.Handler {
		return authed(auth.RequireRole(core.RoleClient)(h))
	}

	mux.Handle("GET /api/v1/me/level", authed(http.HandlerFunc(s.handleMyLevel)))
	mux.Handle("GET /api/v1/me/level/history", authed(http.HandlerFunc(s.handleMyLevelHistory)))
	mux.Handle("GET /api/v1/me/stats", authed(http.HandlerFunc(s.handleMyStats)))
	mux.Handle("GET /api/v1/me/analytics", authed(http.HandlerFunc(s.handleMyAnalytics)))
	mux.Handle("GET /api/v1/me/overview", authed(http.HandlerFunc(s.handleMyOverview)))

	mux.Handle("POST /api/v1/me/jobs/completed", freelancer(s.handleRecordCompletedJob))
	mux.Handle("POST /api/v1/me/jobs/posted", client(s.handleRecordPostedJob))
	mux.Handle("POST /api/v1/me/spending", client(s.handleRecordSpending))
}

// Shutdown stops background goroutines and then the HTTP server. Only the
// first call has any effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

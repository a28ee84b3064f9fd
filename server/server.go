package server

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/seo-optimizer/reportview/config"
	"github.com/seo-optimizer/reportview/metrics"
	"github.com/seo-optimizer/reportview/middleware"
	"github.com/seo-optimizer/reportview/report"
	"github.com/seo-optimizer/reportview/stats"
	"github.com/seo-optimizer/reportview/view"
)

// Deps are the collaborators of the HTTP server. Only Analyzer is required.
type Deps struct {
	Analyzer view.Analyzer
	Tracker  view.Tracker
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Stats    *stats.Storage
	Traffic  *stats.Traffic
	Logger   *zap.Logger
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	config       *config.Config
	router       *gin.Engine
	httpServer   *http.Server
	registry     *view.Registry
	orchestrator *view.Orchestrator
	formatter    *report.Formatter
	limiter      *middleware.RateLimiter
	stats        *stats.Storage
	traffic      *stats.Traffic
	logger       *zap.Logger
	now          func() time.Time
	stop         chan struct{}
	stopOnce     sync.Once
}

func New(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Analyzer == nil {
		return nil, fmt.Errorf("server needs an analyzer")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var recorders view.Recorders
	if deps.Metrics != nil {
		recorders = append(recorders, deps.Metrics)
	}
	if deps.Stats != nil {
		recorders = append(recorders, deps.Stats)
	}

	s := &Server{
		config:       cfg,
		orchestrator: view.NewOrchestrator(deps.Analyzer, deps.Tracker, recorders, logger),
		formatter:    report.NewFormatter(),
		limiter:      middleware.NewRateLimiter(cfg.RateLimit, float64(cfg.RateBurst)),
		stats:        deps.Stats,
		traffic:      deps.Traffic,
		logger:       logger,
		now:          time.Now,
		stop:         make(chan struct{}),
	}
	s.registry = view.NewRegistry(view.RegistryConfig{
		SessionTTL:  cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
		BannerTTL:   cfg.BannerTTL,
	}, deps.Tracker, logger)
	if deps.Metrics != nil {
		deps.Metrics.TrackSessions(registererOf(deps.Gatherer), s.registry.Len)
	}

	router, err := s.setupRouter(deps)
	if err != nil {
		return nil, err
	}
	s.router = router
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// submissions wait for the analyzer
		WriteTimeout: cfg.AnalyzerTimeout + 15*time.Second,
	}
	return s, nil
}

// registererOf reuses the gatherer's registry for late collectors when it is one.
func registererOf(g prometheus.Gatherer) prometheus.Registerer {
	if reg, ok := g.(prometheus.Registerer); ok {
		return reg
	}
	return prometheus.DefaultRegisterer
}

func (s *Server) setupRouter(deps Deps) (*gin.Engine, error) {
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.SetHTMLTemplate(pageTemplates)

	r.Use(middleware.ErrorHandler(s.logger, s.renderFailure))
	r.Use(middleware.RequestLogger(s.logger))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	if s.traffic != nil {
		r.Use(middleware.Traffic(s.traffic, 100, s.logger))
	}

	r.StaticFS("/static", http.FS(static))

	r.GET("/", s.index)
	reports := r.Group("/report")
	{
		reports.POST("", s.limiter.OnLimit(s.renderRateLimited).RateLimit(), s.submit)
		reports.GET("/tabs/:tab", s.tab)
	}

	api := r.Group("/api")
	api.Use(middleware.CORS())
	{
		api.GET("/health", s.health)
		api.GET("/statistics", s.statistics)
	}

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	return r, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Registry returns the session registry.
func (s *Server) Registry() *view.Registry {
	return s.registry
}

// Start serves HTTP on the configured port until Shutdown.
func (s *Server) Start() error {
	s.registry.Start()
	go s.sweepLimiter()
	return s.httpServer.ListenAndServe()
}

func (s *Server) sweepLimiter() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.limiter.Cleanup(10 * time.Minute)
		case <-s.stop:
			return
		}
	}
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.registry.Stop()
	return s.httpServer.Shutdown(ctx)
}

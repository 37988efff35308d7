package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nas-ai/filemanager/src/config"
	"github.com/nas-ai/filemanager/src/handlers/files"
	"github.com/nas-ai/filemanager/src/middleware/core"
	"github.com/nas-ai/filemanager/src/middleware/logic"
	"github.com/nas-ai/filemanager/src/scheduler"
	"github.com/nas-ai/filemanager/src/services/content"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// Server holds all dependencies for the API server
type Server struct {
	cfg    *config.Config
	logger *logrus.Logger
	router *gin.Engine

	registry        *content.Registry
	storageService  *content.StorageManager
	metricsRegistry *prometheus.Registry
	metrics         *core.Metrics
	rateLimiter     *logic.RateLimiter
	storageProbe    *scheduler.StorageProbe

	filesHandler *files.Handler
}

// NewServer builds the storages named in cfg and wires the router.
func NewServer(cfg *config.Config, logger *logrus.Logger) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	registry, err := BuildRegistry(ctx, cfg.Storages, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}
	return NewServerWithRegistry(cfg, registry, logger), nil
}

// NewServerWithRegistry wires the router around an already populated registry.
func NewServerWithRegistry(cfg *config.Config, registry *content.Registry, logger *logrus.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
	}

	s.initServices()
	s.initHandlers()
	s.initRouter()
	s.SetupRoutes()

	return s
}

func (s *Server) initServices() {
	s.storageService = content.NewStorageManager(s.registry, s.logger)

	s.metricsRegistry = prometheus.NewRegistry()
	s.metricsRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.metrics = core.NewMetrics(s.metricsRegistry)
	s.storageProbe = scheduler.NewStorageProbe(s.registry, s.metrics.StorageUp, s.logger)
}

func (s *Server) initHandlers() {
	s.filesHandler = files.NewHandler(s.storageService, files.Options{
		MaxBodyBytes: s.cfg.MaxUploadMB << 20,
		URLExpiry:    s.cfg.URLExpiry,
	}, s.logger)
}

// initRouter creates and configures the Gin router
func (s *Server) initRouter() {
	if s.cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.router.MaxMultipartMemory = 32 << 20

	// Middleware chain (Onion Principle)
	s.router.Use(
		core.PanicRecovery(s.logger),
		core.RequestID(),
		core.CORS(s.cfg, s.logger),
		s.metrics.Middleware(),
	)
	if s.cfg.RateLimitPerMin > 0 {
		s.rateLimiter = logic.NewRateLimiter(s.cfg.RateLimitPerMin)
		s.router.Use(s.rateLimiter.Middleware())
	}
	s.router.Use(core.AuditLogger(s.logger))
}

// Router exposes the HTTP handler, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server and waits for shutdown signal
func (s *Server) Run() error {
	if s.cfg.StorageProbeSchedule != "" {
		if err := s.storageProbe.Start(s.cfg.StorageProbeSchedule); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              "0.0.0.0:" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       600 * time.Second,
		WriteTimeout:      600 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("port", s.cfg.Port).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}

	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.WithError(err).Error("Server forced to shutdown")
		return err
	}

	s.logger.Info("Server exited")
	return nil
}

// Close releases background resources.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.storageProbe.Stop()
}

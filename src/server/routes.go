package server

import (
	"github.com/nas-ai/filemanager/src/handlers"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() {
	s.router.GET("/health", handlers.Health(s.registry, s.logger))
	s.router.GET("/metrics", handlers.Metrics(s.metricsRegistry))

	// Swagger documentation (only in development)
	if s.cfg.Environment != "production" {
		s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	s.filesHandler.RegisterRoutes(s.router.Group("/api"))
}

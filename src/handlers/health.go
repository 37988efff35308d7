package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nas-ai/filemanager/src/services/content"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/sirupsen/logrus"
)

// Health godoc
// @Summary Health check endpoint
// @Description Returns API health status, registered storages and disk usage of local storages
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Health status information"
// @Failure 503 {object} map[string]interface{} "A storage is unavailable"
// @Router /health [get]
func Health(registry *content.Registry, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		storages, healthy := registry.Probe(ctx, logger)

		status := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "nas-filemanager",
			"storages":  storages,
		}
		if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
			status["memory_used_percent"] = vm.UsedPercent
		}

		if !healthy {
			status["status"] = "degraded"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}

		c.JSON(http.StatusOK, status)
	}
}

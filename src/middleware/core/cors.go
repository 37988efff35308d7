package core

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nas-ai/filemanager/src/config"
	"github.com/sirupsen/logrus"
)

const corsAllowHeaders = "Content-Type, Content-Length, Accept-Encoding, Accept, Origin, Cache-Control, X-Requested-With, X-Request-ID"

// CORS answers preflight requests and, when enabled, sets the
// Access-Control-* headers. An empty origin whitelist allows any origin.
func CORS(cfg *config.Config, logger *logrus.Logger) gin.HandlerFunc {
	allowedOrigins := cfg.CORSOrigins

	return func(c *gin.Context) {
		if cfg.EnableCORS {
			origin := c.Request.Header.Get("Origin")

			allowOrigin := ""
			switch {
			case len(allowedOrigins) == 0:
				allowOrigin = "*"
			case origin != "" && isOriginAllowed(origin, allowedOrigins):
				allowOrigin = origin
				c.Header("Vary", "Origin")
			case origin != "":
				logger.WithFields(logrus.Fields{
					"origin":     origin,
					"ip":         c.ClientIP(),
					"method":     c.Request.Method,
					"path":       c.Request.URL.Path,
					"request_id": c.GetString("request_id"),
				}).Warn("CORS: Rejected origin not in whitelist")
			}

			if allowOrigin != "" {
				allowHeaders := corsAllowHeaders
				if reqHeaders := c.Request.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
					allowHeaders = allowHeaders + ", " + reqHeaders
				}
				c.Header("Access-Control-Allow-Origin", allowOrigin)
				c.Header("Access-Control-Allow-Headers", allowHeaders)
				c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				c.Header("Access-Control-Max-Age", "86400")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// isOriginAllowed checks if the origin is in the whitelist
func isOriginAllowed(origin string, allowedOrigins []string) bool {
	for _, allowed := range allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

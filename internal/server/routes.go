package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-feedback/internal/shared/metrics"
	"resume-feedback/internal/shared/server/middleware"
)

func registerRoutes(r *gin.Engine, deps Deps) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.HealthService.Status())
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		GroupFor: func(c *gin.Context) string {
			if c.FullPath() == "/api/resume/analyze/stream" {
				return "STREAM"
			}
			return "DEFAULT"
		},
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT": {Rate: 1, Burst: 5},
			"STREAM":  {Rate: 1, Burst: 5},
		},
	}))

	deps.UploadsHandler.RegisterRoutes(api)
}

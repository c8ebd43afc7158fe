package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"resume-feedback/internal/config"
	"resume-feedback/internal/services/health"
	"resume-feedback/internal/shared/server/middleware"
	"resume-feedback/internal/uploads"
)

// Deps carries everything the router needs.
type Deps struct {
	Config         config.Config
	HealthService  *health.Service
	UploadsHandler *uploads.Handler
}

// NewEngine builds the gin engine with middleware and routes registered.
func NewEngine(deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigins),
	)

	registerRoutes(engine, deps)
	return engine
}

// Addr returns a normalized listen address for the given port.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

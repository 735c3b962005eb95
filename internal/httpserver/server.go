package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eventscope/eventscope/internal/analytics"
	"github.com/eventscope/eventscope/internal/config"
	"github.com/eventscope/eventscope/internal/handlers"
	"github.com/eventscope/eventscope/internal/store"
)

// NewRouter wires the HTTP surface: job trigger/polling, hierarchy and
// temporal analytics queries, plus /health, /ready and /metrics.
func NewRouter(cfg *config.Config, st *store.PostgresStore) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the DB dependency is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterJobRoutes(r, st, cfg.UploadDir)
	handlers.RegisterAnalyticsRoutes(r, analytics.New(st))

	return r
}

package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadinessCheck is implemented by stores and clients that can report
// whether their backing service is reachable.
type ReadinessCheck interface {
	IsReady(ctx context.Context) error
	Name() string
}

type HealthHandler struct {
	checks []ReadinessCheck
}

func NewHealthHandler(checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	failures := gin.H{}
	for _, check := range h.checks {
		if err := check.IsReady(ctx); err != nil {
			failures[check.Name()] = err.Error()
		}
	}

	if len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not ready",
			"failures": failures,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func RegisterHealthRoutes(h *HealthHandler, route *gin.Engine) {
	health := route.Group("/health")

	health.GET("/live", h.Live)
	health.GET("/ready", h.Ready)
}

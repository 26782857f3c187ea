package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/bloggy/pkg/component/storage"
)

// HealthHandler reports component health.
type HealthHandler struct {
	manager *storage.Manager
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(manager *storage.Manager) *HealthHandler {
	return &HealthHandler{manager: manager}
}

// Healthz handles GET /healthz. The response lists every registered
// component; status is "ok" only when all of them pass.
func (h *HealthHandler) Healthz(c *gin.Context) {
	statuses := h.manager.HealthCheckAll(c.Request.Context())

	components := make(map[string]bool, len(statuses))
	allHealthy := true
	for name, status := range statuses {
		components[name] = status.Healthy
		if !status.Healthy {
			allHealthy = false
		}
	}

	status := "ok"
	code := http.StatusOK
	if !allHealthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     status,
		"components": components,
	})
}

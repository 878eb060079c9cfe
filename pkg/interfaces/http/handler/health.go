package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/shopfloor/pkg/application/services"
)

type HealthHandler struct{ svc *services.InventoryService }

func NewHealthHandler(svc *services.InventoryService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// Health reports whether the store answers a read
func (h *HealthHandler) Health(c *gin.Context) {
	if _, err := h.svc.GetTargetProductsBuffer(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/shopfloor/pkg/application/services"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

type PlanningHandler struct{ svc *services.InventoryService }

func NewPlanningHandler(svc *services.InventoryService) *PlanningHandler {
	return &PlanningHandler{svc: svc}
}

type bufferRequest struct {
	Value int `json:"value"`
}

func (h *PlanningHandler) Capacity(c *gin.Context) {
	resp, err := h.svc.GetCapacity(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ShortagePlan uses ?buffer= when given, otherwise the stored target
func (h *PlanningHandler) ShortagePlan(c *gin.Context) {
	ctx := c.Request.Context()
	var buffer int
	if raw := c.Query("buffer"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fail(c, &entities.ValidationError{
				Detail: "buffer must be an integer",
				Fields: map[string]string{"buffer": raw},
			})
			return
		}
		buffer = n
	} else {
		n, err := h.svc.GetTargetProductsBuffer(ctx)
		if err != nil {
			fail(c, err)
			return
		}
		buffer = n
	}

	resp, err := h.svc.GetShortagePlan(ctx, buffer)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanningHandler) SmartPriorities(c *gin.Context) {
	resp, err := h.svc.GetSmartPriorities(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanningHandler) BatchPriorities(c *gin.Context) {
	resp, err := h.svc.GetBatchPriorities(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanningHandler) PostProcessingTasks(c *gin.Context) {
	resp, err := h.svc.GetPostProcessingTasks(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanningHandler) AssemblyTasks(c *gin.Context) {
	resp, err := h.svc.GetAssemblyTasks(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanningHandler) LowStock(c *gin.Context) {
	resp, err := h.svc.GetLowStock(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanningHandler) Dashboard(c *gin.Context) {
	resp, err := h.svc.GetDashboard(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanningHandler) GetTargetBuffer(c *gin.Context) {
	n, err := h.svc.GetTargetProductsBuffer(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"value": n})
}

// SetTargetBuffer leaves range checking to the service so the CLI and HTTP
// reject the same values.
func (h *PlanningHandler) SetTargetBuffer(c *gin.Context) {
	var req bufferRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.SetTargetProductsBuffer(c.Request.Context(), req.Value); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"value": req.Value})
}

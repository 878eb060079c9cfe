package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vsinha/shopfloor/pkg/application/dto"
	"github.com/vsinha/shopfloor/pkg/application/services"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

type InventoryHandler struct{ svc *services.InventoryService }

func NewInventoryHandler(svc *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

type componentUpdateRequest struct {
	Quantity               *int64 `json:"quantity" validate:"omitempty,gte=0"`
	Completed              *int64 `json:"postProcessingCompleted" validate:"omitempty,gte=0"`
	Pending                *int64 `json:"postProcessingPending" validate:"omitempty,gte=0"`
	BatchSize              *int   `json:"batchSize" validate:"omitempty,gt=0"`
	PrintTimeMinutes       *int   `json:"printTimeMinutes" validate:"omitempty,gte=0"`
	RequiresPostProcessing *bool  `json:"requiresPostProcessing"`
}

func quantityPtr(v *int64) *entities.Quantity {
	if v == nil {
		return nil
	}
	q := entities.Quantity(*v)
	return &q
}

func (r componentUpdateRequest) update() dto.ComponentUpdate {
	return dto.ComponentUpdate{
		Quantity:               quantityPtr(r.Quantity),
		Completed:              quantityPtr(r.Completed),
		Pending:                quantityPtr(r.Pending),
		BatchSize:              r.BatchSize,
		PrintTimeMinutes:       r.PrintTimeMinutes,
		RequiresPostProcessing: r.RequiresPostProcessing,
	}
}

type purchasedUpdateRequest struct {
	Quantity          *decimal.Decimal `json:"quantity" validate:"required,gte=0"`
	LowStockThreshold *decimal.Decimal `json:"lowStockThreshold" validate:"omitempty,gte=0"`
}

func (h *InventoryHandler) ListComponents(c *gin.Context) {
	resp, err := h.svc.ListComponents(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) UpdateComponent(c *gin.Context) {
	var req componentUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateComponentStock(c.Request.Context(), c.Param("id"), req.update())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) ListPurchased(c *gin.Context) {
	resp, err := h.svc.ListPurchased(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) UpdatePurchased(c *gin.Context) {
	var req purchasedUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdatePurchasedStock(c.Request.Context(), c.Param("id"), *req.Quantity, req.LowStockThreshold)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) ListParts(c *gin.Context) {
	resp, err := h.svc.ListParts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) ListProducts(c *gin.Context) {
	resp, err := h.svc.ListProducts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) ListRecipes(c *gin.Context) {
	resp, err := h.svc.ListRecipes(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

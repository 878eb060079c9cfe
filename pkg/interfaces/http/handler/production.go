package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/shopfloor/pkg/application/services"
)

// ProductionHandler exposes the stock state machine: printing, finishing and
// assembly.
type ProductionHandler struct{ svc *services.InventoryService }

func NewProductionHandler(svc *services.InventoryService) *ProductionHandler {
	return &ProductionHandler{svc: svc}
}

func (h *ProductionHandler) RecordPrint(c *gin.Context) {
	var req countRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordPrint(c.Request.Context(), c.Param("id"), *req.Count)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductionHandler) CompletePostProcessing(c *gin.Context) {
	var req countRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CompletePostProcessing(c.Request.Context(), c.Param("id"), *req.Count)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductionHandler) AssemblePart(c *gin.Context) {
	var req countRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AssemblePart(c.Request.Context(), c.Param("id"), *req.Count)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductionHandler) AssembleProduct(c *gin.Context) {
	var req countRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AssembleProduct(c.Request.Context(), c.Param("id"), *req.Count)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/shopfloor/pkg/application/services"
	"github.com/vsinha/shopfloor/pkg/infrastructure/backup"
	"github.com/vsinha/shopfloor/pkg/interfaces/http/apierror"
)

type DataHandler struct{ svc *services.InventoryService }

func NewDataHandler(svc *services.InventoryService) *DataHandler {
	return &DataHandler{svc: svc}
}

// ExportBackup returns the backup document as an attachment
func (h *DataHandler) ExportBackup(c *gin.Context) {
	doc, err := h.svc.ExportBackup(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", backup.FileName(doc.ExportDate)))
	c.JSON(http.StatusOK, doc)
}

// ImportBackup reads the document straight from the body so missing
// collections are reported rather than defaulted.
func (h *DataHandler) ImportBackup(c *gin.Context) {
	doc, err := backup.Read(c.Request.Body)
	if err != nil {
		fail(c, err)
		return
	}
	summary, err := h.svc.ImportBackup(c.Request.Context(), doc)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *DataHandler) Reset(c *gin.Context) {
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, apierror.New("reset requires confirm=true"))
		return
	}
	if err := h.svc.ResetAllData(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rizwana27/psa/db"
	"github.com/rizwana27/psa/services"
)

// ExportHandler streams rendered reports to the caller
type ExportHandler struct {
	exportService *services.ExportService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Export handles POST /exports
func (h *ExportHandler) Export(c *gin.Context) {
	var req db.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.exportService.Export(c.Request.Context(), req)
	if err != nil {
		c.JSON(serviceErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

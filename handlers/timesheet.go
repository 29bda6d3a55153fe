package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rizwana27/psa/db"
	"github.com/rizwana27/psa/services"
)

// TimesheetHandler handles timesheet-related HTTP requests
type TimesheetHandler struct {
	timesheetService *services.TimesheetService
}

// NewTimesheetHandler creates a new TimesheetHandler
func NewTimesheetHandler(timesheetService *services.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{timesheetService: timesheetService}
}

// CreateEntry handles POST /timesheets
func (h *TimesheetHandler) CreateEntry(c *gin.Context) {
	var req db.CreateTimesheetEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.timesheetService.CreateEntry(req)
	if err != nil {
		c.JSON(serviceErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// GetEntry handles GET /timesheets/:id
func (h *TimesheetHandler) GetEntry(c *gin.Context) {
	entry, err := h.timesheetService.GetEntry(c.Param("id"))
	if err != nil {
		c.JSON(serviceErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// ListEntries handles GET /timesheets
func (h *TimesheetHandler) ListEntries(c *gin.Context) {
	filters := map[string]interface{}{
		"resource_id": c.Query("resource_id"),
		"project_id":  c.Query("project_id"),
		"status":      c.Query("status"),
	}

	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, expected YYYY-MM-DD"})
			return
		}
		filters["from"] = parsed
	}
	if to := c.Query("to"); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, expected YYYY-MM-DD"})
			return
		}
		filters["to"] = parsed
	}

	entries, err := h.timesheetService.ListEntries(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// SubmitEntry handles POST /timesheets/:id/submit
func (h *TimesheetHandler) SubmitEntry(c *gin.Context) {
	entry, err := h.timesheetService.SubmitEntry(c.Param("id"))
	if err != nil {
		c.JSON(serviceErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// ApproveEntry handles POST /timesheets/:id/approve
func (h *TimesheetHandler) ApproveEntry(c *gin.Context) {
	entry, err := h.timesheetService.ApproveEntry(c.Param("id"))
	if err != nil {
		c.JSON(serviceErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// RejectEntry handles POST /timesheets/:id/reject
func (h *TimesheetHandler) RejectEntry(c *gin.Context) {
	entry, err := h.timesheetService.RejectEntry(c.Param("id"))
	if err != nil {
		c.JSON(serviceErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// DeleteEntry handles DELETE /timesheets/:id
func (h *TimesheetHandler) DeleteEntry(c *gin.Context) {
	if err := h.timesheetService.DeleteEntry(c.Param("id")); err != nil {
		c.JSON(serviceErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "entry deleted"})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rizwana27/psa/services"
)

// DashboardHandler exposes utilization, allocation and KPI analytics
type DashboardHandler struct {
	analyticsService *services.AnalyticsService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(analyticsService *services.AnalyticsService) *DashboardHandler {
	return &DashboardHandler{analyticsService: analyticsService}
}

// reportRange parses from/to query params, defaulting to the current
// calendar month.
func reportRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, expected YYYY-MM-DD"})
			return from, to, false
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, expected YYYY-MM-DD"})
			return from, to, false
		}
		to = parsed
	}
	if !to.After(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to date must be after from date"})
		return from, to, false
	}

	return from, to, true
}

// GetUtilization handles GET /dashboard/utilization
func (h *DashboardHandler) GetUtilization(c *gin.Context) {
	from, to, ok := reportRange(c)
	if !ok {
		return
	}

	report, err := h.analyticsService.GetUtilization(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetAllocation handles GET /dashboard/allocation
func (h *DashboardHandler) GetAllocation(c *gin.Context) {
	from, to, ok := reportRange(c)
	if !ok {
		return
	}

	breakdown, err := h.analyticsService.GetAllocation(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// GetKPIs handles GET /dashboard/kpis
func (h *DashboardHandler) GetKPIs(c *gin.Context) {
	from, to, ok := reportRange(c)
	if !ok {
		return
	}

	kpis, err := h.analyticsService.GetDashboardKPIs(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, kpis)
}

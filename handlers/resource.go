package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rizwana27/psa/db"
	"github.com/rizwana27/psa/services"
)

// ResourceHandler handles resource-related HTTP requests
type ResourceHandler struct {
	resourceService *services.ResourceService
}

// NewResourceHandler creates a new ResourceHandler
func NewResourceHandler(resourceService *services.ResourceService) *ResourceHandler {
	return &ResourceHandler{resourceService: resourceService}
}

// CreateResource handles POST /resources
func (h *ResourceHandler) CreateResource(c *gin.Context) {
	var req db.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resource, err := h.resourceService.CreateResource(req, c.GetString("user_id"))
	if err != nil {
		c.JSON(serviceErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, resource)
}

// GetResource handles GET /resources/:id
func (h *ResourceHandler) GetResource(c *gin.Context) {
	resource, err := h.resourceService.GetResource(c.Param("id"))
	if err != nil {
		c.JSON(serviceErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resource)
}

// ListResources handles GET /resources
func (h *ResourceHandler) ListResources(c *gin.Context) {
	filters := map[string]interface{}{
		"department": c.Query("department"),
		"role":       c.Query("role"),
	}
	if isActive := c.Query("is_active"); isActive != "" {
		filters["is_active"] = isActive == "true"
	}

	resources, err := h.resourceService.ListResources(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"resources": resources})
}

// UpdateResource handles PATCH /resources/:id
func (h *ResourceHandler) UpdateResource(c *gin.Context) {
	var req db.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resource, err := h.resourceService.UpdateResource(c.Param("id"), req)
	if err != nil {
		c.JSON(serviceErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resource)
}

// DeleteResource handles DELETE /resources/:id
func (h *ResourceHandler) DeleteResource(c *gin.Context) {
	if err := h.resourceService.DeleteResource(c.Param("id")); err != nil {
		c.JSON(serviceErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "resource deleted"})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rizwana27/psa/services"
)

// UserHandler handles user and API key management
type UserHandler struct {
	userService   *services.UserService
	apiKeyService *services.APIKeyService
	pushService   *services.PushService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService, apiKeyService *services.APIKeyService, pushService *services.PushService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		apiKeyService: apiKeyService,
		pushService:   pushService,
	}
}

// GetMe handles GET /users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetUser(c.GetString("user_id"))
	if err != nil {
		c.JSON(serviceErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// UpdateUserRole handles PATCH /users/:id/role
func (h *UserHandler) UpdateUserRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required,oneof=admin manager member finance"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.UpdateUserRole(c.Param("id"), req.Role); err != nil {
		c.JSON(serviceErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateFCMToken handles POST /users/me/fcm-token
func (h *UserHandler) UpdateFCMToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.pushService.UpdateUserFCMToken(c.GetString("user_id"), req.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateAPIKey handles POST /users/me/api-keys
func (h *UserHandler) CreateAPIKey(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key, plaintext, err := h.apiKeyService.CreateAPIKey(c.GetString("user_id"), req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// The plaintext key is only shown once
	c.JSON(http.StatusCreated, gin.H{"key": key, "api_key": plaintext})
}

// ListAPIKeys handles GET /users/me/api-keys
func (h *UserHandler) ListAPIKeys(c *gin.Context) {
	keys, err := h.apiKeyService.ListAPIKeys(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"api_keys": keys})
}

// RevokeAPIKey handles DELETE /users/me/api-keys/:id
func (h *UserHandler) RevokeAPIKey(c *gin.Context) {
	if err := h.apiKeyService.RevokeAPIKey(c.Param("id"), c.GetString("user_id")); err != nil {
		c.JSON(serviceErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "API key revoked"})
}

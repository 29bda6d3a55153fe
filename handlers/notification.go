package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rizwana27/psa/db"
	"github.com/rizwana27/psa/rules"
)

// NotificationHandler exposes the notification center: listing, read
// state, dismissal, and rule management.
type NotificationHandler struct {
	store    rules.Store
	notifier *rules.Notifier
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(store rules.Store, notifier *rules.Notifier) *NotificationHandler {
	return &NotificationHandler{store: store, notifier: notifier}
}

// ListNotifications handles GET /notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	filter := rules.Filter{
		Category:   c.Query("category"),
		Type:       c.Query("type"),
		Priority:   c.Query("priority"),
		UnreadOnly: c.Query("unread") == "true",
	}
	if limit := c.Query("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = parsed
	}

	notifications, err := h.store.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// GetNotification handles GET /notifications/:id
func (h *NotificationHandler) GetNotification(c *gin.Context) {
	n, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, rules.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, n)
}

// UnreadCount handles GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.store.UnreadCount(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// MarkRead handles POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.store.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkAllRead handles POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.store.MarkAllRead(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Dismiss handles DELETE /notifications/:id
func (h *NotificationHandler) Dismiss(c *gin.Context) {
	if err := h.store.Dismiss(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "notification dismissed"})
}

// CreateNotification handles POST /notifications (manual entries)
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	var req db.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n := &db.SmartNotification{
		ID:              uuid.New().String(),
		Type:            req.Type,
		Category:        req.Category,
		Title:           req.Title,
		Message:         req.Message,
		Priority:        req.Priority,
		Timestamp:       time.Now(),
		Read:            false,
		Actionable:      req.Actionable,
		RelatedEntityID: req.RelatedEntityID,
		Metadata:        req.Metadata,
	}
	if n.Priority == "" {
		n.Priority = db.PriorityLow
	}

	if err := h.store.Append(c.Request.Context(), n); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, n)
}

// ListRules handles GET /notifications/rules
func (h *NotificationHandler) ListRules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rules": h.notifier.Rules()})
}

// SetRuleEnabled handles PATCH /notifications/rules/:id
func (h *NotificationHandler) SetRuleEnabled(c *gin.Context) {
	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.notifier.SetRuleEnabled(c.Param("id"), *req.Enabled) {
		c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

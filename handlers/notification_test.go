package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizwana27/psa/db"
	"github.com/rizwana27/psa/rules"
)

func newNotificationTestRouter(store rules.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)

	notifier := rules.NewNotifier(store, rules.NopAlerter{}, nil, rules.DefaultRules())
	handler := NewNotificationHandler(store, notifier)

	r := gin.New()
	r.GET("/notifications", handler.ListNotifications)
	r.GET("/notifications/unread-count", handler.UnreadCount)
	r.GET("/notifications/rules", handler.ListRules)
	r.PATCH("/notifications/rules/:id", handler.SetRuleEnabled)
	r.GET("/notifications/:id", handler.GetNotification)
	r.POST("/notifications", handler.CreateNotification)
	r.POST("/notifications/read-all", handler.MarkAllRead)
	r.POST("/notifications/:id/read", handler.MarkRead)
	r.DELETE("/notifications/:id", handler.Dismiss)
	return r
}

func seedNotification(t *testing.T, store rules.Store, id, priority string) {
	t.Helper()
	err := store.Append(t.Context(), &db.SmartNotification{
		ID:        id,
		Type:      db.NotificationTypeWarning,
		Category:  db.NotificationCategoryProject,
		Title:     "Budget Warning",
		Message:   "Project is at 85% of budget",
		Priority:  priority,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
}

func TestNotificationHandler_ListAndFilter(t *testing.T) {
	store := rules.NewMemoryStore()
	r := newNotificationTestRouter(store)

	seedNotification(t, store, "n-1", db.PriorityHigh)
	seedNotification(t, store, "n-2", db.PriorityLow)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/notifications?priority=high", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Notifications []db.SmartNotification `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, "n-1", resp.Notifications[0].ID)
}

func TestNotificationHandler_ListRejectsBadLimit(t *testing.T) {
	r := newNotificationTestRouter(rules.NewMemoryStore())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/notifications?limit=abc", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotificationHandler_GetNotFound(t *testing.T) {
	r := newNotificationTestRouter(rules.NewMemoryStore())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/notifications/missing", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationHandler_ReadLifecycle(t *testing.T) {
	store := rules.NewMemoryStore()
	r := newNotificationTestRouter(store)

	seedNotification(t, store, "n-1", db.PriorityHigh)
	seedNotification(t, store, "n-2", db.PriorityLow)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/notifications/n-1/read", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/notifications/unread-count", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		UnreadCount int `json:"unread_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.UnreadCount)
}

func TestNotificationHandler_DismissRemoves(t *testing.T) {
	store := rules.NewMemoryStore()
	r := newNotificationTestRouter(store)

	seedNotification(t, store, "n-1", db.PriorityLow)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/notifications/n-1", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/notifications/n-1", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationHandler_CreateManual(t *testing.T) {
	store := rules.NewMemoryStore()
	r := newNotificationTestRouter(store)

	body, _ := json.Marshal(map[string]interface{}{
		"type":     "info",
		"category": "system",
		"title":    "Maintenance window",
		"message":  "Scheduled downtime Saturday",
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/notifications", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var created db.SmartNotification
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	// Priority falls back to low when omitted
	assert.Equal(t, db.PriorityLow, created.Priority)

	stored, err := store.Get(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maintenance window", stored.Title)
}

func TestNotificationHandler_CreateRejectsInvalidType(t *testing.T) {
	r := newNotificationTestRouter(rules.NewMemoryStore())

	body, _ := json.Marshal(map[string]interface{}{
		"type":     "bogus",
		"category": "system",
		"title":    "Bad",
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/notifications", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotificationHandler_Rules(t *testing.T) {
	r := newNotificationTestRouter(rules.NewMemoryStore())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/notifications/rules", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Rules []rules.Rule `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Rules, 4)

	// Disable one rule, then an unknown one
	body := bytes.NewReader([]byte(`{"enabled": false}`))
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PATCH", "/notifications/rules/"+rules.RuleBudgetAlert, body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	body = bytes.NewReader([]byte(`{"enabled": false}`))
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PATCH", "/notifications/rules/unknown", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

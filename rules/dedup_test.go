package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowDeduper(t *testing.T) {
	current := time.Now()
	d := NewWindowDeduper(time.Hour)
	d.now = func() time.Time { return current }

	assert.True(t, d.Allow("budget-alert", "proj-1", "medium"))
	assert.False(t, d.Allow("budget-alert", "proj-1", "medium"))

	// Different entity, rule or priority each form a distinct key.
	assert.True(t, d.Allow("budget-alert", "proj-2", "medium"))
	assert.True(t, d.Allow("invoice-overdue", "proj-1", "medium"))
	assert.True(t, d.Allow("budget-alert", "proj-1", "high"))

	// After the window elapses the same key is allowed again.
	current = current.Add(time.Hour + time.Minute)
	assert.True(t, d.Allow("budget-alert", "proj-1", "medium"))
}

func TestNopDeduper(t *testing.T) {
	d := NopDeduper{}
	assert.True(t, d.Allow("r", "e", "p"))
	assert.True(t, d.Allow("r", "e", "p"))
}

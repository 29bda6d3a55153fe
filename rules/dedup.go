package rules

import (
	"fmt"
	"sync"
	"time"
)

// Deduper decides whether a triggered notification should actually be
// emitted. The evaluator itself never deduplicates; suppression of repeated
// notifications across evaluation cycles is a caller policy, configured here.
type Deduper interface {
	// Allow reports whether a notification for the given rule, entity and
	// priority bucket may be emitted now.
	Allow(ruleID, entityID, priority string) bool
}

// NopDeduper emits everything. This is the default: re-triggering the same
// rule on the same entity produces a fresh notification every cycle.
type NopDeduper struct{}

func (NopDeduper) Allow(ruleID, entityID, priority string) bool { return true }

// WindowDeduper suppresses repeats of the same (rule, entity, priority)
// triple inside a rolling window. A priority change (medium escalating to
// high) is a different key and fires immediately.
type WindowDeduper struct {
	mu     sync.Mutex
	window time.Duration
	seen   map[string]time.Time
	now    func() time.Time
}

func NewWindowDeduper(window time.Duration) *WindowDeduper {
	return &WindowDeduper{
		window: window,
		seen:   make(map[string]time.Time),
		now:    time.Now,
	}
}

func (d *WindowDeduper) Allow(ruleID, entityID, priority string) bool {
	key := fmt.Sprintf("%s|%s|%s", ruleID, entityID, priority)

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.seen[key]; ok && now.Sub(last) < d.window {
		return false
	}
	d.seen[key] = now

	// Opportunistic cleanup keeps the map from growing without bound.
	for k, t := range d.seen {
		if now.Sub(t) >= d.window {
			delete(d.seen, k)
		}
	}
	return true
}

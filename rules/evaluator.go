package rules

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/rizwana27/psa/db"
)

// Alerter dispatches an immediate user-facing alert (push/toast) for a
// notification. Only high-priority notifications go through the Alerter;
// medium and low priority ones are queued silently in the store.
type Alerter interface {
	Dispatch(ctx context.Context, n *db.SmartNotification) error
}

// NopAlerter drops every dispatch. Used when no push channel is configured.
type NopAlerter struct{}

func (NopAlerter) Dispatch(ctx context.Context, n *db.SmartNotification) error { return nil }

// Evaluate checks one event against one rule and returns the resulting
// notification, or nil when the rule is disabled or the condition does not
// hold. Pure function of its inputs apart from the fresh id and timestamp.
//
// A rule referencing a field absent from the event payload is treated as
// not-triggered (fail-closed) so one misconfigured rule cannot block the
// rest of the evaluation cycle.
func Evaluate(e Event, r Rule) *db.SmartNotification {
	if !r.Enabled || len(r.Trigger) == 0 {
		return nil
	}

	for _, cond := range r.Trigger {
		value, ok := e.Fields[cond.Field]
		if !ok {
			return nil
		}
		if !cond.Matches(value) {
			return nil
		}
	}

	priority := db.PriorityMedium
	if value, ok := e.Fields[r.Escalate.Field]; ok && r.Escalate.Matches(value) {
		priority = db.PriorityHigh
	}

	title := r.Name
	message := ""
	if r.Format != nil {
		title, message = r.Format(e)
	}

	metadata := make(map[string]interface{}, len(e.Metadata))
	for k, v := range e.Metadata {
		metadata[k] = v
	}

	return &db.SmartNotification{
		ID:              uuid.New().String(),
		Type:            r.Type,
		Category:        r.Category,
		Title:           title,
		Message:         message,
		Priority:        priority,
		Timestamp:       time.Now(),
		Read:            false,
		Actionable:      true,
		RelatedEntityID: e.RelatedEntityID,
		Metadata:        metadata,
	}
}

// Notifier runs the rule set against incoming events, applies the dedup
// policy, persists accepted notifications and dispatches the high-priority
// ones through the Alerter.
type Notifier struct {
	store   Store
	alerter Alerter
	dedup   Deduper
	rules   []Rule
}

func NewNotifier(store Store, alerter Alerter, dedup Deduper, ruleSet []Rule) *Notifier {
	if alerter == nil {
		alerter = NopAlerter{}
	}
	if dedup == nil {
		dedup = NopDeduper{}
	}
	return &Notifier{store: store, alerter: alerter, dedup: dedup, rules: ruleSet}
}

// Rules returns the configured rule set.
func (n *Notifier) Rules() []Rule {
	return n.rules
}

// SetRuleEnabled toggles a rule between evaluation cycles.
func (n *Notifier) SetRuleEnabled(ruleID string, enabled bool) bool {
	for i := range n.rules {
		if n.rules[i].ID == ruleID {
			n.rules[i].Enabled = enabled
			return true
		}
	}
	return false
}

// Process evaluates every rule against every event. One notification is
// produced per triggering condition per invocation; repeated invocations on
// unchanged inputs produce repeated notifications unless the configured
// Deduper suppresses them.
func (n *Notifier) Process(ctx context.Context, events []Event) ([]*db.SmartNotification, error) {
	var emitted []*db.SmartNotification

	for _, event := range events {
		for _, rule := range n.rules {
			notification := Evaluate(event, rule)
			if notification == nil {
				continue
			}

			if !n.dedup.Allow(rule.ID, event.RelatedEntityID, notification.Priority) {
				continue
			}

			if err := n.store.Append(ctx, notification); err != nil {
				return emitted, fmt.Errorf("failed to store notification for rule %s: %w", rule.ID, err)
			}

			if notification.Priority == db.PriorityHigh {
				if err := n.alerter.Dispatch(ctx, notification); err != nil {
					// Delivery failure degrades to a stored-only notification.
					log.Printf("Failed to dispatch alert for rule %s (entity %s): %v",
						rule.ID, event.RelatedEntityID, err)
				}
			}

			emitted = append(emitted, notification)
		}
	}

	return emitted, nil
}

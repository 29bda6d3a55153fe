package rules

// Field names a numeric metric an event can carry.
type Field string

const (
	FieldBudgetUsedPct     Field = "budget_used_percentage"
	FieldAllocationPct     Field = "allocation_percentage"
	FieldDaysOverdue       Field = "days_overdue"
	FieldDaysUntilDeadline Field = "days_until_deadline"
)

// Comparator is the operator of a rule condition.
type Comparator string

const (
	ComparatorGt  Comparator = "gt"
	ComparatorLt  Comparator = "lt"
	ComparatorGte Comparator = "gte"
	ComparatorLte Comparator = "lte"
	ComparatorEq  Comparator = "eq"
)

// Condition is one declarative predicate over an event field.
// Conditions replace free-text expressions like "budget_used > 80" with a
// typed triple the evaluator can interpret without parsing.
type Condition struct {
	Field      Field      `json:"field"`
	Comparator Comparator `json:"comparator"`
	Threshold  float64    `json:"threshold"`
}

// Matches reports whether the value satisfies the condition.
// Unknown comparators never match.
func (c Condition) Matches(value float64) bool {
	switch c.Comparator {
	case ComparatorGt:
		return value > c.Threshold
	case ComparatorLt:
		return value < c.Threshold
	case ComparatorGte:
		return value >= c.Threshold
	case ComparatorLte:
		return value <= c.Threshold
	case ComparatorEq:
		return value == c.Threshold
	}
	return false
}

// MessageFormatter renders the notification title and body for a triggered
// rule from the event that triggered it.
type MessageFormatter func(e Event) (title, message string)

// Rule is a named, toggle-able notification rule. Trigger conditions are
// ANDed; when they all hold, Escalate decides whether the notification is
// high priority (otherwise medium). Rules are loaded once and treated as
// immutable during evaluation; toggling happens between evaluation cycles.
type Rule struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Type     string      `json:"type"`     // db.NotificationType*
	Category string      `json:"category"` // db.NotificationCategory*
	Trigger  []Condition `json:"trigger"`
	Escalate Condition   `json:"escalate"`
	Enabled  bool        `json:"enabled"`

	Format MessageFormatter `json:"-"`
}

// Event is one triggering observation handed to the evaluator: a bag of
// numeric fields plus the entity it concerns and the metadata to surface in
// the notification center.
type Event struct {
	RelatedEntityID string
	EntityName      string
	Fields          map[Field]float64
	Metadata        map[string]interface{}
}

// Built-in rule identifiers.
const (
	RuleBudgetAlert          = "budget-alert"
	RuleResourceOverallocate = "resource-overallocation"
	RuleInvoiceOverdue       = "invoice-overdue"
	RuleDeadlineApproaching  = "deadline-approaching"
)

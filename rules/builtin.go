package rules

import (
	"fmt"

	"github.com/rizwana27/psa/db"
)

// DefaultRules returns the built-in rule set. Each rule is independently
// toggle-able; the thresholds mirror the dashboard's alerting policy:
//
//	budget        used > 80%, high above 90%
//	overallocation hours-based allocation > 100%, high above 120%
//	invoice       any day overdue, high past 30 days
//	deadline      within 3 days, high on the last day
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:       RuleBudgetAlert,
			Name:     "Budget Alert",
			Type:     db.NotificationTypeAlert,
			Category: db.NotificationCategoryFinancial,
			Trigger:  []Condition{{Field: FieldBudgetUsedPct, Comparator: ComparatorGt, Threshold: 80}},
			Escalate: Condition{Field: FieldBudgetUsedPct, Comparator: ComparatorGt, Threshold: 90},
			Enabled:  true,
			Format:   formatBudget,
		},
		{
			ID:       RuleResourceOverallocate,
			Name:     "Resource Overallocation",
			Type:     db.NotificationTypeWarning,
			Category: db.NotificationCategoryResource,
			Trigger:  []Condition{{Field: FieldAllocationPct, Comparator: ComparatorGt, Threshold: 100}},
			Escalate: Condition{Field: FieldAllocationPct, Comparator: ComparatorGt, Threshold: 120},
			Enabled:  true,
			Format:   formatOverallocation,
		},
		{
			ID:       RuleInvoiceOverdue,
			Name:     "Invoice Overdue",
			Type:     db.NotificationTypeAlert,
			Category: db.NotificationCategoryFinancial,
			Trigger:  []Condition{{Field: FieldDaysOverdue, Comparator: ComparatorGt, Threshold: 0}},
			Escalate: Condition{Field: FieldDaysOverdue, Comparator: ComparatorGt, Threshold: 30},
			Enabled:  true,
			Format:   formatOverdueInvoice,
		},
		{
			ID:   RuleDeadlineApproaching,
			Name: "Deadline Approaching",
			Type: db.NotificationTypeWarning,
			// project deadlines, not financial
			Category: db.NotificationCategoryProject,
			Trigger: []Condition{
				{Field: FieldDaysUntilDeadline, Comparator: ComparatorGt, Threshold: 0},
				{Field: FieldDaysUntilDeadline, Comparator: ComparatorLte, Threshold: 3},
			},
			Escalate: Condition{Field: FieldDaysUntilDeadline, Comparator: ComparatorEq, Threshold: 1},
			Enabled:  true,
			Format:   formatDeadline,
		},
	}
}

// Event builders. Each builder records the triggering inputs in the metadata
// map so the notification center can show them later.

// NewBudgetEvent builds the event for the budget rule.
// Percentage is zero-guarded the same way the aggregation engine guards.
func NewBudgetEvent(projectID, projectName string, budgetUsed, totalBudget float64) Event {
	pct := 0.0
	if totalBudget > 0 {
		pct = budgetUsed / totalBudget * 100
	}
	return Event{
		RelatedEntityID: projectID,
		EntityName:      projectName,
		Fields:          map[Field]float64{FieldBudgetUsedPct: pct},
		Metadata: map[string]interface{}{
			"budget_used":  budgetUsed,
			"total_budget": totalBudget,
			"percentage":   pct,
			"project_name": projectName,
		},
	}
}

// NewOverallocationEvent builds the event for the resource overallocation
// rule from the hours-based allocation percentage computed by the engine.
func NewOverallocationEvent(resourceID, resourceName string, allocationPct float64) Event {
	return Event{
		RelatedEntityID: resourceID,
		EntityName:      resourceName,
		Fields:          map[Field]float64{FieldAllocationPct: allocationPct},
		Metadata: map[string]interface{}{
			"resource_name": resourceName,
			"allocation":    allocationPct,
		},
	}
}

// NewOverdueInvoiceEvent builds the event for the overdue invoice rule.
func NewOverdueInvoiceEvent(invoiceID, invoiceNumber string, daysOverdue int, amount float64) Event {
	return Event{
		RelatedEntityID: invoiceID,
		EntityName:      invoiceNumber,
		Fields:          map[Field]float64{FieldDaysOverdue: float64(daysOverdue)},
		Metadata: map[string]interface{}{
			"invoice_number": invoiceNumber,
			"days_overdue":   daysOverdue,
			"amount":         amount,
		},
	}
}

// NewDeadlineEvent builds the event for the approaching-deadline rule.
func NewDeadlineEvent(projectID, projectName string, daysUntilDeadline int) Event {
	return Event{
		RelatedEntityID: projectID,
		EntityName:      projectName,
		Fields:          map[Field]float64{FieldDaysUntilDeadline: float64(daysUntilDeadline)},
		Metadata: map[string]interface{}{
			"project_name":        projectName,
			"days_until_deadline": daysUntilDeadline,
		},
	}
}

func formatBudget(e Event) (string, string) {
	pct := e.Fields[FieldBudgetUsedPct]
	return fmt.Sprintf("Budget Alert: %s", e.EntityName),
		fmt.Sprintf("%s has used %.0f%% of its budget", e.EntityName, pct)
}

func formatOverallocation(e Event) (string, string) {
	pct := e.Fields[FieldAllocationPct]
	return fmt.Sprintf("Overallocation: %s", e.EntityName),
		fmt.Sprintf("%s is allocated at %.0f%% of capacity", e.EntityName, pct)
}

func formatOverdueInvoice(e Event) (string, string) {
	days := int(e.Fields[FieldDaysOverdue])
	return fmt.Sprintf("Invoice Overdue: %s", e.EntityName),
		fmt.Sprintf("Invoice %s is %d day(s) overdue", e.EntityName, days)
}

func formatDeadline(e Event) (string, string) {
	days := int(e.Fields[FieldDaysUntilDeadline])
	return fmt.Sprintf("Deadline Approaching: %s", e.EntityName),
		fmt.Sprintf("%s is due in %d day(s)", e.EntityName, days)
}

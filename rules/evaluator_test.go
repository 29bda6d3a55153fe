package rules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rizwana27/psa/db"
)

// MockAlerter records dispatches so tests can assert the observable
// contract: high priority -> immediate alert, medium/low -> store only.
type MockAlerter struct {
	mock.Mock
}

func (m *MockAlerter) Dispatch(ctx context.Context, n *db.SmartNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func findRule(t *testing.T, id string) Rule {
	t.Helper()
	for _, r := range DefaultRules() {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("rule %s not found", id)
	return Rule{}
}

func TestEvaluate_BudgetRule(t *testing.T) {
	rule := findRule(t, RuleBudgetAlert)

	t.Run("85_percent_is_medium", func(t *testing.T) {
		n := Evaluate(NewBudgetEvent("proj-1", "Apollo", 85, 100), rule)
		require.NotNil(t, n)
		assert.Equal(t, db.PriorityMedium, n.Priority)
		assert.Equal(t, db.NotificationCategoryFinancial, n.Category)
		assert.Equal(t, "proj-1", n.RelatedEntityID)
		assert.False(t, n.Read)
		assert.True(t, n.Actionable)
		assert.NotEmpty(t, n.ID)
		assert.Equal(t, 85.0, n.Metadata["budget_used"])
		assert.Equal(t, 100.0, n.Metadata["total_budget"])
	})

	t.Run("95_percent_is_high", func(t *testing.T) {
		n := Evaluate(NewBudgetEvent("proj-1", "Apollo", 95, 100), rule)
		require.NotNil(t, n)
		assert.Equal(t, db.PriorityHigh, n.Priority)
	})

	t.Run("50_percent_does_not_trigger", func(t *testing.T) {
		assert.Nil(t, Evaluate(NewBudgetEvent("proj-1", "Apollo", 50, 100), rule))
	})

	t.Run("zero_total_budget_does_not_trigger", func(t *testing.T) {
		assert.Nil(t, Evaluate(NewBudgetEvent("proj-1", "Apollo", 50, 0), rule))
	})
}

func TestEvaluate_OverallocationRule(t *testing.T) {
	rule := findRule(t, RuleResourceOverallocate)

	n := Evaluate(NewOverallocationEvent("res-2", "Jane", 125), rule)
	require.NotNil(t, n)
	assert.Equal(t, db.PriorityHigh, n.Priority) // >120

	n = Evaluate(NewOverallocationEvent("res-2", "Jane", 105), rule)
	require.NotNil(t, n)
	assert.Equal(t, db.PriorityMedium, n.Priority)

	assert.Nil(t, Evaluate(NewOverallocationEvent("res-2", "Jane", 100), rule))
}

func TestEvaluate_InvoiceOverdueRule(t *testing.T) {
	rule := findRule(t, RuleInvoiceOverdue)

	n := Evaluate(NewOverdueInvoiceEvent("inv-1", "INV-001", 5, 1200), rule)
	require.NotNil(t, n)
	assert.Equal(t, db.PriorityMedium, n.Priority)

	n = Evaluate(NewOverdueInvoiceEvent("inv-1", "INV-001", 31, 1200), rule)
	require.NotNil(t, n)
	assert.Equal(t, db.PriorityHigh, n.Priority)

	assert.Nil(t, Evaluate(NewOverdueInvoiceEvent("inv-1", "INV-001", 0, 1200), rule))
}

func TestEvaluate_DeadlineRule(t *testing.T) {
	rule := findRule(t, RuleDeadlineApproaching)

	cases := []struct {
		days     int
		triggers bool
		priority string
	}{
		{0, false, ""}, // already due, not "approaching"
		{1, true, db.PriorityHigh},
		{2, true, db.PriorityMedium},
		{3, true, db.PriorityMedium},
		{4, false, ""},
	}
	for _, tc := range cases {
		n := Evaluate(NewDeadlineEvent("proj-9", "Hermes", tc.days), rule)
		if !tc.triggers {
			assert.Nil(t, n, "days=%d", tc.days)
			continue
		}
		require.NotNil(t, n, "days=%d", tc.days)
		assert.Equal(t, tc.priority, n.Priority, "days=%d", tc.days)
	}
}

func TestEvaluate_DisabledRule(t *testing.T) {
	rule := findRule(t, RuleBudgetAlert)
	rule.Enabled = false
	assert.Nil(t, Evaluate(NewBudgetEvent("proj-1", "Apollo", 95, 100), rule))
}

func TestEvaluate_MissingFieldFailsClosed(t *testing.T) {
	rule := findRule(t, RuleBudgetAlert)
	// An overallocation event has no budget field; the budget rule must
	// treat itself as not-triggered rather than erroring.
	assert.Nil(t, Evaluate(NewOverallocationEvent("res-1", "Jane", 150), rule))
}

func TestNotifier_HighPriorityDispatchesAlert(t *testing.T) {
	store := NewMemoryStore()
	alerter := new(MockAlerter)
	alerter.On("Dispatch", mock.Anything, mock.MatchedBy(func(n *db.SmartNotification) bool {
		return n.Priority == db.PriorityHigh
	})).Return(nil)

	notifier := NewNotifier(store, alerter, nil, DefaultRules())

	emitted, err := notifier.Process(context.Background(), []Event{
		NewBudgetEvent("proj-1", "Apollo", 95, 100), // high
		NewBudgetEvent("proj-2", "Hermes", 85, 100), // medium, no dispatch
	})
	require.NoError(t, err)
	require.Len(t, emitted, 2)

	alerter.AssertNumberOfCalls(t, "Dispatch", 1)

	stored, err := store.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestNotifier_RepeatedEvaluationRepeats(t *testing.T) {
	store := NewMemoryStore()
	notifier := NewNotifier(store, nil, nil, DefaultRules())

	events := []Event{NewBudgetEvent("proj-1", "Apollo", 85, 100)}
	_, err := notifier.Process(context.Background(), events)
	require.NoError(t, err)
	_, err = notifier.Process(context.Background(), events)
	require.NoError(t, err)

	stored, err := store.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, stored, 2) // no implicit dedup
}

func TestNotifier_WindowDeduperSuppressesRepeats(t *testing.T) {
	store := NewMemoryStore()
	notifier := NewNotifier(store, nil, NewWindowDeduper(time.Hour), DefaultRules())

	events := []Event{NewBudgetEvent("proj-1", "Apollo", 85, 100)}
	_, err := notifier.Process(context.Background(), events)
	require.NoError(t, err)
	_, err = notifier.Process(context.Background(), events)
	require.NoError(t, err)

	stored, err := store.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestNotifier_SetRuleEnabled(t *testing.T) {
	notifier := NewNotifier(NewMemoryStore(), nil, nil, DefaultRules())

	assert.True(t, notifier.SetRuleEnabled(RuleBudgetAlert, false))
	assert.False(t, notifier.SetRuleEnabled("no-such-rule", false))

	emitted, err := notifier.Process(context.Background(), []Event{
		NewBudgetEvent("proj-1", "Apollo", 95, 100),
	})
	require.NoError(t, err)
	assert.Empty(t, emitted)
}

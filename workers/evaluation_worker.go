package workers

import (
	"context"
	"log"
	"time"

	"github.com/rizwana27/psa/internal/config"
	"github.com/rizwana27/psa/rules"
	"github.com/rizwana27/psa/services"
)

// deadlineLookaheadDays bounds the deadline scan. The deadline rule only
// fires inside 1-3 days, so scanning further buys nothing.
const deadlineLookaheadDays = 3

// EvaluationWorker periodically collects portfolio state (budgets,
// allocation, overdue invoices, deadlines), turns it into events and runs
// them through the notification rule set.
type EvaluationWorker struct {
	Projects  *services.ProjectService
	Invoices  *services.InvoiceService
	Analytics *services.AnalyticsService
	Notifier  *rules.Notifier
	Delivery  *services.DeliveryService
}

func NewEvaluationWorker(
	projects *services.ProjectService,
	invoices *services.InvoiceService,
	analytics *services.AnalyticsService,
	notifier *rules.Notifier,
	delivery *services.DeliveryService,
) *EvaluationWorker {
	return &EvaluationWorker{
		Projects:  projects,
		Invoices:  invoices,
		Analytics: analytics,
		Notifier:  notifier,
		Delivery:  delivery,
	}
}

// StartEvaluationWorker runs evaluation cycles until the context is
// cancelled. The interval comes from config (eval_interval_sec).
func (w *EvaluationWorker) StartEvaluationWorker(ctx context.Context) {
	interval := time.Duration(config.App.Notifications.EvalIntervalSec) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	log.Printf("🔎 Evaluation worker started (interval: %s)", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First cycle immediately so a fresh deploy doesn't sit silent for a
	// full interval.
	w.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Evaluation worker stopped")
			return
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

// runCycle executes one evaluation pass. Each collector failure is logged
// and skipped so one broken query cannot starve the other rules.
func (w *EvaluationWorker) runCycle(ctx context.Context) {
	if flagged, err := w.Invoices.FlagOverdue(); err != nil {
		log.Printf("⚠️  Evaluation: failed to flag overdue invoices: %v", err)
	} else if flagged > 0 {
		log.Printf("ℹ️  Evaluation: flagged %d invoices as overdue", flagged)
	}

	events := w.collectEvents(ctx)
	if len(events) == 0 {
		return
	}

	emitted, err := w.Notifier.Process(ctx, events)
	if err != nil {
		log.Printf("⚠️  Evaluation: rule processing failed: %v", err)
		return
	}

	for _, n := range emitted {
		w.Delivery.QueueForDeliveryAsync(n)
	}

	if len(emitted) > 0 {
		log.Printf("✅ Evaluation: %d events evaluated, %d notifications emitted", len(events), len(emitted))
	}
}

// collectEvents builds the event batch for one cycle.
func (w *EvaluationWorker) collectEvents(ctx context.Context) []rules.Event {
	var events []rules.Event

	usage, err := w.Projects.ListBudgetUsage()
	if err != nil {
		log.Printf("⚠️  Evaluation: failed to list budget usage: %v", err)
	} else {
		for _, u := range usage {
			events = append(events, rules.NewBudgetEvent(u.ProjectID, u.Name, u.BudgetUsed, u.Budget))
		}
	}

	from, to := currentMonthRange(time.Now())
	report, err := w.Analytics.GetUtilization(ctx, from, to)
	if err != nil {
		log.Printf("⚠️  Evaluation: failed to compute utilization: %v", err)
	} else {
		for _, m := range report.PerResource {
			events = append(events, rules.NewOverallocationEvent(m.ResourceID, m.ResourceName, float64(m.AllocationPct)))
		}
	}

	overdue, err := w.Invoices.ListOverdue()
	if err != nil {
		log.Printf("⚠️  Evaluation: failed to list overdue invoices: %v", err)
	} else {
		for _, inv := range overdue {
			events = append(events, rules.NewOverdueInvoiceEvent(inv.InvoiceID, inv.InvoiceNumber, inv.DaysOverdue, inv.Amount))
		}
	}

	deadlines, err := w.Projects.ListApproachingDeadlines(deadlineLookaheadDays)
	if err != nil {
		log.Printf("⚠️  Evaluation: failed to list approaching deadlines: %v", err)
	} else {
		now := time.Now()
		for _, d := range deadlines {
			days := daysUntil(now, d.EndDate)
			events = append(events, rules.NewDeadlineEvent(d.ProjectID, d.Name, days))
		}
	}

	return events
}

// currentMonthRange returns [first of month, first of next month).
func currentMonthRange(now time.Time) (time.Time, time.Time) {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 1, 0)
}

// daysUntil counts whole calendar days from now until deadline, never
// negative.
func daysUntil(now, deadline time.Time) int {
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dlDay := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, time.UTC)
	days := int(dlDay.Sub(nowDay).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

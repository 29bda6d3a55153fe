package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/rizwana27/psa/db"
	"github.com/rizwana27/psa/internal/analytics"
)

// AnalyticsService computes utilization and allocation reports on top of
// the pure aggregation engine, with a Redis cache in front. A nil Redis
// client disables caching.
type AnalyticsService struct {
	PG       *sql.DB
	Redis    *redis.Client
	Window   analytics.Window
	CacheTTL time.Duration

	resources  *ResourceService
	timesheets *TimesheetService
}

type DashboardKPIs struct {
	ActiveProjects   int     `json:"active_projects"`
	ActiveResources  int     `json:"active_resources"`
	ActiveClients    int     `json:"active_clients"`
	TotalBudget      float64 `json:"total_budget"`
	TotalBudgetUsed  float64 `json:"total_budget_used"`
	OutstandingTotal float64 `json:"outstanding_total"`
	OverdueInvoices  int     `json:"overdue_invoices"`
	UtilizationPct   int     `json:"utilization_pct"`
	AllocationPct    int     `json:"allocation_pct"`
}

func NewAnalyticsService(pg *sql.DB, rdb *redis.Client, window analytics.Window, cacheTTL time.Duration) *AnalyticsService {
	return &AnalyticsService{
		PG:         pg,
		Redis:      rdb,
		Window:     window,
		CacheTTL:   cacheTTL,
		resources:  NewResourceService(pg),
		timesheets: NewTimesheetService(pg),
	}
}

// GetUtilization returns the utilization report for entries in [from, to)
func (s *AnalyticsService) GetUtilization(ctx context.Context, from, to time.Time) (analytics.UtilizationReport, error) {
	cacheKey := reportCacheKey("utilization", from, to)

	var report analytics.UtilizationReport
	if s.cacheGet(ctx, cacheKey, &report) {
		return report, nil
	}

	resources, err := s.resources.ListAllResources()
	if err != nil {
		return report, err
	}

	entries, err := s.timesheets.ListEntriesInWindow(from, to)
	if err != nil {
		return report, err
	}

	report = analytics.ComputeUtilization(resources, entries, s.Window)
	s.cacheSet(ctx, cacheKey, report)

	return report, nil
}

// GetAllocation returns the department allocation breakdown
func (s *AnalyticsService) GetAllocation(ctx context.Context, from, to time.Time) (analytics.AllocationBreakdown, error) {
	cacheKey := reportCacheKey("allocation", from, to)

	var breakdown analytics.AllocationBreakdown
	if s.cacheGet(ctx, cacheKey, &breakdown) {
		return breakdown, nil
	}

	resources, err := s.resources.ListAllResources()
	if err != nil {
		return breakdown, err
	}

	entries, err := s.timesheets.ListEntriesInWindow(from, to)
	if err != nil {
		return breakdown, err
	}

	breakdown = analytics.ComputeAllocation(resources, entries, s.Window)
	s.cacheSet(ctx, cacheKey, breakdown)

	return breakdown, nil
}

// GetDashboardKPIs returns the headline numbers for the dashboard
func (s *AnalyticsService) GetDashboardKPIs(ctx context.Context, from, to time.Time) (DashboardKPIs, error) {
	cacheKey := reportCacheKey("kpis", from, to)

	var kpis DashboardKPIs
	if s.cacheGet(ctx, cacheKey, &kpis) {
		return kpis, nil
	}

	err := s.PG.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM projects WHERE is_active = true AND status = $1),
			(SELECT COUNT(*) FROM resources WHERE is_active = true),
			(SELECT COUNT(*) FROM clients WHERE is_active = true),
			COALESCE((SELECT SUM(budget) FROM projects WHERE is_active = true), 0),
			COALESCE((SELECT SUM(budget_used) FROM projects WHERE is_active = true), 0),
			COALESCE((SELECT SUM(amount) FROM invoices WHERE status IN ($2, $3)), 0),
			(SELECT COUNT(*) FROM invoices WHERE status = $3)
	`, db.ProjectStatusActive, db.InvoiceStatusSent, db.InvoiceStatusOverdue).Scan(
		&kpis.ActiveProjects, &kpis.ActiveResources, &kpis.ActiveClients,
		&kpis.TotalBudget, &kpis.TotalBudgetUsed, &kpis.OutstandingTotal,
		&kpis.OverdueInvoices,
	)
	if err != nil {
		return kpis, fmt.Errorf("failed to compute dashboard KPIs: %w", err)
	}

	report, err := s.GetUtilization(ctx, from, to)
	if err != nil {
		return kpis, err
	}
	kpis.UtilizationPct = report.Aggregate.UtilizationPct
	kpis.AllocationPct = report.Aggregate.AllocationPct

	s.cacheSet(ctx, cacheKey, kpis)

	return kpis, nil
}

// reportCacheKey builds the cache key for one report over one window.
// Every cached report is range-dependent, so the window is always part
// of the key.
func reportCacheKey(report string, from, to time.Time) string {
	return fmt.Sprintf("psa:%s:%s:%s", report, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

// InvalidateCache drops all cached analytics. Called after writes that
// change the underlying numbers (timesheet approval, invoice payment).
func (s *AnalyticsService) InvalidateCache(ctx context.Context) {
	if s.Redis == nil {
		return
	}

	iter := s.Redis.Scan(ctx, 0, "psa:*", 100).Iterator()
	for iter.Next(ctx) {
		s.Redis.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("Failed to invalidate analytics cache: %v", err)
	}
}

func (s *AnalyticsService) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if s.Redis == nil {
		return false
	}

	raw, err := s.Redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Redis read failed for %s: %v", key, err)
		}
		return false
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		log.Printf("Failed to decode cached value for %s: %v", key, err)
		return false
	}

	return true
}

func (s *AnalyticsService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.Redis == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := s.Redis.Set(ctx, key, raw, s.CacheTTL).Err(); err != nil {
		log.Printf("Redis write failed for %s: %v", key, err)
	}
}

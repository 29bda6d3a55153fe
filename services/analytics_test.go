package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizwana27/psa/internal/analytics"
)

func TestReportCacheKey_IncludesWindow(t *testing.T) {
	may := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	june := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	july := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "psa:kpis:2026-05-01:2026-06-01", reportCacheKey("kpis", may, june))

	// A different reporting window must never reuse another window's entry
	assert.NotEqual(t,
		reportCacheKey("kpis", may, june),
		reportCacheKey("kpis", june, july))

	// Different reports over the same window stay separate too
	assert.NotEqual(t,
		reportCacheKey("utilization", may, june),
		reportCacheKey("allocation", may, june))

	// All keys share the prefix the invalidation scan matches on
	assert.Contains(t, reportCacheKey("kpis", may, june), "psa:")
}

func TestAnalyticsService_GetDashboardKPIs(t *testing.T) {
	pg, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer pg.Close()

	svc := NewAnalyticsService(pg, nil, analytics.DefaultWindow, time.Minute)

	mockDB.ExpectQuery("SELECT").
		WithArgs("active", "sent", "overdue").
		WillReturnRows(sqlmock.NewRows([]string{
			"active_projects", "active_resources", "active_clients",
			"total_budget", "total_budget_used", "outstanding_total", "overdue_invoices",
		}).AddRow(3, 5, 2, 100000.0, 40000.0, 12000.0, 1))

	mockDB.ExpectQuery("SELECT .* FROM resources").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "role", "department", "availability",
			"hourly_rate", "is_active", "created_at", "updated_at", "created_by",
		}).AddRow("R1", "Dana", "", "", "Eng", 100, 50.0, true, time.Now(), time.Now(), ""))

	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	mockDB.ExpectQuery("SELECT .* FROM timesheet_entries").
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "resource_id", "project_id", "date", "hours", "billable",
			"notes", "status", "created_at", "updated_at",
		}).AddRow("T1", "R1", "P1", from, 88.0, true, "", "approved", time.Now(), time.Now()))

	kpis, err := svc.GetDashboardKPIs(context.Background(), from, to)
	require.NoError(t, err)

	assert.Equal(t, 3, kpis.ActiveProjects)
	assert.Equal(t, 5, kpis.ActiveResources)
	assert.Equal(t, 2, kpis.ActiveClients)
	assert.Equal(t, 100000.0, kpis.TotalBudget)
	assert.Equal(t, 12000.0, kpis.OutstandingTotal)
	assert.Equal(t, 1, kpis.OverdueInvoices)
	// 88 billable of 22*8 expected = 50%
	assert.Equal(t, 50, kpis.UtilizationPct)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizwana27/psa/db"
)

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeUtilization_SingleResource(t *testing.T) {
	resources := []db.Resource{
		{ID: "R1", Name: "Alice", Department: "Eng", Availability: 100, IsActive: true},
	}
	timesheets := []db.TimesheetEntry{
		{ID: "t1", ResourceID: "R1", ProjectID: "P1", Date: day(3), Hours: 8, Billable: true},
	}
	window := Window{WorkingDays: 22, HoursPerDay: 8}

	report := ComputeUtilization(resources, timesheets, window)

	require.Len(t, report.PerResource, 1)
	r1 := report.PerResource[0]
	assert.Equal(t, 176.0, r1.ExpectedHours)
	assert.Equal(t, 8.0, r1.BillableHours)
	assert.Equal(t, 5, r1.UtilizationPct) // round(8/176*100)
	assert.False(t, r1.IsOverUtilized)
	assert.True(t, r1.IsUnderUtilized)

	assert.Equal(t, 176.0, report.Aggregate.ExpectedHours)
	assert.Equal(t, 5, report.Aggregate.UtilizationPct)
}

func TestComputeUtilization_InactiveResourcesExcluded(t *testing.T) {
	resources := []db.Resource{
		{ID: "R1", Availability: 100, IsActive: true},
		{ID: "R2", Availability: 100, IsActive: false},
	}
	timesheets := []db.TimesheetEntry{
		{ResourceID: "R1", Hours: 88, Billable: true},
		{ResourceID: "R2", Hours: 40, Billable: true}, // still counted in raw totals
	}
	window := Window{WorkingDays: 22, HoursPerDay: 8}

	report := ComputeUtilization(resources, timesheets, window)

	// Only R1 contributes expected hours: 1 * 22 * 8 = 176.
	assert.Equal(t, 176.0, report.Aggregate.ExpectedHours)
	require.Len(t, report.PerResource, 1)
	assert.Equal(t, "R1", report.PerResource[0].ResourceID)
	assert.Equal(t, 50, report.PerResource[0].UtilizationPct)
}

func TestComputeUtilization_PartialAvailability(t *testing.T) {
	resources := []db.Resource{
		{ID: "R1", Availability: 50, IsActive: true},
	}
	timesheets := []db.TimesheetEntry{
		{ResourceID: "R1", Hours: 44, Billable: true},
	}
	window := Window{WorkingDays: 22, HoursPerDay: 8}

	report := ComputeUtilization(resources, timesheets, window)

	require.Len(t, report.PerResource, 1)
	assert.Equal(t, 88.0, report.PerResource[0].ExpectedHours)
	assert.Equal(t, 50, report.PerResource[0].UtilizationPct)
}

func TestComputeUtilization_ZeroGuards(t *testing.T) {
	t.Run("no resources", func(t *testing.T) {
		report := ComputeUtilization(nil, []db.TimesheetEntry{{ResourceID: "ghost", Hours: 8, Billable: true}}, DefaultWindow)
		assert.Equal(t, 0, report.Aggregate.UtilizationPct)
		assert.False(t, report.Aggregate.IsOverUtilized)
		assert.Empty(t, report.PerResource)
	})

	t.Run("zero window", func(t *testing.T) {
		resources := []db.Resource{{ID: "R1", Availability: 100, IsActive: true}}
		timesheets := []db.TimesheetEntry{{ResourceID: "R1", Hours: 8, Billable: true}}
		report := ComputeUtilization(resources, timesheets, Window{})
		assert.Equal(t, 0, report.Aggregate.UtilizationPct)
		require.Len(t, report.PerResource, 1)
		assert.Equal(t, 0, report.PerResource[0].UtilizationPct)
	})

	t.Run("zero availability", func(t *testing.T) {
		resources := []db.Resource{{ID: "R1", Availability: 0, IsActive: true}}
		timesheets := []db.TimesheetEntry{{ResourceID: "R1", Hours: 8, Billable: true}}
		report := ComputeUtilization(resources, timesheets, DefaultWindow)
		require.Len(t, report.PerResource, 1)
		assert.Equal(t, 0.0, report.PerResource[0].ExpectedHours)
		assert.Equal(t, 0, report.PerResource[0].UtilizationPct)
	})
}

func TestComputeUtilization_ThresholdBoundaries(t *testing.T) {
	// expected = 10 working days * 10 h/day = 100h, so hours == pct
	window := Window{WorkingDays: 10, HoursPerDay: 10}
	cases := []struct {
		name  string
		hours float64
		over  bool
		under bool
	}{
		{"exactly 70 is not under", 70, false, false},
		{"just below 70 is under", 69, false, true},
		{"exactly 100 is not over", 100, false, false},
		{"just above 100 is over", 101, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resources := []db.Resource{{ID: "R1", Availability: 100, IsActive: true}}
			timesheets := []db.TimesheetEntry{{ResourceID: "R1", Hours: tc.hours, Billable: true}}
			report := ComputeUtilization(resources, timesheets, window)
			require.Len(t, report.PerResource, 1)
			m := report.PerResource[0]
			assert.Equal(t, tc.over, m.IsOverUtilized)
			assert.Equal(t, tc.under, m.IsUnderUtilized)
			// never both
			assert.False(t, m.IsOverUtilized && m.IsUnderUtilized)
		})
	}
}

func TestComputeUtilization_RoundHalfUp(t *testing.T) {
	// 1.25/100 -> 1.25% rounds to 1; 1.5/100 -> 1.5% rounds to 2
	assert.Equal(t, 1, roundPct(1.25, 100))
	assert.Equal(t, 2, roundPct(1.5, 100))
	assert.Equal(t, 0, roundPct(5, 0))
}

func TestComputeUtilization_MalformedRecordsSkipped(t *testing.T) {
	resources := []db.Resource{
		{ID: "R1", Availability: 100, IsActive: true},
		{ID: "", Availability: 100, IsActive: true},    // missing id
		{ID: "R3", Availability: 150, IsActive: true},  // availability out of range
		{ID: "R4", Availability: -10, IsActive: true},  // negative availability
	}
	timesheets := []db.TimesheetEntry{
		{ResourceID: "R1", Hours: 8, Billable: true},
		{ResourceID: "", Hours: 8, Billable: true},   // missing resource id
		{ResourceID: "R1", Hours: -4, Billable: true}, // negative hours
	}

	report := ComputeUtilization(resources, timesheets, DefaultWindow)

	assert.Equal(t, 3, report.SkippedResources)
	assert.Equal(t, 2, report.SkippedTimesheets)
	require.Len(t, report.PerResource, 1)
	assert.Equal(t, 8.0, report.PerResource[0].BillableHours)
}

func TestComputeUtilization_NonBillableHours(t *testing.T) {
	resources := []db.Resource{{ID: "R1", Availability: 100, IsActive: true}}
	timesheets := []db.TimesheetEntry{
		{ResourceID: "R1", Hours: 40, Billable: true},
		{ResourceID: "R1", Hours: 20, Billable: false},
	}
	window := Window{WorkingDays: 10, HoursPerDay: 8}

	report := ComputeUtilization(resources, timesheets, window)

	require.Len(t, report.PerResource, 1)
	m := report.PerResource[0]
	assert.Equal(t, 60.0, m.TotalHours)
	assert.Equal(t, 40.0, m.BillableHours)
	assert.Equal(t, 50, m.UtilizationPct) // billable only
	assert.Equal(t, 75, m.AllocationPct)  // all hours
}

func TestComputeUtilization_Deterministic(t *testing.T) {
	resources := []db.Resource{
		{ID: "R1", Name: "A", Department: "Eng", Availability: 100, IsActive: true},
		{ID: "R2", Name: "B", Department: "Design", Availability: 80, IsActive: true},
	}
	timesheets := []db.TimesheetEntry{
		{ResourceID: "R1", Hours: 33.5, Billable: true},
		{ResourceID: "R2", Hours: 17.25, Billable: false},
		{ResourceID: "R1", Hours: 4.75, Billable: true},
	}

	first := ComputeUtilization(resources, timesheets, DefaultWindow)
	second := ComputeUtilization(resources, timesheets, DefaultWindow)

	assert.Equal(t, first, second)
}

func TestWindowValidate(t *testing.T) {
	assert.NoError(t, Window{WorkingDays: 22, HoursPerDay: 8}.Validate())
	assert.NoError(t, Window{}.Validate())
	assert.Error(t, Window{WorkingDays: -1, HoursPerDay: 8}.Validate())
	assert.Error(t, Window{WorkingDays: 22, HoursPerDay: -0.5}.Validate())
}

package analytics

import (
	"math"

	"github.com/rizwana27/psa/db"
)

// Utilization thresholds. Both comparisons are strict: a resource at exactly
// 100% is not over-utilized and one at exactly 70% is not under-utilized.
const (
	OverUtilizedThreshold  = 100
	UnderUtilizedThreshold = 70
)

// UtilizationMetric is the derived utilization view for one resource, or for
// the whole team when ResourceID is empty. Hours keep full float precision;
// only the percentages are rounded.
type UtilizationMetric struct {
	ResourceID    string  `json:"resource_id,omitempty"`
	ResourceName  string  `json:"resource_name,omitempty"`
	Department    string  `json:"department,omitempty"`
	TotalHours    float64 `json:"total_hours"`
	BillableHours float64 `json:"billable_hours"`
	ExpectedHours float64 `json:"expected_hours"`

	// round(billable/expected*100); 0 when expected hours is 0
	UtilizationPct int `json:"utilization_percentage"`

	// round(total/expected*100); hours-based allocation, feeds the
	// overallocation notification rule
	AllocationPct int `json:"allocation_percentage"`

	IsOverUtilized  bool `json:"is_over_utilized"`
	IsUnderUtilized bool `json:"is_under_utilized"`
}

// UtilizationReport is the full output of ComputeUtilization.
// SkippedResources/SkippedTimesheets count malformed records dropped from the
// computation so callers can surface a partial-data warning.
type UtilizationReport struct {
	Aggregate         UtilizationMetric   `json:"aggregate"`
	PerResource       []UtilizationMetric `json:"per_resource"`
	SkippedResources  int                 `json:"skipped_resources,omitempty"`
	SkippedTimesheets int                 `json:"skipped_timesheets,omitempty"`
}

// ComputeUtilization derives utilization metrics from a resource set and the
// timesheet entries already filtered to the reporting window.
//
// Pure function: no side effects, deterministic for identical inputs, safe to
// call concurrently. Inactive resources are excluded before aggregation so
// they contribute neither expected hours nor percentage skew. Malformed rows
// (missing resource id, negative hours, availability outside 0-100) are
// skipped and counted rather than aborting the computation.
func ComputeUtilization(resources []db.Resource, timesheets []db.TimesheetEntry, window Window) UtilizationReport {
	report := UtilizationReport{}

	active := make([]db.Resource, 0, len(resources))
	for _, r := range resources {
		if r.ID == "" || r.Availability < 0 || r.Availability > 100 {
			report.SkippedResources++
			continue
		}
		if !r.IsActive {
			continue
		}
		active = append(active, r)
	}

	// Group in-window hours by resource id.
	type bucket struct {
		total    float64
		billable float64
	}
	byResource := make(map[string]*bucket, len(active))
	for _, r := range active {
		byResource[r.ID] = &bucket{}
	}

	var totalHours, totalBillable float64
	for _, ts := range timesheets {
		if ts.ResourceID == "" || ts.Hours < 0 {
			report.SkippedTimesheets++
			continue
		}
		totalHours += ts.Hours
		if ts.Billable {
			totalBillable += ts.Hours
		}
		if b, ok := byResource[ts.ResourceID]; ok {
			b.total += ts.Hours
			if ts.Billable {
				b.billable += ts.Hours
			}
		}
	}

	totalPossible := float64(len(active)) * window.possibleHours()
	aggregatePct := roundPct(totalBillable, totalPossible)
	report.Aggregate = UtilizationMetric{
		TotalHours:      totalHours,
		BillableHours:   totalBillable,
		ExpectedHours:   totalPossible,
		UtilizationPct:  aggregatePct,
		AllocationPct:   roundPct(totalHours, totalPossible),
		IsOverUtilized:  aggregatePct > OverUtilizedThreshold,
		IsUnderUtilized: aggregatePct < UnderUtilizedThreshold,
	}

	report.PerResource = make([]UtilizationMetric, 0, len(active))
	for _, r := range active {
		b := byResource[r.ID]
		expected := window.possibleHours() * r.Availability / 100
		pct := roundPct(b.billable, expected)
		report.PerResource = append(report.PerResource, UtilizationMetric{
			ResourceID:      r.ID,
			ResourceName:    r.Name,
			Department:      r.Department,
			TotalHours:      b.total,
			BillableHours:   b.billable,
			ExpectedHours:   expected,
			UtilizationPct:  pct,
			AllocationPct:   roundPct(b.total, expected),
			IsOverUtilized:  pct > OverUtilizedThreshold,
			IsUnderUtilized: pct < UnderUtilizedThreshold,
		})
	}

	return report
}

// roundPct computes round-half-up(num/den*100) with a zero guard.
// Returns 0 when den is 0 so empty inputs never produce NaN or a panic.
func roundPct(num, den float64) int {
	if den == 0 {
		return 0
	}
	return int(math.Floor(num/den*100 + 0.5))
}

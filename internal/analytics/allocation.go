package analytics

import "github.com/rizwana27/psa/db"

// UnassignedDepartment is the bucket for resources without a department label.
const UnassignedDepartment = "Unassigned"

// DepartmentBreakdown counts allocated vs total resources for one department.
// Allocation here is an existence check (at least one in-window timesheet
// entry), not hours-weighted.
type DepartmentBreakdown struct {
	Department    string `json:"department"`
	Allocated     int    `json:"allocated"`
	Total         int    `json:"total"`
	AllocationPct int    `json:"allocation_percentage"`
}

// AllocationBreakdown is the output of ComputeAllocation.
// SkippedResources/SkippedTimesheets count malformed records dropped from the
// computation, same criteria as ComputeUtilization.
type AllocationBreakdown struct {
	Departments       []DepartmentBreakdown `json:"departments"`
	AllocationPct     int                   `json:"allocation_percentage"`
	TopDepartment     string                `json:"top_department,omitempty"`
	SkippedResources  int                   `json:"skipped_resources,omitempty"`
	SkippedTimesheets int                   `json:"skipped_timesheets,omitempty"`
}

// ComputeAllocation groups resources by department and reports how many have
// recorded any work inside the window. Departments are emitted in first-seen
// input order, which also serves as the tie-break for the top department.
// Pure and zero-guarded like ComputeUtilization.
func ComputeAllocation(resources []db.Resource, timesheets []db.TimesheetEntry, window Window) AllocationBreakdown {
	var skippedResources, skippedTimesheets int

	worked := make(map[string]bool, len(timesheets))
	for _, ts := range timesheets {
		if ts.ResourceID == "" || ts.Hours < 0 {
			skippedTimesheets++
			continue
		}
		worked[ts.ResourceID] = true
	}

	var order []string
	byDept := make(map[string]*DepartmentBreakdown)
	for _, r := range resources {
		if r.ID == "" || r.Availability < 0 || r.Availability > 100 {
			skippedResources++
			continue
		}
		if !r.IsActive {
			continue
		}
		dept := r.Department
		if dept == "" {
			dept = UnassignedDepartment
		}
		b, ok := byDept[dept]
		if !ok {
			b = &DepartmentBreakdown{Department: dept}
			byDept[dept] = b
			order = append(order, dept)
		}
		b.Total++
		if worked[r.ID] {
			b.Allocated++
		}
	}

	result := AllocationBreakdown{
		Departments:       make([]DepartmentBreakdown, 0, len(order)),
		SkippedResources:  skippedResources,
		SkippedTimesheets: skippedTimesheets,
	}
	var sumAllocated, sumTotal, topTotal int
	for _, dept := range order {
		b := byDept[dept]
		b.AllocationPct = roundPct(float64(b.Allocated), float64(b.Total))
		result.Departments = append(result.Departments, *b)
		sumAllocated += b.Allocated
		sumTotal += b.Total
		// strict > keeps the first-encountered department on ties
		if b.Total > topTotal {
			topTotal = b.Total
			result.TopDepartment = dept
		}
	}
	result.AllocationPct = roundPct(float64(sumAllocated), float64(sumTotal))

	return result
}

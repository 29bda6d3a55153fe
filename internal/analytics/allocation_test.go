package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizwana27/psa/db"
)

func TestComputeAllocation_Basic(t *testing.T) {
	resources := []db.Resource{
		{ID: "R1", Department: "Eng", Availability: 100, IsActive: true},
		{ID: "R2", Department: "Eng", Availability: 100, IsActive: true},
		{ID: "R3", Department: "Design", Availability: 100, IsActive: true},
	}
	timesheets := []db.TimesheetEntry{
		{ResourceID: "R1", Hours: 8, Billable: true},
		{ResourceID: "R3", Hours: 2, Billable: false}, // existence check, billable irrelevant
	}

	result := ComputeAllocation(resources, timesheets, DefaultWindow)

	require.Len(t, result.Departments, 2)
	eng := result.Departments[0]
	assert.Equal(t, "Eng", eng.Department)
	assert.Equal(t, 1, eng.Allocated)
	assert.Equal(t, 2, eng.Total)
	assert.Equal(t, 50, eng.AllocationPct)

	design := result.Departments[1]
	assert.Equal(t, 1, design.Allocated)
	assert.Equal(t, 100, design.AllocationPct)

	assert.Equal(t, 67, result.AllocationPct) // round(2/3*100)
	assert.Equal(t, "Eng", result.TopDepartment)
}

func TestComputeAllocation_UnassignedBucket(t *testing.T) {
	resources := []db.Resource{
		{ID: "R1", Department: "", Availability: 100, IsActive: true},
		{ID: "R2", Department: "", Availability: 100, IsActive: true},
	}

	result := ComputeAllocation(resources, nil, DefaultWindow)

	require.Len(t, result.Departments, 1)
	assert.Equal(t, UnassignedDepartment, result.Departments[0].Department)
	assert.Equal(t, 2, result.Departments[0].Total)
	assert.Equal(t, 0, result.Departments[0].AllocationPct)
}

func TestComputeAllocation_EmptyInputs(t *testing.T) {
	result := ComputeAllocation(nil, nil, DefaultWindow)
	assert.Equal(t, 0, result.AllocationPct)
	assert.Empty(t, result.Departments)
	assert.Empty(t, result.TopDepartment)
}

func TestComputeAllocation_TopDepartmentTieBreak(t *testing.T) {
	// Design appears first in input order and has the same headcount as Eng;
	// the tie goes to the first encountered.
	resources := []db.Resource{
		{ID: "R1", Department: "Design", Availability: 100, IsActive: true},
		{ID: "R2", Department: "Eng", Availability: 100, IsActive: true},
		{ID: "R3", Department: "Design", Availability: 100, IsActive: true},
		{ID: "R4", Department: "Eng", Availability: 100, IsActive: true},
	}

	result := ComputeAllocation(resources, nil, DefaultWindow)

	assert.Equal(t, "Design", result.TopDepartment)
}

func TestComputeAllocation_Monotonic(t *testing.T) {
	// Adding one more allocated resource to a department never decreases
	// that department's allocation percentage.
	resources := []db.Resource{
		{ID: "R1", Department: "Eng", Availability: 100, IsActive: true},
		{ID: "R2", Department: "Eng", Availability: 100, IsActive: true},
		{ID: "R3", Department: "Eng", Availability: 100, IsActive: true},
	}
	var timesheets []db.TimesheetEntry
	prev := 0
	for _, id := range []string{"R1", "R2", "R3"} {
		timesheets = append(timesheets, db.TimesheetEntry{ResourceID: id, Hours: 1})
		result := ComputeAllocation(resources, timesheets, DefaultWindow)
		require.Len(t, result.Departments, 1)
		assert.GreaterOrEqual(t, result.Departments[0].AllocationPct, prev)
		prev = result.Departments[0].AllocationPct
	}
	assert.Equal(t, 100, prev)
}

func TestComputeAllocation_CountsMalformedSkips(t *testing.T) {
	resources := []db.Resource{
		{ID: "R1", Department: "Eng", Availability: 100, IsActive: true},
		{ID: "", Department: "Eng", Availability: 100, IsActive: true},   // no id
		{ID: "R3", Department: "Eng", Availability: 150, IsActive: true}, // bad availability
		{ID: "R4", Department: "Eng", Availability: 100, IsActive: false},
	}
	timesheets := []db.TimesheetEntry{
		{ResourceID: "R1", Hours: 8},
		{ResourceID: "", Hours: 8},   // no resource id
		{ResourceID: "R1", Hours: -1}, // negative hours
	}

	result := ComputeAllocation(resources, timesheets, DefaultWindow)

	assert.Equal(t, 2, result.SkippedResources)
	assert.Equal(t, 2, result.SkippedTimesheets)
	// Inactive resources are excluded, not counted as malformed
	require.Len(t, result.Departments, 1)
	assert.Equal(t, 1, result.Departments[0].Total)
}

func TestComputeAllocation_InactiveExcluded(t *testing.T) {
	resources := []db.Resource{
		{ID: "R1", Department: "Eng", Availability: 100, IsActive: true},
		{ID: "R2", Department: "Eng", Availability: 100, IsActive: false},
	}
	timesheets := []db.TimesheetEntry{
		{ResourceID: "R1", Hours: 8},
		{ResourceID: "R2", Hours: 8},
	}

	result := ComputeAllocation(resources, timesheets, DefaultWindow)

	require.Len(t, result.Departments, 1)
	assert.Equal(t, 1, result.Departments[0].Total)
	assert.Equal(t, 100, result.Departments[0].AllocationPct)
}

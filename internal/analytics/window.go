package analytics

import "fmt"

// Window carries the working-day assumptions used to normalize booked hours
// into expected-capacity percentages. The date filtering itself happens at the
// query layer; by the time rows reach the engine they are already in-window.
type Window struct {
	WorkingDays int     `json:"working_days"`
	HoursPerDay float64 `json:"hours_per_day"`
}

// DefaultWindow matches a typical trailing-30-day reporting window.
var DefaultWindow = Window{WorkingDays: 22, HoursPerDay: 8}

// Validate rejects negative window parameters. A zero window is valid input:
// the engine zero-guards every division, so zeros degrade to 0% metrics
// instead of errors. Callers should validate at the boundary before invoking
// the engine with user-supplied values.
func (w Window) Validate() error {
	if w.WorkingDays < 0 {
		return fmt.Errorf("working_days must be >= 0, got %d", w.WorkingDays)
	}
	if w.HoursPerDay < 0 {
		return fmt.Errorf("hours_per_day must be >= 0, got %g", w.HoursPerDay)
	}
	return nil
}

// possibleHours is the full-time capacity the window represents.
func (w Window) possibleHours() float64 {
	return float64(w.WorkingDays) * w.HoursPerDay
}

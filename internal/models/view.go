// ABOUTME: Read models for the run_with_sleep view and the store summary.
// ABOUTME: Recovery is nil when no sleep record applies to the run.
package models

// RunWithRecovery is one row of the run_with_sleep view.
type RunWithRecovery struct {
	Activity
	Recovery *Recovery `json:"recovery,omitempty"`
}

// Summary aggregates the store for the summary command and MCP resource.
type Summary struct {
	Runs           int     `json:"runs"`
	FirstDate      string  `json:"first_date,omitempty"`
	LastDate       string  `json:"last_date,omitempty"`
	TotalKm        float64 `json:"total_km"`
	TotalMiles     float64 `json:"total_miles"`
	SleepDays      int     `json:"sleep_days"`
	RunsWithSleep  int     `json:"runs_with_sleep"`
	RunsWithDevice int     `json:"runs_with_device"`
	LongRuns       int     `json:"long_runs"`
	TotalGels      int     `json:"total_gels"`
	TotalCarbsG    int     `json:"total_carbs_g"`
}

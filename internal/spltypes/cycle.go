package spltypes

import "time"

// Cycle is produced once per tick by the scheduler itself and consumed by
// every other module that needs wall-clock timing (§3, §4.1).
type Cycle struct {
	StartTime time.Time     `json:"startTime"`
	CycleTime time.Duration `json:"cycleTime"`
}

package core

import "time"

// Phase is the engine lifecycle phase.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseReady         Phase = "ready"
	PhaseProcessing    Phase = "processing"
	PhaseReconfiguring Phase = "reconfiguring"
)

// CognitiveState is a read-only snapshot of the engine's running state.
// Both counters are never negative.
type CognitiveState struct {
	StabilityCount int       `json:"stability_count"`
	ViolationCount int       `json:"violation_count"`
	LastSyncTime   time.Time `json:"last_sync_time"`
	ActiveBranch   string    `json:"active_branch"`
	Phase          Phase     `json:"phase"`
	// Processed counts every Process call that reached the pipeline.
	Processed int64 `json:"processed"`
	// InFlight is the number of Process calls running at snapshot time.
	InFlight int64 `json:"in_flight"`
}

package app

import "time"

// Metrics receives operational signals from the board. See internal/metrics
// for the Prometheus implementation.
type Metrics interface {
	MutationApplied(kind, outcome string)
	StoreObserved(op string, d time.Duration)
	SubscribersChanged(delta int)
}

// Mutation outcomes reported to Metrics.
const (
	OutcomeApplied      = "applied"
	OutcomeUnauthorized = "unauthorized"
	OutcomeRejected     = "rejected"
	OutcomeFailed       = "failed"
)

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) MutationApplied(string, string)      {}
func (NopMetrics) StoreObserved(string, time.Duration) {}
func (NopMetrics) SubscribersChanged(int)              {}

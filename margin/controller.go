package margin

import (
	"math"

	"github.com/hupe1980/conceptmesh/core"
)

// Counters are the stability and violation counts that drive the controller.
// Neither counter ever goes negative.
type Counters struct {
	Stability  int
	Violations int
}

// Controller computes margin adjustments from a fixed adaptation policy.
// It is a value type and safe for concurrent use; callers serialize the
// counters they pass in.
type Controller struct {
	policy core.AdaptationPolicy
}

// New creates a controller for policy.
func New(policy core.AdaptationPolicy) Controller {
	return Controller{policy: policy}
}

// Policy returns the controller's policy.
func (c Controller) Policy() core.AdaptationPolicy { return c.policy }

// Bounds returns the inclusive margin range for primary.
func (c Controller) Bounds(primary float64) (lo, hi float64) {
	lo = c.policy.MinMargin
	hi = primary + c.policy.MaxMarginIncrease
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Clamp limits margin to Bounds(primary).
func (c Controller) Clamp(margin, primary float64) float64 {
	lo, hi := c.Bounds(primary)
	return math.Min(math.Max(margin, lo), hi)
}

// Grow applies recovery growth: margin + min(GrowthRate*violations, MaxIncrease).
func (c Controller) Grow(margin, primary float64, violations int) float64 {
	step := math.Min(c.policy.GrowthRate*float64(max(violations, 0)), c.policy.MaxIncrease)
	return c.Clamp(margin+step, primary)
}

// Contract applies multiplicative decrease:
// margin * (1 - min(ContractionRate*stability, MaxContractionPerStep)).
func (c Controller) Contract(margin, primary float64, stability int) float64 {
	factor := math.Min(c.policy.ContractionRate*float64(max(stability, 0)), c.policy.MaxContractionPerStep)
	return c.Clamp(margin*(1-factor), primary)
}

// OnViolation records a violation in n and returns the grown margin.
func (c Controller) OnViolation(n *Counters, margin, primary float64) float64 {
	n.Violations++
	n.Stability = 0
	return c.Grow(margin, primary, n.Violations)
}

// OnSuccess records a stable call in n and returns the contracted margin.
// Reaching the recovery window clears the violation history.
func (c Controller) OnSuccess(n *Counters, margin, primary float64) float64 {
	n.Stability++
	if c.policy.RecoveryWindow > 0 && n.Stability >= c.policy.RecoveryWindow {
		n.Violations = 0
	}
	return c.Contract(margin, primary, n.Stability)
}

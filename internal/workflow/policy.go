package workflow

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Policy maps a request's total amount to the ordered chain of approval
// stages it must traverse. Both thresholds are inclusive: an amount equal to
// a threshold already requires the higher tier.
type Policy struct {
	areaThreshold decimal.Decimal
	execThreshold decimal.Decimal
}

// NewPolicy builds a Policy from the two configured monetary thresholds.
// areaThreshold must not exceed execThreshold and neither may be negative.
func NewPolicy(areaThreshold, execThreshold decimal.Decimal) (Policy, error) {
	if areaThreshold.IsNegative() || execThreshold.IsNegative() {
		return Policy{}, fmt.Errorf("approval thresholds must be non-negative (area=%s exec=%s)", areaThreshold, execThreshold)
	}
	if areaThreshold.GreaterThan(execThreshold) {
		return Policy{}, fmt.Errorf("area threshold %s exceeds executive threshold %s", areaThreshold, execThreshold)
	}
	return Policy{areaThreshold: areaThreshold, execThreshold: execThreshold}, nil
}

// Path returns the ordered stages a request with the given total amount must
// pass, always ending in StageApproved:
//
//	amount <  areaThreshold                  [PendingAreaLead, Approved]
//	amount <  execThreshold                  [PendingAreaLead, PendingExecutive, Approved]
//	amount >= execThreshold                  [PendingAreaLead, PendingExecutive, PendingTreasury, Approved]
//
// The amount of a request is fixed at creation, so the path computed for a
// request never changes over its lifetime.
func (p Policy) Path(amount decimal.Decimal) []Stage {
	path := make([]Stage, 0, 4)
	path = append(path, StagePendingAreaLead)
	if amount.GreaterThanOrEqual(p.areaThreshold) {
		path = append(path, StagePendingExecutive)
	}
	if amount.GreaterThanOrEqual(p.execThreshold) {
		path = append(path, StagePendingTreasury)
	}
	return append(path, StageApproved)
}

// NextStage returns the stage immediately following current in the path
// computed for amount. ok is false when current is the path's final entry or
// does not appear in the path at all; callers must treat that as a terminal
// condition, never as a silent no-op.
func (p Policy) NextStage(current Stage, amount decimal.Decimal) (next Stage, ok bool) {
	path := p.Path(amount)
	for i, stage := range path {
		if stage == current && i+1 < len(path) {
			return path[i+1], true
		}
	}
	return "", false
}

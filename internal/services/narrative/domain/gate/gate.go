// Package gate runs narrative-quality checks over an applied outcome.
//
// Gates never fail: each check that does not hold adds a violation and every
// check runs regardless of earlier results.
package gate

import (
	"strings"

	"github.com/louisbranch/questline/internal/services/narrative/domain/engine"
)

// Gate names.
const (
	GateRules       = "rules"
	GateTime        = "time"
	GateReadability = "readability"
)

// Violation codes.
const (
	CodeMissingRuleRef            = "missing-rule-ref"
	CodeInvalidStateTransition    = "invalid-state-transition"
	CodeMissingPlayerFacingReason = "missing-player-facing-reason"
)

// Violation is one failed check.
type Violation struct {
	Gate    string `json:"gate"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Report is the result of evaluating every gate.
type Report struct {
	OK         bool        `json:"ok"`
	Violations []Violation `json:"violations"`
}

type check func(engine.Outcome) (Violation, bool)

var checks = []check{
	checkRuleRef,
	checkStates,
	checkReadability,
}

// Evaluate runs every gate over outcome in order.
func Evaluate(outcome engine.Outcome) Report {
	violations := make([]Violation, 0, len(checks))
	for _, c := range checks {
		if v, failed := c(outcome); failed {
			violations = append(violations, v)
		}
	}
	return Report{OK: len(violations) == 0, Violations: violations}
}

func checkRuleRef(o engine.Outcome) (Violation, bool) {
	if blank(o.RuleRef) {
		return Violation{
			Gate:    GateRules,
			Code:    CodeMissingRuleRef,
			Message: "transition " + o.TransitionID + " has no rule reference",
		}, true
	}
	return Violation{}, false
}

func checkStates(o engine.Outcome) (Violation, bool) {
	if blank(o.FromState) || blank(o.ToState) {
		return Violation{
			Gate:    GateTime,
			Code:    CodeInvalidStateTransition,
			Message: "transition " + o.TransitionID + " needs both a from and a to state",
		}, true
	}
	return Violation{}, false
}

func checkReadability(o engine.Outcome) (Violation, bool) {
	if !o.EntityType.IsMajor() {
		return Violation{}, false
	}
	if blank(o.PlayerFacingReason) {
		return Violation{
			Gate:    GateReadability,
			Code:    CodeMissingPlayerFacingReason,
			Message: string(o.EntityType) + " transition " + o.TransitionID + " has no player-facing reason",
		}, true
	}
	return Violation{}, false
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

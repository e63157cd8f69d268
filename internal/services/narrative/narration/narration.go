// Package narration defines the contract with the external narration
// generator and validates what it returns.
package narration

import (
	"context"
	"encoding/json"
	"math"

	"github.com/louisbranch/questline/internal/services/narrative/contextpack"
	"github.com/louisbranch/questline/internal/services/narrative/domain/catalog"
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
)

// Candidate is one transition the narrator may pick.
type Candidate struct {
	TransitionID string              `json:"transitionId"`
	EntityType   entity.Type         `json:"entityType"`
	EntityID     string              `json:"entityId"`
	Trigger      string              `json:"trigger"`
	FromState    string              `json:"fromState"`
	ToState      string              `json:"toState"`
	Consequence  string              `json:"consequence"`
	ImpactScope  catalog.ImpactScope `json:"impactScope"`
	RuleRef      string              `json:"ruleRef"`
}

// Request is sent to the narrator.
type Request struct {
	Query       string           `json:"query"`
	ContextPack contextpack.Pack `json:"contextPack"`
	Candidates  []Candidate      `json:"candidates"`
}

// Response is what the narrator returns. SelectedIndex is a raw JSON number
// so fractional or out-of-range picks can be detected.
type Response struct {
	SelectedIndex *float64        `json:"selectedIndex"`
	Reason        string          `json:"reason"`
	Contract      json.RawMessage `json:"contract,omitempty"`
}

// Narrator chooses among candidates.
type Narrator interface {
	Choose(ctx context.Context, req Request) (Response, error)
}

// Selection returns the chosen candidate index. It reports false for a null,
// fractional, non-finite, or out-of-range index.
func (r Response) Selection(candidates int) (int, bool) {
	if r.SelectedIndex == nil {
		return 0, false
	}
	v := *r.SelectedIndex
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, false
	}
	if v < 0 || v >= float64(candidates) {
		return 0, false
	}
	return int(v), true
}

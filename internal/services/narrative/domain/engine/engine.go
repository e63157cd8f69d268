// Package engine resolves narrative transition requests against the catalog.
//
// Matching is deterministic: the catalog is scanned in order and the first
// definition satisfying entity type, current state, and trigger wins.
package engine

import (
	"fmt"

	apperrors "github.com/louisbranch/questline/internal/platform/errors"
	"github.com/louisbranch/questline/internal/services/narrative/domain/catalog"
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
)

// ErrNoMatchingTransition is returned when no catalog entry satisfies a request.
// Use errors.Is; returned errors carry request metadata under the same code.
var ErrNoMatchingTransition = apperrors.New(apperrors.CodeNoMatchingTransition, "no matching transition")

// Request asks for the transition an entity takes on a trigger.
type Request struct {
	EntityType entity.Type
	FromState  string
	Trigger    string
	Mode       catalog.MatchMode
}

// Outcome is the contract produced by a matched definition.
type Outcome struct {
	TransitionID       string              `json:"transitionId"`
	EntityType         entity.Type         `json:"entityType"`
	FromState          string              `json:"fromState"`
	ToState            string              `json:"toState"`
	Consequence        string              `json:"consequence"`
	ImpactScope        catalog.ImpactScope `json:"impactScope"`
	RuleRef            string              `json:"ruleRef"`
	TimeBlock          catalog.TimeBlock   `json:"timeBlock"`
	PlayerFacingReason string              `json:"playerFacingReason,omitempty"`
}

// OutcomeFrom builds the outcome contract for a definition.
func OutcomeFrom(def catalog.Definition) Outcome {
	return Outcome{
		TransitionID:       def.ID,
		EntityType:         def.EntityType,
		FromState:          def.FromState,
		ToState:            def.ToState,
		Consequence:        def.Consequence,
		ImpactScope:        def.ImpactScope,
		RuleRef:            def.RuleRef,
		TimeBlock:          def.TimeBlock,
		PlayerFacingReason: def.PlayerFacingReason,
	}
}

// Engine matches requests against a read-only catalog.
type Engine struct {
	catalog *catalog.Catalog
}

// New creates an engine over c. A nil catalog behaves as an empty one.
func New(c *catalog.Catalog) *Engine {
	if c == nil {
		c = catalog.New(nil)
	}
	return &Engine{catalog: c}
}

// Catalog returns the catalog the engine reads.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Match returns the first definition, in catalog order, matching req.
func (e *Engine) Match(req Request) (catalog.Definition, bool) {
	return e.catalog.First(func(d catalog.Definition) bool {
		return d.Matches(req.EntityType, req.FromState, req.Trigger, req.Mode)
	})
}

// Apply returns the outcome of the unique winning definition for req.
func (e *Engine) Apply(req Request) (Outcome, error) {
	def, ok := e.Match(req)
	if !ok {
		return Outcome{}, apperrors.WithMetadata(
			apperrors.CodeNoMatchingTransition,
			fmt.Sprintf("no %s transition from %q on %q (%s)", req.EntityType, req.FromState, req.Trigger, req.Mode),
			map[string]string{
				"entity_type": string(req.EntityType),
				"from_state":  req.FromState,
				"trigger":     req.Trigger,
				"mode":        req.Mode.String(),
			},
		)
	}
	return OutcomeFrom(def), nil
}

// ListByEntityType returns every definition for entityType in catalog order.
func (e *Engine) ListByEntityType(entityType entity.Type) []catalog.Definition {
	return e.catalog.ByEntityType(entityType)
}

// ValidateCatalog reports integrity problems without failing.
func (e *Engine) ValidateCatalog() []string {
	return catalog.Validate(e.catalog)
}

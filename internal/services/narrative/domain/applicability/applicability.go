// Package applicability decides whether a command can fire against the
// current world state before any write is attempted.
package applicability

import (
	"fmt"

	"github.com/louisbranch/questline/internal/services/narrative/domain/catalog"
	"github.com/louisbranch/questline/internal/services/narrative/domain/command"
	"github.com/louisbranch/questline/internal/services/narrative/domain/engine"
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
	"github.com/louisbranch/questline/internal/services/narrative/domain/state"
)

// Result describes a command's applicability.
type Result struct {
	Applicable bool
	// Definition is the transition that would fire. Set only when Applicable.
	Definition catalog.Definition
	// CurrentState is the entity's recorded state, or its type default.
	CurrentState string
	// FirstSeen is true when the entity has no recorded state yet.
	FirstSeen bool
	Rejection *command.Rejection
}

// Check resolves cmd against the catalog using the entity's current state.
// Unseen entities are treated as being in their type's default state.
func Check(e *engine.Engine, s state.State, cmd command.Command) Result {
	if err := cmd.Validate(); err != nil {
		return Result{Rejection: &command.Rejection{Code: command.RejectionInvalidCommand, Message: err.Error()}}
	}

	current, seen := s.EntityState(cmd.EntityType, cmd.EntityID)
	if !seen {
		current = cmd.EntityType.DefaultState()
	}
	res := Result{CurrentState: current, FirstSeen: !seen}

	mode := cmd.MatchMode()
	var triggered []catalog.Definition
	for _, def := range e.ListByEntityType(cmd.EntityType) {
		if def.MatchesTrigger(cmd.Trigger, mode) {
			triggered = append(triggered, def)
		}
	}
	if len(triggered) == 0 {
		res.Rejection = &command.Rejection{
			Code:    command.RejectionTransitionNotFound,
			Message: fmt.Sprintf("no %s transition answers trigger %q", cmd.EntityType, cmd.Trigger),
		}
		return res
	}

	for _, def := range triggered {
		if entity.EqualText(def.FromState, current) {
			res.Applicable = true
			res.Definition = def
			return res
		}
	}
	for _, def := range triggered {
		if entity.EqualText(def.ToState, current) {
			res.Rejection = &command.Rejection{
				Code:    command.RejectionAlreadyProgressed,
				Message: fmt.Sprintf("%s %s is already %s", cmd.EntityType, cmd.EntityID, current),
			}
			return res
		}
	}
	res.Rejection = &command.Rejection{
		Code:    command.RejectionStateMismatch,
		Message: fmt.Sprintf("%s %s is %s, trigger %q needs %s", cmd.EntityType, cmd.EntityID, current, cmd.Trigger, triggered[0].FromState),
	}
	return res
}

// Partition splits cmds into applicable commands and rejected ones, keeping
// input order within each group.
func Partition(e *engine.Engine, s state.State, cmds []command.Command) ([]command.Command, []command.Rejected) {
	applicable := make([]command.Command, 0, len(cmds))
	rejected := make([]command.Rejected, 0)
	for _, cmd := range cmds {
		res := Check(e, s, cmd)
		if res.Applicable {
			applicable = append(applicable, cmd)
			continue
		}
		rejected = append(rejected, command.Rejected{Command: cmd, Rejection: *res.Rejection})
	}
	return applicable, rejected
}

// Package runtime applies commands to world state through the transition engine.
package runtime

import (
	"time"

	"github.com/louisbranch/questline/internal/services/narrative/domain/command"
	"github.com/louisbranch/questline/internal/services/narrative/domain/engine"
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
	"github.com/louisbranch/questline/internal/services/narrative/domain/state"
)

// Result is the triad produced by a successful apply.
type Result struct {
	State   state.State
	Outcome engine.Outcome
	Entry   state.HistoryEntry
}

// Runtime advances world state one command at a time.
type Runtime struct {
	engine *engine.Engine
	now    func() time.Time
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithClock overrides the wall clock used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runtime) {
		if now != nil {
			r.now = now
		}
	}
}

// New builds a runtime over e.
func New(e *engine.Engine, opts ...Option) *Runtime {
	r := &Runtime{engine: e, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Engine returns the transition engine the runtime delegates to.
func (r *Runtime) Engine() *engine.Engine {
	return r.engine
}

// CreateInitialState returns an empty world.
func (r *Runtime) CreateInitialState() state.State {
	return state.Initial()
}

// CurrentState resolves an entity's recorded state, or entity.UnknownState
// when the entity has never been seen.
func CurrentState(s state.State, entityType entity.Type, entityID string) string {
	if value, ok := s.EntityState(entityType, entityID); ok {
		return value
	}
	return entity.UnknownState
}

// ApplyTransition returns the state that results from cmd. The input state is
// never modified. Engine failures, including engine.ErrNoMatchingTransition,
// are returned as is.
func (r *Runtime) ApplyTransition(s state.State, cmd command.Command) (Result, error) {
	from := CurrentState(s, cmd.EntityType, cmd.EntityID)
	outcome, err := r.engine.Apply(engine.Request{
		EntityType: cmd.EntityType,
		FromState:  from,
		Trigger:    cmd.Trigger,
		Mode:       cmd.MatchMode(),
	})
	if err != nil {
		return Result{}, err
	}

	next := s.WithEntityState(cmd.EntityType, cmd.EntityID, outcome.ToState)
	next.Clock = next.Clock.Advance(outcome.TimeBlock)
	hour := next.Clock.Hour
	entry := state.HistoryEntry{
		At:           r.now().UTC(),
		TransitionID: outcome.TransitionID,
		EntityType:   outcome.EntityType,
		EntityID:     cmd.EntityID,
		FromState:    from,
		ToState:      outcome.ToState,
		Trigger:      cmd.Trigger,
		Consequence:  outcome.Consequence,
		ImpactScope:  outcome.ImpactScope,
		RuleRef:      outcome.RuleRef,
		ClockHour:    &hour,
	}
	next = next.WithHistory(entry)
	return Result{State: next, Outcome: outcome, Entry: entry}, nil
}

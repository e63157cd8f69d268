package app

import (
	"context"
	"log"

	"go.opentelemetry.io/otel/attribute"

	"github.com/louisbranch/questline/internal/services/narrative/domain/command"
	"github.com/louisbranch/questline/internal/services/narrative/domain/engine"
	"github.com/louisbranch/questline/internal/services/narrative/domain/gate"
	"github.com/louisbranch/questline/internal/services/narrative/domain/state"
	"github.com/louisbranch/questline/internal/services/narrative/journal"
)

// GuardedResult reports a gated apply. Outcome and Entry are nil when the
// write was vetoed.
type GuardedResult struct {
	Applied         bool                `json:"applied"`
	BlockedByGuards bool                `json:"blockedByGuards"`
	Checks          gate.Report         `json:"checks"`
	Outcome         *engine.Outcome     `json:"outcome"`
	Entry           *state.HistoryEntry `json:"historyEntry,omitempty"`
}

type guardOptions struct {
	blockOnFailure bool
}

// GuardOption configures ApplyTransitionAndSaveWithGuards.
type GuardOption func(*guardOptions)

// WithBlockOnFailure controls whether failed gates veto the write. The
// default is true; false logs the violations and persists anyway.
func WithBlockOnFailure(block bool) GuardOption {
	return func(o *guardOptions) {
		o.blockOnFailure = block
	}
}

// ApplyTransitionAndSaveWithGuards applies cmd, evaluates coherence gates on
// the outcome, and persists the new state unless gates fail while blocking.
func (s *Service) ApplyTransitionAndSaveWithGuards(ctx context.Context, cmd command.Command, opts ...GuardOption) (GuardedResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyGuarded(ctx, cmd, opts...)
}

func (s *Service) applyGuarded(ctx context.Context, cmd command.Command, opts ...GuardOption) (GuardedResult, error) {
	ctx, span := s.startSpan(ctx, "narrative.apply_guarded", cmd)
	defer span.End()

	o := guardOptions{blockOnFailure: true}
	for _, opt := range opts {
		opt(&o)
	}

	current, err := s.load(ctx)
	if err != nil {
		return GuardedResult{}, recordSpanError(span, err)
	}
	res, err := s.runtime.ApplyTransition(current, cmd)
	if err != nil {
		return GuardedResult{}, recordSpanError(span, err)
	}
	checks := gate.Evaluate(res.Outcome)
	span.SetAttributes(
		attribute.String("narrative.transition_id", res.Outcome.TransitionID),
		attribute.Bool("narrative.gates_ok", checks.OK),
	)

	if !checks.OK && o.blockOnFailure {
		span.SetAttributes(attribute.Bool("narrative.blocked", true))
		outcome := res.Outcome
		s.record(journal.Entry{Kind: journal.KindBlocked, Command: cmd, Outcome: &outcome, Violations: checks.Violations})
		return GuardedResult{Applied: false, BlockedByGuards: true, Checks: checks}, nil
	}

	if !checks.OK {
		log.Printf("narrative gates failed for %s, persisting anyway: %d violation(s)", res.Outcome.TransitionID, len(checks.Violations))
	}
	if err := s.save(ctx, res.State); err != nil {
		return GuardedResult{}, recordSpanError(span, err)
	}
	outcome := res.Outcome
	entry := res.Entry
	s.record(journal.Entry{Kind: journal.KindApplied, Command: cmd, Outcome: &outcome, Violations: checks.Violations})
	return GuardedResult{Applied: true, Checks: checks, Outcome: &outcome, Entry: &entry}, nil
}

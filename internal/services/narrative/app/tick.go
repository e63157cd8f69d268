package app

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/louisbranch/questline/internal/services/narrative/domain/applicability"
	"github.com/louisbranch/questline/internal/services/narrative/domain/command"
	"github.com/louisbranch/questline/internal/services/narrative/domain/orchestrator"
	"github.com/louisbranch/questline/internal/services/narrative/domain/state"
	"github.com/louisbranch/questline/internal/services/narrative/journal"
)

// Tick statuses.
const (
	// TickIdle means no command was selected.
	TickIdle = "idle"
	// TickRejected means the selected command is not applicable.
	TickRejected = "rejected"
	// TickBlocked means the command applied mechanically but coherence
	// gates vetoed the write.
	TickBlocked = "blocked"
	// TickApplied means the new state was persisted.
	TickApplied = "applied"
)

// TickResult reports one orchestration cycle.
type TickResult struct {
	Status    string                `json:"status"`
	Decision  orchestrator.Decision `json:"decision"`
	Rejection *command.Rejection    `json:"rejection,omitempty"`
	Guarded   *GuardedResult        `json:"guarded,omitempty"`
}

// SafeTickResult is a TickResult plus the commands filtered out before
// scoring.
type SafeTickResult struct {
	TickResult
	Filtered []command.Rejected `json:"filtered"`
}

// Tick picks one command from candidates and attempts it through the guarded
// path. Guard options apply to that final write.
func (s *Service) Tick(ctx context.Context, candidates []command.Command, opts ...GuardOption) (TickResult, error) {
	ctx, span := s.tracer.Start(ctx, "narrative.tick")
	defer span.End()
	span.SetAttributes(attribute.Int("narrative.candidates", len(candidates)))

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.tick(ctx, candidates, opts...)
	if err != nil {
		return TickResult{}, recordSpanError(span, err)
	}
	span.SetAttributes(attribute.String("narrative.tick_status", res.Status))
	return res, nil
}

// SafeTick drops commands that cannot currently fire, then ticks over the
// rest.
func (s *Service) SafeTick(ctx context.Context, candidates []command.Command, opts ...GuardOption) (SafeTickResult, error) {
	ctx, span := s.tracer.Start(ctx, "narrative.tick_safe")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return SafeTickResult{}, recordSpanError(span, err)
	}
	applicable, filtered := applicability.Partition(s.Engine(), current, candidates)
	span.SetAttributes(
		attribute.Int("narrative.candidates", len(candidates)),
		attribute.Int("narrative.filtered", len(filtered)),
	)

	res, err := s.tick(ctx, applicable, opts...)
	if err != nil {
		return SafeTickResult{}, recordSpanError(span, err)
	}
	span.SetAttributes(attribute.String("narrative.tick_status", res.Status))
	return SafeTickResult{TickResult: res, Filtered: filtered}, nil
}

func (s *Service) tick(ctx context.Context, candidates []command.Command, opts ...GuardOption) (TickResult, error) {
	current, err := s.load(ctx)
	if err != nil {
		return TickResult{}, err
	}

	decision := s.orchestrator.DecideNext(orchestrator.Input{State: current, AvailableCommands: candidates})
	if decision.Selected == nil {
		return TickResult{Status: TickIdle, Decision: decision}, nil
	}
	cmd := *decision.Selected

	check, err := s.prepare(ctx, current, cmd)
	if err != nil {
		return TickResult{}, err
	}
	if !check.Applicable {
		return TickResult{Status: TickRejected, Decision: decision, Rejection: check.Rejection}, nil
	}

	guarded, err := s.applyGuarded(ctx, cmd, opts...)
	if err != nil {
		return TickResult{}, err
	}
	res := TickResult{Status: TickApplied, Decision: decision, Guarded: &guarded}
	if guarded.BlockedByGuards {
		res.Status = TickBlocked
		res.Rejection = &command.Rejection{
			Code:    command.RejectionGuardBlocked,
			Message: "coherence gates vetoed the transition",
		}
	}
	return res, nil
}

// prepare checks cmd against current and, when it can fire on a first-seen
// entity, persists that entity's default starting state so the runtime
// resolves the same state the check used. Rejections are journaled.
func (s *Service) prepare(ctx context.Context, current state.State, cmd command.Command) (applicability.Result, error) {
	check := applicability.Check(s.Engine(), current, cmd)
	if !check.Applicable {
		s.record(journal.Entry{Kind: journal.KindRejected, Command: cmd, Rejection: check.Rejection})
		return check, nil
	}
	if check.FirstSeen {
		seeded := current.WithEntityState(cmd.EntityType, cmd.EntityID, check.CurrentState)
		if err := s.save(ctx, seeded); err != nil {
			return applicability.Result{}, err
		}
	}
	return check, nil
}

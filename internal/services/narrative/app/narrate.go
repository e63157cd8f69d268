package app

import (
	"context"
	"fmt"
	"log"

	"github.com/louisbranch/questline/internal/services/narrative/contextpack"
	"github.com/louisbranch/questline/internal/services/narrative/domain/applicability"
	"github.com/louisbranch/questline/internal/services/narrative/domain/command"
	"github.com/louisbranch/questline/internal/services/narrative/narration"
)

// Narration reasons reported when nothing is applied.
const (
	ReasonNoNarrator             = "no narrator configured"
	ReasonNoApplicableCandidates = "no applicable candidates"
	ReasonNarratorFailed         = "narrator unavailable"
	ReasonInvalidSelection       = "narrator returned no valid selection"
)

// NarrationInput is the material for one narrated step.
type NarrationInput struct {
	Query    string
	Commands []command.Command
	Lore     []contextpack.Record
}

// NarrationResult reports a narrated step. Selected is nil when nothing was
// chosen. Rejection is set when the pick stopped being applicable before it
// could be applied, and Guarded is set once the pick was attempted.
type NarrationResult struct {
	ContextPack contextpack.Pack      `json:"contextPack"`
	Candidates  []narration.Candidate `json:"candidates"`
	Selected    *command.Command      `json:"selected,omitempty"`
	Reason      string                `json:"reason"`
	Response    *narration.Response   `json:"response,omitempty"`
	Rejection   *command.Rejection    `json:"rejection,omitempty"`
	Guarded     *GuardedResult        `json:"guarded,omitempty"`
}

// NarrateAndApply asks the narrator to pick one of the applicable commands
// and applies the pick through the guarded path. Context-pack failures are
// returned as errors; narrator failures and invalid picks produce a result
// with no selection and leave the world state untouched.
func (s *Service) NarrateAndApply(ctx context.Context, in NarrationInput, opts ...GuardOption) (NarrationResult, error) {
	ctx, span := s.tracer.Start(ctx, "narrative.narrate")
	defer span.End()

	pack, err := s.contexts.Build(in.Query, in.Lore)
	if err != nil {
		return NarrationResult{}, recordSpanError(span, err)
	}
	res := NarrationResult{ContextPack: pack}

	applicable, candidates, err := s.narrationCandidates(ctx, in.Commands)
	if err != nil {
		return NarrationResult{}, recordSpanError(span, err)
	}
	res.Candidates = candidates
	if len(candidates) == 0 {
		res.Reason = ReasonNoApplicableCandidates
		return res, nil
	}
	if s.narrator == nil {
		res.Reason = ReasonNoNarrator
		return res, nil
	}

	resp, err := s.narrator.Choose(ctx, narration.Request{Query: in.Query, ContextPack: pack, Candidates: candidates})
	if err != nil {
		log.Printf("narrator: %v", err)
		span.RecordError(err)
		res.Reason = fmt.Sprintf("%s: %v", ReasonNarratorFailed, err)
		return res, nil
	}
	res.Response = &resp
	idx, ok := resp.Selection(len(candidates))
	if !ok {
		res.Reason = ReasonInvalidSelection
		return res, nil
	}

	cmd := applicable[idx]
	res.Selected = &cmd
	res.Reason = resp.Reason

	s.mu.Lock()
	defer s.mu.Unlock()
	// The state may have moved while the narrator was deciding.
	current, err := s.load(ctx)
	if err != nil {
		return NarrationResult{}, recordSpanError(span, err)
	}
	check, err := s.prepare(ctx, current, cmd)
	if err != nil {
		return NarrationResult{}, recordSpanError(span, err)
	}
	if !check.Applicable {
		res.Rejection = check.Rejection
		return res, nil
	}
	guarded, err := s.applyGuarded(ctx, cmd, opts...)
	if err != nil {
		return NarrationResult{}, recordSpanError(span, err)
	}
	res.Guarded = &guarded
	return res, nil
}

// narrationCandidates loads the state once and describes every applicable
// command. The lock is released before the narrator is called.
func (s *Service) narrationCandidates(ctx context.Context, cmds []command.Command) ([]command.Command, []narration.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	var (
		applicable []command.Command
		candidates []narration.Candidate
	)
	for _, cmd := range cmds {
		check := applicability.Check(s.Engine(), current, cmd)
		if !check.Applicable {
			continue
		}
		def := check.Definition
		applicable = append(applicable, cmd)
		candidates = append(candidates, narration.Candidate{
			TransitionID: def.ID,
			EntityType:   def.EntityType,
			EntityID:     cmd.EntityID,
			Trigger:      cmd.Trigger,
			FromState:    check.CurrentState,
			ToState:      def.ToState,
			Consequence:  def.Consequence,
			ImpactScope:  def.ImpactScope,
			RuleRef:      def.RuleRef,
		})
	}
	return applicable, candidates, nil
}

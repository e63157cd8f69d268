package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/louisbranch/questline/internal/services/narrative/app"
	"github.com/louisbranch/questline/internal/services/narrative/domain/command"
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
	"github.com/louisbranch/questline/internal/services/narrative/domain/gate"
	"github.com/louisbranch/questline/internal/services/narrative/domain/state"
)

// Narrative is the slice of the narrative service the MCP tools drive.
type Narrative interface {
	LoadState(ctx context.Context) (state.State, error)
	ApplyTransitionAndSaveWithGuards(ctx context.Context, cmd command.Command, opts ...app.GuardOption) (app.GuardedResult, error)
	Tick(ctx context.Context, candidates []command.Command, opts ...app.GuardOption) (app.TickResult, error)
	SafeTick(ctx context.Context, candidates []command.Command, opts ...app.GuardOption) (app.SafeTickResult, error)
	Candidates(ctx context.Context, cmds []command.Command) ([]app.Candidate, error)
	History(ctx context.Context, filter string, limit int) ([]state.HistoryEntry, error)
}

// CommandInput is a narrative command as sent by MCP clients.
type CommandInput struct {
	EntityType    string `json:"entity_type" jsonschema:"entity type (quest, trama, companion, trade)"`
	EntityID      string `json:"entity_id" jsonschema:"entity identifier"`
	Trigger       string `json:"trigger" jsonschema:"trigger text describing what happened"`
	StrictTrigger *bool  `json:"strict_trigger,omitempty" jsonschema:"exact trigger matching (default true); false allows substring matches"`
}

func (in CommandInput) command() command.Command {
	return command.Command{
		EntityType:    entity.Type(entity.NormalizeText(in.EntityType)),
		EntityID:      in.EntityID,
		Trigger:       in.Trigger,
		StrictTrigger: in.StrictTrigger,
	}
}

func commands(in []CommandInput) []command.Command {
	out := make([]command.Command, 0, len(in))
	for _, c := range in {
		out = append(out, c.command())
	}
	return out
}

// CommandResult echoes a command back to the client.
type CommandResult struct {
	EntityType    string `json:"entity_type" jsonschema:"entity type"`
	EntityID      string `json:"entity_id" jsonschema:"entity identifier"`
	Trigger       string `json:"trigger" jsonschema:"trigger text"`
	StrictTrigger bool   `json:"strict_trigger" jsonschema:"whether the trigger is matched exactly"`
}

func commandResult(c command.Command) CommandResult {
	return CommandResult{
		EntityType:    string(c.EntityType),
		EntityID:      c.EntityID,
		Trigger:       c.Trigger,
		StrictTrigger: c.Strict(),
	}
}

// RejectionResult explains why a command did not fire.
type RejectionResult struct {
	Code    string `json:"code" jsonschema:"rejection code"`
	Message string `json:"message" jsonschema:"human-readable explanation"`
}

func rejectionResult(r *command.Rejection) *RejectionResult {
	if r == nil {
		return nil
	}
	return &RejectionResult{Code: r.Code, Message: r.Message}
}

// ViolationResult is one failed coherence gate.
type ViolationResult struct {
	Gate    string `json:"gate" jsonschema:"gate name (rules, time, readability)"`
	Code    string `json:"code" jsonschema:"violation code"`
	Message string `json:"message" jsonschema:"violation detail"`
}

func violationResults(vs []gate.Violation) []ViolationResult {
	out := make([]ViolationResult, 0, len(vs))
	for _, v := range vs {
		out = append(out, ViolationResult{Gate: v.Gate, Code: v.Code, Message: v.Message})
	}
	return out
}

// HistoryEntryResult is one applied transition.
type HistoryEntryResult struct {
	At           string   `json:"at" jsonschema:"RFC3339 timestamp when the transition was applied"`
	TransitionID string   `json:"transition_id" jsonschema:"catalog transition identifier"`
	EntityType   string   `json:"entity_type" jsonschema:"entity type"`
	EntityID     string   `json:"entity_id" jsonschema:"entity identifier"`
	FromState    string   `json:"from_state" jsonschema:"state before the transition"`
	ToState      string   `json:"to_state" jsonschema:"state after the transition"`
	Trigger      string   `json:"trigger" jsonschema:"trigger text that fired the transition"`
	Consequence  string   `json:"consequence" jsonschema:"narrative consequence"`
	ImpactScope  string   `json:"impact_scope" jsonschema:"impact scope (local, regional, global)"`
	RuleRef      string   `json:"rule_ref" jsonschema:"rule reference"`
	ClockHour    *float64 `json:"clock_hour,omitempty" jsonschema:"in-world hour counter after the transition"`
}

func historyEntryResult(e state.HistoryEntry) HistoryEntryResult {
	return HistoryEntryResult{
		At:           e.At.UTC().Format(time.RFC3339Nano),
		TransitionID: e.TransitionID,
		EntityType:   string(e.EntityType),
		EntityID:     e.EntityID,
		FromState:    e.FromState,
		ToState:      e.ToState,
		Trigger:      e.Trigger,
		Consequence:  e.Consequence,
		ImpactScope:  string(e.ImpactScope),
		RuleRef:      e.RuleRef,
		ClockHour:    e.ClockHour,
	}
}

func historyEntryResults(entries []state.HistoryEntry) []HistoryEntryResult {
	out := make([]HistoryEntryResult, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntryResult(e))
	}
	return out
}

// ClockResult is the in-world clock.
type ClockResult struct {
	Hour    float64 `json:"hour" jsonschema:"hours elapsed"`
	Day     float64 `json:"day" jsonschema:"days elapsed"`
	Special float64 `json:"special" jsonschema:"special time blocks elapsed"`
}

// StateResult is the persisted world state.
type StateResult struct {
	Quests     map[string]string    `json:"quests" jsonschema:"quest states by id"`
	Tramas     map[string]string    `json:"tramas" jsonschema:"trama states by id"`
	Companions map[string]string    `json:"companions" jsonschema:"companion states by id"`
	Trades     map[string]string    `json:"trades" jsonschema:"trade states by id"`
	Clock      ClockResult          `json:"clock" jsonschema:"in-world clock"`
	History    []HistoryEntryResult `json:"history" jsonschema:"applied transitions, oldest first"`
}

func stateResult(s state.State) StateResult {
	return StateResult{
		Quests:     s.Quests,
		Tramas:     s.Tramas,
		Companions: s.Companions,
		Trades:     s.Trades,
		Clock:      ClockResult{Hour: s.Clock.Hour, Day: s.Clock.Day, Special: s.Clock.Special},
		History:    historyEntryResults(s.History),
	}
}

func guardOptions(blockOnFailure *bool) []app.GuardOption {
	if blockOnFailure == nil {
		return nil
	}
	return []app.GuardOption{app.WithBlockOnFailure(*blockOnFailure)}
}

// ResourceUpdateNotifier tells subscribed clients that a resource changed.
type ResourceUpdateNotifier func(ctx context.Context, uri string)

func notifyStateChanged(ctx context.Context, notify ResourceUpdateNotifier, applied bool) {
	if notify == nil || !applied {
		return
	}
	notify(ctx, stateResourceURI)
}

func requireNarrative(n Narrative) error {
	if n == nil {
		return fmt.Errorf("narrative service is not configured")
	}
	return nil
}

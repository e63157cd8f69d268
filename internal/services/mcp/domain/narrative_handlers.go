package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/questline/internal/services/narrative/app"
	"github.com/louisbranch/questline/internal/services/narrative/domain/command"
)

// StateGetInput represents the MCP tool input for reading the world state.
type StateGetInput struct{}

// StateGetTool defines the MCP tool schema for reading the world state.
func StateGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "narrative_state",
		Description: "Returns the persisted world state: entity states, in-world clock, and transition history.",
	}
}

// StateGetHandler returns the persisted world state.
func StateGetHandler(n Narrative) mcp.ToolHandlerFor[StateGetInput, StateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ StateGetInput) (*mcp.CallToolResult, StateResult, error) {
		if err := requireNarrative(n); err != nil {
			return nil, StateResult{}, err
		}
		s, err := n.LoadState(ctx)
		if err != nil {
			return nil, StateResult{}, fmt.Errorf("load state failed: %w", err)
		}
		return nil, stateResult(s), nil
	}
}

// ApplyInput represents the MCP tool input for a guarded transition.
type ApplyInput struct {
	EntityType     string `json:"entity_type" jsonschema:"entity type (quest, trama, companion, trade)"`
	EntityID       string `json:"entity_id" jsonschema:"entity identifier"`
	Trigger        string `json:"trigger" jsonschema:"trigger text describing what happened"`
	StrictTrigger  *bool  `json:"strict_trigger,omitempty" jsonschema:"exact trigger matching (default true); false allows substring matches"`
	BlockOnFailure *bool  `json:"block_on_failure,omitempty" jsonschema:"veto the write when coherence gates fail (default true)"`
}

func (in ApplyInput) command() command.Command {
	return CommandInput{
		EntityType:    in.EntityType,
		EntityID:      in.EntityID,
		Trigger:       in.Trigger,
		StrictTrigger: in.StrictTrigger,
	}.command()
}

// ApplyResult represents the MCP tool output for a guarded transition.
type ApplyResult struct {
	Applied         bool                `json:"applied" jsonschema:"whether the new state was persisted"`
	BlockedByGuards bool                `json:"blocked_by_guards" jsonschema:"whether coherence gates vetoed the write"`
	Violations      []ViolationResult   `json:"violations" jsonschema:"failed coherence gates"`
	TransitionID    string              `json:"transition_id,omitempty" jsonschema:"applied catalog transition"`
	FromState       string              `json:"from_state,omitempty" jsonschema:"state before the transition"`
	ToState         string              `json:"to_state,omitempty" jsonschema:"state after the transition"`
	Consequence     string              `json:"consequence,omitempty" jsonschema:"narrative consequence"`
	Entry           *HistoryEntryResult `json:"history_entry,omitempty" jsonschema:"history entry appended by the transition"`
}

func applyResult(res app.GuardedResult) ApplyResult {
	out := ApplyResult{
		Applied:         res.Applied,
		BlockedByGuards: res.BlockedByGuards,
		Violations:      violationResults(res.Checks.Violations),
	}
	if res.Outcome != nil {
		out.TransitionID = res.Outcome.TransitionID
		out.FromState = res.Outcome.FromState
		out.ToState = res.Outcome.ToState
		out.Consequence = res.Outcome.Consequence
	}
	if res.Entry != nil {
		entry := historyEntryResult(*res.Entry)
		out.Entry = &entry
	}
	return out
}

// ApplyTool defines the MCP tool schema for a guarded transition.
func ApplyTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "narrative_apply",
		Description: "Applies one narrative command through the coherence gates and persists the result unless a gate vetoes it.",
	}
}

// ApplyHandler applies one command through the guarded path.
func ApplyHandler(n Narrative, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[ApplyInput, ApplyResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ApplyInput) (*mcp.CallToolResult, ApplyResult, error) {
		if err := requireNarrative(n); err != nil {
			return nil, ApplyResult{}, err
		}
		cmd := input.command()
		if err := cmd.Validate(); err != nil {
			return nil, ApplyResult{}, err
		}
		res, err := n.ApplyTransitionAndSaveWithGuards(ctx, cmd, guardOptions(input.BlockOnFailure)...)
		if err != nil {
			return nil, ApplyResult{}, fmt.Errorf("apply transition failed: %w", err)
		}
		notifyStateChanged(ctx, notify, res.Applied)
		return nil, applyResult(res), nil
	}
}

// TickInput represents the MCP tool input for one orchestration cycle.
type TickInput struct {
	Commands       []CommandInput `json:"commands" jsonschema:"candidate commands to choose from"`
	Safe           bool           `json:"safe,omitempty" jsonschema:"filter out commands that cannot fire before scoring"`
	BlockOnFailure *bool          `json:"block_on_failure,omitempty" jsonschema:"veto the write when coherence gates fail (default true)"`
}

// FilteredResult is a command dropped before scoring.
type FilteredResult struct {
	Command   CommandResult   `json:"command" jsonschema:"filtered command"`
	Rejection RejectionResult `json:"rejection" jsonschema:"why the command was filtered"`
}

// TickResult represents the MCP tool output for one orchestration cycle.
type TickResult struct {
	Status          string           `json:"status" jsonschema:"cycle status (idle, rejected, blocked, applied)"`
	Selected        *CommandResult   `json:"selected,omitempty" jsonschema:"command chosen by the orchestrator"`
	Reason          string           `json:"reason" jsonschema:"why the command was chosen"`
	PriorityScore   *int             `json:"priority_score,omitempty" jsonschema:"score of the chosen command"`
	CooldownApplied bool             `json:"cooldown_applied" jsonschema:"whether the major-event cooldown penalty was active"`
	Rejection       *RejectionResult `json:"rejection,omitempty" jsonschema:"why the chosen command did not apply"`
	Apply           *ApplyResult     `json:"apply,omitempty" jsonschema:"guarded apply result for the chosen command"`
	Filtered        []FilteredResult `json:"filtered,omitempty" jsonschema:"commands filtered out before scoring"`
}

func tickResult(res app.TickResult) TickResult {
	out := TickResult{
		Status:          res.Status,
		Reason:          res.Decision.Reason,
		PriorityScore:   res.Decision.PriorityScore,
		CooldownApplied: res.Decision.CooldownApplied,
		Rejection:       rejectionResult(res.Rejection),
	}
	if res.Decision.Selected != nil {
		selected := commandResult(*res.Decision.Selected)
		out.Selected = &selected
	}
	if res.Guarded != nil {
		applied := applyResult(*res.Guarded)
		out.Apply = &applied
	}
	return out
}

// TickTool defines the MCP tool schema for one orchestration cycle.
func TickTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "narrative_tick",
		Description: "Scores candidate commands, picks the most pressing one, and attempts it through the coherence gates.",
	}
}

// TickHandler runs one orchestration cycle.
func TickHandler(n Narrative, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[TickInput, TickResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TickInput) (*mcp.CallToolResult, TickResult, error) {
		if err := requireNarrative(n); err != nil {
			return nil, TickResult{}, err
		}
		cmds := commands(input.Commands)
		opts := guardOptions(input.BlockOnFailure)
		if !input.Safe {
			res, err := n.Tick(ctx, cmds, opts...)
			if err != nil {
				return nil, TickResult{}, fmt.Errorf("tick failed: %w", err)
			}
			notifyStateChanged(ctx, notify, res.Status == app.TickApplied)
			return nil, tickResult(res), nil
		}

		res, err := n.SafeTick(ctx, cmds, opts...)
		if err != nil {
			return nil, TickResult{}, fmt.Errorf("safe tick failed: %w", err)
		}
		notifyStateChanged(ctx, notify, res.Status == app.TickApplied)
		out := tickResult(res.TickResult)
		out.Filtered = make([]FilteredResult, 0, len(res.Filtered))
		for _, f := range res.Filtered {
			out.Filtered = append(out.Filtered, FilteredResult{
				Command:   commandResult(f.Command),
				Rejection: RejectionResult{Code: f.Rejection.Code, Message: f.Rejection.Message},
			})
		}
		return nil, out, nil
	}
}

// CandidatesInput represents the MCP tool input for an applicability check.
type CandidatesInput struct {
	Commands []CommandInput `json:"commands" jsonschema:"commands to check"`
}

// CandidateResult reports whether one command can fire.
type CandidateResult struct {
	Command      CommandResult    `json:"command" jsonschema:"checked command"`
	Applicable   bool             `json:"applicable" jsonschema:"whether the command can fire now"`
	CurrentState string           `json:"current_state" jsonschema:"entity state the check used"`
	TransitionID string           `json:"transition_id,omitempty" jsonschema:"transition that would fire"`
	ToState      string           `json:"to_state,omitempty" jsonschema:"state the entity would move to"`
	Rejection    *RejectionResult `json:"rejection,omitempty" jsonschema:"why the command cannot fire"`
}

// CandidatesResult represents the MCP tool output for an applicability check.
type CandidatesResult struct {
	Candidates []CandidateResult `json:"candidates" jsonschema:"one entry per input command, in order"`
}

// CandidatesTool defines the MCP tool schema for an applicability check.
func CandidatesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "narrative_candidates",
		Description: "Checks which commands can fire against the current world state without changing it.",
	}
}

// CandidatesHandler checks commands without applying them.
func CandidatesHandler(n Narrative) mcp.ToolHandlerFor[CandidatesInput, CandidatesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CandidatesInput) (*mcp.CallToolResult, CandidatesResult, error) {
		if err := requireNarrative(n); err != nil {
			return nil, CandidatesResult{}, err
		}
		checked, err := n.Candidates(ctx, commands(input.Commands))
		if err != nil {
			return nil, CandidatesResult{}, fmt.Errorf("candidates failed: %w", err)
		}
		out := CandidatesResult{Candidates: make([]CandidateResult, 0, len(checked))}
		for _, c := range checked {
			r := CandidateResult{
				Command:      commandResult(c.Command),
				Applicable:   c.Applicable,
				CurrentState: c.CurrentState,
				Rejection:    rejectionResult(c.Rejection),
			}
			if c.Definition != nil {
				r.TransitionID = c.Definition.ID
				r.ToState = c.Definition.ToState
			}
			out.Candidates = append(out.Candidates, r)
		}
		return nil, out, nil
	}
}

// HistoryInput represents the MCP tool input for a history query.
type HistoryInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"AIP-160 filter, e.g. entity_type = \"quest\" AND to_state = \"Accepted\""`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum entries to return (0 returns all)"`
}

// HistoryResult represents the MCP tool output for a history query.
type HistoryResult struct {
	Entries []HistoryEntryResult `json:"entries" jsonschema:"matching history entries, oldest first"`
}

// HistoryTool defines the MCP tool schema for a history query.
func HistoryTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "narrative_history",
		Description: "Lists applied transitions matching an optional filter over entity_type, entity_id, transition_id, impact_scope, rule_ref, trigger, from_state, to_state, and at.",
	}
}

// HistoryHandler queries transition history.
func HistoryHandler(n Narrative) mcp.ToolHandlerFor[HistoryInput, HistoryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, HistoryResult, error) {
		if err := requireNarrative(n); err != nil {
			return nil, HistoryResult{}, err
		}
		if input.Limit < 0 {
			return nil, HistoryResult{}, fmt.Errorf("limit must be non-negative")
		}
		entries, err := n.History(ctx, input.Filter, input.Limit)
		if err != nil {
			return nil, HistoryResult{}, fmt.Errorf("history failed: %w", err)
		}
		return nil, HistoryResult{Entries: historyEntryResults(entries)}, nil
	}
}

// Package orchestrator picks the next narrative command to attempt.
//
// Scoring is a pure function of the world state and the candidate list:
//
//	score = weight(entityType) + urgency(trigger) - cooldownPenalty
//
// The penalty applies only to major entity types while a recent major event
// is still inside the configured cooldown window.
package orchestrator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/louisbranch/questline/internal/services/narrative/domain/command"
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
	"github.com/louisbranch/questline/internal/services/narrative/domain/state"
)

// ReasonNoCommand is the decision reason for an empty candidate list.
const ReasonNoCommand = "no command available"

// Input is the material a decision is made from.
type Input struct {
	State             state.State
	AvailableCommands []command.Command
}

// Scored is one ranked candidate.
type Scored struct {
	Command command.Command `json:"command"`
	Score   int             `json:"score"`
}

// Decision is the orchestrator's choice for one tick.
type Decision struct {
	Selected        *command.Command `json:"selectedCommand"`
	Reason          string           `json:"reason"`
	PriorityScore   *int             `json:"priorityScore,omitempty"`
	CooldownApplied bool             `json:"cooldownApplied"`
	Ranked          []Scored         `json:"ranked,omitempty"`
}

// Orchestrator scores candidate commands.
type Orchestrator struct {
	config Config
}

// New creates an orchestrator. Nil weights or vocabularies fall back to
// DefaultConfig; negative windows and penalties are clamped to zero.
func New(cfg Config) *Orchestrator {
	def := DefaultConfig()
	if cfg.EntityWeights == nil {
		cfg.EntityWeights = def.EntityWeights
	}
	if cfg.UrgencyTerms == nil {
		cfg.UrgencyTerms = def.UrgencyTerms
	}
	if cfg.ExternalEventTerms == nil {
		cfg.ExternalEventTerms = def.ExternalEventTerms
	}
	if cfg.MinHoursBetweenMajorEvents < 0 {
		cfg.MinHoursBetweenMajorEvents = 0
	}
	if cfg.CooldownPenalty < 0 {
		cfg.CooldownPenalty = 0
	}
	return &Orchestrator{config: cfg}
}

// Config returns the effective configuration.
func (o *Orchestrator) Config() Config {
	return o.config
}

// Cooldown reports whether the last history entry is a major event that is
// still within MinHoursBetweenMajorEvents of the world clock.
func (o *Orchestrator) Cooldown(s state.State) bool {
	last, ok := s.LastEntry()
	if !ok || !last.EntityType.IsMajor() {
		return false
	}
	recordedAt := 0.0
	if last.ClockHour != nil {
		recordedAt = *last.ClockHour
	}
	return s.Clock.Hour-recordedAt < o.config.MinHoursBetweenMajorEvents
}

// Score returns cmd's priority under the given cooldown flag.
func (o *Orchestrator) Score(cmd command.Command, cooldown bool) int {
	score := o.config.Weight(cmd.EntityType) + o.config.Urgency(cmd.Trigger)
	if cooldown && cmd.EntityType.IsMajor() {
		score -= o.config.CooldownPenalty
	}
	return score
}

// DecideNext selects the highest scoring command. Ties go to the earliest
// candidate.
func (o *Orchestrator) DecideNext(in Input) Decision {
	if len(in.AvailableCommands) == 0 {
		return Decision{Reason: ReasonNoCommand}
	}
	cooldown := o.Cooldown(in.State)
	ranked := make([]Scored, len(in.AvailableCommands))
	for i, cmd := range in.AvailableCommands {
		ranked[i] = Scored{Command: cmd, Score: o.Score(cmd, cooldown)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	best := ranked[0]
	selected := best.Command
	score := best.Score
	return Decision{
		Selected:        &selected,
		Reason:          o.reason(best, cooldown),
		PriorityScore:   &score,
		CooldownApplied: cooldown,
		Ranked:          ranked,
	}
}

func (o *Orchestrator) reason(best Scored, cooldown bool) string {
	target := fmt.Sprintf("%s %s on %q", best.Command.EntityType, best.Command.EntityID, best.Command.Trigger)
	if cooldown {
		return fmt.Sprintf("selected %s with score %d; major-event cooldown applied (less than %g hours since the last quest or trama event)",
			target, best.Score, o.config.MinHoursBetweenMajorEvents)
	}
	return fmt.Sprintf("selected %s with score %d; no cooldown", target, best.Score)
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		term = entity.NormalizeText(term)
		if term != "" && strings.Contains(text, term) {
			return true
		}
	}
	return false
}

package catalog

import (
	"strings"

	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
)

// TimeUnit names the clock counter a transition advances.
type TimeUnit string

const (
	TimeUnitHour    TimeUnit = "hour"
	TimeUnitDay     TimeUnit = "day"
	TimeUnitSpecial TimeUnit = "special"
)

// Valid reports whether u is a known clock counter.
func (u TimeUnit) Valid() bool {
	switch u {
	case TimeUnitHour, TimeUnitDay, TimeUnitSpecial:
		return true
	default:
		return false
	}
}

// TimeBlock is the in-world time a transition costs.
type TimeBlock struct {
	Unit  TimeUnit `json:"unit"`
	Value float64  `json:"value"`
}

// ImpactScope describes how far a transition's consequence reaches.
type ImpactScope string

const (
	ImpactLocal    ImpactScope = "local"
	ImpactRegional ImpactScope = "regional"
	ImpactGlobal   ImpactScope = "global"
)

// Valid reports whether s is a known impact scope.
func (s ImpactScope) Valid() bool {
	switch s {
	case ImpactLocal, ImpactRegional, ImpactGlobal:
		return true
	default:
		return false
	}
}

// Definition is one catalog row: (entity type, fromState, trigger) -> toState
// plus the narrative metadata carried by the outcome.
type Definition struct {
	ID                 string      `json:"id"`
	EntityType         entity.Type `json:"entityType"`
	FromState          string      `json:"fromState"`
	Trigger            string      `json:"trigger"`
	ToState            string      `json:"toState"`
	Consequence        string      `json:"consequence"`
	ImpactScope        ImpactScope `json:"impactScope,omitempty"`
	RuleRef            string      `json:"ruleRef"`
	TimeBlock          TimeBlock   `json:"timeBlock"`
	PlayerFacingReason string      `json:"playerFacingReason,omitempty"`
	LoreAnchors        []string    `json:"loreAnchors"`
}

// withDefaults fills the optional fields the catalog format leaves implicit.
func (d Definition) withDefaults() Definition {
	if strings.TrimSpace(string(d.ImpactScope)) == "" {
		d.ImpactScope = ImpactLocal
	}
	if strings.TrimSpace(string(d.TimeBlock.Unit)) == "" {
		d.TimeBlock.Unit = TimeUnitHour
	}
	d.LoreAnchors = append([]string(nil), d.LoreAnchors...)
	return d
}

// MatchMode selects how a requested trigger is compared with a definition's.
type MatchMode int

const (
	// MatchStrict requires case/whitespace-insensitive equality.
	MatchStrict MatchMode = iota
	// MatchLoose accepts either trigger containing the other.
	MatchLoose
)

// String returns the mode label used in logs and tool output.
func (m MatchMode) String() string {
	if m == MatchLoose {
		return "loose"
	}
	return "strict"
}

// MatchesTrigger reports whether trigger activates this definition under mode.
// An empty trigger never matches loosely, since it is contained in everything.
func (d Definition) MatchesTrigger(trigger string, mode MatchMode) bool {
	want := entity.NormalizeText(d.Trigger)
	got := entity.NormalizeText(trigger)
	if mode == MatchLoose {
		if want == "" || got == "" {
			return false
		}
		return strings.Contains(want, got) || strings.Contains(got, want)
	}
	return want == got
}

// Matches reports whether the definition applies to an entity of entityType
// currently in fromState receiving trigger.
func (d Definition) Matches(entityType entity.Type, fromState, trigger string, mode MatchMode) bool {
	if d.EntityType != entityType {
		return false
	}
	if !entity.EqualText(d.FromState, fromState) {
		return false
	}
	return d.MatchesTrigger(trigger, mode)
}

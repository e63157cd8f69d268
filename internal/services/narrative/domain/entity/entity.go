// Package entity defines the closed set of progressible narrative object kinds.
//
// Every dispatch on a Type is an exhaustive switch, so adding a kind surfaces
// at each site that picks a state bucket or a default state.
package entity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Type identifies the kind of narrative entity a transition progresses.
type Type string

const (
	// Quest is a player-facing objective.
	Quest Type = "quest"
	// Trama is a story arc that spans several quests.
	Trama Type = "trama"
	// Companion is a recruitable or allied character.
	Companion Type = "companion"
	// Trade is a negotiation or haggle in progress.
	Trade Type = "trade"
)

// UnknownState is the state the runtime reports for entities it has never seen.
const UnknownState = "Unknown"

// Default starting states recorded for first-seen entities before a tick
// applies their first transition.
const (
	DefaultQuestState     = "Detected"
	DefaultTramaState     = "Dormant"
	DefaultCompanionState = "Neutral"
	DefaultTradeState     = "Open"
)

// All returns every entity type in bucket order.
func All() []Type {
	return []Type{Quest, Trama, Companion, Trade}
}

// Parse resolves a raw entity type label, ignoring case and surrounding space.
func Parse(raw string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", false
	}
	return t, true
}

// Valid reports whether t is one of the known entity types.
func (t Type) Valid() bool {
	switch t {
	case Quest, Trama, Companion, Trade:
		return true
	default:
		return false
	}
}

// DefaultState returns the state a new entity of this type starts in.
func (t Type) DefaultState() string {
	switch t {
	case Quest:
		return DefaultQuestState
	case Trama:
		return DefaultTramaState
	case Companion:
		return DefaultCompanionState
	case Trade:
		return DefaultTradeState
	default:
		return UnknownState
	}
}

// IsMajor reports whether transitions of this type count as major narrative
// events for cooldown scheduling and player-facing readability.
func (t Type) IsMajor() bool {
	switch t {
	case Quest, Trama:
		return true
	default:
		return false
	}
}

// NormalizeText folds case, applies NFKC, and collapses whitespace so that
// state labels and triggers compare case/whitespace-insensitively.
func NormalizeText(value string) string {
	folded := cases.Fold().String(norm.NFKC.String(value))
	return strings.Join(strings.Fields(folded), " ")
}

// EqualText compares two labels after NormalizeText.
func EqualText(a, b string) bool {
	return NormalizeText(a) == NormalizeText(b)
}

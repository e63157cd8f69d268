// Package state models the world-state snapshot advanced by narrative transitions.
//
// A State is treated as an immutable value: every method that changes it
// returns a new State built from copies of the old buckets, clock, and
// history. Callers must never write into the maps returned by Bucket.
package state

import (
	"time"

	"github.com/louisbranch/questline/internal/services/narrative/domain/catalog"
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
)

// Clock holds the three independent in-world time counters.
type Clock struct {
	Hour    float64 `json:"hour"`
	Day     float64 `json:"day"`
	Special float64 `json:"special"`
}

// Advance returns the clock with tb added to the matching counter.
// Negative or unknown-unit costs leave the clock unchanged so every counter
// stays non-decreasing.
func (c Clock) Advance(tb catalog.TimeBlock) Clock {
	if tb.Value <= 0 {
		return c
	}
	switch tb.Unit {
	case catalog.TimeUnitHour:
		c.Hour += tb.Value
	case catalog.TimeUnitDay:
		c.Day += tb.Value
	case catalog.TimeUnitSpecial:
		c.Special += tb.Value
	}
	return c
}

// HistoryEntry records one applied transition.
type HistoryEntry struct {
	At           time.Time           `json:"at"`
	TransitionID string              `json:"transitionId"`
	EntityType   entity.Type         `json:"entityType"`
	EntityID     string              `json:"entityId"`
	FromState    string              `json:"fromState"`
	ToState      string              `json:"toState"`
	Trigger      string              `json:"trigger"`
	Consequence  string              `json:"consequence"`
	ImpactScope  catalog.ImpactScope `json:"impactScope"`
	RuleRef      string              `json:"ruleRef"`
	// ClockHour is the clock's hour counter right after the entry applied.
	// Older snapshots omit it.
	ClockHour *float64 `json:"clockHour,omitempty"`
}

func (h HistoryEntry) clone() HistoryEntry {
	if h.ClockHour != nil {
		hour := *h.ClockHour
		h.ClockHour = &hour
	}
	return h
}

// State is the world-state aggregate persisted per save-path identity.
type State struct {
	Quests     map[string]string `json:"quests"`
	Tramas     map[string]string `json:"tramas"`
	Companions map[string]string `json:"companions"`
	Trades     map[string]string `json:"trades"`
	Clock      Clock             `json:"clock"`
	History    []HistoryEntry    `json:"history"`
}

// Initial returns a state with empty buckets, a zero clock, and no history.
func Initial() State {
	return State{
		Quests:     map[string]string{},
		Tramas:     map[string]string{},
		Companions: map[string]string{},
		Trades:     map[string]string{},
		History:    []HistoryEntry{},
	}
}

// Clone returns a structural copy sharing no maps or slices with s.
func (s State) Clone() State {
	out := State{
		Quests:     copyBucket(s.Quests),
		Tramas:     copyBucket(s.Tramas),
		Companions: copyBucket(s.Companions),
		Trades:     copyBucket(s.Trades),
		Clock:      s.Clock,
		History:    make([]HistoryEntry, len(s.History)),
	}
	for i, h := range s.History {
		out.History[i] = h.clone()
	}
	return out
}

// Bucket returns the read-only id -> state map for entityType.
// Unknown types yield nil.
func (s State) Bucket(entityType entity.Type) map[string]string {
	switch entityType {
	case entity.Quest:
		return s.Quests
	case entity.Trama:
		return s.Tramas
	case entity.Companion:
		return s.Companions
	case entity.Trade:
		return s.Trades
	default:
		return nil
	}
}

// EntityState returns the recorded state of an entity, if any.
func (s State) EntityState(entityType entity.Type, entityID string) (string, bool) {
	value, ok := s.Bucket(entityType)[entityID]
	return value, ok
}

// WithEntityState returns a copy of s with the entity recorded at value.
// Unknown entity types return an unchanged copy.
func (s State) WithEntityState(entityType entity.Type, entityID, value string) State {
	out := s.Clone()
	if bucket := out.Bucket(entityType); bucket != nil {
		bucket[entityID] = value
	}
	return out
}

// WithHistory returns a copy of s with entry appended to the history.
func (s State) WithHistory(entry HistoryEntry) State {
	out := s.Clone()
	out.History = append(out.History, entry.clone())
	return out
}

// LastEntry returns the most recent history entry.
func (s State) LastEntry() (HistoryEntry, bool) {
	if len(s.History) == 0 {
		return HistoryEntry{}, false
	}
	return s.History[len(s.History)-1].clone(), true
}

func copyBucket(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

package state

import (
	"encoding/json"
	"time"

	"github.com/louisbranch/questline/internal/services/narrative/domain/catalog"
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
)

// Encode serializes s in the persisted world-state layout.
func Encode(s State) ([]byte, error) {
	// Clone replaces nil buckets and history so they encode as {} and [].
	return json.MarshalIndent(s.Clone(), "", "  ")
}

// Decode parses a persisted world-state document. It never fails: any missing
// or malformed top-level field falls back to the matching field of Initial,
// and history entries that cannot be read are dropped.
func Decode(raw []byte) State {
	out := Initial()
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return out
	}
	for _, typ := range entity.All() {
		bucket, ok := decodeBucket(fields[bucketKey(typ)])
		if !ok {
			continue
		}
		switch typ {
		case entity.Quest:
			out.Quests = bucket
		case entity.Trama:
			out.Tramas = bucket
		case entity.Companion:
			out.Companions = bucket
		case entity.Trade:
			out.Trades = bucket
		}
	}
	if clock, ok := decodeClock(fields["clock"]); ok {
		out.Clock = clock
	}
	out.History = decodeHistory(fields["history"])
	return out
}

func bucketKey(typ entity.Type) string {
	switch typ {
	case entity.Quest:
		return "quests"
	case entity.Trama:
		return "tramas"
	case entity.Companion:
		return "companions"
	case entity.Trade:
		return "trades"
	default:
		return ""
	}
}

func decodeBucket(raw json.RawMessage) (map[string]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var bucket map[string]string
	if err := json.Unmarshal(raw, &bucket); err != nil || bucket == nil {
		return nil, false
	}
	return bucket, true
}

func decodeClock(raw json.RawMessage) (Clock, bool) {
	if len(raw) == 0 {
		return Clock{}, false
	}
	var counters map[string]json.RawMessage
	if err := json.Unmarshal(raw, &counters); err != nil || counters == nil {
		return Clock{}, false
	}
	return Clock{
		Hour:    decodeCounter(counters["hour"]),
		Day:     decodeCounter(counters["day"]),
		Special: decodeCounter(counters["special"]),
	}, true
}

func decodeCounter(raw json.RawMessage) float64 {
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil || v < 0 {
		return 0
	}
	return v
}

// wireEntry mirrors HistoryEntry with a lenient timestamp.
type wireEntry struct {
	At           string              `json:"at"`
	TransitionID string              `json:"transitionId"`
	EntityType   entity.Type         `json:"entityType"`
	EntityID     string              `json:"entityId"`
	FromState    string              `json:"fromState"`
	ToState      string              `json:"toState"`
	Trigger      string              `json:"trigger"`
	Consequence  string              `json:"consequence"`
	ImpactScope  catalog.ImpactScope `json:"impactScope"`
	RuleRef      string              `json:"ruleRef"`
	ClockHour    *float64            `json:"clockHour,omitempty"`
}

func decodeHistory(raw json.RawMessage) []HistoryEntry {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []HistoryEntry{}
	}
	out := make([]HistoryEntry, 0, len(items))
	for _, item := range items {
		var w wireEntry
		if err := json.Unmarshal(item, &w); err != nil {
			continue
		}
		at, _ := time.Parse(time.RFC3339Nano, w.At)
		out = append(out, HistoryEntry{
			At:           at,
			TransitionID: w.TransitionID,
			EntityType:   w.EntityType,
			EntityID:     w.EntityID,
			FromState:    w.FromState,
			ToState:      w.ToState,
			Trigger:      w.Trigger,
			Consequence:  w.Consequence,
			ImpactScope:  w.ImpactScope,
			RuleRef:      w.RuleRef,
			ClockHour:    w.ClockHour,
		})
	}
	return out
}

package applicability

import (
	"testing"

	"github.com/louisbranch/questline/internal/services/narrative/domain/catalog"
	"github.com/louisbranch/questline/internal/services/narrative/domain/command"
	"github.com/louisbranch/questline/internal/services/narrative/domain/engine"
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
	"github.com/louisbranch/questline/internal/services/narrative/domain/state"
)

func testEngine() *engine.Engine {
	return engine.New(catalog.New([]catalog.Definition{
		{ID: "quest-accept", EntityType: entity.Quest, FromState: "Detected", Trigger: "player accepts", ToState: "Accepted", RuleRef: "r1", LoreAnchors: []string{"a", "b"}},
		{ID: "quest-finish", EntityType: entity.Quest, FromState: "Underway", Trigger: "report back", ToState: "Completed", RuleRef: "r2", LoreAnchors: []string{"a", "b"}},
		{ID: "trade-haggle", EntityType: entity.Trade, FromState: "Open", Trigger: "haggle", ToState: "Countered", RuleRef: "r3", LoreAnchors: []string{"a", "b"}},
	}))
}

func TestCheck(t *testing.T) {
	e := testEngine()
	s := state.Initial().
		WithEntityState(entity.Quest, "accepted", "Accepted").
		WithEntityState(entity.Quest, "detected", "Detected").
		WithEntityState(entity.Quest, "lost", "Abandoned")

	tests := []struct {
		name       string
		cmd        command.Command
		applicable bool
		code       string
		current    string
		firstSeen  bool
	}{
		{name: "applicable", cmd: command.Command{EntityType: entity.Quest, EntityID: "detected", Trigger: "player accepts"}, applicable: true, current: "Detected"},
		{name: "first seen uses default", cmd: command.Command{EntityType: entity.Quest, EntityID: "new", Trigger: "Player  Accepts"}, applicable: true, current: "Detected", firstSeen: true},
		{name: "first seen trade", cmd: command.Command{EntityType: entity.Trade, EntityID: "t1", Trigger: "haggle"}, applicable: true, current: "Open", firstSeen: true},
		{name: "not found", cmd: command.Command{EntityType: entity.Quest, EntityID: "detected", Trigger: "dance"}, code: command.RejectionTransitionNotFound, current: "Detected"},
		{name: "already progressed", cmd: command.Command{EntityType: entity.Quest, EntityID: "accepted", Trigger: "player accepts"}, code: command.RejectionAlreadyProgressed, current: "Accepted"},
		{name: "state mismatch", cmd: command.Command{EntityType: entity.Quest, EntityID: "lost", Trigger: "player accepts"}, code: command.RejectionStateMismatch, current: "Abandoned"},
		{name: "loose trigger", cmd: command.Command{EntityType: entity.Quest, EntityID: "detected", Trigger: "accepts"}.Loose(), applicable: true, current: "Detected"},
		{name: "strict partial trigger", cmd: command.Command{EntityType: entity.Quest, EntityID: "detected", Trigger: "accepts"}, code: command.RejectionTransitionNotFound, current: "Detected"},
		{name: "invalid", cmd: command.Command{EntityType: "faction", EntityID: "f", Trigger: "x"}, code: command.RejectionInvalidCommand},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := Check(e, s, tc.cmd)
			if res.Applicable != tc.applicable {
				t.Fatalf("applicable = %v, want %v (%+v)", res.Applicable, tc.applicable, res.Rejection)
			}
			if tc.code != "" {
				if res.Rejection == nil || res.Rejection.Code != tc.code {
					t.Fatalf("rejection = %+v, want %s", res.Rejection, tc.code)
				}
			} else if res.Rejection != nil {
				t.Fatalf("unexpected rejection %+v", res.Rejection)
			}
			if res.CurrentState != tc.current {
				t.Fatalf("current = %q, want %q", res.CurrentState, tc.current)
			}
			if res.FirstSeen != tc.firstSeen {
				t.Fatalf("first seen = %v, want %v", res.FirstSeen, tc.firstSeen)
			}
		})
	}
}

func TestPartitionKeepsOrder(t *testing.T) {
	e := testEngine()
	s := state.Initial().WithEntityState(entity.Quest, "q1", "Accepted")
	cmds := []command.Command{
		{EntityType: entity.Trade, EntityID: "t1", Trigger: "haggle"},
		{EntityType: entity.Quest, EntityID: "q1", Trigger: "player accepts"},
		{EntityType: entity.Quest, EntityID: "q2", Trigger: "player accepts"},
	}
	ok, rejected := Partition(e, s, cmds)
	if len(ok) != 2 || ok[0].EntityID != "t1" || ok[1].EntityID != "q2" {
		t.Fatalf("applicable = %+v", ok)
	}
	if len(rejected) != 1 || rejected[0].Rejection.Code != command.RejectionAlreadyProgressed {
		t.Fatalf("rejected = %+v", rejected)
	}
}

package engine

import (
	"errors"
	"testing"

	"github.com/louisbranch/questline/internal/services/narrative/domain/catalog"
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Definition{
		{
			ID:          "quest-accept-loose",
			EntityType:  entity.Quest,
			FromState:   "Detected",
			Trigger:     "accepts",
			ToState:     "Considering",
			RuleRef:     "r0",
			LoreAnchors: []string{"a", "b"},
		},
		{
			ID:                 "quest-accept",
			EntityType:         entity.Quest,
			FromState:          "Detected",
			Trigger:            "player accepts",
			ToState:            "Accepted",
			Consequence:        "Roland marks the map.",
			RuleRef:            "r1",
			TimeBlock:          catalog.TimeBlock{Unit: catalog.TimeUnitHour, Value: 0},
			PlayerFacingReason: "because Roland asked",
			LoreAnchors:        []string{"roland", "old-road"},
		},
		{
			ID:          "trade-haggle",
			EntityType:  entity.Trade,
			FromState:   "Open",
			Trigger:     "haggle",
			ToState:     "Countered",
			RuleRef:     "r2",
			LoreAnchors: []string{"a", "b"},
		},
	})
}

func TestApplyStrictPicksExactTrigger(t *testing.T) {
	e := New(testCatalog())
	out, err := e.Apply(Request{EntityType: entity.Quest, FromState: "Detected", Trigger: "Player Accepts"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.TransitionID != "quest-accept" {
		t.Fatalf("transition = %s, want quest-accept", out.TransitionID)
	}
	if out.ToState != "Accepted" || out.RuleRef != "r1" || out.PlayerFacingReason != "because Roland asked" {
		t.Fatalf("outcome = %+v", out)
	}
	if out.ImpactScope != catalog.ImpactLocal {
		t.Fatalf("impact = %q, want local", out.ImpactScope)
	}
}

func TestApplyLoosePicksFirstInCatalogOrder(t *testing.T) {
	e := New(testCatalog())
	req := Request{EntityType: entity.Quest, FromState: "detected", Trigger: "player accepts", Mode: catalog.MatchLoose}
	for i := 0; i < 3; i++ {
		out, err := e.Apply(req)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if out.TransitionID != "quest-accept-loose" {
			t.Fatalf("run %d: transition = %s, want quest-accept-loose", i, out.TransitionID)
		}
	}
}

func TestApplyNoMatch(t *testing.T) {
	e := New(testCatalog())
	tests := []struct {
		name string
		req  Request
	}{
		{name: "wrong state", req: Request{EntityType: entity.Quest, FromState: "Accepted", Trigger: "player accepts"}},
		{name: "wrong trigger", req: Request{EntityType: entity.Quest, FromState: "Detected", Trigger: "refuses"}},
		{name: "wrong type", req: Request{EntityType: entity.Companion, FromState: "Detected", Trigger: "player accepts"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Apply(tt.req)
			if !errors.Is(err, ErrNoMatchingTransition) {
				t.Fatalf("err = %v, want ErrNoMatchingTransition", err)
			}
		})
	}
}

func TestListByEntityType(t *testing.T) {
	e := New(testCatalog())
	quests := e.ListByEntityType(entity.Quest)
	if len(quests) != 2 || quests[0].ID != "quest-accept-loose" {
		t.Fatalf("quests = %+v", quests)
	}
	if got := e.ListByEntityType(entity.Trama); len(got) != 0 {
		t.Fatalf("tramas = %+v, want none", got)
	}
}

func TestValidateCatalogDelegates(t *testing.T) {
	e := New(catalog.New([]catalog.Definition{
		{ID: "x", EntityType: entity.Quest, RuleRef: "r", LoreAnchors: []string{"a"}},
		{ID: "x", EntityType: entity.Quest, RuleRef: "r", LoreAnchors: []string{"a", "b"}},
	}))
	problems := e.ValidateCatalog()
	if len(problems) != 2 {
		t.Fatalf("problems = %v, want 2", problems)
	}
	if New(nil).ValidateCatalog() == nil {
		t.Fatal("expected non-nil empty problem list")
	}
}

package app

import (
	"context"
	"testing"

	apperrors "github.com/louisbranch/questline/internal/platform/errors"
	"github.com/louisbranch/questline/internal/services/narrative/domain/command"
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
	"github.com/louisbranch/questline/internal/services/narrative/domain/state"
	"github.com/louisbranch/questline/internal/services/narrative/storage"
)

func TestCandidatesReportsEachCommand(t *testing.T) {
	store := storage.NewMemory()
	seed(t, store, state.Initial().WithEntityState(entity.Quest, "q1", "Detected"))
	svc := newTestService(t, store)

	got, err := svc.Candidates(context.Background(), []command.Command{
		{EntityType: entity.Quest, EntityID: "q1", Trigger: "player accepts"},
		{EntityType: entity.Quest, EntityID: "q1", Trigger: "walk away"},
		{EntityType: entity.Trade, EntityID: "", Trigger: "haggle"},
	})
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if !got[0].Applicable || got[0].Definition == nil || got[0].Definition.ID != "quest-accept" {
		t.Fatalf("first = %+v", got[0])
	}
	if got[1].Applicable || got[1].Rejection == nil || got[1].Rejection.Code != command.RejectionStateMismatch {
		t.Fatalf("second = %+v", got[1])
	}
	if got[2].Applicable || got[2].Rejection == nil || got[2].Rejection.Code != command.RejectionInvalidCommand {
		t.Fatalf("third = %+v", got[2])
	}
	if store.Saves() != 1 {
		t.Fatalf("candidates must not write, saves = %d", store.Saves())
	}
}

func TestHistoryFiltersInMemory(t *testing.T) {
	store := storage.NewMemory()
	svc := newTestService(t, store)
	ctx := context.Background()

	for _, cmd := range []command.Command{
		{EntityType: entity.Quest, EntityID: "q1", Trigger: "player accepts"},
		{EntityType: entity.Trade, EntityID: "spice", Trigger: "haggle"},
		{EntityType: entity.Quest, EntityID: "q1", Trigger: "walk away"},
	} {
		if _, err := svc.Tick(ctx, []command.Command{cmd}, WithBlockOnFailure(false)); err != nil {
			t.Fatalf("tick %s: %v", cmd.Trigger, err)
		}
	}

	quests, err := svc.History(ctx, `entity_type = "quest"`, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(quests) != 2 || quests[0].TransitionID != "quest-accept" || quests[1].TransitionID != "quest-abandon" {
		t.Fatalf("quests = %+v", quests)
	}

	limited, err := svc.History(ctx, "", 1)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(limited) != 1 || limited[0].TransitionID != "quest-accept" {
		t.Fatalf("limited = %+v", limited)
	}

	if _, err := svc.History(ctx, `nope = "x"`, 0); apperrors.CodeOf(err) != apperrors.CodeFilterInvalid {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeFilterInvalid)
	}
}

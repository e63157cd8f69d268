package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/questline/internal/services/narrative/domain/catalog"
	"github.com/louisbranch/questline/internal/services/narrative/domain/engine"
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
	"github.com/louisbranch/questline/internal/services/narrative/domain/runtime"
	"github.com/louisbranch/questline/internal/services/narrative/domain/state"
	"github.com/louisbranch/questline/internal/services/narrative/journal"
	"github.com/louisbranch/questline/internal/services/narrative/storage"
)

var testNow = time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

func testDefinitions() []catalog.Definition {
	anchors := []string{"a", "b"}
	return []catalog.Definition{
		{
			ID: "quest-accept", EntityType: entity.Quest, FromState: "Detected", Trigger: "player accepts",
			ToState: "Accepted", RuleRef: "r1", PlayerFacingReason: "because Roland asked", LoreAnchors: anchors,
		},
		{
			// No player-facing reason: mechanically valid, fails the readability gate.
			ID: "quest-abandon", EntityType: entity.Quest, FromState: "Accepted", Trigger: "walk away",
			ToState: "Abandoned", RuleRef: "r2", LoreAnchors: anchors,
		},
		{
			ID: "trama-wake", EntityType: entity.Trama, FromState: "Dormant", Trigger: "omen ignored",
			ToState: "Awakened", RuleRef: "r3", PlayerFacingReason: "warnings went unanswered",
			TimeBlock: catalog.TimeBlock{Unit: catalog.TimeUnitHour, Value: 1}, LoreAnchors: anchors,
		},
		{
			ID: "trade-haggle", EntityType: entity.Trade, FromState: "Open", Trigger: "haggle",
			ToState: "Countered", RuleRef: "r4", TimeBlock: catalog.TimeBlock{Unit: catalog.TimeUnitHour, Value: 1},
			LoreAnchors: anchors,
		},
	}
}

type recordingJournal struct {
	entries []journal.Entry
}

func (r *recordingJournal) Record(e journal.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

func (r *recordingJournal) kinds() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Kind
	}
	return out
}

func newTestService(t *testing.T, store storage.StateStore, opts ...Option) *Service {
	t.Helper()
	rt := runtime.New(engine.New(catalog.New(testDefinitions())), runtime.WithClock(func() time.Time { return testNow }))
	svc, err := NewService(store, rt, opts...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seed(t *testing.T, store storage.StateStore, s state.State) {
	t.Helper()
	if err := store.Save(context.Background(), s); err != nil {
		t.Fatalf("seed state: %v", err)
	}
}

func mustLoad(t *testing.T, svc *Service) state.State {
	t.Helper()
	s, err := svc.LoadState(context.Background())
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	return s
}

type failingStore struct{}

func (failingStore) Load(context.Context) (state.State, error) {
	return state.State{}, errors.New("disk on fire")
}

func (failingStore) Save(context.Context, state.State) error {
	return errors.New("disk on fire")
}

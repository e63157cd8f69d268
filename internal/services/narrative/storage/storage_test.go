package storage

import (
	"context"
	"testing"

	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
	"github.com/louisbranch/questline/internal/services/narrative/domain/state"
)

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	s, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.Quests) != 0 {
		t.Fatalf("quests = %v, want empty", s.Quests)
	}

	if err := m.Save(ctx, s.WithEntityState(entity.Quest, "q1", "Accepted")); err != nil {
		t.Fatalf("save: %v", err)
	}
	s, err = m.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Quests["q1"] != "Accepted" {
		t.Fatalf("quest = %q, want Accepted", s.Quests["q1"])
	}
	if m.Saves() != 1 {
		t.Fatalf("saves = %d, want 1", m.Saves())
	}
}

func TestMemoryHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewMemory().Save(ctx, state.Initial()); err == nil {
		t.Fatal("expected error")
	}
}

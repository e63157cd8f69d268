package tuning

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
	"github.com/louisbranch/questline/internal/services/narrative/domain/orchestrator"
)

func TestEmptyTuningKeepsDefaults(t *testing.T) {
	tn, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, want := tn.OrchestratorConfig(), orchestrator.DefaultConfig(); !reflect.DeepEqual(got, want) {
		t.Fatalf("config = %+v, want %+v", got, want)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := []byte(`
min_hours_between_major_events: 6
entity_weights:
  trade: 5
cooldown_penalty: 0
urgency_terms: ["siege"]
`)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tn, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := tn.OrchestratorConfig()
	if cfg.MinHoursBetweenMajorEvents != 6 {
		t.Fatalf("min hours = %v, want 6", cfg.MinHoursBetweenMajorEvents)
	}
	if cfg.EntityWeights[entity.Trade] != 5 || cfg.EntityWeights[entity.Trama] != 4 {
		t.Fatalf("weights = %v", cfg.EntityWeights)
	}
	if cfg.CooldownPenalty != 0 {
		t.Fatalf("penalty = %d, want 0", cfg.CooldownPenalty)
	}
	if !reflect.DeepEqual(cfg.UrgencyTerms, []string{"siege"}) {
		t.Fatalf("urgency terms = %v", cfg.UrgencyTerms)
	}
	if !reflect.DeepEqual(cfg.ExternalEventTerms, orchestrator.DefaultConfig().ExternalEventTerms) {
		t.Fatalf("external terms = %v, want defaults", cfg.ExternalEventTerms)
	}
}

func TestParseRejectsUnknownEntityType(t *testing.T) {
	if _, err := Parse([]byte("entity_weights:\n  faction: 2\n")); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseRejectsBadYAML(t *testing.T) {
	if _, err := Parse([]byte("entity_weights: [")); err == nil {
		t.Fatal("expected error")
	}
}

// Package tuning loads orchestrator scheduling weights from YAML.
package tuning

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
	"github.com/louisbranch/questline/internal/services/narrative/domain/orchestrator"
)

// Tuning mirrors the tuning.yaml layout. Omitted fields keep their defaults.
type Tuning struct {
	MinHoursBetweenMajorEvents *float64       `yaml:"min_hours_between_major_events"`
	EntityWeights              map[string]int `yaml:"entity_weights"`
	UrgencyTerms               []string       `yaml:"urgency_terms"`
	ExternalEventTerms         []string       `yaml:"external_event_terms"`
	CooldownPenalty            *int           `yaml:"cooldown_penalty"`
}

// Load reads a tuning file. An empty path returns an empty Tuning.
func Load(path string) (Tuning, error) {
	var t Tuning
	if strings.TrimSpace(path) == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	return Parse(raw)
}

// Parse decodes tuning YAML and rejects unknown entity types.
func Parse(raw []byte) (Tuning, error) {
	var t Tuning
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	for name := range t.EntityWeights {
		if _, ok := entity.Parse(name); !ok {
			return t, fmt.Errorf("tuning.yaml: unknown entity type %q in entity_weights", name)
		}
	}
	return t, nil
}

// OrchestratorConfig overlays t on orchestrator.DefaultConfig. Entity weights
// merge per type; vocabularies replace the defaults when present.
func (t Tuning) OrchestratorConfig() orchestrator.Config {
	cfg := orchestrator.DefaultConfig()
	if t.MinHoursBetweenMajorEvents != nil {
		cfg.MinHoursBetweenMajorEvents = *t.MinHoursBetweenMajorEvents
	}
	for name, weight := range t.EntityWeights {
		if typ, ok := entity.Parse(name); ok {
			cfg.EntityWeights[typ] = weight
		}
	}
	if len(t.UrgencyTerms) > 0 {
		cfg.UrgencyTerms = append([]string(nil), t.UrgencyTerms...)
	}
	if len(t.ExternalEventTerms) > 0 {
		cfg.ExternalEventTerms = append([]string(nil), t.ExternalEventTerms...)
	}
	if t.CooldownPenalty != nil {
		cfg.CooldownPenalty = *t.CooldownPenalty
	}
	return cfg
}

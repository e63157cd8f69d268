package orchestrator

import (
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
)

// Config tunes command scoring.
type Config struct {
	// MinHoursBetweenMajorEvents is measured on the world clock's hour counter.
	MinHoursBetweenMajorEvents float64
	EntityWeights              map[entity.Type]int
	UrgencyTerms               []string
	ExternalEventTerms         []string
	CooldownPenalty            int
}

// Urgency levels returned by Config.Urgency.
const (
	UrgencyDefault  = 1
	UrgencyExternal = 2
	UrgencyDeadline = 3
)

// DefaultConfig returns the stock scheduling weights.
func DefaultConfig() Config {
	return Config{
		MinHoursBetweenMajorEvents: 2,
		EntityWeights: map[entity.Type]int{
			entity.Trama:     4,
			entity.Quest:     3,
			entity.Companion: 2,
			entity.Trade:     1,
		},
		UrgencyTerms: []string{
			"deadline", "urgent", "immediately", "last chance", "expire",
			"ultimatum", "before nightfall", "running out", "countdown",
		},
		ExternalEventTerms: []string{
			"ignored", "ignore", "neglect", "abandon", "external",
			"rumor", "meanwhile", "world event",
		},
		CooldownPenalty: 3,
	}
}

// Weight returns the base weight for entityType. Types without a weight score 0.
func (c Config) Weight(entityType entity.Type) int {
	return c.EntityWeights[entityType]
}

// Urgency scores trigger text against the urgency vocabularies.
func (c Config) Urgency(trigger string) int {
	text := entity.NormalizeText(trigger)
	if containsAny(text, c.UrgencyTerms) {
		return UrgencyDeadline
	}
	if containsAny(text, c.ExternalEventTerms) {
		return UrgencyExternal
	}
	return UrgencyDefault
}

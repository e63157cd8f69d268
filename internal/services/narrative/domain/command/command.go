// Package command defines narrative commands and the structured rejections
// returned when a command cannot fire.
package command

import (
	"strings"

	apperrors "github.com/louisbranch/questline/internal/platform/errors"
	"github.com/louisbranch/questline/internal/services/narrative/domain/catalog"
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
)

// Command requests that one entity progress on a trigger.
type Command struct {
	EntityType entity.Type `json:"entityType"`
	EntityID   string      `json:"entityId"`
	Trigger    string      `json:"trigger"`
	// StrictTrigger selects exact trigger matching. Nil means strict.
	StrictTrigger *bool `json:"strictTrigger,omitempty"`
}

// Strict reports whether the command uses exact trigger matching.
func (c Command) Strict() bool {
	return c.StrictTrigger == nil || *c.StrictTrigger
}

// MatchMode returns the catalog match mode the command asks for.
func (c Command) MatchMode() catalog.MatchMode {
	if c.Strict() {
		return catalog.MatchStrict
	}
	return catalog.MatchLoose
}

// Loose returns a copy of c that matches triggers by containment.
func (c Command) Loose() Command {
	strict := false
	c.StrictTrigger = &strict
	return c
}

// Validate checks the fields every command needs before it reaches the engine.
func (c Command) Validate() error {
	if !c.EntityType.Valid() {
		return apperrors.WithMetadata(apperrors.CodeUnknownEntityType, "unknown entity type", map[string]string{
			"entity_type": string(c.EntityType),
		})
	}
	if strings.TrimSpace(c.EntityID) == "" {
		return apperrors.New(apperrors.CodeCommandInvalid, "entity id is required")
	}
	if strings.TrimSpace(c.Trigger) == "" {
		return apperrors.New(apperrors.CodeCommandInvalid, "trigger is required")
	}
	return nil
}

package command

import (
	"errors"
	"testing"

	apperrors "github.com/louisbranch/questline/internal/platform/errors"
	"github.com/louisbranch/questline/internal/services/narrative/domain/catalog"
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
)

func TestStrictByDefault(t *testing.T) {
	cmd := Command{EntityType: entity.Quest, EntityID: "q1", Trigger: "accept"}
	if !cmd.Strict() || cmd.MatchMode() != catalog.MatchStrict {
		t.Fatal("expected strict matching by default")
	}
	loose := cmd.Loose()
	if loose.Strict() || loose.MatchMode() != catalog.MatchLoose {
		t.Fatal("expected loose matching")
	}
	if !cmd.Strict() {
		t.Fatal("Loose must not change the receiver")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		code apperrors.Code
	}{
		{name: "ok", cmd: Command{EntityType: entity.Trade, EntityID: "t1", Trigger: "haggle"}},
		{name: "unknown type", cmd: Command{EntityType: "faction", EntityID: "f1", Trigger: "x"}, code: apperrors.CodeUnknownEntityType},
		{name: "missing id", cmd: Command{EntityType: entity.Quest, EntityID: " ", Trigger: "x"}, code: apperrors.CodeCommandInvalid},
		{name: "missing trigger", cmd: Command{EntityType: entity.Quest, EntityID: "q1"}, code: apperrors.CodeCommandInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cmd.Validate()
			if tc.code == "" {
				if err != nil {
					t.Fatalf("validate: %v", err)
				}
				return
			}
			if !errors.Is(err, apperrors.New(tc.code, "")) {
				t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), tc.code)
			}
		})
	}
}

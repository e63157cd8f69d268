package app

import (
	"context"

	"github.com/louisbranch/questline/internal/services/narrative/domain/applicability"
	"github.com/louisbranch/questline/internal/services/narrative/domain/catalog"
	"github.com/louisbranch/questline/internal/services/narrative/domain/command"
)

// Candidate reports whether one command can fire right now.
type Candidate struct {
	Command      command.Command     `json:"command"`
	Applicable   bool                `json:"applicable"`
	CurrentState string              `json:"currentState"`
	Definition   *catalog.Definition `json:"definition,omitempty"`
	Rejection    *command.Rejection  `json:"rejection,omitempty"`
}

// Candidates checks every command against the current state without
// changing it.
func (s *Service) Candidates(ctx context.Context, cmds []command.Command) ([]Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(cmds))
	for _, cmd := range cmds {
		check := applicability.Check(s.Engine(), current, cmd)
		c := Candidate{
			Command:      cmd,
			Applicable:   check.Applicable,
			CurrentState: check.CurrentState,
			Rejection:    check.Rejection,
		}
		if check.Applicable {
			def := check.Definition
			c.Definition = &def
		}
		out = append(out, c)
	}
	return out, nil
}

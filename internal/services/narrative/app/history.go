package app

import (
	"context"

	"github.com/louisbranch/questline/internal/services/narrative/core/filter"
	"github.com/louisbranch/questline/internal/services/narrative/domain/state"
	"github.com/louisbranch/questline/internal/services/narrative/storage"
)

// History returns history entries matching an AIP-160 filter, oldest first.
// Stores that can filter natively do so; otherwise the full state is loaded
// and filtered in memory. A limit of zero or less returns every match.
func (s *Service) History(ctx context.Context, filterStr string, limit int) ([]state.HistoryEntry, error) {
	q, err := filter.Parse(filterStr)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if querier, ok := s.store.(storage.HistoryQuerier); ok {
		return querier.QueryHistory(ctx, q, limit)
	}
	current, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := q.Apply(current.History)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Package storage defines persistence contracts for narrative world state.
//
// Every backend stores one world state per save-path identity and replaces it
// wholesale on save. There is no concurrency token: the last writer wins.
package storage

import (
	"context"
	"sync"

	"github.com/louisbranch/questline/internal/services/narrative/core/filter"
	"github.com/louisbranch/questline/internal/services/narrative/domain/state"
)

// StateStore loads and saves one world state.
type StateStore interface {
	// Load returns the stored state, normalized. A store that has never been
	// written returns state.Initial().
	Load(ctx context.Context) (state.State, error)
	Save(ctx context.Context, s state.State) error
}

// HistoryQuerier is implemented by stores that filter history natively.
type HistoryQuerier interface {
	QueryHistory(ctx context.Context, q filter.Query, limit int) ([]state.HistoryEntry, error)
}

// Memory keeps the encoded state in memory. Loads decode the stored bytes so
// they see the same normalization as durable backends.
type Memory struct {
	mu    sync.Mutex
	raw   []byte
	saves int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Load implements StateStore.
func (m *Memory) Load(ctx context.Context) (state.State, error) {
	if err := ctx.Err(); err != nil {
		return state.State{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.raw == nil {
		return state.Initial(), nil
	}
	return state.Decode(m.raw), nil
}

// Save implements StateStore.
func (m *Memory) Save(ctx context.Context, s state.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := state.Encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = raw
	m.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/questline/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/questline/internal/services/narrative/core/filter"
	"github.com/louisbranch/questline/internal/services/narrative/domain/catalog"
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
	"github.com/louisbranch/questline/internal/services/narrative/domain/state"
	"github.com/louisbranch/questline/internal/services/narrative/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// DefaultWorldID is used when no world id is configured.
const DefaultWorldID = "default"

// Store persists world state in SQLite.
type Store struct {
	sqlDB   *sql.DB
	worldID string
	now     func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens a SQLite world-state store and applies embedded migrations.
func Open(path, worldID string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	worldID = strings.TrimSpace(worldID)
	if worldID == "" {
		worldID = DefaultWorldID
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, worldID: worldID, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// WorldID returns the world this store reads and writes.
func (s *Store) WorldID() string {
	return s.worldID
}

// Load returns the stored world. A world that was never saved yields the
// initial state. Rows with unknown entity types are skipped.
func (s *Store) Load(ctx context.Context) (state.State, error) {
	if err := ctx.Err(); err != nil {
		return state.State{}, err
	}
	if s == nil || s.sqlDB == nil {
		return state.State{}, fmt.Errorf("storage is not configured")
	}

	out := state.Initial()
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT hour, day, special FROM world_clocks WHERE world_id = ?`,
		s.worldID,
	)
	if err := row.Scan(&out.Clock.Hour, &out.Clock.Day, &out.Clock.Special); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return out, nil
		}
		return state.State{}, fmt.Errorf("get clock: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT entity_type, entity_id, state FROM world_entities WHERE world_id = ?`,
		s.worldID,
	)
	if err != nil {
		return state.State{}, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var rawType, id, value string
		if err := rows.Scan(&rawType, &id, &value); err != nil {
			return state.State{}, fmt.Errorf("scan entity: %w", err)
		}
		if bucket := out.Bucket(entity.Type(rawType)); bucket != nil {
			bucket[id] = value
		}
	}
	if err := rows.Err(); err != nil {
		return state.State{}, fmt.Errorf("iterate entities: %w", err)
	}

	history, err := s.queryHistory(ctx, filter.SQLCondition{}, 0)
	if err != nil {
		return state.State{}, err
	}
	out.History = history
	return out, nil
}

// Save replaces the stored world, history included, in one transaction.
func (s *Store) Save(ctx context.Context, st state.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	if err := s.saveTx(ctx, tx, st); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (s *Store) saveTx(ctx context.Context, tx *sql.Tx, st state.State) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO world_clocks (world_id, hour, day, special, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(world_id) DO UPDATE SET
		   hour = excluded.hour,
		   day = excluded.day,
		   special = excluded.special,
		   updated_at = excluded.updated_at`,
		s.worldID, st.Clock.Hour, st.Clock.Day, st.Clock.Special, toMillis(s.now()),
	); err != nil {
		return fmt.Errorf("put clock: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM world_entities WHERE world_id = ?`, s.worldID); err != nil {
		return fmt.Errorf("clear entities: %w", err)
	}
	for _, typ := range entity.All() {
		for id, value := range st.Bucket(typ) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO world_entities (world_id, entity_type, entity_id, state) VALUES (?, ?, ?, ?)`,
				s.worldID, string(typ), id, value,
			); err != nil {
				return fmt.Errorf("put entity %s/%s: %w", typ, id, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM world_history WHERE world_id = ?`, s.worldID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	for seq, h := range st.History {
		var clockHour sql.NullFloat64
		if h.ClockHour != nil {
			clockHour = sql.NullFloat64{Float64: *h.ClockHour, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO world_history (
			   world_id, seq, at_utc, transition_id, entity_type, entity_id,
			   from_state, to_state, trigger_text, consequence, impact_scope, rule_ref, clock_hour
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.worldID, seq, filter.FormatTime(h.At), h.TransitionID, string(h.EntityType), h.EntityID,
			h.FromState, h.ToState, h.Trigger, h.Consequence, string(h.ImpactScope), h.RuleRef, clockHour,
		); err != nil {
			return fmt.Errorf("append history %d: %w", seq, err)
		}
	}
	return nil
}

// QueryHistory returns history rows matching q in insertion order. A limit
// of zero or less returns every match.
func (s *Store) QueryHistory(ctx context.Context, q filter.Query, limit int) ([]state.HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	cond, err := q.SQL()
	if err != nil {
		return nil, fmt.Errorf("translate filter: %w", err)
	}
	return s.queryHistory(ctx, cond, limit)
}

func (s *Store) queryHistory(ctx context.Context, cond filter.SQLCondition, limit int) ([]state.HistoryEntry, error) {
	query := `SELECT at_utc, transition_id, entity_type, entity_id, from_state, to_state,
	                 trigger_text, consequence, impact_scope, rule_ref, clock_hour
	          FROM world_history WHERE world_id = ?`
	args := []any{s.worldID}
	if cond.Clause != "" {
		query += " AND " + cond.Clause
		args = append(args, cond.Params...)
	}
	query += " ORDER BY seq"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	history := []state.HistoryEntry{}
	for rows.Next() {
		var (
			h           state.HistoryEntry
			at          string
			entityType  string
			impactScope string
			clockHour   sql.NullFloat64
		)
		if err := rows.Scan(
			&at, &h.TransitionID, &entityType, &h.EntityID, &h.FromState, &h.ToState,
			&h.Trigger, &h.Consequence, &impactScope, &h.RuleRef, &clockHour,
		); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if h.At, err = filter.ParseTime(at); err != nil {
			return nil, fmt.Errorf("parse history time %q: %w", at, err)
		}
		h.EntityType = entity.Type(entityType)
		h.ImpactScope = catalog.ImpactScope(impactScope)
		if clockHour.Valid {
			hour := clockHour.Float64
			h.ClockHour = &hour
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return history, nil
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/questline/internal/platform/config"
	apperrors "github.com/louisbranch/questline/internal/platform/errors"
	"github.com/louisbranch/questline/internal/services/narrative/contextpack"
	"github.com/louisbranch/questline/internal/services/narrative/domain/catalog"
	"github.com/louisbranch/questline/internal/services/narrative/domain/engine"
	"github.com/louisbranch/questline/internal/services/narrative/domain/orchestrator"
	"github.com/louisbranch/questline/internal/services/narrative/domain/runtime"
	"github.com/louisbranch/questline/internal/services/narrative/journal"
	"github.com/louisbranch/questline/internal/services/narrative/narration"
	"github.com/louisbranch/questline/internal/services/narrative/storage"
	filestore "github.com/louisbranch/questline/internal/services/narrative/storage/file"
	s3store "github.com/louisbranch/questline/internal/services/narrative/storage/s3"
	sqlitestore "github.com/louisbranch/questline/internal/services/narrative/storage/sqlite"
	"github.com/louisbranch/questline/internal/services/narrative/tuning"
)

// State backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendS3     = "s3"
)

// S3Env configures the s3 state backend.
type S3Env struct {
	Bucket    string `env:"QUESTLINE_S3_BUCKET"`
	Region    string `env:"QUESTLINE_S3_REGION" envDefault:"us-east-1"`
	Endpoint  string `env:"QUESTLINE_S3_ENDPOINT"`
	PathStyle bool   `env:"QUESTLINE_S3_PATH_STYLE"`
}

// Env is the narrative service environment.
type Env struct {
	CatalogPath   string        `env:"QUESTLINE_CATALOG_PATH" envDefault:"configs/transitions.json"`
	StrictCatalog bool          `env:"QUESTLINE_STRICT_CATALOG" envDefault:"true"`
	StateBackend  string        `env:"QUESTLINE_STATE_BACKEND" envDefault:"file"`
	StatePath     string        `env:"QUESTLINE_STATE_PATH" envDefault:"data/world-state.json"`
	WorldID       string        `env:"QUESTLINE_WORLD_ID" envDefault:"default"`
	TuningPath    string        `env:"QUESTLINE_TUNING_PATH"`
	JournalDir    string        `env:"QUESTLINE_JOURNAL_DIR"`
	NarratorURL   string        `env:"QUESTLINE_NARRATOR_URL"`
	NarratorWait  time.Duration `env:"QUESTLINE_NARRATOR_TIMEOUT" envDefault:"30s"`
	MinAnchors    int           `env:"QUESTLINE_MIN_ANCHORS" envDefault:"2"`
	S3            S3Env
}

// LoadEnv reads Env from the process environment.
func LoadEnv() (Env, error) {
	var env Env
	if err := config.ParseEnv(&env); err != nil {
		return Env{}, err
	}
	return env, nil
}

// App owns a Service and the resources opened for it.
type App struct {
	Service *Service
	Catalog *catalog.Catalog
	closers []func() error
}

// Open loads the catalog and tuning, opens the configured state backend, and
// builds the service. With StrictCatalog set, catalog integrity problems
// abort startup; otherwise they are logged.
func Open(ctx context.Context, env Env) (*App, error) {
	cat, err := catalog.Load(env.CatalogPath)
	if err != nil {
		return nil, err
	}
	if problems := catalog.Validate(cat); len(problems) > 0 {
		for _, p := range problems {
			log.Printf("catalog: %s", p)
		}
		if env.StrictCatalog {
			return nil, apperrors.WithMetadata(
				apperrors.CodeCatalogInvalid,
				fmt.Sprintf("catalog %s has %d integrity problem(s)", env.CatalogPath, len(problems)),
				map[string]string{"path": env.CatalogPath, "first": problems[0]},
			)
		}
	}
	log.Printf("catalog %s loaded: %d transitions, sha256 %s", env.CatalogPath, cat.Len(), cat.Digest())

	tn, err := tuning.Load(env.TuningPath)
	if err != nil {
		return nil, fmt.Errorf("load tuning: %w", err)
	}

	a := &App{Catalog: cat}
	store, err := a.openStore(ctx, env)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithOrchestrator(orchestrator.New(tn.OrchestratorConfig())),
		WithContextBuilder(contextpack.NewBuilder(env.MinAnchors, 0)),
	}
	if dir := strings.TrimSpace(env.JournalDir); dir != "" {
		w := journal.NewWriter(dir, "narrative")
		a.closers = append(a.closers, w.Close)
		opts = append(opts, WithJournal(w))
	}
	if url := strings.TrimSpace(env.NarratorURL); url != "" {
		n, err := narration.NewHTTPNarrator(url, env.NarratorWait)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		opts = append(opts, WithNarrator(n))
	}

	svc, err := NewService(store, runtime.New(engine.New(cat)), opts...)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Service = svc
	return a, nil
}

func (a *App) openStore(ctx context.Context, env Env) (storage.StateStore, error) {
	switch strings.ToLower(strings.TrimSpace(env.StateBackend)) {
	case "", BackendFile:
		return filestore.Open(env.StatePath)
	case BackendSQLite:
		store, err := sqlitestore.Open(env.StatePath, env.WorldID)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	case BackendS3:
		return s3store.New(ctx, s3store.Config{
			Region:    env.S3.Region,
			Bucket:    env.S3.Bucket,
			Key:       env.StatePath,
			Endpoint:  env.S3.Endpoint,
			PathStyle: env.S3.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown state backend %q (one of %s, %s, %s)", env.StateBackend, BackendFile, BackendSQLite, BackendS3)
	}
}

// Close releases every resource opened by Open.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

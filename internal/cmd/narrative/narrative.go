// Package narrative parses narrative command flags and runs one operation
// against the configured world state.
package narrative

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	entrypoint "github.com/louisbranch/questline/internal/platform/cmd"
	apperrors "github.com/louisbranch/questline/internal/platform/errors"
	"github.com/louisbranch/questline/internal/services/narrative/app"
	"github.com/louisbranch/questline/internal/services/narrative/contextpack"
	"github.com/louisbranch/questline/internal/services/narrative/domain/catalog"
	"github.com/louisbranch/questline/internal/services/narrative/domain/command"
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
)

// Subcommands.
const (
	VerbValidate   = "validate"
	VerbState      = "state"
	VerbApply      = "apply"
	VerbTick       = "tick"
	VerbCandidates = "candidates"
	VerbHistory    = "history"
	VerbNarrate    = "narrate"
)

var verbs = []string{VerbValidate, VerbState, VerbApply, VerbTick, VerbCandidates, VerbHistory, VerbNarrate}

var (
	output io.Writer = os.Stdout
	input  io.Reader = os.Stdin
)

// Config holds narrative command configuration.
type Config struct {
	Verb   string
	Locale string `env:"QUESTLINE_LOCALE" envDefault:"en-US"`
	Env    app.Env

	EntityType   string
	EntityID     string
	Trigger      string
	Loose        bool
	Unguarded    bool
	AllowFailing bool
	CommandsPath string
	Safe         bool
	Filter       string
	Limit        int
	Query        string
	LorePath     string
}

// ParseConfig parses the subcommand, environment, and flags into Config.
// The subcommand defaults to state.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	verb, rest, err := entrypoint.Subcommand(args, VerbState, verbs...)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{Verb: verb}
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Env.CatalogPath, "catalog", cfg.Env.CatalogPath, "Transition catalog JSON path")
	fs.BoolVar(&cfg.Env.StrictCatalog, "strict-catalog", cfg.Env.StrictCatalog, "Refuse to start on catalog integrity problems")
	fs.StringVar(&cfg.Env.StateBackend, "state-backend", cfg.Env.StateBackend, "World state backend: file, sqlite, or s3")
	fs.StringVar(&cfg.Env.StatePath, "state", cfg.Env.StatePath, "World state path (file, sqlite database, or s3 key)")
	fs.StringVar(&cfg.Env.WorldID, "world", cfg.Env.WorldID, "World id within a sqlite database")
	fs.StringVar(&cfg.Env.TuningPath, "tuning", cfg.Env.TuningPath, "Orchestrator tuning YAML path")
	fs.StringVar(&cfg.Env.JournalDir, "journal-dir", cfg.Env.JournalDir, "Directory for the compressed decision journal")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale for error messages (en-US, pt-BR)")

	switch verb {
	case VerbApply:
		fs.StringVar(&cfg.EntityType, "entity-type", "", "Entity type: quest, trama, companion, or trade")
		fs.StringVar(&cfg.EntityID, "entity-id", "", "Entity identifier")
		fs.StringVar(&cfg.Trigger, "trigger", "", "Trigger text")
		fs.BoolVar(&cfg.Loose, "loose", false, "Match the trigger by substring instead of exactly")
		fs.BoolVar(&cfg.Unguarded, "unguarded", false, "Skip coherence gates entirely")
		fs.BoolVar(&cfg.AllowFailing, "allow-failing-gates", false, "Persist even when coherence gates fail")
	case VerbTick, VerbCandidates, VerbNarrate:
		fs.StringVar(&cfg.CommandsPath, "commands", "-", "JSON array of commands; - reads stdin")
		if verb != VerbCandidates {
			fs.BoolVar(&cfg.AllowFailing, "allow-failing-gates", false, "Persist even when coherence gates fail")
		}
		if verb == VerbTick {
			fs.BoolVar(&cfg.Safe, "safe", false, "Drop commands that cannot fire before scoring")
		}
		if verb == VerbNarrate {
			fs.StringVar(&cfg.Query, "query", "", "Scene query used to select lore")
			fs.StringVar(&cfg.LorePath, "lore", "", "JSON array of lore records")
		}
	case VerbHistory:
		fs.StringVar(&cfg.Filter, "filter", "", `AIP-160 filter, e.g. entity_type = "quest"`)
		fs.IntVar(&cfg.Limit, "limit", 0, "Maximum entries to return (0 returns all)")
	}

	if err := entrypoint.ParseArgs(fs, rest); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the configured subcommand and writes its JSON result.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Verb == VerbValidate {
		return validate(cfg)
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceNarrative, func(ctx context.Context) error {
		a, err := app.Open(ctx, cfg.Env)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(ctx, a.Service, cfg)
	})
}

func run(ctx context.Context, svc *app.Service, cfg Config) error {
	var guards []app.GuardOption
	if cfg.AllowFailing {
		guards = append(guards, app.WithBlockOnFailure(false))
	}

	switch cfg.Verb {
	case VerbState:
		st, err := svc.LoadState(ctx)
		if err != nil {
			return err
		}
		return writeJSON(st)
	case VerbApply:
		cmd := command.Command{
			EntityType: entity.Type(entity.NormalizeText(cfg.EntityType)),
			EntityID:   cfg.EntityID,
			Trigger:    cfg.Trigger,
		}
		if cfg.Loose {
			cmd = cmd.Loose()
		}
		if err := cmd.Validate(); err != nil {
			return err
		}
		if cfg.Unguarded {
			res, err := svc.ApplyTransitionAndSave(ctx, cmd)
			if err != nil {
				return err
			}
			return writeJSON(res)
		}
		res, err := svc.ApplyTransitionAndSaveWithGuards(ctx, cmd, guards...)
		if err != nil {
			return err
		}
		return writeJSON(res)
	case VerbTick:
		cmds, err := readCommands(cfg.CommandsPath)
		if err != nil {
			return err
		}
		if cfg.Safe {
			res, err := svc.SafeTick(ctx, cmds, guards...)
			if err != nil {
				return err
			}
			return writeJSON(res)
		}
		res, err := svc.Tick(ctx, cmds, guards...)
		if err != nil {
			return err
		}
		return writeJSON(res)
	case VerbCandidates:
		cmds, err := readCommands(cfg.CommandsPath)
		if err != nil {
			return err
		}
		res, err := svc.Candidates(ctx, cmds)
		if err != nil {
			return err
		}
		return writeJSON(res)
	case VerbHistory:
		entries, err := svc.History(ctx, cfg.Filter, cfg.Limit)
		if err != nil {
			return err
		}
		return writeJSON(entries)
	case VerbNarrate:
		cmds, err := readCommands(cfg.CommandsPath)
		if err != nil {
			return err
		}
		var lore []contextpack.Record
		if err := readJSON(cfg.LorePath, &lore); err != nil {
			return fmt.Errorf("read lore: %w", err)
		}
		res, err := svc.NarrateAndApply(ctx, app.NarrationInput{Query: cfg.Query, Commands: cmds, Lore: lore}, guards...)
		if err != nil {
			return err
		}
		return writeJSON(res)
	default:
		return fmt.Errorf("unknown subcommand %q", cfg.Verb)
	}
}

type validateReport struct {
	Path        string   `json:"path"`
	Transitions int      `json:"transitions"`
	Digest      string   `json:"sha256"`
	Problems    []string `json:"problems"`
}

func validate(cfg Config) error {
	cat, err := catalog.Load(cfg.Env.CatalogPath)
	if err != nil {
		return err
	}
	report := validateReport{
		Path:        cfg.Env.CatalogPath,
		Transitions: cat.Len(),
		Digest:      cat.Digest(),
		Problems:    catalog.Validate(cat),
	}
	if err := writeJSON(report); err != nil {
		return err
	}
	if len(report.Problems) > 0 {
		return apperrors.New(apperrors.CodeCatalogInvalid, fmt.Sprintf("catalog has %d integrity problem(s)", len(report.Problems)))
	}
	return nil
}

func readCommands(path string) ([]command.Command, error) {
	var cmds []command.Command
	if err := readJSON(path, &cmds); err != nil {
		return nil, fmt.Errorf("read commands: %w", err)
	}
	return cmds, nil
}

func readJSON(path string, v any) error {
	path = strings.TrimSpace(path)
	var (
		raw []byte
		err error
	)
	switch path {
	case "":
		return nil
	case "-":
		raw, err = io.ReadAll(input)
	default:
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func writeJSON(v any) error {
	enc := json.NewEncoder(output)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

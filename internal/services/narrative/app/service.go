package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/questline/internal/platform/errors"
	"github.com/louisbranch/questline/internal/services/narrative/contextpack"
	"github.com/louisbranch/questline/internal/services/narrative/domain/command"
	"github.com/louisbranch/questline/internal/services/narrative/domain/engine"
	"github.com/louisbranch/questline/internal/services/narrative/domain/orchestrator"
	"github.com/louisbranch/questline/internal/services/narrative/domain/runtime"
	"github.com/louisbranch/questline/internal/services/narrative/domain/state"
	"github.com/louisbranch/questline/internal/services/narrative/journal"
	"github.com/louisbranch/questline/internal/services/narrative/narration"
	"github.com/louisbranch/questline/internal/services/narrative/storage"
)

const tracerName = "github.com/louisbranch/questline/narrative"

// Service runs narrative operations against one world-state store.
type Service struct {
	mu sync.Mutex

	store        storage.StateStore
	runtime      *runtime.Runtime
	orchestrator *orchestrator.Orchestrator
	journal      journal.Recorder
	narrator     narration.Narrator
	contexts     *contextpack.Builder
	tracer       trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithOrchestrator replaces the default-config orchestrator.
func WithOrchestrator(o *orchestrator.Orchestrator) Option {
	return func(s *Service) {
		if o != nil {
			s.orchestrator = o
		}
	}
}

// WithJournal records applied, blocked, and rejected commands.
func WithJournal(r journal.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.journal = r
		}
	}
}

// WithNarrator sets the collaborator used by NarrateAndApply.
func WithNarrator(n narration.Narrator) Option {
	return func(s *Service) {
		s.narrator = n
	}
}

// WithContextBuilder replaces the default lore context builder.
func WithContextBuilder(b *contextpack.Builder) Option {
	return func(s *Service) {
		if b != nil {
			s.contexts = b
		}
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewService builds a service over store and rt.
func NewService(store storage.StateStore, rt *runtime.Runtime, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if rt == nil {
		return nil, errors.New("runtime is required")
	}
	s := &Service{
		store:        store,
		runtime:      rt,
		orchestrator: orchestrator.New(orchestrator.DefaultConfig()),
		journal:      journal.Nop{},
		contexts:     contextpack.NewBuilder(0, 0),
		tracer:       otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Engine returns the transition engine behind the runtime.
func (s *Service) Engine() *engine.Engine {
	return s.runtime.Engine()
}

// LoadState returns the persisted world state.
func (s *Service) LoadState(ctx context.Context) (state.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// SaveState replaces the persisted world state.
func (s *Service) SaveState(ctx context.Context, st state.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, st)
}

// ApplyTransitionAndSave applies cmd and persists the result without running
// coherence gates.
func (s *Service) ApplyTransitionAndSave(ctx context.Context, cmd command.Command) (runtime.Result, error) {
	ctx, span := s.startSpan(ctx, "narrative.apply", cmd)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return runtime.Result{}, recordSpanError(span, err)
	}
	res, err := s.runtime.ApplyTransition(current, cmd)
	if err != nil {
		return runtime.Result{}, recordSpanError(span, err)
	}
	if err := s.save(ctx, res.State); err != nil {
		return runtime.Result{}, recordSpanError(span, err)
	}
	span.SetAttributes(attribute.String("narrative.transition_id", res.Outcome.TransitionID))
	return res, nil
}

func (s *Service) load(ctx context.Context) (state.State, error) {
	st, err := s.store.Load(ctx)
	if err != nil {
		return state.State{}, apperrors.Wrap(apperrors.CodeStateStoreUnavailable, "load world state", err)
	}
	return st, nil
}

func (s *Service) save(ctx context.Context, st state.State) error {
	if err := s.store.Save(ctx, st); err != nil {
		return apperrors.Wrap(apperrors.CodeStateStoreUnavailable, "save world state", err)
	}
	return nil
}

func (s *Service) record(e journal.Entry) {
	if err := s.journal.Record(e); err != nil {
		log.Printf("narrative journal: %v", err)
	}
}

func (s *Service) startSpan(ctx context.Context, name string, cmd command.Command) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("narrative.entity_type", string(cmd.EntityType)),
		attribute.String("narrative.entity_id", cmd.EntityID),
		attribute.String("narrative.trigger", cmd.Trigger),
		attribute.Bool("narrative.strict_trigger", cmd.Strict()),
	))
}

func recordSpanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, fmt.Sprintf("%s: %v", apperrors.CodeOf(err), err))
	return err
}

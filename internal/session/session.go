// Package session orchestrates generation for one studio session: it
// validates the current selection, compiles the prompt, calls the image
// generator, and records successful results in history.
//
// A session runs at most one generation at a time. Generation has no user
// cancellation: once submitted, the call runs to completion even if the
// caller's context is cancelled.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/slicken/TextFx-Studio/internal/events"
	"github.com/slicken/TextFx-Studio/internal/generator"
	"github.com/slicken/TextFx-Studio/internal/history"
	"github.com/slicken/TextFx-Studio/internal/metrics"
	"github.com/slicken/TextFx-Studio/internal/prompt"
	"github.com/slicken/TextFx-Studio/internal/studio"
)

var (
	// ErrBusy is returned when a generation is already in flight.
	ErrBusy = errors.New("a generation is already in progress")
	// ErrGenerationFailed wraps every failure after the request was accepted.
	ErrGenerationFailed = errors.New("generation failed")
)

// Publisher receives a notification for every successful generation.
type Publisher interface {
	EmitImageGenerated(ctx context.Context, event events.ImageGenerated) error
}

// Session couples a configuration store with a generator and a history.
type Session struct {
	id        string
	store     *studio.Store
	gen       generator.Generator
	history   history.Store
	publisher Publisher
	namespace string
	model     string
	now       func() time.Time
	newID     func() string

	mu        sync.Mutex
	state     State
	notice    *Notice
	current   *history.GeneratedImage
	lastError string
}

// Option configures a Session.
type Option func(*Session)

// WithID sets the session ID. By default a random UUID is used.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithHistory replaces the default in-memory history.
func WithHistory(h history.Store) Option {
	return func(s *Session) { s.history = h }
}

// WithPublisher enables success notifications.
func WithPublisher(p Publisher) Option {
	return func(s *Session) { s.publisher = p }
}

// WithMetrics sets the EMF namespace and the model name reported with metrics.
func WithMetrics(namespace, model string) Option {
	return func(s *Session) {
		s.namespace = namespace
		s.model = model
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator replaces the image ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Session) { s.newID = newID }
}

// New creates an idle session.
func New(store *studio.Store, gen generator.Generator, opts ...Option) *Session {
	s := &Session{
		id:      uuid.NewString(),
		store:   store,
		gen:     gen,
		history: history.NewMemory(),
		model:   generator.DefaultModel,
		now:     time.Now,
		newID:   uuid.NewString,
		state:   Idle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// Store returns the session's configuration store.
func (s *Session) Store() *studio.Store { return s.store }

// History returns the session's history store.
func (s *Session) History() history.Store { return s.history }

// Generate runs one generation from the current selection.
//
// Empty text sets a validation notice that expires after ValidationNoticeTTL
// and returns studio.ErrEmptyText without calling the generator. A second
// call while one is in flight returns ErrBusy. Any later failure moves the
// session to Failed, sets the generic failure notice, and returns an error
// wrapping ErrGenerationFailed.
func (s *Session) Generate(ctx context.Context) (*history.GeneratedImage, error) {
	cfg := s.store.Snapshot()

	s.mu.Lock()
	if s.state == InFlight {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, studio.ErrEmptyText) {
			s.notice = &Notice{
				Kind:      NoticeValidation,
				Message:   MessageEmptyText,
				ExpiresAt: s.now().Add(ValidationNoticeTTL),
			}
		}
		s.mu.Unlock()
		log.Debug().Err(err).Str("session", s.id).Msg("Generation rejected by validation")
		return nil, err
	}
	s.state = InFlight
	s.notice = nil
	s.mu.Unlock()

	// No cancellation once submitted.
	ctx = context.WithoutCancel(ctx)

	p, err := prompt.Compile(cfg)
	if err != nil {
		log.Error().Err(err).Str("session", s.id).Msg("Prompt compiler rejected a validated snapshot")
		return nil, s.fail(FailureCompile, err)
	}
	log.Debug().Str("session", s.id).Str("prompt", p).Msg("Prompt compiled")

	start := s.now()
	img, err := s.gen.Generate(ctx, generator.Request{Prompt: p, AspectRatio: generator.AspectSquare})
	elapsed := s.now().Sub(start)
	if err != nil {
		kind, result := FailureRequest, metrics.ResultError
		if errors.Is(err, generator.ErrNoImage) {
			kind, result = FailureNoImage, metrics.ResultNoImage
		}
		metrics.RecordGeneration(s.namespace, s.model, result, elapsed, 0)
		log.Error().Err(err).Str("session", s.id).Dur("duration", elapsed).Msg("Image generation failed")
		return nil, s.fail(kind, err)
	}

	rec := &history.GeneratedImage{
		ID:        s.newID(),
		Text:      cfg.Text,
		Prompt:    p,
		MIMEType:  img.MIMEType,
		Data:      img.Data,
		CreatedAt: s.now(),
	}
	if err := s.history.Add(ctx, rec); err != nil {
		metrics.RecordGeneration(s.namespace, s.model, metrics.ResultError, elapsed, 0)
		log.Error().Err(err).Str("session", s.id).Str("image", rec.ID).Msg("Failed to record generated image")
		return nil, s.fail(FailureHistory, err)
	}
	metrics.RecordGeneration(s.namespace, s.model, metrics.ResultSuccess, elapsed, len(rec.Data))

	s.mu.Lock()
	s.state = Succeeded
	s.current = rec
	s.lastError = ""
	s.mu.Unlock()

	log.Info().
		Str("session", s.id).
		Str("image", rec.ID).
		Int("bytes", len(rec.Data)).
		Dur("duration", elapsed).
		Msg("Image generated")

	if s.publisher != nil {
		ev := events.ImageGenerated{
			SessionID:  s.id,
			ImageID:    rec.ID,
			Text:       rec.Text,
			Prompt:     rec.Prompt,
			MIMEType:   rec.MIMEType,
			ImageBytes: len(rec.Data),
			Model:      s.model,
			DurationMs: elapsed.Milliseconds(),
			CreatedAt:  rec.CreatedAt,
		}
		if err := s.publisher.EmitImageGenerated(ctx, ev); err != nil {
			log.Warn().Err(err).Str("image", rec.ID).Msg("Failed to publish ImageGenerated event")
		}
	}

	return rec, nil
}

func (s *Session) fail(kind string, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Failed
	s.lastError = kind
	s.notice = &Notice{Kind: NoticeFailure, Message: MessageFailed}
	return fmt.Errorf("%w: %w", ErrGenerationFailed, cause)
}

// Status returns the current state. An expired validation notice is dropped.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notice != nil && s.notice.expired(s.now()) {
		s.notice = nil
	}
	st := Status{
		ID:        s.id,
		State:     s.state,
		Current:   s.current,
		LastError: s.lastError,
	}
	if s.notice != nil {
		n := *s.notice
		st.Notice = &n
	}
	return st
}

// DismissNotice clears the visible notice.
func (s *Session) DismissNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = nil
}

// Select makes a history record the current image.
func (s *Session) Select(ctx context.Context, id string) (*history.GeneratedImage, error) {
	rec, err := s.history.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", history.ErrNotFound, id)
	}
	s.mu.Lock()
	s.current = rec
	s.mu.Unlock()
	return rec, nil
}

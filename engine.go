package teos

import (
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Option allows customization of an Engine.
type Option func(*Engine)

// Engine builds, signs and opens envelopes. It holds no keys and is
// immutable after New, so a single Engine may be shared between goroutines
// as long as its random source is safe for concurrent use.
type Engine struct {
	// rand supplies nonces and, by default, identifiers.
	rand io.Reader
	// newID returns the AAD identifier of a new envelope.
	newID func() (string, error)
	// now returns the creation time of a new envelope.
	now func() time.Time
	log *slog.Logger
}

// WithRandom sets the random source used for nonces and identifiers.
func WithRandom(r io.Reader) Option {
	return func(e *Engine) {
		e.rand = r
	}
}

// WithIDGenerator replaces the UUID v4 identifier generator.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// WithClock sets the clock used for AAD timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// New returns an Engine with crypto/rand, UUID v4 identifiers and the
// system clock unless overridden by opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		rand: rand.Reader,
		now:  time.Now,
		log:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.newID == nil {
		e.newID = e.randomID
	}
	return e
}

func (e *Engine) randomID() (string, error) {
	id, err := uuid.NewRandomFromReader(e.rand)
	if err != nil {
		return "", fmt.Errorf("generate identifier: %w", err)
	}
	return id.String(), nil
}

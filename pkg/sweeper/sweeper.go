package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/botwall/pkg/logger"
)

// ExpiredDeleter removes expired records from a store. Implemented by
// the session registry and the challenge store.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context) error
}

type target struct {
	name    string
	deleter ExpiredDeleter
}

// Sweeper periodically deletes expired records from its targets.
type Sweeper struct {
	targets  []target
	interval time.Duration
	log      *slog.Logger
}

// Option is a functional option for configuring the Sweeper.
type Option func(*Sweeper)

// WithTarget registers a store to sweep. Targets are swept in
// registration order.
func WithTarget(name string, deleter ExpiredDeleter) Option {
	return func(s *Sweeper) {
		if deleter != nil {
			s.targets = append(s.targets, target{name: name, deleter: deleter})
		}
	}
}

// WithInterval sets the time between sweeps.
func WithInterval(interval time.Duration) Option {
	return func(s *Sweeper) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithLogger sets the logger for sweep failures.
func WithLogger(log *slog.Logger) Option {
	return func(s *Sweeper) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a sweeper. Without options it sweeps nothing every minute.
func New(opts ...Option) *Sweeper {
	s := &Sweeper{
		interval: time.Minute,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sweep runs one cleanup pass over all targets. A failing target is
// logged and skipped so the others still get swept; the first error is
// returned for observability.
func (s *Sweeper) Sweep(ctx context.Context) error {
	var first error
	for _, tgt := range s.targets {
		if err := tgt.deleter.DeleteExpired(ctx); err != nil {
			s.log.ErrorContext(ctx, "sweep failed",
				logger.Component("sweeper"),
				slog.String("target", tgt.name),
				logger.Error(err),
			)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Run sweeps on every tick until the context is cancelled. Sweep errors
// are logged, never fatal: the next tick retries.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Sweep(ctx)
		}
	}
}

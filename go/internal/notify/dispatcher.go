package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/friendlies/go/internal/models"
)

// Dispatcher informs teams about match request lifecycle events.
// It is called after the change it describes has committed.
type Dispatcher interface {
	Notify(ctx context.Context, event models.MatchEvent) error
}

// DispatcherFunc adapts a func to Dispatcher
type DispatcherFunc func(ctx context.Context, event models.MatchEvent) error

func (f DispatcherFunc) Notify(ctx context.Context, event models.MatchEvent) error {
	return f(ctx, event)
}

// Multi fans each event out to every dispatcher. All of them are attempted;
// failures are joined.
type Multi []Dispatcher

func (m Multi) Notify(ctx context.Context, event models.MatchEvent) error {
	var errs []error
	for _, d := range m {
		if err := d.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RetryConfig bounds how hard Retrying tries before giving up
type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		RetryDelay: 200 * time.Millisecond,
	}
}

// Retrying re-sends an event with linear back-off until the wrapped dispatcher accepts it
type Retrying struct {
	next Dispatcher
	cfg  RetryConfig
}

func NewRetrying(next Dispatcher, cfg RetryConfig) *Retrying {
	return &Retrying{next: next, cfg: cfg}
}

func (r *Retrying) Notify(ctx context.Context, event models.MatchEvent) error {
	var lastErr error

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.cfg.RetryDelay * time.Duration(attempt)):
			}
		}

		if err := r.next.Notify(ctx, event); err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("event_id", event.ID.String()).
				Str("event_kind", string(event.Kind)).
				Msg("failed to dispatch event, retrying")
			continue
		}

		if attempt > 0 {
			log.Info().
				Int("attempt", attempt+1).
				Str("event_id", event.ID.String()).
				Msg("dispatch succeeded after retry")
		}
		return nil
	}

	return fmt.Errorf("dispatch failed after %d attempts: %w", r.cfg.MaxRetries+1, lastErr)
}

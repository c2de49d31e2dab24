package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/kodax/bulkpay/internal/circuitbreaker"
	"github.com/kodax/bulkpay/internal/domain/event"
)

// GuardedPublisher wraps a Publisher with a circuit breaker. Event publishes
// run post-commit and are best-effort; while the log is down the breaker
// fails them instantly instead of letting every settlement wait out a
// network timeout.
type GuardedPublisher struct {
	inner   event.Publisher
	breaker *circuitbreaker.Breaker
}

// NewGuardedPublisher wraps inner with default breaker thresholds. State
// transitions are logged so a dead event log is visible in operations.
func NewGuardedPublisher(inner event.Publisher, logger *slog.Logger) *GuardedPublisher {
	log := logger.With("component", "event_log_guard")
	return &GuardedPublisher{
		inner: inner,
		breaker: circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: 5,
			SuccessThreshold: 2,
			OpenTimeout:      15 * time.Second,
			OnStateChange: func(from, to circuitbreaker.State) {
				log.Warn("event log circuit state changed", "from", from.String(), "to", to.String())
			},
		}),
	}
}

// Publish forwards to the wrapped publisher unless the circuit is open.
func (g *GuardedPublisher) Publish(ctx context.Context, env event.Envelope) error {
	return g.breaker.Do(func() error {
		return g.inner.Publish(ctx, env)
	})
}

package notifier

import (
	"context"
	"errors"
	"log/slog"

	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/circuit"
)

// ErrCircuitOpen is returned without calling the backend while the breaker
// is open.
var ErrCircuitOpen = errors.New("notification backend unavailable: circuit open")

// Sender is the shape every notifier in this package has.
type Sender interface {
	Notify(ctx context.Context, applicationID id.ApplicationID, name, message string) error
}

// Guarded fails fast while the wrapped backend keeps failing, so an expiry
// sweep over many applications does not wait on a dead broker per item.
type Guarded struct {
	next    Sender
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuarded(next Sender, breaker *circuit.Breaker, logger *slog.Logger) *Guarded {
	return &Guarded{next: next, breaker: breaker, logger: logger}
}

func (g *Guarded) Notify(ctx context.Context, applicationID id.ApplicationID, name, message string) error {
	if !g.breaker.Allow() {
		return ErrCircuitOpen
	}
	if err := g.next.Notify(ctx, applicationID, name, message); err != nil {
		if ctx.Err() != nil {
			// the caller gave up; says nothing about the backend
			g.breaker.Release()
			return err
		}
		if g.breaker.RecordFailure() && g.logger != nil {
			g.logger.WarnContext(ctx, "notification circuit opened", "breaker", g.breaker.Name(), "error", err)
		}
		return err
	}
	if g.breaker.RecordSuccess() && g.logger != nil {
		g.logger.InfoContext(ctx, "notification circuit closed", "breaker", g.breaker.Name())
	}
	return nil
}

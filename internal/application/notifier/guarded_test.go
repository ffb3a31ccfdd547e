package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"onboarding/internal/application/models"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/circuit"
	"onboarding/pkg/testutil"
)

func TestGuarded(t *testing.T) {
	ctx := context.Background()
	appID := id.NewApplicationID()
	clock := testutil.ClockAtDate(2022, time.January, 1)
	backend := NewInMemory()
	breaker := circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Minute), circuit.WithClock(clock.Now))
	guarded := NewGuarded(backend, breaker, nil)

	boom := errors.New("broker down")
	backend.FailAll(boom)

	assert.ErrorIs(t, guarded.Notify(ctx, appID, "Ola", "one"), boom)
	assert.ErrorIs(t, guarded.Notify(ctx, appID, "Ola", "two"), boom)
	assert.ErrorIs(t, guarded.Notify(ctx, appID, "Ola", "three"), ErrCircuitOpen, "open breaker skips the backend")

	backend.FailAll(nil)
	assert.ErrorIs(t, guarded.Notify(ctx, appID, "Ola", "four"), ErrCircuitOpen)

	clock.Advance(time.Minute)
	assert.NoError(t, guarded.Notify(ctx, appID, "Ola", models.ApprovedMessage(appID)))
	assert.Equal(t, circuit.StateClosed, breaker.State())
	assert.Equal(t, []string{models.ApprovedMessage(appID)}, backend.NotificationsFor("Ola"))
}

func TestGuardedCancelledCallerDoesNotTrip(t *testing.T) {
	appID := id.NewApplicationID()
	backend := NewInMemory()
	breaker := circuit.New("test", circuit.WithFailureThreshold(1), circuit.WithCooldown(time.Minute))
	guarded := NewGuarded(backend, breaker, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	backend.FailAll(context.Canceled)

	assert.ErrorIs(t, guarded.Notify(ctx, appID, "Ola", "one"), context.Canceled)
	assert.Equal(t, circuit.StateClosed, breaker.State())

	backend.FailAll(nil)
	assert.NoError(t, guarded.Notify(context.Background(), appID, "Ola", "two"))
}

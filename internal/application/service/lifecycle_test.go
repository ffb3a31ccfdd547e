package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding/internal/application/models"
	"onboarding/internal/application/notifier"
	"onboarding/internal/application/service"
	appstore "onboarding/internal/application/store/application"
	customerstore "onboarding/internal/application/store/customer"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/testutil"
)

// These scenarios run the lifecycle against the in-memory stores and the
// recording notifier, so every assertion is on observable state.

type lifecycle struct {
	service      *service.Service
	applications *appstore.InMemoryStore
	customers    *customerstore.InMemoryStore
	notifier     *notifier.InMemory
	clock        *testutil.TestClock
}

func newLifecycle(t *testing.T, clock *testutil.TestClock) *lifecycle {
	t.Helper()
	l := &lifecycle{
		applications: appstore.NewInMemoryStore(),
		customers:    customerstore.NewInMemoryStore(),
		notifier:     notifier.NewInMemory(),
		clock:        clock,
	}
	svc, err := service.New(service.Dependencies{
		Applications: l.applications,
		Customers:    l.customers,
		Notifier:     l.notifier,
		Clock:        clock.Now,
	})
	require.NoError(t, err)
	l.service = svc
	return l
}

func (l *lifecycle) register(t *testing.T, name string, active bool, applied time.Time) *models.Application {
	t.Helper()
	customer, err := models.NewCustomer(id.NewCustomerID(), name, active)
	require.NoError(t, err)
	app, err := models.NewApplication(id.NewApplicationID(), customer.ID, name,
		time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC), applied)
	require.NoError(t, err)
	require.NoError(t, l.service.RegisterInitialApplication(context.Background(), *customer, *app))
	return app
}

func (l *lifecycle) status(t *testing.T, appID id.ApplicationID) models.ApplicationStatus {
	t.Helper()
	app, err := l.service.GetApplication(context.Background(), appID)
	require.NoError(t, err)
	return app.Status
}

func TestExpirySweep(t *testing.T) {
	ctx := context.Background()

	testutil.Given(t, "an application from 2022-01-01 and the clock seven months later", func(t *testing.T) {
		l := newLifecycle(t, testutil.ClockAtDate(2022, time.January, 1))
		app := l.register(t, "Ola", true, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
		l.clock.SetTo(time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC))

		testutil.When(t, "the sweep runs", func(t *testing.T) {
			report, err := l.service.ExpireApplications(ctx)
			require.NoError(t, err)
			assert.Equal(t, []id.ApplicationID{app.ID}, report.Expired)

			testutil.Then(t, "the application is expired", func(t *testing.T) {
				assert.Equal(t, models.StatusExpired, l.status(t, app.ID))
			})
			testutil.And(t, "exactly one notification names the application", func(t *testing.T) {
				messages := l.notifier.NotificationsFor("Ola")
				require.Len(t, messages, 1)
				assert.True(t, strings.Contains(messages[0], app.ID.String()))
			})
		})
	})

	testutil.Given(t, "applications five and seven months old", func(t *testing.T) {
		now := time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC)
		l := newLifecycle(t, testutil.ClockAt(now))
		young := l.register(t, "Kari", true, now.AddDate(0, -5, 0))
		old := l.register(t, "Per", true, now.AddDate(0, -7, 0))

		testutil.When(t, "the sweep runs", func(t *testing.T) {
			_, err := l.service.ExpireApplications(ctx)
			require.NoError(t, err)

			testutil.Then(t, "only the seven month old one expires", func(t *testing.T) {
				assert.Equal(t, models.StatusExpired, l.status(t, old.ID))
				assert.Equal(t, models.StatusActive, l.status(t, young.ID))
				assert.Empty(t, l.notifier.NotificationsFor("Kari"))
			})
		})
	})

	testutil.Given(t, "an application exactly six months old", func(t *testing.T) {
		l := newLifecycle(t, testutil.ClockAtDate(2022, time.July, 1))
		app := l.register(t, "Ola", true, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))

		testutil.When(t, "the sweep runs on the expiry date", func(t *testing.T) {
			_, err := l.service.ExpireApplications(ctx)
			require.NoError(t, err)

			testutil.Then(t, "it is still active", func(t *testing.T) {
				assert.Equal(t, models.StatusActive, l.status(t, app.ID))
			})
		})

		testutil.When(t, "the sweep runs one day later", func(t *testing.T) {
			l.clock.Advance(24 * time.Hour)
			_, err := l.service.ExpireApplications(ctx)
			require.NoError(t, err)

			testutil.Then(t, "it expires", func(t *testing.T) {
				assert.Equal(t, models.StatusExpired, l.status(t, app.ID))
			})
		})
	})

	testutil.Given(t, "two stale applications where one notification fails", func(t *testing.T) {
		l := newLifecycle(t, testutil.ClockAtDate(2022, time.December, 1))
		failing := l.register(t, "Ola", true, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
		sibling := l.register(t, "Kari", true, time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC))
		l.notifier.FailFor(failing.ID, errors.New("mailbox full"))

		testutil.When(t, "the sweep runs", func(t *testing.T) {
			report, err := l.service.ExpireApplications(ctx)
			require.NoError(t, err)

			testutil.Then(t, "both are expired and the sibling is notified", func(t *testing.T) {
				assert.Equal(t, models.StatusExpired, l.status(t, failing.ID))
				assert.Equal(t, models.StatusExpired, l.status(t, sibling.ID))
				assert.Len(t, l.notifier.NotificationsFor("Kari"), 1)
			})
			testutil.And(t, "the failure is reported", func(t *testing.T) {
				require.Len(t, report.Failures, 1)
				assert.Equal(t, failing.ID, report.Failures[0].ApplicationID)
				assert.Equal(t, service.StageNotify, report.Failures[0].Stage)
				assert.True(t, service.IsNotificationSendError(report.Err()))
			})
		})
	})
}

func TestApproval(t *testing.T) {
	ctx := context.Background()

	testutil.Given(t, "an application from an inactive customer", func(t *testing.T) {
		l := newLifecycle(t, testutil.ClockAtDate(2022, time.February, 1))
		app := l.register(t, "Ola", false, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))

		testutil.When(t, "it is approved", func(t *testing.T) {
			_, err := l.service.ApproveApplication(ctx, app.ID)

			testutil.Then(t, "the precondition fails", func(t *testing.T) {
				assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
				assert.EqualError(t, err, "Customer not active")
			})
			testutil.And(t, "the stored status is unchanged", func(t *testing.T) {
				assert.Equal(t, models.StatusActive, l.status(t, app.ID))
				assert.Empty(t, l.notifier.Sent())
			})
		})
	})

	testutil.Given(t, "a notifier that fails", func(t *testing.T) {
		l := newLifecycle(t, testutil.ClockAtDate(2022, time.February, 1))
		app := l.register(t, "Ola", true, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
		l.notifier.FailAll(errors.New("connection refused"))

		testutil.When(t, "the application is approved", func(t *testing.T) {
			updated, err := l.service.ApproveApplication(ctx, app.ID)

			testutil.Then(t, "a notification send error is returned", func(t *testing.T) {
				var nse *service.NotificationSendError
				require.ErrorAs(t, err, &nse)
				assert.Equal(t, app.ID, nse.ApplicationID)
				assert.Equal(t, models.StatusApproved, updated.Status)
			})
			testutil.And(t, "the approval is already persisted", func(t *testing.T) {
				assert.Equal(t, models.StatusApproved, l.status(t, app.ID))
			})
		})
	})

	testutil.Given(t, "a customer deactivated after applying", func(t *testing.T) {
		l := newLifecycle(t, testutil.ClockAtDate(2022, time.February, 1))
		app := l.register(t, "Ola", true, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, l.service.SetCustomerActive(ctx, app.CustomerID, false))

		testutil.Then(t, "approval is refused", func(t *testing.T) {
			_, err := l.service.ApproveApplication(ctx, app.ID)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		})
	})

	testutil.Given(t, "a denied application", func(t *testing.T) {
		l := newLifecycle(t, testutil.ClockAtDate(2022, time.February, 1))
		app := l.register(t, "Ola", true, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
		_, err := l.service.RejectApplication(ctx, app.ID)
		require.NoError(t, err)

		testutil.Then(t, "it cannot be approved", func(t *testing.T) {
			_, err := l.service.ApproveApplication(ctx, app.ID)
			assert.EqualError(t, err, "Cannot approve a denied application")
			assert.Equal(t, models.StatusDenied, l.status(t, app.ID))
		})
		testutil.And(t, "the applicant got one denial", func(t *testing.T) {
			assert.Equal(t, []string{models.DeniedMessage(app.ID)}, l.notifier.NotificationsFor("Ola"))
		})
	})

	testutil.Given(t, "an approved application", func(t *testing.T) {
		l := newLifecycle(t, testutil.ClockAtDate(2022, time.February, 1))
		app := l.register(t, "Ola", true, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
		_, err := l.service.ApproveApplication(ctx, app.ID)
		require.NoError(t, err)

		testutil.Then(t, "approving again is allowed", func(t *testing.T) {
			updated, err := l.service.ApproveApplication(ctx, app.ID)
			require.NoError(t, err)
			assert.Equal(t, models.StatusApproved, updated.Status)
		})
	})
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	l := newLifecycle(t, testutil.ClockAtDate(2022, time.March, 1))
	first := l.register(t, "Ola", true, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
	second := l.register(t, "Ola", true, time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC))
	l.register(t, "Kari", true, time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC))
	_, err := l.service.RejectApplication(ctx, first.ID)
	require.NoError(t, err)

	all, err := l.service.ApplicationsForName(ctx, "Ola")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := l.service.ActiveApplicationsFor(ctx, "Ola")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	_, err = l.service.GetApplication(ctx, id.NewApplicationID())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

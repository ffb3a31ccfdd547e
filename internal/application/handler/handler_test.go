package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding/internal/application/models"
	"onboarding/internal/application/notifier"
	"onboarding/internal/application/service"
	appstore "onboarding/internal/application/store/application"
	customerstore "onboarding/internal/application/store/customer"
	id "onboarding/pkg/domain"
	"onboarding/pkg/testutil"
)

type testEnv struct {
	router   http.Handler
	notifier *notifier.InMemory
	clock    *testutil.TestClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		notifier: notifier.NewInMemory(),
		clock:    testutil.ClockAtDate(2022, time.February, 1),
	}
	svc, err := service.New(service.Dependencies{
		Applications: appstore.NewInMemoryStore(),
		Customers:    customerstore.NewInMemoryStore(),
		Notifier:     env.notifier,
		Clock:        env.clock.Now,
	})
	require.NoError(t, err)
	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	env.router = r
	return env
}

func registerBody(customerID id.CustomerID, name string, active bool, applied string) string {
	return fmt.Sprintf(`{
		"customer": {"id": %q, "name": %q, "active": %t},
		"application": {"name": %q, "birth_date": "1990-05-17", "application_date": %q}
	}`, customerID.String(), name, active, name, applied)
}

func (e *testEnv) register(t *testing.T, name string, active bool, applied string) (*models.Application, id.CustomerID) {
	t.Helper()
	customerID := id.NewCustomerID()
	rr := testutil.Serve(e.router, testutil.JSONRequest(t, http.MethodPost, "/applications",
		registerBody(customerID, name, active, applied)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return testutil.DecodeBody[models.Application](t, rr), customerID
}

func TestHandleRegisterApplication(t *testing.T) {
	testutil.Given(t, "the application endpoints", func(t *testing.T) {
		env := newTestEnv(t)

		testutil.When(t, "a valid application is posted", func(t *testing.T) {
			app, customerID := env.register(t, "Ola", true, "2022-01-01")

			testutil.Then(t, "it is stored as ACTIVE", func(t *testing.T) {
				assert.Equal(t, models.StatusActive, app.Status)
				assert.Equal(t, customerID, app.CustomerID)
				assert.False(t, app.ID.IsNil())
			})
		})

		testutil.When(t, "the customer id is missing", func(t *testing.T) {
			rr := testutil.Serve(env.router, testutil.JSONRequest(t, http.MethodPost, "/applications",
				`{"customer": {"name": "Ola", "active": true}, "application": {"name": "Ola", "birth_date": "1990-05-17", "application_date": "2022-01-01"}}`))

			testutil.Then(t, "it is a bad request", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusBadRequest)
			})
		})

		testutil.When(t, "the application date is malformed", func(t *testing.T) {
			rr := testutil.Serve(env.router, testutil.JSONRequest(t, http.MethodPost, "/applications",
				registerBody(id.NewCustomerID(), "Ola", true, "01.01.2022")))

			testutil.Then(t, "it is a validation error", func(t *testing.T) {
				testutil.AssertError(t, rr, http.StatusUnprocessableEntity, "validation_error", "")
			})
		})

		testutil.When(t, "the body is not JSON", func(t *testing.T) {
			rr := testutil.Serve(env.router, testutil.JSONRequest(t, http.MethodPost, "/applications", `{`))

			testutil.Then(t, "it is a bad request", func(t *testing.T) {
				testutil.AssertError(t, rr, http.StatusBadRequest, "bad_request", "")
			})
		})
	})
}

func TestHandleTransitions(t *testing.T) {
	testutil.Given(t, "an application from an active customer", func(t *testing.T) {
		env := newTestEnv(t)
		app, _ := env.register(t, "Ola", true, "2022-01-01")

		testutil.When(t, "it is approved", func(t *testing.T) {
			rr := testutil.Serve(env.router, testutil.JSONRequest(t, http.MethodPost,
				"/applications/"+app.ID.String()+"/approve", ""))

			testutil.Then(t, "the approved application is returned", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusOK)
				resp := testutil.DecodeBody[transitionResponse](t, rr)
				assert.Equal(t, models.StatusApproved, resp.Application.Status)
				assert.Empty(t, resp.NotificationError)
				assert.Equal(t, []string{models.ApprovedMessage(app.ID)}, env.notifier.NotificationsFor("Ola"))
			})
		})
	})

	testutil.Given(t, "an application from an inactive customer", func(t *testing.T) {
		env := newTestEnv(t)
		app, _ := env.register(t, "Ola", false, "2022-01-01")

		testutil.When(t, "it is approved", func(t *testing.T) {
			rr := testutil.Serve(env.router, testutil.JSONRequest(t, http.MethodPost,
				"/applications/"+app.ID.String()+"/approve", ""))

			testutil.Then(t, "it conflicts", func(t *testing.T) {
				testutil.AssertError(t, rr, http.StatusConflict, "conflict", "Customer not active")
			})
		})
	})

	testutil.Given(t, "a failing notifier", func(t *testing.T) {
		env := newTestEnv(t)
		app, _ := env.register(t, "Ola", true, "2022-01-01")
		env.notifier.FailAll(errors.New("smtp down"))

		testutil.When(t, "the application is rejected", func(t *testing.T) {
			rr := testutil.Serve(env.router, testutil.JSONRequest(t, http.MethodPost,
				"/applications/"+app.ID.String()+"/reject", ""))

			testutil.Then(t, "the denial is reported with the notification failure", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusBadGateway)
				resp := testutil.DecodeBody[transitionResponse](t, rr)
				assert.Equal(t, models.StatusDenied, resp.Application.Status)
				assert.Contains(t, resp.NotificationError, "smtp down")
			})
			testutil.And(t, "the denial is persisted", func(t *testing.T) {
				rr := testutil.Serve(env.router, testutil.JSONRequest(t, http.MethodGet,
					"/applications/"+app.ID.String(), ""))
				testutil.AssertStatus(t, rr, http.StatusOK)
				assert.Equal(t, models.StatusDenied, testutil.DecodeBody[models.Application](t, rr).Status)
			})
		})
	})

	testutil.Given(t, "an unknown or malformed id", func(t *testing.T) {
		env := newTestEnv(t)

		testutil.Then(t, "unknown ids are not found", func(t *testing.T) {
			rr := testutil.Serve(env.router, testutil.JSONRequest(t, http.MethodPost,
				"/applications/"+id.NewApplicationID().String()+"/approve", ""))
			testutil.AssertError(t, rr, http.StatusNotFound, "not_found", "")
		})
		testutil.And(t, "malformed ids are bad requests", func(t *testing.T) {
			rr := testutil.Serve(env.router, testutil.JSONRequest(t, http.MethodGet, "/applications/not-a-uuid", ""))
			testutil.AssertStatus(t, rr, http.StatusBadRequest)
		})
	})
}

func TestHandleListAndExpire(t *testing.T) {
	testutil.Given(t, "one stale and one fresh application for the same name", func(t *testing.T) {
		env := newTestEnv(t)
		stale, _ := env.register(t, "Ola", true, "2022-01-01")
		fresh, _ := env.register(t, "Ola", true, "2022-07-15")
		env.clock.SetTo(time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC))

		testutil.When(t, "the expiry sweep is triggered", func(t *testing.T) {
			rr := testutil.Serve(env.router, testutil.JSONRequest(t, http.MethodPost, "/applications/expire", ""))

			testutil.Then(t, "the report lists the stale application", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusOK)
				report := testutil.DecodeBody[service.ExpiryReport](t, rr)
				assert.Equal(t, 2, report.Checked)
				assert.Equal(t, []id.ApplicationID{stale.ID}, report.Expired)
				assert.Empty(t, report.Failures)
			})
		})

		testutil.When(t, "active applications are listed", func(t *testing.T) {
			rr := testutil.Serve(env.router, testutil.JSONRequest(t, http.MethodGet, "/applications?name=Ola&active=true", ""))

			testutil.Then(t, "only the fresh one is returned", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusOK)
				resp := testutil.DecodeBody[applicationsResponse](t, rr)
				require.Len(t, resp.Applications, 1)
				assert.Equal(t, fresh.ID, resp.Applications[0].ID)
			})
		})

		testutil.When(t, "all applications are listed", func(t *testing.T) {
			rr := testutil.Serve(env.router, testutil.JSONRequest(t, http.MethodGet, "/applications?name=Ola", ""))

			testutil.Then(t, "both are returned", func(t *testing.T) {
				resp := testutil.DecodeBody[applicationsResponse](t, rr)
				assert.Len(t, resp.Applications, 2)
			})
		})

		testutil.When(t, "the name is missing", func(t *testing.T) {
			rr := testutil.Serve(env.router, testutil.JSONRequest(t, http.MethodGet, "/applications", ""))

			testutil.Then(t, "it is a bad request", func(t *testing.T) {
				testutil.AssertError(t, rr, http.StatusBadRequest, "bad_request", "")
			})
		})
	})
}

func TestHandleSetCustomerActive(t *testing.T) {
	env := newTestEnv(t)
	app, customerID := env.register(t, "Ola", true, "2022-01-01")

	rr := testutil.Serve(env.router, testutil.JSONRequest(t, http.MethodPut,
		"/customers/"+customerID.String()+"/active", `{"active": false}`))
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = testutil.Serve(env.router, testutil.JSONRequest(t, http.MethodPost,
		"/applications/"+app.ID.String()+"/approve", ""))
	testutil.AssertStatus(t, rr, http.StatusConflict)

	rr = testutil.Serve(env.router, testutil.JSONRequest(t, http.MethodPut,
		"/customers/"+id.NewCustomerID().String()+"/active", `{"active": true}`))
	testutil.AssertStatus(t, rr, http.StatusNotFound)

	rr = testutil.Serve(env.router, testutil.JSONRequest(t, http.MethodPut,
		"/customers/"+customerID.String()+"/active", `{}`))
	testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
}

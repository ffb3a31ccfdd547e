package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding/internal/registration/models"
	"onboarding/internal/registration/service"
	"onboarding/internal/registration/store"
	"onboarding/pkg/testutil"
)

func newRegistrationRouter(t *testing.T) (http.Handler, *store.InMemory) {
	t.Helper()
	st := store.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(service.New(st), logger)
	r := chi.NewRouter()
	h.Register(r)
	return r, st
}

func TestHandleRegister(t *testing.T) {
	testutil.Given(t, "the registration endpoint", func(t *testing.T) {
		router, st := newRegistrationRouter(t)

		testutil.When(t, "a named registration is posted", func(t *testing.T) {
			rr := testutil.Serve(router, testutil.JSONRequest(t, http.MethodPost, "/registrations", `{
				"email": "ola@nordmann.com",
				"anonymous": false,
				"name": "Ola",
				"address": {"streetName": "Storgata 1", "city": "Oslo", "poCode": "0155", "country": "Norway"}
			}`))

			testutil.Then(t, "it congratulates by name and stores the registration", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusCreated)
				testutil.AssertField(t, rr, "result", "Congrats Ola!")

				_, err := st.FindByEmail(t.Context(), models.ValidEmail{User: "ola", Domain: "nordmann.com"})
				assert.NoError(t, err)
			})
		})

		testutil.When(t, "an anonymous registration is posted", func(t *testing.T) {
			rr := testutil.Serve(router, testutil.JSONRequest(t, http.MethodPost, "/registrations",
				`{"email": "anon@example.com", "anonymous": true}`))

			testutil.Then(t, "it congratulates without a name", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusCreated)
				testutil.AssertField(t, rr, "result", "Congrats!")
			})
		})

		testutil.When(t, "the email is invalid", func(t *testing.T) {
			rr := testutil.Serve(router, testutil.JSONRequest(t, http.MethodPost, "/registrations",
				`{"email": "invalid-email", "anonymous": false, "name": "Myname"}`))

			testutil.Then(t, "it lists the validation errors", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
				resp := testutil.DecodeBody[errorsResponse](t, rr)
				require.NotEmpty(t, resp.Errors)
				assert.Equal(t, models.ValidationError{Path: "email", Message: "Not a valid Email ;)", Value: "invalid-email"}, resp.Errors[0])
			})
		})

		testutil.When(t, "a non-anonymous registration has no name", func(t *testing.T) {
			rr := testutil.Serve(router, testutil.JSONRequest(t, http.MethodPost, "/registrations",
				`{"email": "ola@nordmann.com", "anonymous": false, "name": null}`))

			testutil.Then(t, "it reports an invalid combination", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
				resp := testutil.DecodeBody[errorsResponse](t, rr)
				require.Len(t, resp.Errors, 1)
				assert.Equal(t, "Invalid combination!", resp.Errors[0].Message)
			})
		})

		testutil.When(t, "the domain is not allowed", func(t *testing.T) {
			rr := testutil.Serve(router, testutil.JSONRequest(t, http.MethodPost, "/registrations",
				`{"email": "ola@nordmann.no", "anonymous": true}`))

			testutil.Then(t, "it is forbidden", func(t *testing.T) {
				testutil.AssertError(t, rr, http.StatusForbidden, "forbidden", "")
			})
		})
	})
}

func TestDecodeRegisterRequest(t *testing.T) {
	t.Run("malformed JSON is a bad request", func(t *testing.T) {
		_, err := DecodeRegisterRequest([]byte(`{"email": `))
		require.Error(t, err)
	})

	t.Run("wrong field types are bad requests", func(t *testing.T) {
		_, err := DecodeRegisterRequest([]byte(`{"email": 42, "anonymous": "yes"}`))
		require.Error(t, err)
	})

	t.Run("missing anonymous flag is a bad request", func(t *testing.T) {
		_, err := DecodeRegisterRequest([]byte(`{"email": "a@b.com"}`))
		require.Error(t, err)
	})

	t.Run("null address fields reach the cascade", func(t *testing.T) {
		req, err := DecodeRegisterRequest([]byte(`{"email": "a@b.com", "anonymous": false, "name": "A",
			"address": {"streetName": null, "city": "Oslo", "poCode": "0155", "country": "Norway"}}`))
		require.NoError(t, err)

		invalid, ok := req.Form().(models.InvalidRegistration)
		require.True(t, ok)
		assert.Equal(t, "address", invalid.Errors()[0].Path)
		assert.Equal(t, "null:Oslo:0155:Norway", invalid.Errors()[0].Value)
	})
}

// Package testutil provides scenario helpers, a settable clock and HTTP
// helpers shared by handler and service tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// JSONRequest builds a request carrying a raw JSON body. An empty body
// sends no payload, which is how the transition endpoints are called.
func JSONRequest(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// Serve runs req through h and returns what was written.
func Serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// Body returns the recorded body without draining the recorder.
func Body(rr *httptest.ResponseRecorder) string {
	return rr.Body.String()
}

// DecodeBody decodes the recorded JSON body into a T.
func DecodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) *T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "decode body: %s", rr.Body.String())
	return &out
}

// ErrorBody is the shape httputil.WriteError produces.
type ErrorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// AssertStatus fails when the recorded status differs, printing the body.
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rr.Code, "body: %s", rr.Body.String())
}

// AssertError checks status, error code and, when non-empty, description.
func AssertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code, description string) {
	t.Helper()
	AssertStatus(t, rr, status)
	body := DecodeBody[ErrorBody](t, rr)
	assert.Equal(t, code, body.Error)
	if description != "" {
		assert.Equal(t, description, body.Description)
	}
}

// AssertField checks a single top-level field of a JSON object body.
func AssertField(t *testing.T, rr *httptest.ResponseRecorder, key string, want any) {
	t.Helper()
	body := DecodeBody[map[string]any](t, rr)
	assert.Equal(t, want, (*body)[key], "field %q in %s", key, rr.Body.String())
}

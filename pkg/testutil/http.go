// Package testutil provides common test utilities for handler and integration tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/platform/httputil"
)

// Envelope mirrors httputil.Envelope with a typed payload for decoding.
type Envelope[T any] struct {
	Status     string               `json:"status"`
	RequestID  string               `json:"requestId"`
	Results    *int                 `json:"results"`
	Data       T                    `json:"data"`
	Pagination *httputil.Pagination `json:"pagination"`
	Message    string               `json:"message"`
	Code       string               `json:"code"`
	Errors     []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

// NewJSONRequest creates an HTTP request with JSON body.
// The body is marshaled to JSON automatically.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	return WithRequestID(req, "test-request-id")
}

// NewRequest creates a request without a body.
func NewRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return WithRequestID(httptest.NewRequest(method, path, nil), "test-request-id")
}

// NewRequestWithBody creates a request with a raw string body.
func NewRequestWithBody(t *testing.T, method, path string, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return WithRequestID(req, "test-request-id")
}

// DoRequest executes a request against a handler and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// DecodeEnvelope decodes the response body into a typed envelope.
func DecodeEnvelope[T any](t *testing.T, rr *httptest.ResponseRecorder) *Envelope[T] {
	t.Helper()
	var env Envelope[T]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), "failed to unmarshal envelope: %s", rr.Body.String())
	return &env
}

// DecodeMap decodes the response body into a generic map.
func DecodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "failed to unmarshal response")
	return body
}

// AssertStatus asserts the response status code matches expected.
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rr.Code, "unexpected status code: %s", rr.Body.String())
}

// AssertSuccess asserts a 2xx success envelope with data and returns it.
func AssertSuccess[T any](t *testing.T, rr *httptest.ResponseRecorder, expectedStatus int) *Envelope[T] {
	t.Helper()
	AssertStatus(t, rr, expectedStatus)
	env := DecodeEnvelope[T](t, rr)
	assert.Equal(t, "success", env.Status)
	assert.NotEmpty(t, env.RequestID)
	return env
}

// AssertError asserts status, error envelope shape and message.
func AssertError(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) {
	t.Helper()
	AssertStatus(t, rr, expectedStatus)
	env := DecodeEnvelope[json.RawMessage](t, rr)
	assert.Equal(t, "error", env.Status)
	assert.NotEmpty(t, env.RequestID)
	assert.Nil(t, env.Results)
	assert.Equal(t, expectedMessage, env.Message)
}

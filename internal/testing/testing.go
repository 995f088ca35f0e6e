// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

// MockRoundTripper allows custom HTTP responses for testing.
type MockRoundTripper struct {
	// Handler receives each request and returns the canned response.
	// When nil, Response/Err are returned for every request.
	Handler  func(*http.Request) (*http.Response, error)
	Response *http.Response
	Err      error
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if m.Handler != nil {
		return m.Handler(req)
	}
	return m.Response, m.Err
}

// JSONResponse builds an *http.Response carrying the JSON encoding of v.
func JSONResponse(t *testing.T, status int, v any) *http.Response {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal response body: %v", err)
	}

	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(data)),
	}
}

// Package twintest starts an in-memory Twilio twin for tests and provides a
// raw HTTP client with assertion helpers for talking to it.
package twintest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/wondertwin-ai/twilio/internal/twin"
	"github.com/wondertwin-ai/twilio/pkg/twilio"
)

// Default credentials the test twin is configured with.
const (
	AccountSID = "AC000000000000"
	AuthToken  = "79ad98413d911947f0ba369d295ae7a3"
)

// Start runs a quiet twin behind an httptest server, closed when t ends.
func Start(t *testing.T) (*twin.Twin, *httptest.Server) {
	t.Helper()
	tw := twin.New(&twin.Config{AccountSID: AccountSID, AuthToken: AuthToken, Name: "twin-twilio-test"})
	tw.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(tw)
	t.Cleanup(srv.Close)
	return tw, srv
}

// Client is a raw HTTP client for a twin. Requests carry Basic credentials
// unless User is empty.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	User       string
	Password   string
	t          *testing.T
}

// NewClient creates a client pointed at srv using the default credentials.
func NewClient(t *testing.T, srv *httptest.Server) *Client {
	return &Client{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
		User:       AccountSID,
		Password:   AuthToken,
		t:          t,
	}
}

// Anonymous returns a copy of c that sends no credentials.
func (c *Client) Anonymous() *Client {
	cp := *c
	cp.User, cp.Password = "", ""
	return &cp
}

// AccountPath prefixes path with the versioned account root, e.g.
// AccountPath("/Messages.json").
func AccountPath(path string) string {
	return "/" + twilio.DefaultAPIVersion + "/Accounts/" + AccountSID + path
}

// Response wraps an HTTP response with helper methods.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
	t          *testing.T
}

// JSONMap returns the response body as a map.
func (r *Response) JSONMap() map[string]any {
	r.t.Helper()
	var m map[string]any
	if err := json.Unmarshal(r.Body, &m); err != nil {
		r.t.Fatalf("failed to unmarshal response: %v\nbody: %s", err, string(r.Body))
	}
	return m
}

// AssertStatus asserts the response has the expected status code.
func (r *Response) AssertStatus(expected int) *Response {
	r.t.Helper()
	if r.StatusCode != expected {
		r.t.Errorf("expected status %d, got %d\nbody: %s", expected, r.StatusCode, string(r.Body))
	}
	return r
}

// AssertCode asserts the body is an error document with the given code.
func (r *Response) AssertCode(code int) *Response {
	r.t.Helper()
	got, _ := r.JSONMap()["code"].(float64)
	if int(got) != code {
		r.t.Errorf("expected error code %d, got %v\nbody: %s", code, got, string(r.Body))
	}
	return r
}

// AssertBodyContains asserts the response body contains the given substring.
func (r *Response) AssertBodyContains(substr string) *Response {
	r.t.Helper()
	if !strings.Contains(string(r.Body), substr) {
		r.t.Errorf("expected body to contain %q, got: %s", substr, string(r.Body))
	}
	return r
}

// Get performs a GET request with query.
func (c *Client) Get(path string, query url.Values) *Response {
	c.t.Helper()
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(http.MethodGet, path, nil, "")
}

// PostForm performs a form-encoded POST.
func (c *Client) PostForm(path string, form url.Values) *Response {
	c.t.Helper()
	return c.do(http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

// Delete performs a DELETE request.
func (c *Client) Delete(path string) *Response {
	c.t.Helper()
	return c.do(http.MethodDelete, path, nil, "")
}

func (c *Client) do(method, path string, body io.Reader, contentType string) *Response {
	c.t.Helper()
	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		c.t.Fatalf("failed to create request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.User != "" {
		req.SetBasicAuth(c.User, c.Password)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("failed to read response: %v", err)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Headers:    resp.Header,
		t:          c.t,
	}
}

// Reset calls POST /admin/reset.
func (c *Client) Reset() *Response {
	c.t.Helper()
	return c.do(http.MethodPost, "/admin/reset", nil, "")
}

// State calls GET /admin/state.
func (c *Client) State() *Response {
	c.t.Helper()
	return c.Get("/admin/state", nil)
}

// Requests calls GET /admin/requests.
func (c *Client) Requests() *Response {
	c.t.Helper()
	return c.Get("/admin/requests", nil)
}

// FlushCallbacks calls POST /admin/callbacks/flush.
func (c *Client) FlushCallbacks() *Response {
	c.t.Helper()
	return c.do(http.MethodPost, "/admin/callbacks/flush", nil, "")
}

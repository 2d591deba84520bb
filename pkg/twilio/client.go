package twilio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const userAgent = "twilio-go/1.0"

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. The client's own
// timeout is kept as configured.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger used for per-request debug records.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client issues authenticated requests against one account. Every request
// carries the account SID and auth token as HTTP Basic credentials.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient validates cfg and creates a Client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AccountSID returns the account every account-scoped path is built under.
func (c *Client) AccountSID() string { return c.cfg.AccountSID }

// BaseURL returns the versioned API root, e.g. https://api.twilio.com/2010-04-01.
func (c *Client) BaseURL() string { return c.cfg.BaseURL + "/" + c.cfg.APIVersion }

// Collection binds kind to this client.
func (c *Client) Collection(kind *Kind) *Collection {
	return &Collection{kind: kind, client: c}
}

// Response is a raw API response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Success reports a 2xx status.
func (r *Response) Success() bool { return r.StatusCode >= 200 && r.StatusCode <= 299 }

// Failed reports a 4xx or 5xx status.
func (r *Response) Failed() bool { return r.StatusCode >= 400 && r.StatusCode <= 599 }

// Fields decodes the body as a JSON object. Numbers are kept as json.Number
// so integers keep their exact text. An empty body decodes to an empty map.
func (r *Response) Fields() (map[string]any, error) {
	fields := make(map[string]any)
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return fields, nil
	}
	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decoding response body: %w", err)
	}
	return fields, nil
}

// Get issues a GET with params in the query string.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, params)
}

// Post issues a POST with params in the body.
func (c *Client) Post(ctx context.Context, path string, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, params)
}

// Put issues a PUT with params in the body.
func (c *Client) Put(ctx context.Context, path string, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, params)
}

// Delete issues a DELETE with params in the query string.
func (c *Client) Delete(ctx context.Context, path string, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, params)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values) (*Response, error) {
	target := c.BaseURL() + path

	var body io.Reader
	var contentType string
	switch method {
	case http.MethodGet, http.MethodDelete:
		if len(params) > 0 {
			target += "?" + params.Encode()
		}
	default:
		if c.cfg.JSONBodies {
			doc := make(map[string]string, len(params))
			for k := range params {
				doc[k] = params.Get(k)
			}
			data, err := json.Marshal(doc)
			if err != nil {
				return nil, fmt.Errorf("encoding request body: %w", err)
			}
			body = bytes.NewReader(data)
			contentType = "application/json"
		} else {
			body = strings.NewReader(params.Encode())
			contentType = "application/x-www-form-urlencoded"
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	c.logger.Debug("twilio request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// handleResponse turns 4xx/5xx responses into an *APIError and merges
// successful bodies into attrs.
func handleResponse(res *Response, attrs Attributes) error {
	fields, err := res.Fields()
	if res.Failed() {
		return newAPIError(res.StatusCode, fields)
	}
	if err != nil {
		return err
	}
	if res.Success() {
		attrs.Merge(fields)
	}
	return nil
}

// encodeParams camelizes keys and coerces values for the wire.
func encodeParams(fields map[string]any) url.Values {
	v := make(url.Values, len(fields))
	for k, val := range fields {
		if s, ok := stringify(val); ok {
			v.Set(Camelize(k), s)
		}
	}
	return v
}

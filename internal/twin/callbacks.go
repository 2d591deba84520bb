package twin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/wondertwin-ai/twilio/pkg/twilio"
)

// SignatureHeader carries the request signature on status callbacks.
const SignatureHeader = "X-Twilio-Signature"

// Callback is a queued status callback: a form POST to URL.
type Callback struct {
	URL    string     `json:"url"`
	Params url.Values `json:"params"`
}

// Delivery records one callback delivery attempt.
type Delivery struct {
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code"`
	Error      string    `json:"error,omitempty"`
	Attempt    int       `json:"attempt"`
	Timestamp  time.Time `json:"timestamp"`
}

// Dispatcher queues status callbacks and delivers them on Flush, signing
// each with the auth token.
type Dispatcher struct {
	mu         sync.Mutex
	authToken  string
	logger     *slog.Logger
	client     *http.Client
	queue      []Callback
	deliveries []Delivery
	maxRetries int
	retryDelay time.Duration
}

// NewDispatcher creates a dispatcher signing with authToken.
func NewDispatcher(authToken string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		authToken:  authToken,
		logger:     logger,
		client:     &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
		retryDelay: 500 * time.Millisecond,
	}
}

// Enqueue queues a callback. Empty URLs are ignored.
func (d *Dispatcher) Enqueue(target string, params url.Values) {
	if target == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue = append(d.queue, Callback{URL: target, Params: params})
}

// Queued returns the undelivered callbacks.
func (d *Dispatcher) Queued() []Callback {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Callback, len(d.queue))
	copy(out, d.queue)
	return out
}

// Deliveries returns every delivery attempt so far.
func (d *Dispatcher) Deliveries() []Delivery {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Delivery, len(d.deliveries))
	copy(out, d.deliveries)
	return out
}

// Flush delivers every queued callback synchronously and empties the queue.
// It returns the last delivery error.
func (d *Dispatcher) Flush(ctx context.Context) error {
	d.mu.Lock()
	pending := d.queue
	d.queue = nil
	d.mu.Unlock()

	var lastErr error
	for _, cb := range pending {
		if err := d.deliver(ctx, cb); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Reset drops queued callbacks and the delivery history.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue = nil
	d.deliveries = nil
}

func (d *Dispatcher) deliver(ctx context.Context, cb Callback) error {
	body := cb.Params.Encode()
	signature := twilio.Signature(d.authToken, cb.URL, cb.Params)

	var lastErr error
	for attempt := 1; attempt <= d.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, cb.URL, strings.NewReader(body))
		if err != nil {
			return fmt.Errorf("create callback request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set(SignatureHeader, signature)

		delivery := Delivery{URL: cb.URL, Attempt: attempt, Timestamp: time.Now()}
		resp, err := d.client.Do(req)
		if err != nil {
			delivery.Error = err.Error()
			lastErr = err
		} else {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			delivery.StatusCode = resp.StatusCode
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				d.record(delivery)
				return nil
			}
			lastErr = fmt.Errorf("callback delivery failed: status %d", resp.StatusCode)
		}
		d.record(delivery)
		d.logger.Debug("callback attempt failed", "url", cb.URL, "attempt", attempt, "error", lastErr)

		if attempt < d.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d.retryDelay):
			}
		}
	}
	return lastErr
}

func (d *Dispatcher) record(delivery Delivery) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deliveries = append(d.deliveries, delivery)
}

// callbackPrefix names the SID and status parameters of a kind's status
// callbacks, e.g. "Message" gives MessageSid and MessageStatus.
var callbackPrefix = map[*twilio.Kind]string{
	twilio.Message: "Message",
	twilio.SMS:     "Sms",
	twilio.Call:    "Call",
}

// statusCallback builds the parameters posted for a created resource.
func statusCallback(kind *twilio.Kind, account string, rec Record) url.Values {
	prefix := callbackPrefix[kind]
	params := url.Values{"AccountSid": {account}, "ApiVersion": {twilio.DefaultAPIVersion}}
	str := func(field string) string {
		v, _ := rec[field].(string)
		return v
	}
	params.Set(prefix+"Sid", str("sid"))
	params.Set(prefix+"Status", str("status"))
	for _, field := range []string{"to", "from", "direction"} {
		if v := str(field); v != "" {
			params.Set(twilio.Camelize(field), v)
		}
	}
	return params
}

package twin

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wondertwin-ai/twilio/pkg/twilio"
)

const callbackToken = "79ad98413d911947f0ba369d295ae7a3"

func quietDispatcher() *Dispatcher {
	d := NewDispatcher(callbackToken, slog.New(slog.NewTextHandler(io.Discard, nil)))
	d.retryDelay = time.Millisecond
	return d
}

func TestDispatcherSignsCallbacks(t *testing.T) {
	var (
		mu    sync.Mutex
		valid bool
		form  url.Values
	)
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		r.ParseForm()
		form = r.PostForm
		valid = twilio.ValidateRequest(callbackToken, srvURL+r.URL.RequestURI(), r.PostForm, r.Header.Get(SignatureHeader))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()
	srvURL = srv.URL

	d := quietDispatcher()
	d.Enqueue(srv.URL+"/status?id=7", url.Values{"MessageSid": {"SM1"}, "MessageStatus": {"queued"}})
	d.Enqueue("", url.Values{"ignored": {"yes"}})

	if n := len(d.Queued()); n != 1 {
		t.Fatalf("expected 1 queued callback, got %d", n)
	}
	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !valid {
		t.Error("expected callback signature to validate")
	}
	if form.Get("MessageSid") != "SM1" {
		t.Errorf("expected MessageSid=SM1, got %v", form)
	}
	if len(d.Queued()) != 0 {
		t.Error("expected empty queue after flush")
	}
	deliveries := d.Deliveries()
	if len(deliveries) != 1 || deliveries[0].StatusCode != http.StatusNoContent {
		t.Errorf("unexpected deliveries %+v", deliveries)
	}
}

func TestDispatcherRetries(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := quietDispatcher()
	d.Enqueue(srv.URL, url.Values{"CallSid": {"CA1"}})
	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if n := attempts.Load(); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
	if n := len(d.Deliveries()); n != 3 {
		t.Errorf("expected 3 recorded attempts, got %d", n)
	}
}

func TestDispatcherGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := quietDispatcher()
	d.Enqueue(srv.URL, url.Values{})
	if err := d.Flush(context.Background()); err == nil {
		t.Fatal("expected delivery error")
	}
	d.Reset()
	if len(d.Deliveries()) != 0 {
		t.Error("expected empty delivery history after reset")
	}
}

func TestStatusCallbackParams(t *testing.T) {
	rec := Record{"sid": "SM1", "status": "queued", "to": "+15551234567", "from": "+15559876543"}
	p := statusCallback(twilio.Message, "AC1", rec)

	want := map[string]string{
		"AccountSid":    "AC1",
		"MessageSid":    "SM1",
		"MessageStatus": "queued",
		"To":            "+15551234567",
		"From":          "+15559876543",
	}
	for k, v := range want {
		if p.Get(k) != v {
			t.Errorf("expected %s=%s, got %q", k, v, p.Get(k))
		}
	}
	if p.Has("Direction") {
		t.Error("empty fields must be omitted")
	}
}

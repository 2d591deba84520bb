// Package twin is an in-memory, Twilio-compatible REST API. It serves every
// declared resource kind of package twilio and is used as the HTTP fake in
// tests and as a local development server.
package twin

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/wondertwin-ai/twilio/pkg/twilio"
)

// Config holds the twin's settings, parsed from CLI flags.
type Config struct {
	Port       int
	AccountSID string // when set, only this account is served and seeded
	AuthToken  string // when set, Basic passwords must match
	Verbose    bool
	Name       string
}

// ParseFlags parses CLI flags and returns a Config.
func ParseFlags(name string) *Config {
	cfg := &Config{Name: name}
	flag.IntVar(&cfg.Port, "port", 0, "HTTP listen port (default: $PORT or 13000)")
	flag.StringVar(&cfg.AccountSID, "account-sid", os.Getenv("TWILIO_ACCOUNT_SID"), "Account SID to serve")
	flag.StringVar(&cfg.AuthToken, "auth-token", os.Getenv("TWILIO_AUTH_TOKEN"), "Auth token required from clients")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Enable request logging")
	flag.Parse()

	if cfg.Port == 0 {
		if p := os.Getenv("PORT"); p != "" {
			fmt.Sscanf(p, "%d", &cfg.Port)
		}
	}
	if cfg.Port == 0 {
		cfg.Port = 13000
	}
	return cfg
}

// Twin is the server. It wraps a chi router with request logging and holds
// one store per resource kind.
type Twin struct {
	Config *Config
	Router *chi.Mux
	Logger *slog.Logger

	collections []*collection
	byKind      map[*twilio.Kind]*collection
	reqLog      *RequestLog
	callbacks   *Dispatcher
	now         func() time.Time
}

// New creates a Twin serving every declared kind.
func New(cfg *Config) *Twin {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	t := &Twin{
		Config:    cfg,
		Router:    chi.NewRouter(),
		Logger:    logger,
		byKind:    make(map[*twilio.Kind]*collection),
		reqLog:    NewRequestLog(1000),
		callbacks: NewDispatcher(cfg.AuthToken, logger),
		now:       time.Now,
	}
	for _, kind := range twilio.Kinds() {
		c := newCollection(kind)
		t.collections = append(t.collections, c)
		t.byKind[kind] = c
	}

	t.Router.Use(chimw.RequestID)
	t.Router.Use(chimw.RealIP)
	t.Router.Use(t.requestLog)
	t.routes()
	t.seed()
	return t
}

// SetLogger replaces the twin's logger. Call it before serving.
func (t *Twin) SetLogger(l *slog.Logger) {
	t.Logger = l
	t.callbacks.logger = l
}

// Callbacks returns the status callback dispatcher.
func (t *Twin) Callbacks() *Dispatcher { return t.callbacks }

// seed stores the configured account so it can be fetched.
func (t *Twin) seed() {
	if t.Config.AccountSID == "" {
		return
	}
	now := t.now().Format(time.RFC1123Z)
	t.byKind[twilio.Account].store.Set(t.Config.AccountSID, Record{
		"sid":           t.Config.AccountSID,
		"friendly_name": t.Config.AccountSID,
		"status":        "active",
		"type":          "Full",
		"date_created":  now,
		"date_updated":  now,
		"uri":           "/" + twilio.DefaultAPIVersion + twilio.Account.MemberPath("", t.Config.AccountSID),
	})
}

// Reset returns the twin to its freshly seeded state.
func (t *Twin) Reset() {
	for _, c := range t.collections {
		c.store.Reset()
	}
	t.reqLog.Clear()
	t.callbacks.Reset()
	t.seed()
}

// Requests returns the API requests served so far, oldest first. Admin
// endpoints are not recorded.
func (t *Twin) Requests() []RequestLogEntry { return t.reqLog.Entries() }

// Snapshot returns every stored record grouped by collection.
func (t *Twin) Snapshot() map[string]map[string]Record {
	out := make(map[string]map[string]Record, len(t.collections))
	for _, c := range t.collections {
		out[c.kind.Collection] = c.store.Snapshot()
	}
	return out
}

// Serve starts the HTTP server and blocks until SIGINT or SIGTERM.
func (t *Twin) Serve() error {
	addr := fmt.Sprintf(":%d", t.Config.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      t.Router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		t.Logger.Info("starting twin", "name", t.Config.Name, "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-done:
	}
	t.Logger.Info("shutting down twin", "name", t.Config.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// ServeHTTP implements http.Handler so a Twin can back an httptest.Server.
func (t *Twin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.Router.ServeHTTP(w, r)
}

// RequestLogEntry captures one served request.
type RequestLogEntry struct {
	Timestamp  time.Time     `json:"timestamp"`
	Method     string        `json:"method"`
	Path       string        `json:"path"`
	Query      string        `json:"query,omitempty"`
	StatusCode int           `json:"status_code"`
	Duration   time.Duration `json:"duration_ms"`
	RequestID  string        `json:"request_id,omitempty"`
}

// RequestLog is a thread-safe ring buffer of recent requests.
type RequestLog struct {
	mu      sync.RWMutex
	entries []RequestLogEntry
	maxSize int
}

// NewRequestLog creates a request log holding at most maxSize entries.
func NewRequestLog(maxSize int) *RequestLog {
	return &RequestLog{
		entries: make([]RequestLogEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Add appends an entry, evicting the oldest if at capacity.
func (rl *RequestLog) Add(entry RequestLogEntry) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.entries) >= rl.maxSize {
		rl.entries = rl.entries[1:]
	}
	rl.entries = append(rl.entries, entry)
}

// Entries returns a copy of all entries.
func (rl *RequestLog) Entries() []RequestLogEntry {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	out := make([]RequestLogEntry, len(rl.entries))
	copy(out, rl.entries)
	return out
}

// Clear removes all entries.
func (rl *RequestLog) Clear() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.entries = rl.entries[:0]
}

// statusRecorder captures the status code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func (t *Twin) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		if strings.HasPrefix(r.URL.Path, "/admin/") {
			return
		}
		t.reqLog.Add(RequestLogEntry{
			Timestamp:  start,
			Method:     r.Method,
			Path:       r.URL.Path,
			Query:      r.URL.RawQuery,
			StatusCode: rec.statusCode,
			Duration:   time.Since(start),
			RequestID:  chimw.GetReqID(r.Context()),
		})
		t.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.statusCode,
			"duration", time.Since(start),
		)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// APIError writes an error in the API's error document format.
func APIError(w http.ResponseWriter, status, code int, message string) {
	JSON(w, status, map[string]any{
		"code":      code,
		"message":   message,
		"more_info": fmt.Sprintf("https://www.twilio.com/docs/errors/%d", code),
		"status":    status,
	})
}

// Package logpane provides a slog.Handler that fans log records out to
// a bounded channel for display in the TUI's in-app log pane, in
// addition to (optionally) writing them through to a base handler.
//
// Grounded on wilbur182-forge's cmd/sidecar/main.go, which builds its
// logger with slog.New(slog.NewTextHandler(...)) keyed off a --debug
// flag; generalized here to additionally honor an RUST_LOG-style
// environment variable and to duplicate records into a ring buffer the
// TUI can render. Send-failures on this channel are silently dropped —
// logging must never block or break the UI.
package logpane

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Record is one log line captured for the in-app log pane.
type Record struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// Handler wraps a base slog.Handler (typically writing to stderr) and
// additionally pushes every record onto a non-blocking channel.
type Handler struct {
	base  slog.Handler
	ch    chan Record
	level slog.Leveler
}

// NewHandler builds a Handler wrapping base, publishing accepted
// records to a channel of the given capacity.
func NewHandler(base slog.Handler, level slog.Leveler, capacity int) *Handler {
	return &Handler{base: base, ch: make(chan Record, capacity), level: level}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make(map[string]string)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})

	select {
	case h.ch <- Record{Time: r.Time, Level: r.Level, Message: r.Message, Attrs: attrs}:
	default:
		// Ring buffer full: drop silently rather than block the UI thread.
	}

	if h.base != nil {
		return h.base.Handle(ctx, r)
	}
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if h.base == nil {
		return h
	}
	return &Handler{base: h.base.WithAttrs(attrs), ch: h.ch, level: h.level}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if h.base == nil {
		return h
	}
	return &Handler{base: h.base.WithGroup(name), ch: h.ch, level: h.level}
}

// Drain returns all records buffered since the last call,
// non-blocking.
func (h *Handler) Drain() []Record {
	var out []Record
	for {
		select {
		case rec := <-h.ch:
			out = append(out, rec)
		default:
			return out
		}
	}
}

// ParseLevel reads an RUST_LOG-style verbosity filter from env,
// defaulting to info. Only a bare level name is recognized
// (trace/debug/info/warn/error); anything else falls back to the
// default.
func ParseLevel(env string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "trace", "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Ring is a fixed-capacity, append-only-with-eviction buffer of
// recently drained records, used by the TUI to render the last N
// lines of the log pane.
type Ring struct {
	mu       sync.Mutex
	buf      []Record
	capacity int
}

// NewRing creates a Ring holding at most capacity records.
func NewRing(capacity int) *Ring {
	return &Ring{capacity: capacity}
}

// Push appends recs, evicting the oldest entries beyond capacity.
func (r *Ring) Push(recs ...Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf = append(r.buf, recs...)
	if over := len(r.buf) - r.capacity; over > 0 {
		r.buf = r.buf[over:]
	}
}

// Records returns a snapshot of the buffered records, oldest first.
func (r *Ring) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.buf))
	copy(out, r.buf)
	return out
}

// NewLogger builds a ready-to-use slog.Logger plus its Handler (for
// draining into a Ring), honoring the RUST_LOG-style level named by the
// environment variable envVar (cmd/cclv passes CCLV_LOG).
func NewLogger(envVar string) (*slog.Logger, *Handler) {
	level := ParseLevel(os.Getenv(envVar))
	base := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	h := NewHandler(base, level, 512)
	return slog.New(h), h
}

package logpane

import (
	"context"
	"log/slog"
	"testing"
)

func TestHandlerDrainNonBlockingWhenFull(t *testing.T) {
	h := NewHandler(nil, slog.LevelInfo, 2)
	for i := 0; i < 10; i++ {
		_ = h.Handle(context.Background(), slog.Record{Message: "line", Level: slog.LevelInfo})
	}
	// Capacity 2: excess sends must have been dropped silently, not blocked.
	recs := h.Drain()
	if len(recs) > 2 {
		t.Fatalf("expected at most 2 buffered records, got %d", len(recs))
	}
}

func TestHandlerEnabledRespectsLevel(t *testing.T) {
	h := NewHandler(nil, slog.LevelWarn, 8)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled under a warn threshold")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled under a warn threshold")
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := ParseLevel(""); got != slog.LevelInfo {
		t.Errorf("got %v, want info", got)
	}
	if got := ParseLevel("debug"); got != slog.LevelDebug {
		t.Errorf("got %v, want debug", got)
	}
	if got := ParseLevel("bogus"); got != slog.LevelInfo {
		t.Errorf("got %v, want info fallback", got)
	}
}

func TestRingEvictsOldestBeyondCapacity(t *testing.T) {
	r := NewRing(2)
	r.Push(Record{Message: "a"}, Record{Message: "b"}, Record{Message: "c"})
	got := r.Records()
	if len(got) != 2 || got[0].Message != "b" || got[1].Message != "c" {
		t.Fatalf("got %+v", got)
	}
}

package scroll

import (
	"testing"

	"github.com/rgreenblatt/cclv-sub001/internal/ids"
	"github.com/rgreenblatt/cclv-sub001/internal/layout"
	"github.com/rgreenblatt/cclv-sub001/internal/model"
)

func buildIndex(t *testing.T, n int) *layout.Index {
	t.Helper()
	entries := make([]*model.ConversationEntry, n)
	for i := range entries {
		uuid, _ := ids.NewEntryUUID("u")
		sid, _ := ids.NewSessionID("s")
		entries[i] = &model.ConversationEntry{
			Status:    model.StatusValid,
			UUID:      uuid,
			SessionID: sid,
			Kind:      model.KindUser,
			Message:   model.Message{Role: model.RoleUser, Text: "line"},
		}
	}
	return layout.Build(entries, func(i int) layout.Params {
		return layout.Params{Width: 80, CollapseThreshold: 1 << 20, SummaryLines: 3}
	})
}

func TestResolveTop(t *testing.T) {
	idx := buildIndex(t, 50)
	if got := Resolve(AtTop(), idx, 10); got != 0 {
		t.Fatalf("Resolve(Top) = %d, want 0", got)
	}
}

func TestResolveBottomNeverNegative(t *testing.T) {
	idx := buildIndex(t, 2)
	got := Resolve(AtBottom(), idx, 1000)
	if got != 0 {
		t.Fatalf("Resolve(Bottom) on short log with huge viewport = %d, want 0", got)
	}
}

func TestResolveBottomMatchesTotalMinusViewport(t *testing.T) {
	idx := buildIndex(t, 50)
	viewport := 10
	got := Resolve(AtBottom(), idx, viewport)
	want := idx.Total() - viewport
	if got != want {
		t.Fatalf("Resolve(Bottom) = %d, want %d", got, want)
	}
}

func TestResolveAtLineClamps(t *testing.T) {
	idx := buildIndex(t, 50)
	got := Resolve(At(1_000_000), idx, 10)
	want := idx.Total() - 10
	if got != want {
		t.Fatalf("Resolve(At overflow) = %d, want clamped %d", got, want)
	}

	got = Resolve(At(-5), idx, 10)
	if got != 0 {
		t.Fatalf("Resolve(At negative) = %d, want 0", got)
	}
}

package layout

import (
	"testing"

	"github.com/rgreenblatt/cclv-sub001/internal/ids"
	"github.com/rgreenblatt/cclv-sub001/internal/model"
	"github.com/rgreenblatt/cclv-sub001/internal/render"
)

func textEntry(text string) *model.ConversationEntry {
	uuid, _ := ids.NewEntryUUID("u1")
	sid, _ := ids.NewSessionID("s1")
	return &model.ConversationEntry{
		Status:    model.StatusValid,
		UUID:      uuid,
		SessionID: sid,
		Kind:      model.KindAssistant,
		Message: model.Message{
			Role: model.RoleAssistant,
			Text: text,
		},
	}
}

func malformedEntry(line int) *model.ConversationEntry {
	return &model.ConversationEntry{
		Status:     model.StatusMalformed,
		LineNumber: line,
		RawText:    "{broken",
		Reason:     "unexpected end of JSON input",
	}
}

func defaultParams(width int) Params {
	return Params{Width: width, CollapseThreshold: 1 << 20, SummaryLines: 3}
}

func TestMalformedEntryIsAlwaysOneLine(t *testing.T) {
	e := malformedEntry(42)
	h := Height(e, defaultParams(80))
	if h != 1 {
		t.Fatalf("malformed entry height = %d, want 1", h)
	}
}

func TestHeightMatchesRenderedLineCount(t *testing.T) {
	e := textEntry("hello world\nsecond line")
	params := defaultParams(80)
	h := Height(e, params)
	if h <= 0 {
		t.Fatalf("expected positive height, got %d", h)
	}
	if want := len(render.ComputeEntryLines(e, params)); h != want {
		t.Fatalf("Height = %d, rendered line count = %d", h, want)
	}
}

func TestBuildAndEntryAtLine(t *testing.T) {
	entries := []*model.ConversationEntry{
		textEntry("one"),
		textEntry("two\nlines here"),
		malformedEntry(7),
	}
	idx := Build(entries, func(i int) Params { return defaultParams(80) })

	if idx.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", idx.Len())
	}
	if idx.Total() != idx.cumulative[3] {
		t.Fatalf("Total() inconsistent with cumulative index")
	}

	// First line of the log must map back to entry 0.
	gotEntry, gotLine := idx.EntryAtLine(0)
	if gotEntry != 0 || gotLine != 0 {
		t.Fatalf("EntryAtLine(0) = (%d,%d), want (0,0)", gotEntry, gotLine)
	}

	// The offset of entry 2 (malformed, always height 1) must resolve
	// back to entry 2 at line 0 within it.
	off := idx.OffsetOf(2)
	gotEntry, gotLine = idx.EntryAtLine(off)
	if gotEntry != 2 || gotLine != 0 {
		t.Fatalf("EntryAtLine(offset of entry 2) = (%d,%d), want (2,0)", gotEntry, gotLine)
	}
}

func TestRelayoutOnlyTouchesSuffix(t *testing.T) {
	entries := []*model.ConversationEntry{
		textEntry("one"),
		textEntry("two"),
		textEntry("three"),
	}
	idx := Build(entries, func(i int) Params { return defaultParams(80) })
	beforeOffset0 := idx.OffsetOf(0)
	beforeHeight0 := idx.HeightOf(0)

	idx.Relayout(1, func(i int) Params { return defaultParams(40) })

	if idx.OffsetOf(0) != beforeOffset0 || idx.HeightOf(0) != beforeHeight0 {
		t.Fatalf("Relayout(1, ...) mutated entry 0, which is before the relayout start")
	}
}

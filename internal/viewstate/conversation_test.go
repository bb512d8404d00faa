package viewstate

import (
	"testing"

	"github.com/rgreenblatt/cclv-sub001/internal/render"
	"github.com/rgreenblatt/cclv-sub001/internal/scroll"
)

func makeConversation(t *testing.T, n int, textPerEntry string) (*ConversationViewState, LayoutParams) {
	t.Helper()
	cv := New(false)
	for i := 0; i < n; i++ {
		cv.Append(validEntry(t, "uu", "s1", ""))
	}
	// Overwrite text on every entry with something with some bulk so
	// total height exceeds a small viewport.
	for _, e := range cv.Iter() {
		e.Message.Text = textPerEntry
	}
	params := LayoutParams{Width: 80, GlobalWrap: render.WrapOn}
	cv.RecomputeLayout(params)
	return cv, params
}

// TestCumulativeSumInvariant is testable property #2.
func TestCumulativeSumInvariant(t *testing.T) {
	cv, _ := makeConversation(t, 5, "hello\nworld")
	sum := 0
	for i := 0; i < cv.idx.Len(); i++ {
		if cv.idx.OffsetOf(i) != sum {
			t.Fatalf("cumulative_y[%d] = %d, want %d", i, cv.idx.OffsetOf(i), sum)
		}
		sum += cv.idx.HeightOf(i)
	}
	if cv.idx.Total() != sum {
		t.Fatalf("total_height = %d, want %d", cv.idx.Total(), sum)
	}
}

// TestScrollClampingInvariant is testable property #3.
func TestScrollClampingInvariant(t *testing.T) {
	cv, _ := makeConversation(t, 50, "one line of text here that is reasonably long")
	viewport := 24

	cv.SetScroll(scroll.At(1 << 20))
	offset := scroll.Resolve(cv.Scroll(), cv.idx, viewport)
	maxOffset := cv.TotalHeight() - viewport
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset < 0 || offset > maxOffset {
		t.Fatalf("offset %d out of [0,%d]", offset, maxOffset)
	}
}

// TestIdempotentCollapseToggle is testable property #12.
func TestIdempotentCollapseToggle(t *testing.T) {
	longText := ""
	for i := 0; i < 30; i++ {
		longText += "line\n"
	}
	cv, params := makeConversation(t, 1, longText)

	beforeHeight := cv.idx.HeightOf(0)
	beforeOffset := cv.idx.OffsetOf(0)

	cv.ToggleExpand(0, params)
	cv.ToggleExpand(0, params)

	if cv.idx.HeightOf(0) != beforeHeight {
		t.Fatalf("height after double toggle = %d, want %d", cv.idx.HeightOf(0), beforeHeight)
	}
	if cv.idx.OffsetOf(0) != beforeOffset {
		t.Fatalf("offset after double toggle = %d, want %d", cv.idx.OffsetOf(0), beforeOffset)
	}
}

func TestVisibleRangeEndpoints(t *testing.T) {
	cv, _ := makeConversation(t, 20, "x")
	vr := cv.VisibleRange(5)
	if vr.Start < 0 || vr.End > cv.idx.Len() || vr.Start > vr.End {
		t.Fatalf("invalid visible range %+v for %d entries", vr, cv.idx.Len())
	}
}

func TestHitTestReturnsEntryContainingPoint(t *testing.T) {
	cv, _ := makeConversation(t, 10, "x")
	cv.SetScroll(scroll.AtTop())
	res := cv.HitTest(0, 3, 24)
	if !res.Hit {
		t.Fatal("expected a hit at the very first visible line")
	}
	if res.EntryIndex != 0 {
		t.Fatalf("EntryIndex = %d, want 0", res.EntryIndex)
	}
}

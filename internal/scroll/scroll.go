// Package scroll models scroll position symbolically (Top, Bottom, or
// a specific line) and resolves it against a layout.Index into a
// concrete clamped line offset. Keeping position symbolic until
// resolution is what lets Top/Bottom track a growing log (new entries
// streaming in via internal/source) without the viewstate having to
// eagerly recompute an absolute offset on every append.
//
// Grounded on wilbur182-forge's internal/viewlayout scroll-position
// handling, generalized from that package's single concrete-offset
// model to an explicit sum type over {Top, Bottom, AtLine}.
package scroll

import "github.com/rgreenblatt/cclv-sub001/internal/layout"

// Kind discriminates Position's variants.
type Kind int

const (
	Top Kind = iota
	Bottom
	AtLine
)

// Position is a symbolic scroll position. Only Line is meaningful
// when Kind == AtLine.
type Position struct {
	Kind Kind
	Line int
}

// AtTop is the Top position.
func AtTop() Position { return Position{Kind: Top} }

// AtBottom is the Bottom position.
func AtBottom() Position { return Position{Kind: Bottom} }

// At constructs an AtLine position for the given absolute line offset.
func At(line int) Position { return Position{Kind: AtLine, Line: line} }

// Resolve turns a symbolic Position into a concrete, clamped line
// offset given the current index and viewport height. Bottom resolves
// to total-height minus one viewport (never negative); AtLine clamps
// into [0, total-height minus one viewport].
func Resolve(pos Position, idx *layout.Index, viewportHeight int) int {
	total := idx.Total()
	maxOffset := total - viewportHeight
	if maxOffset < 0 {
		maxOffset = 0
	}

	switch pos.Kind {
	case Top:
		return 0
	case Bottom:
		return maxOffset
	case AtLine:
		line := pos.Line
		if line < 0 {
			line = 0
		}
		if line > maxOffset {
			line = maxOffset
		}
		return line
	default:
		return 0
	}
}

// ScrollBy returns the Position reached by moving delta lines from
// the given resolved offset (positive delta moves down). The result
// is always a concrete AtLine position; callers that want to "stick"
// to Bottom after reaching it should compare the resolved offset
// against idx.Total()-viewportHeight and re-wrap as AtBottom.
func ScrollBy(current int, delta int) Position {
	return At(current + delta)
}

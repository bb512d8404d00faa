// Package linespace defines the numeric newtypes the view-state engine
// uses to keep screen-line arithmetic, entry indices, and session
// indices from mixing with plain ints by accident.
package linespace

import "errors"

// LineHeight is the number of screen lines an entry renders to.
// Renderable entries carry height >= 1; ZERO marks entries that
// contribute no lines at all.
type LineHeight uint16

// ZERO is the sentinel height for non-rendering entries.
const ZERO LineHeight = 0

// Int returns the height as a plain int for arithmetic with other
// line-space values.
func (h LineHeight) Int() int { return int(h) }

// LineOffset is an absolute line number measured from the start of a
// conversation (or, for scroll positions, from the top of a pane's
// content).
type LineOffset int

// Int returns the offset as a plain int.
func (o LineOffset) Int() int { return int(o) }

// Add returns o shifted by delta, clamped to zero.
func (o LineOffset) Add(delta int) LineOffset {
	v := int(o) + delta
	if v < 0 {
		v = 0
	}
	return LineOffset(v)
}

// EntryIndex is a 0-based index into a conversation's entry sequence.
type EntryIndex int

// Display returns the 1-based index used for the renderer's gutter and
// for "entry N of M" status text.
func (i EntryIndex) Display() int { return int(i) + 1 }

// Int returns the 0-based index as a plain int.
func (i EntryIndex) Int() int { return int(i) }

// ErrSessionIndexOutOfRange is returned by NewSessionIndex when index
// does not lie in [0, count).
var ErrSessionIndexOutOfRange = errors.New("linespace: session index out of range")

// SessionIndex is a validated 0-based index into a fixed-size sequence
// of sessions, aware of the total session count it was built against.
type SessionIndex struct {
	index int
	count int
}

// NewSessionIndex constructs a SessionIndex, rejecting index values
// outside [0, count).
func NewSessionIndex(index, count int) (SessionIndex, error) {
	if count <= 0 || index < 0 || index >= count {
		return SessionIndex{}, ErrSessionIndexOutOfRange
	}
	return SessionIndex{index: index, count: count}, nil
}

// Index returns the underlying 0-based index.
func (s SessionIndex) Index() int { return s.index }

// Count returns the total session count this index was validated against.
func (s SessionIndex) Count() int { return s.count }

// IsFirst reports whether this is the first session.
func (s SessionIndex) IsFirst() bool { return s.index == 0 }

// IsLast reports whether this is the last session.
func (s SessionIndex) IsLast() bool { return s.index == s.count-1 }

// Next returns the next session index, wrapping to the first when
// already at the last.
func (s SessionIndex) Next() SessionIndex {
	idx := s.index + 1
	if idx >= s.count {
		idx = 0
	}
	return SessionIndex{index: idx, count: s.count}
}

// Prev returns the previous session index, wrapping to the last when
// already at the first.
func (s SessionIndex) Prev() SessionIndex {
	idx := s.index - 1
	if idx < 0 {
		idx = s.count - 1
	}
	return SessionIndex{index: idx, count: s.count}
}

// ViewportDimensions is the size, in terminal cells, of a scrollable pane.
type ViewportDimensions struct {
	Width  int
	Height int
}

// Package history holds the per-document edit history: an append-only stack
// of image states with a movable cursor. It is a pure in-memory structure;
// only the edit session mutates it.
package history

import (
	"github.com/Fepozopo/pixelview/pkg/imageref"
)

// State is one point-in-time document: an ordered, fixed-length list of
// image references, one per bulk item (length 1 for a single photo).
// Operators must preserve length and per-index identity.
type State []imageref.Ref

// Clone returns a shallow copy safe to hand out (refs are immutable).
func (s State) Clone() State {
	if s == nil {
		return nil
	}
	out := make(State, len(s))
	copy(out, s)
	return out
}

// History is the undo/redo stack. The zero value is empty (cursor -1).
type History struct {
	states []State
	index  int
}

// New returns an empty history.
func New() *History {
	return &History{index: -1}
}

// Seed clears the whole sequence and commits exactly state. Used on new
// document load and on reset; all prior undo/redo capability is lost.
func (h *History) Seed(state State) {
	h.states = nil
	h.index = -1
	h.Commit(state)
}

// Commit truncates everything after the cursor, appends state, and advances
// the cursor to it. Redo history is discarded; branching is not supported.
func (h *History) Commit(state State) {
	h.index++
	h.states = append(h.states[:h.index], state.Clone())
}

// Current returns the entry at the cursor, or ok=false when empty.
func (h *History) Current() (State, bool) {
	if h.index < 0 || h.index >= len(h.states) {
		return nil, false
	}
	return h.states[h.index].Clone(), true
}

// Undo moves the cursor back one step and returns the entry now pointed at.
// At the start it reports ok=false and changes nothing.
func (h *History) Undo() (State, bool) {
	if h.index <= 0 {
		return nil, false
	}
	h.index--
	return h.states[h.index].Clone(), true
}

// Redo moves the cursor forward one step, symmetric to Undo.
func (h *History) Redo() (State, bool) {
	if h.index+1 >= len(h.states) {
		return nil, false
	}
	h.index++
	return h.states[h.index].Clone(), true
}

// Len reports the number of entries.
func (h *History) Len() int { return len(h.states) }

// Index reports the cursor position, -1 when empty.
func (h *History) Index() int { return h.index }

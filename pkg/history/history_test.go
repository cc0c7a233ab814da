package history

import (
	"testing"

	"github.com/Fepozopo/pixelview/pkg/imageref"
)

func state(names ...string) State {
	s := make(State, len(names))
	for i, n := range names {
		s[i] = imageref.FromPath("/tmp/" + n + ".png")
	}
	return s
}

func TestEmptyHistory(t *testing.T) {
	h := New()
	if h.Len() != 0 || h.Index() != -1 {
		t.Fatalf("new history len=%d index=%d", h.Len(), h.Index())
	}
	if _, ok := h.Current(); ok {
		t.Fatal("Current on empty history should fail")
	}
	if _, ok := h.Undo(); ok {
		t.Fatal("Undo on empty history should fail")
	}
	if _, ok := h.Redo(); ok {
		t.Fatal("Redo on empty history should fail")
	}
}

func TestCommitAdvancesCursor(t *testing.T) {
	h := New()
	h.Seed(state("a"))
	h.Commit(state("b"))
	h.Commit(state("c"))
	if h.Len() != 3 || h.Index() != 2 {
		t.Fatalf("len=%d index=%d", h.Len(), h.Index())
	}
	cur, ok := h.Current()
	if !ok || cur[0].String() != "/tmp/c.png" {
		t.Fatalf("current = %v", cur)
	}
}

func TestUndoRedoMonotonicity(t *testing.T) {
	h := New()
	h.Seed(state("a"))
	h.Commit(state("b"))
	h.Commit(state("c"))
	before, _ := h.Current()

	for i := 0; i < 2; i++ {
		if _, ok := h.Undo(); !ok {
			t.Fatalf("undo %d failed", i)
		}
	}
	for i := 0; i < 2; i++ {
		if _, ok := h.Redo(); !ok {
			t.Fatalf("redo %d failed", i)
		}
	}
	after, _ := h.Current()
	if before[0].String() != after[0].String() {
		t.Fatalf("undo×2 redo×2 landed on %v, want %v", after, before)
	}
}

func TestUndoBoundary(t *testing.T) {
	h := New()
	h.Seed(state("a"))
	if _, ok := h.Undo(); ok {
		t.Fatal("undo at the seed entry should fail")
	}
	if h.Index() != 0 {
		t.Fatalf("failed undo moved cursor to %d", h.Index())
	}
}

func TestCommitTruncatesRedo(t *testing.T) {
	h := New()
	h.Seed(state("a"))
	h.Commit(state("b"))
	h.Commit(state("c"))
	h.Undo()
	h.Undo()
	h.Commit(state("d"))
	if h.Len() != 2 {
		t.Fatalf("len after branch-commit = %d, want 2", h.Len())
	}
	if _, ok := h.Redo(); ok {
		t.Fatal("redo after a truncating commit should fail")
	}
	cur, _ := h.Current()
	if cur[0].String() != "/tmp/d.png" {
		t.Fatalf("current = %v", cur)
	}
}

func TestSeedClearsEverything(t *testing.T) {
	h := New()
	h.Seed(state("a"))
	h.Commit(state("b"))
	h.Seed(state("z"))
	if h.Len() != 1 || h.Index() != 0 {
		t.Fatalf("len=%d index=%d after reseed", h.Len(), h.Index())
	}
	if _, ok := h.Undo(); ok {
		t.Fatal("undo after reseed should fail")
	}
}

func TestStateCloneIsolation(t *testing.T) {
	h := New()
	s := state("a", "b", "c")
	h.Seed(s)
	s[0] = imageref.FromPath("/tmp/mutated.png")
	cur, _ := h.Current()
	if cur[0].String() != "/tmp/a.png" {
		t.Fatal("history shares backing array with caller state")
	}
	if len(cur) != 3 {
		t.Fatalf("bulk state length = %d", len(cur))
	}
}

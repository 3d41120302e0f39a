package timeline

import (
	"testing"
)

func TestHistory_undoRedo(t *testing.T) {
	h := NewEditHistory(10)
	current := NewSegmentList(sec(60))

	h.Push(current)
	if err := current.DeleteRange(sec(10), sec(20)); err != nil {
		t.Fatal(err)
	}
	afterDelete := current.Clone()

	current = h.Undo(current)
	if current.Count() != 1 || current.TotalDuration() != sec(60) {
		t.Errorf("undo did not restore initial state: %v", current.Segments())
	}
	if !h.CanRedo() {
		t.Error("CanRedo should be true after undo")
	}

	current = h.Redo(current)
	if !current.Equal(afterDelete) {
		t.Errorf("redo did not restore post-delete state: %v", current.Segments())
	}
}

func TestHistory_emptyStacksAreNoOps(t *testing.T) {
	h := NewEditHistory(10)
	current := NewSegmentList(sec(60))

	if got := h.Undo(current); got != current {
		t.Error("undo on empty stack should return current unchanged")
	}
	if got := h.Redo(current); got != current {
		t.Error("redo on empty stack should return current unchanged")
	}
	if h.CanUndo() || h.CanRedo() {
		t.Error("empty history should report no undo/redo")
	}
}

func TestHistory_pushClearsRedo(t *testing.T) {
	h := NewEditHistory(10)
	current := NewSegmentList(sec(60))

	h.Push(current)
	_ = current.DeleteRange(sec(10), sec(20))
	current = h.Undo(current)
	if !h.CanRedo() {
		t.Fatal("expected redo available after undo")
	}

	h.Push(current)
	if h.CanRedo() {
		t.Error("push must clear the redo stack")
	}
}

func TestHistory_boundDropsOldest(t *testing.T) {
	h := NewEditHistory(3)
	current := NewSegmentList(sec(100))

	// Five edits, each shaving a second off the front of the virtual
	// timeline. Only the last three pre-edit states survive.
	for i := 0; i < 5; i++ {
		h.Push(current)
		if err := current.DeleteRange(0, sec(1)); err != nil {
			t.Fatal(err)
		}
	}

	durations := []int{}
	for h.CanUndo() {
		current = h.Undo(current)
		durations = append(durations, int(current.TotalDuration()/sec(1)))
	}
	want := []int{96, 97, 98}
	if len(durations) != len(want) {
		t.Fatalf("undid %d states, want %d", len(durations), len(want))
	}
	for i := range want {
		if durations[i] != want[i] {
			t.Errorf("undo %d restored %ds timeline, want %ds", i, durations[i], want[i])
		}
	}
}

func TestHistory_pushIsSnapshot(t *testing.T) {
	h := NewEditHistory(10)
	current := NewSegmentList(sec(60))

	h.Push(current)
	if err := current.DeleteRange(sec(10), sec(20)); err != nil {
		t.Fatal(err)
	}

	restored := h.Undo(current)
	if restored.TotalDuration() != sec(60) {
		t.Error("history snapshot was aliased to the mutated list")
	}
}

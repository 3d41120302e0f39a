package timeline

// DefaultHistoryDepth bounds how many edits can be undone.
const DefaultHistoryDepth = 50

// EditHistory is a bounded undo/redo stack of SegmentList snapshots. It
// never aliases caller state: everything pushed is cloned on the way in and
// handed back as-is on the way out.
type EditHistory struct {
	undo     []*SegmentList
	redo     []*SegmentList
	maxDepth int
}

// NewEditHistory returns a history bounded to maxDepth entries. Depths
// below 1 fall back to DefaultHistoryDepth.
func NewEditHistory(maxDepth int) *EditHistory {
	if maxDepth < 1 {
		maxDepth = DefaultHistoryDepth
	}
	return &EditHistory{maxDepth: maxDepth}
}

// Push records the pre-mutation state. Any redo entries are invalidated,
// and once the bound is hit the oldest undo entry is dropped, not the
// newest.
func (h *EditHistory) Push(current *SegmentList) {
	h.undo = append(h.undo, current.Clone())
	h.redo = nil
	if len(h.undo) > h.maxDepth {
		h.undo = h.undo[1:]
	}
}

// Undo exchanges current for the most recent snapshot. With nothing to
// undo it returns current unchanged.
func (h *EditHistory) Undo(current *SegmentList) *SegmentList {
	if len(h.undo) == 0 {
		return current
	}
	h.redo = append(h.redo, current)
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return top
}

// Redo is the inverse of Undo.
func (h *EditHistory) Redo(current *SegmentList) *SegmentList {
	if len(h.redo) == 0 {
		return current
	}
	h.undo = append(h.undo, current)
	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return top
}

// CanUndo reports whether an undo snapshot is available.
func (h *EditHistory) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether a redo snapshot is available.
func (h *EditHistory) CanRedo() bool { return len(h.redo) > 0 }

// Reset drops all snapshots, used when a new video is loaded.
func (h *EditHistory) Reset() {
	h.undo = nil
	h.redo = nil
}

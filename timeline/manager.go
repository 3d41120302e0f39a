package timeline

import (
	"fmt"
	"sync"
	"time"
)

// Manager owns the segment list and its edit history for one loaded video.
// All mutation goes through the Manager, which snapshots the current state
// into history before every edit so undo always restores the pre-edit
// timeline. Readers on other goroutines (the playback scheduler, HTTP
// handlers) take Snapshot clones rather than sharing the live list.
type Manager struct {
	mu       sync.Mutex
	segments *SegmentList
	history  *EditHistory
	onChange []func()
}

// NewManager returns a manager with an empty timeline and a history bounded
// to maxDepth.
func NewManager(maxDepth int) *Manager {
	return &Manager{
		segments: &SegmentList{},
		history:  NewEditHistory(maxDepth),
	}
}

// OnSegmentsChanged registers a callback fired after every mutation (load,
// delete, undo, redo). Callbacks run outside the manager lock.
func (m *Manager) OnSegmentsChanged(fn func()) {
	m.mu.Lock()
	m.onChange = append(m.onChange, fn)
	m.mu.Unlock()
}

func (m *Manager) notify() {
	m.mu.Lock()
	listeners := make([]func(), len(m.onChange))
	copy(listeners, m.onChange)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// Load resets the timeline to a single segment covering the whole video and
// clears the history.
func (m *Manager) Load(videoDuration time.Duration) {
	m.mu.Lock()
	m.segments = NewSegmentList(videoDuration)
	m.history.Reset()
	m.mu.Unlock()
	m.notify()
}

// DeleteRange removes the virtual span [vStart, vEnd). The pre-edit state
// is pushed to history first, so a rejected range leaves both the timeline
// and the history untouched.
func (m *Manager) DeleteRange(vStart, vEnd time.Duration) error {
	m.mu.Lock()
	if total := m.segments.TotalDuration(); vStart < 0 || vEnd <= vStart || vEnd > total {
		m.mu.Unlock()
		// Rejected before the history push so contract violations don't
		// pollute undo.
		return fmt.Errorf("%w: delete [%s, %s) on %s virtual timeline",
			ErrInvalidRange, vStart, vEnd, total)
	}
	m.history.Push(m.segments)
	err := m.segments.DeleteRange(vStart, vEnd)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.notify()
	return nil
}

// Undo restores the previous timeline state. Returns false when there is
// nothing to undo.
func (m *Manager) Undo() bool {
	m.mu.Lock()
	if !m.history.CanUndo() {
		m.mu.Unlock()
		return false
	}
	m.segments = m.history.Undo(m.segments)
	m.mu.Unlock()
	m.notify()
	return true
}

// Redo reapplies the most recently undone edit. Returns false when there is
// nothing to redo.
func (m *Manager) Redo() bool {
	m.mu.Lock()
	if !m.history.CanRedo() {
		m.mu.Unlock()
		return false
	}
	m.segments = m.history.Redo(m.segments)
	m.mu.Unlock()
	m.notify()
	return true
}

// CanUndo reports whether an undo is available.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.CanUndo()
}

// CanRedo reports whether a redo is available.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.CanRedo()
}

// Snapshot returns an immutable deep copy of the current timeline. This is
// also the hand-off point for the export pipeline.
func (m *Manager) Snapshot() *SegmentList {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.segments.Clone()
}

// TotalDuration returns the virtual duration of the contracted timeline.
func (m *Manager) TotalDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.segments.TotalDuration()
}

// SegmentCount returns the number of kept segments.
func (m *Manager) SegmentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.segments.Count()
}

// SourceToVirtual maps source time to virtual time; ok is false inside
// deleted ranges.
func (m *Manager) SourceToVirtual(t time.Duration) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.segments.SourceToVirtual(t)
}

// VirtualToSource maps virtual time to source time.
func (m *Manager) VirtualToSource(v time.Duration) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.segments.VirtualToSource(v)
}

// SegmentAtSource returns the kept segment containing the source time t.
func (m *Manager) SegmentAtSource(t time.Duration) (VideoSegment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.segments.SegmentAtSource(t)
}

// SegmentAtVirtual returns the kept segment containing the virtual time v.
func (m *Manager) SegmentAtVirtual(v time.Duration) (VideoSegment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.segments.SegmentAtVirtual(v)
}

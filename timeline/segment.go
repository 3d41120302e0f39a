package timeline

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange is returned when a delete range is empty, negative, or
// falls outside the virtual timeline.
var ErrInvalidRange = errors.New("invalid range")

// VideoSegment is a kept interval of the source video, half-open:
// [SourceStart, SourceEnd). Value type, never mutated in place.
type VideoSegment struct {
	SourceStart time.Duration
	SourceEnd   time.Duration
}

// Duration returns the length of the segment.
func (s VideoSegment) Duration() time.Duration {
	return s.SourceEnd - s.SourceStart
}

// Contains reports whether t falls inside the segment.
func (s VideoSegment) Contains(t time.Duration) bool {
	return t >= s.SourceStart && t < s.SourceEnd
}

func (s VideoSegment) String() string {
	return fmt.Sprintf("[%s, %s)", s.SourceStart, s.SourceEnd)
}

// SegmentList is the ordered set of kept segments for one source video.
// Segments are sorted by SourceStart and never overlap. An empty list is
// valid and means the whole source has been deleted.
type SegmentList struct {
	segments []VideoSegment
}

// NewSegmentList returns a list with one segment spanning the whole source.
func NewSegmentList(videoDuration time.Duration) *SegmentList {
	if videoDuration <= 0 {
		return &SegmentList{}
	}
	return &SegmentList{segments: []VideoSegment{{SourceStart: 0, SourceEnd: videoDuration}}}
}

// Clone returns a deep copy. The edit history snapshots lists with this
// before every mutation.
func (l *SegmentList) Clone() *SegmentList {
	out := &SegmentList{segments: make([]VideoSegment, len(l.segments))}
	copy(out.segments, l.segments)
	return out
}

// Segments returns a copy of the kept segments in order.
func (l *SegmentList) Segments() []VideoSegment {
	out := make([]VideoSegment, len(l.segments))
	copy(out, l.segments)
	return out
}

// Count returns the number of kept segments.
func (l *SegmentList) Count() int {
	return len(l.segments)
}

// TotalDuration returns the virtual (contracted) duration, the sum of all
// kept segment durations.
func (l *SegmentList) TotalDuration() time.Duration {
	var total time.Duration
	for _, s := range l.segments {
		total += s.Duration()
	}
	return total
}

// Equal reports value equality of two lists.
func (l *SegmentList) Equal(other *SegmentList) bool {
	if len(l.segments) != len(other.segments) {
		return false
	}
	for i, s := range l.segments {
		if s != other.segments[i] {
			return false
		}
	}
	return true
}

// DeleteRange removes the virtual span [vStart, vEnd) from the timeline.
// Segments fully covered are dropped, segments partially covered are
// truncated, and a segment straddling the span is split in two. The range
// must be non-empty and inside [0, TotalDuration]; anything else is a
// contract violation and is rejected without touching the list.
func (l *SegmentList) DeleteRange(vStart, vEnd time.Duration) error {
	if vStart < 0 || vEnd <= vStart || vEnd > l.TotalDuration() {
		return fmt.Errorf("%w: delete [%s, %s) on %s virtual timeline",
			ErrInvalidRange, vStart, vEnd, l.TotalDuration())
	}

	srcStart := l.VirtualToSource(vStart)
	srcEnd := l.VirtualToSource(vEnd)

	kept := make([]VideoSegment, 0, len(l.segments)+1)
	for _, s := range l.segments {
		switch {
		case s.SourceEnd <= srcStart || s.SourceStart >= srcEnd:
			// Untouched by the deletion.
			kept = append(kept, s)
		case s.SourceStart >= srcStart && s.SourceEnd <= srcEnd:
			// Fully covered, drop it.
		case s.SourceStart < srcStart && s.SourceEnd > srcEnd:
			// Straddles the deleted span, split in two.
			kept = append(kept,
				VideoSegment{SourceStart: s.SourceStart, SourceEnd: srcStart},
				VideoSegment{SourceStart: srcEnd, SourceEnd: s.SourceEnd})
		case s.SourceStart < srcStart:
			// Tail of the segment deleted.
			kept = append(kept, VideoSegment{SourceStart: s.SourceStart, SourceEnd: srcStart})
		default:
			// Head of the segment deleted.
			kept = append(kept, VideoSegment{SourceStart: srcEnd, SourceEnd: s.SourceEnd})
		}
	}
	l.segments = kept
	return nil
}

// SourceToVirtual maps a source timestamp to its position on the contracted
// timeline. ok is false when t falls inside a deleted region or outside the
// source entirely; callers use that as the deleted-range signal, it is not
// an error.
func (l *SegmentList) SourceToVirtual(t time.Duration) (time.Duration, bool) {
	var accumulated time.Duration
	for _, s := range l.segments {
		if s.Contains(t) {
			return accumulated + (t - s.SourceStart), true
		}
		accumulated += s.Duration()
	}
	return 0, false
}

// VirtualToSource maps a contracted-timeline position back to source time.
// A virtual time exactly on a segment boundary belongs to the following
// segment. v == TotalDuration clamps to the end of the last segment; other
// out-of-range inputs clamp to the nearest timeline edge.
func (l *SegmentList) VirtualToSource(v time.Duration) time.Duration {
	if len(l.segments) == 0 {
		return 0
	}
	if v < 0 {
		return l.segments[0].SourceStart
	}
	var accumulated time.Duration
	for _, s := range l.segments {
		if v < accumulated+s.Duration() {
			return s.SourceStart + (v - accumulated)
		}
		accumulated += s.Duration()
	}
	return l.segments[len(l.segments)-1].SourceEnd
}

// SegmentAtSource returns the kept segment containing the source time t.
func (l *SegmentList) SegmentAtSource(t time.Duration) (VideoSegment, bool) {
	for _, s := range l.segments {
		if s.Contains(t) {
			return s, true
		}
	}
	return VideoSegment{}, false
}

// SegmentAtVirtual returns the kept segment containing the virtual time v.
func (l *SegmentList) SegmentAtVirtual(v time.Duration) (VideoSegment, bool) {
	if v < 0 {
		return VideoSegment{}, false
	}
	var accumulated time.Duration
	for _, s := range l.segments {
		if v < accumulated+s.Duration() {
			return s, true
		}
		accumulated += s.Duration()
	}
	return VideoSegment{}, false
}

// NextSegmentAfter returns the first kept segment starting strictly after
// the source time t. The playback scheduler uses this to skip over deleted
// ranges.
func (l *SegmentList) NextSegmentAfter(t time.Duration) (VideoSegment, bool) {
	for _, s := range l.segments {
		if s.SourceStart > t {
			return s, true
		}
	}
	return VideoSegment{}, false
}

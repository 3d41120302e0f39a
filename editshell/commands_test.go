package editshell

import (
	"testing"
	"time"

	"skipcut/frame"
	"skipcut/player"
	"skipcut/timeline"
	"skipcut/util"
)

type stubDecoder struct{}

func (stubDecoder) DecodeFrameAt(t time.Duration) (*frame.Frame, error) {
	return &frame.Frame{Time: t, Data: []byte("frame")}, nil
}

func (stubDecoder) Close() error { return nil }

func sec(n float64) time.Duration {
	return time.Duration(n * float64(time.Second))
}

func newTestShell(t *testing.T) *Shell {
	t.Helper()
	m := timeline.NewManager(timeline.DefaultHistoryDepth)
	m.Load(sec(60))

	cache, err := frame.NewCache(stubDecoder{}, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cache.Close() })

	sched := player.NewScheduler(m.Snapshot, player.NullAudio{}, nil)
	sched.Load(sec(60), 30)
	t.Cleanup(sched.Stop)

	video := &util.Video{Title: "clip.mp4", Path: "clip.mp4", Duration: sec(60), FrameRate: 30}
	return NewShell(video, m, sched, cache, 3)
}

func TestHandleCommand_delete(t *testing.T) {
	s := newTestShell(t)

	if !s.HandleCommand("delete 10 20") {
		t.Fatal("delete should not exit the shell")
	}
	if s.Manager.TotalDuration() != sec(50) {
		t.Errorf("TotalDuration = %v, want 50s", s.Manager.TotalDuration())
	}
	if s.Manager.SegmentCount() != 2 {
		t.Errorf("SegmentCount = %d, want 2", s.Manager.SegmentCount())
	}
}

func TestHandleCommand_deleteRejectsBadArgs(t *testing.T) {
	s := newTestShell(t)

	for _, input := range []string{"delete", "delete abc 10", "delete 20 10", "delete 10 999"} {
		if !s.HandleCommand(input) {
			t.Fatalf("%q should not exit the shell", input)
		}
	}
	if s.Manager.TotalDuration() != sec(60) {
		t.Errorf("bad delete commands mutated the timeline: %v", s.Manager.TotalDuration())
	}
	if s.Manager.CanUndo() {
		t.Error("bad delete commands pushed history entries")
	}
}

func TestHandleCommand_undoRedo(t *testing.T) {
	s := newTestShell(t)

	s.HandleCommand("delete 10 20")
	s.HandleCommand("undo")
	if s.Manager.TotalDuration() != sec(60) {
		t.Errorf("undo: TotalDuration = %v, want 60s", s.Manager.TotalDuration())
	}
	s.HandleCommand("redo")
	if s.Manager.TotalDuration() != sec(50) {
		t.Errorf("redo: TotalDuration = %v, want 50s", s.Manager.TotalDuration())
	}
}

func TestHandleCommand_seekConvertsVirtualToSource(t *testing.T) {
	s := newTestShell(t)
	s.HandleCommand("delete 10 20")

	// Virtual 15s sits 5s into the second kept segment, source 25s.
	s.HandleCommand("seek 15")
	if got := s.Scheduler.CurrentTime(); got != sec(25) {
		t.Errorf("CurrentTime = %v, want source 25s", got)
	}

	// Past-the-end positions clamp to the virtual duration.
	s.HandleCommand("seek 500")
	if got := s.Scheduler.CurrentTime(); got != sec(60) {
		t.Errorf("CurrentTime = %v, want clamped to 60s", got)
	}
}

func TestHandleCommand_framePopulatesCache(t *testing.T) {
	s := newTestShell(t)

	s.HandleCommand("frame 5")
	if !s.Cache.Contains(sec(5)) {
		t.Error("frame command should cache the decoded frame")
	}
}

func TestHandleCommand_exit(t *testing.T) {
	s := newTestShell(t)
	for _, input := range []string{"exit", "quit", "q"} {
		if s.HandleCommand(input) {
			t.Errorf("%q should exit the shell", input)
		}
	}
	if s.HandleCommand("definitely-not-a-command") != true {
		t.Error("unknown commands should not exit the shell")
	}
}

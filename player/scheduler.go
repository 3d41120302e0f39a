package player

import (
	"log/slog"
	"sync"
	"time"

	"skipcut/timeline"
)

// State is the playback state machine: Stopped -> Playing -> Paused -> ...
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Audio is the backend the scheduler mirrors its transitions to. It owns no
// scheduling logic of its own.
type Audio interface {
	Seek(t time.Duration) error
	Play() error
	Pause() error
	Stop() error
}

// SnapshotFunc hands the scheduler an immutable view of the kept segments.
// Called once per tick, so the scheduler never shares mutable timeline
// state with the edit thread.
type SnapshotFunc func() *timeline.SegmentList

// Scheduler advances playback over the source video, skipping deleted
// ranges so they are invisible during playback. currentSourceTime is always
// in source coordinates; presentation layers convert to virtual time.
type Scheduler struct {
	mu        sync.Mutex
	state     State
	current   time.Duration
	duration  time.Duration
	frameRate float64
	loaded    bool
	stop      chan struct{}

	snapshot SnapshotFunc
	audio    Audio
	log      *slog.Logger

	onTime  []func(time.Duration)
	onState []func(State)
}

// NewScheduler returns a stopped scheduler with no video loaded.
func NewScheduler(snapshot SnapshotFunc, audio Audio, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{snapshot: snapshot, audio: audio, log: log}
}

// OnTimeChanged registers a callback for every currentSourceTime update.
// Callbacks run on the tick goroutine, never under the scheduler lock.
func (s *Scheduler) OnTimeChanged(fn func(time.Duration)) {
	s.mu.Lock()
	s.onTime = append(s.onTime, fn)
	s.mu.Unlock()
}

// OnStateChanged registers a callback for state transitions.
func (s *Scheduler) OnStateChanged(fn func(State)) {
	s.mu.Lock()
	s.onState = append(s.onState, fn)
	s.mu.Unlock()
}

func (s *Scheduler) emitTime(t time.Duration) {
	s.mu.Lock()
	listeners := make([]func(time.Duration), len(s.onTime))
	copy(listeners, s.onTime)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(t)
	}
}

func (s *Scheduler) emitState(st State) {
	s.mu.Lock()
	listeners := make([]func(State), len(s.onState))
	copy(listeners, s.onState)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(st)
	}
}

// Load points the scheduler at a new video, stopping any playback first.
func (s *Scheduler) Load(duration time.Duration, frameRate float64) {
	s.Stop()
	s.mu.Lock()
	if frameRate <= 0 {
		frameRate = 30
	}
	s.duration = duration
	s.frameRate = frameRate
	s.current = 0
	s.loaded = duration > 0
	s.mu.Unlock()
}

func (s *Scheduler) framePeriod() time.Duration {
	return time.Duration(float64(time.Second) / s.frameRate)
}

// State returns the current playback state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentTime returns the playhead position in source coordinates.
func (s *Scheduler) CurrentTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Duration returns the source duration of the loaded video.
func (s *Scheduler) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Play starts or resumes playback. Calling it with no video loaded is a
// warned no-op; starting at end-of-video rewinds to the beginning first.
// Returns quickly: ticking happens on its own goroutine.
func (s *Scheduler) Play() {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		s.log.Warn("play requested with no video loaded")
		return
	}
	if s.state == Playing {
		s.mu.Unlock()
		return
	}
	if s.current >= s.duration {
		s.current = 0
	}
	s.state = Playing
	s.stop = make(chan struct{})
	from := s.current
	stop := s.stop
	period := s.framePeriod()
	s.mu.Unlock()

	if err := s.audio.Seek(from); err != nil {
		s.log.Warn("audio seek failed", "error", err)
	}
	if err := s.audio.Play(); err != nil {
		s.log.Warn("audio play failed", "error", err)
	}
	s.emitState(Playing)

	go s.run(stop, period)
}

func (s *Scheduler) run(stop chan struct{}, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !s.step() {
				return
			}
		}
	}
}

// step advances the playhead by one frame period. It returns false when the
// tick loop should end, either because playback was paused externally or
// because the video ran out.
func (s *Scheduler) step() bool {
	s.mu.Lock()
	if s.state != Playing {
		s.mu.Unlock()
		return false
	}

	next := s.current + s.framePeriod()
	if next >= s.duration {
		return s.endOfVideo()
	}

	skipped := false
	segs := s.snapshot()
	if _, ok := segs.SourceToVirtual(next); !ok {
		// The next instant falls inside a deleted range: jump to the start
		// of the first kept segment past it so the gap is never rendered.
		seg, found := segs.NextSegmentAfter(next)
		if !found {
			return s.endOfVideo()
		}
		next = seg.SourceStart
		skipped = true
	}

	s.current = next
	s.mu.Unlock()

	if skipped {
		if err := s.audio.Seek(next); err != nil {
			s.log.Warn("audio seek failed", "error", err)
		}
	}
	s.emitTime(next)
	return true
}

// endOfVideo clamps to the end and pauses. Called with s.mu held; releases
// it before notifying.
func (s *Scheduler) endOfVideo() bool {
	s.current = s.duration
	s.state = Paused
	s.stop = nil
	end := s.duration
	s.mu.Unlock()

	if err := s.audio.Pause(); err != nil {
		s.log.Warn("audio pause failed", "error", err)
	}
	s.emitState(Paused)
	s.emitTime(end)
	return false
}

// Pause suspends playback, holding the playhead in place.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	if s.state != Playing {
		s.mu.Unlock()
		return
	}
	s.state = Paused
	close(s.stop)
	s.stop = nil
	s.mu.Unlock()

	if err := s.audio.Pause(); err != nil {
		s.log.Warn("audio pause failed", "error", err)
	}
	s.emitState(Paused)
}

// Stop halts playback and rewinds to the beginning.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state == Stopped && s.current == 0 {
		s.mu.Unlock()
		return
	}
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.state = Stopped
	s.current = 0
	s.mu.Unlock()

	if err := s.audio.Stop(); err != nil {
		s.log.Warn("audio stop failed", "error", err)
	}
	s.emitState(Stopped)
	s.emitTime(0)
}

// Seek moves the playhead to t (source coordinates), clamped to the video.
// It deliberately does not check for deleted ranges: seeks come from the
// virtual timeline where the caller already converted coordinates, and a
// seek landing in a gap is corrected by the next tick's boundary skip.
func (s *Scheduler) Seek(t time.Duration) {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return
	}
	if t < 0 {
		t = 0
	}
	if t > s.duration {
		t = s.duration
	}
	s.current = t
	s.mu.Unlock()

	if err := s.audio.Seek(t); err != nil {
		s.log.Warn("audio seek failed", "error", err)
	}
	s.emitTime(t)
}

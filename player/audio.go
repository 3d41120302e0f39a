package player

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"
)

// NullAudio is an Audio backend that does nothing. Used for headless
// sessions and tests.
type NullAudio struct{}

func (NullAudio) Seek(time.Duration) error { return nil }
func (NullAudio) Play() error              { return nil }
func (NullAudio) Pause() error             { return nil }
func (NullAudio) Stop() error              { return nil }

// FFplayAudio plays the audio track of a video with ffplay. ffplay has no
// pause or seek control once started, so Pause kills the process and Seek
// restarts it at the new position when playing.
type FFplayAudio struct {
	mu       sync.Mutex
	path     string
	position time.Duration
	playing  bool
	cancel   context.CancelFunc
}

// NewFFplayAudio returns a backend for the video at path.
func NewFFplayAudio(path string) *FFplayAudio {
	return &FFplayAudio{path: path}
}

// startLocked launches ffplay from the current position. Callers hold a.mu.
func (a *FFplayAudio) startLocked() error {
	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, "ffplay",
		"-nodisp",
		"-vn",
		"-autoexit",
		"-loglevel", "quiet",
		"-ss", fmt.Sprintf("%.3f", a.position.Seconds()),
		a.path)
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start ffplay: %w", err)
	}
	a.cancel = cancel
	go cmd.Wait()
	return nil
}

func (a *FFplayAudio) stopLocked() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// Seek records the new position, restarting playback there if playing.
func (a *FFplayAudio) Seek(t time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.position = t
	if !a.playing {
		return nil
	}
	a.stopLocked()
	return a.startLocked()
}

// Play starts audio from the current position.
func (a *FFplayAudio) Play() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.playing {
		return nil
	}
	if err := a.startLocked(); err != nil {
		return err
	}
	a.playing = true
	return nil
}

// Pause kills the ffplay process, keeping the last seek position.
func (a *FFplayAudio) Pause() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
	a.playing = false
	return nil
}

// Stop kills the process and rewinds.
func (a *FFplayAudio) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
	a.playing = false
	a.position = 0
	return nil
}

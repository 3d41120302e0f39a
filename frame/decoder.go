package frame

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync/atomic"
	"time"
)

// ErrDecoderClosed is returned by decode calls after Close.
var ErrDecoderClosed = errors.New("decoder is closed")

// Frame is one decoded video frame. Data is the encoded JPEG produced by
// the decoder; Release drops the buffer when the cache evicts the frame.
type Frame struct {
	Time     time.Duration
	Data     []byte
	released atomic.Bool
}

// Size returns the byte size of the frame's backing buffer.
func (f *Frame) Size() int {
	return len(f.Data)
}

// Release frees the frame's backing buffer. Safe to call more than once.
func (f *Frame) Release() {
	if f.released.CompareAndSwap(false, true) {
		f.Data = nil
	}
}

// Released reports whether the frame's buffer has been freed.
func (f *Frame) Released() bool {
	return f.released.Load()
}

// Decoder produces frames for arbitrary source timestamps. Implementations
// are not required to be safe for concurrent use; the Cache serializes all
// calls through its decode lock.
type Decoder interface {
	DecodeFrameAt(t time.Duration) (*Frame, error)
	Close() error
}

// FFmpegDecoder extracts single frames from a video file by running ffmpeg
// with an input seek. The file path is validated once at construction so a
// missing file fails at open time, not on the first decode.
type FFmpegDecoder struct {
	path   string
	closed bool
}

// NewFFmpegDecoder returns a decoder for the video at path.
func NewFFmpegDecoder(path string) (*FFmpegDecoder, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open video %s: %w", path, err)
	}
	return &FFmpegDecoder{path: path}, nil
}

// DecodeFrameAt extracts the frame at t as JPEG bytes.
func (d *FFmpegDecoder) DecodeFrameAt(t time.Duration) (*Frame, error) {
	if d.closed {
		return nil, ErrDecoderClosed
	}

	cmd := exec.Command("ffmpeg",
		"-v", "quiet",
		"-ss", fmt.Sprintf("%.3f", t.Seconds()),
		"-i", d.path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"pipe:1")

	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("decode frame at %s: %w", t, err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("decode frame at %s: no frame produced", t)
	}

	return &Frame{Time: t, Data: out.Bytes()}, nil
}

// Close marks the decoder unusable. Further decode calls fail with
// ErrDecoderClosed.
func (d *FFmpegDecoder) Close() error {
	d.closed = true
	return nil
}

package frame

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// VideoInfo is the probed metadata the player needs to load a file.
type VideoInfo struct {
	Duration  time.Duration
	FrameRate float64
}

// ProbeVideo reads duration and average frame rate from the container via
// ffprobe. A stream without a usable frame rate falls back to 30 fps.
func ProbeVideo(path string) (VideoInfo, error) {
	cmd := exec.Command("ffprobe",
		"-v", "quiet",
		"-select_streams", "v:0",
		"-show_entries", "stream=avg_frame_rate:format=duration",
		"-of", "csv=p=0",
		path)

	output, err := cmd.Output()
	if err != nil {
		return VideoInfo{}, fmt.Errorf("probe %s: %w", path, err)
	}

	info := VideoInfo{FrameRate: 30}
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if fps, ok := parseFrameRate(line); ok {
			info.FrameRate = fps
			continue
		}
		if secs, err := strconv.ParseFloat(line, 64); err == nil {
			info.Duration = time.Duration(secs * float64(time.Second))
		}
	}
	if info.Duration <= 0 {
		return VideoInfo{}, fmt.Errorf("probe %s: no duration in ffprobe output", path)
	}
	return info, nil
}

// parseFrameRate handles ffprobe's rational frame rates like "30000/1001".
func parseFrameRate(s string) (float64, bool) {
	num, den, found := strings.Cut(s, "/")
	if !found {
		return 0, false
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 || n <= 0 {
		return 0, false
	}
	return n / d, true
}

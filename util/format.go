package util

import (
	"fmt"
	"strconv"
	"time"
)

// FormatTimestamp renders a timeline position as M:SS.mmm.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Minutes())
	seconds := d - time.Duration(minutes)*time.Minute
	return fmt.Sprintf("%d:%06.3f", minutes, seconds.Seconds())
}

// ParseSeconds parses a decimal seconds string ("12.5") into a duration.
func ParseSeconds(s string) (time.Duration, error) {
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

package util

import (
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00.000"},
		{1500 * time.Millisecond, "0:01.500"},
		{90 * time.Second, "1:30.000"},
		{-time.Second, "0:00.000"},
	}
	for _, tc := range cases {
		if got := FormatTimestamp(tc.in); got != tc.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseSeconds(t *testing.T) {
	d, err := ParseSeconds("12.5")
	if err != nil {
		t.Fatalf("ParseSeconds: %v", err)
	}
	if d != 12500*time.Millisecond {
		t.Errorf("ParseSeconds(12.5) = %v", d)
	}
	if _, err := ParseSeconds("abc"); err == nil {
		t.Error("expected error for non-numeric input")
	}
}

func TestClampDuration(t *testing.T) {
	if got := ClampDuration(5*time.Second, 0, 3*time.Second); got != 3*time.Second {
		t.Errorf("ClampDuration above max = %v", got)
	}
	if got := ClampDuration(-time.Second, 0, 3*time.Second); got != 0 {
		t.Errorf("ClampDuration below min = %v", got)
	}
	if got := ClampDuration(time.Second, 0, 3*time.Second); got != time.Second {
		t.Errorf("ClampDuration in range = %v", got)
	}
}

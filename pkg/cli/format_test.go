package cli

import (
	"testing"
	"time"
)

func TestFormatBeats(t *testing.T) {
	tests := []struct {
		beats float64
		want  string
	}{
		{0, "0 beats"},
		{1, "1 beat"},
		{0.25, "0.25 beats"},
		{32, "32 beats"},
		{57.75, "57.75 beats"},
	}
	for _, tt := range tests {
		if got := FormatBeats(tt.beats); got != tt.want {
			t.Errorf("FormatBeats(%g) = %q, want %q", tt.beats, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0ms"},
		{850 * time.Millisecond, "850ms"},
		{12500 * time.Millisecond, "12.5s"},
		{64 * time.Second, "1m4.0s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

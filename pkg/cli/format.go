package cli

import (
	"fmt"
	"strconv"
	"time"
)

// FormatBeats renders a beat count without trailing zeros, e.g. "12.75 beats".
func FormatBeats(beats float64) string {
	s := strconv.FormatFloat(beats, 'f', -1, 64)
	if beats == 1 {
		return s + " beat"
	}
	return s + " beats"
}

// FormatDuration renders d as "850ms", "12.5s" or "1m4.0s".
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	secs := d.Seconds()
	if secs < 60 {
		return fmt.Sprintf("%.1fs", secs)
	}
	mins := int(secs / 60)
	return fmt.Sprintf("%dm%.1fs", mins, secs-float64(mins*60))
}

// FormatBytes renders a size with a binary unit.
func FormatBytes(n int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case n >= MB:
		return fmt.Sprintf("%.2f MB", float64(n)/MB)
	case n >= KB:
		return fmt.Sprintf("%.2f KB", float64(n)/KB)
	}
	return fmt.Sprintf("%d B", n)
}

// FormatTime renders a unix-millisecond timestamp in local time.
func FormatTime(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04:05")
}

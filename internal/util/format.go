package util

import (
	"fmt"
	"time"
)

// Statify converts done bytes, total bytes, and a start time into
// progress, speed, and an ETA string.
// Returns: progress (0.0-1.0), speed in MiB/s, ETA as "HH:MM:SS".
func Statify(done, total int64, start time.Time) (float64, float64, string) {
	if total <= 0 {
		return 0, 0, "00:00:00"
	}

	progress := float64(done) / float64(total)
	if progress > 1 {
		progress = 1
	}

	elapsed := time.Since(start).Seconds()
	if elapsed <= 0 {
		return progress, 0, "00:00:00"
	}

	speed := float64(done) / elapsed / float64(MiB)

	var eta int
	if speed > 0 {
		eta = int(float64(total-done) / (speed * float64(MiB)))
	}

	return progress, speed, Timeify(eta)
}

// Timeify converts seconds to "HH:MM:SS".
func Timeify(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	seconds %= 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// Sizeify converts a byte count to a human-readable string.
func Sizeify(size int64) string {
	switch {
	case size >= TiB:
		return fmt.Sprintf("%.2f TiB", float64(size)/float64(TiB))
	case size >= GiB:
		return fmt.Sprintf("%.2f GiB", float64(size)/float64(GiB))
	case size >= MiB:
		return fmt.Sprintf("%.2f MiB", float64(size)/float64(MiB))
	case size >= KiB:
		return fmt.Sprintf("%.2f KiB", float64(size)/float64(KiB))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

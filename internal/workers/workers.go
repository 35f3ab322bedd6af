package workers

import (
	"os"
	"strconv"
)

// Slots returns the number of worker slots for a background pool.
// fallback is used when the named environment variable is unset or
// invalid; limit caps the result (0 means no cap).
//
// Worker counts here are deliberately small fixed numbers rather than
// CPU-derived: every slot drives an external ffmpeg process that
// saturates cores on its own.
func Slots(envVar string, fallback, limit int) int {
	n := fallback
	if override := os.Getenv(envVar); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			n = count
		}
	}
	if n < 1 {
		n = 1
	}
	if limit > 0 && n > limit {
		n = limit
	}
	return n
}

//go:build !linux && !darwin

package sweeper

import (
	"os"
	"time"
)

// On platforms without a portable atime field, the modification time
// stands in for last access.
func lastAccessTime(_ string, info os.FileInfo) time.Time {
	return info.ModTime()
}

//go:build linux

package sweeper

import (
	"os"
	"syscall"
	"time"
)

// lastAccessTime reads the atime from the stat data. Filesystems mounted
// noatime fall back to the modification time, which is still a usable
// LRU signal for write-once cache artifacts.
func lastAccessTime(_ string, info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		at := time.Unix(st.Atim.Sec, st.Atim.Nsec)
		if at.After(info.ModTime()) {
			return at
		}
	}
	return info.ModTime()
}

//go:build darwin

package sweeper

import (
	"os"
	"syscall"
	"time"
)

func lastAccessTime(_ string, info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		at := time.Unix(st.Atimespec.Sec, st.Atimespec.Nsec)
		if at.After(info.ModTime()) {
			return at
		}
	}
	return info.ModTime()
}

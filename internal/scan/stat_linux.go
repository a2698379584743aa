//go:build linux

package scan

import (
	"os"
	"syscall"
	"time"
)

// changeTime is the inode change time; Linux does not expose a creation
// time through os.FileInfo.
func changeTime(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
	}
	return info.ModTime()
}

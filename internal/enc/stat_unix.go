//go:build unix

package enc

import (
	"os"
	"syscall"
)

// fileMode returns the raw st_mode so the full permission bits survive
// the round trip, matching what stat(2) reports.
func fileMode(info os.FileInfo) uint32 {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return uint32(st.Mode)
	}
	return uint32(info.Mode().Perm())
}

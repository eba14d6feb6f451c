//go:build !unix

package enc

import "os"

func fileMode(info os.FileInfo) uint32 {
	return uint32(info.Mode().Perm())
}

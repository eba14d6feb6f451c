// Package enc implements the pack and unpack pipelines: chunked
// encryption of plain files into self-describing .cokacenc chunk files
// and their verified restoration.
package enc

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"

	"cokacdir/internal/errors"
	"cokacdir/internal/util"
)

// metadataVersion is the value of the "v" key inside chunk metadata.
const metadataVersion = 2

// ChunkMetadata is embedded (JSON, encrypted) at the start of every
// chunk body. The key names are part of the wire format.
type ChunkMetadata struct {
	Version       uint32 `json:"v"`
	GroupID       string `json:"group"`
	Filename      string `json:"name"`
	FileSize      int64  `json:"size"`
	FileMd5       string `json:"md5"`
	Modified      int64  `json:"mtime"`
	Permissions   uint32 `json:"perm"`
	TotalChunks   int    `json:"chunks"`
	ChunkIndex    int    `json:"idx"`
	ChunkOffset   int64  `json:"offset"`
	ChunkDataSize int64  `json:"len"`
}

// fileInfo is the first-pass snapshot of a file about to be packed.
type fileInfo struct {
	size        int64
	md5         string
	modified    int64
	permissions uint32
}

// gatherFileInfo stats path and computes its MD5 in one streaming pass.
func gatherFileInfo(path string) (*fileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewFileError("stat", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewFileError("open", path, err)
	}
	defer f.Close()

	hasher := md5.New()
	buf := util.ReadPool.Get()
	defer util.ReadPool.Put(buf)
	if _, err := io.CopyBuffer(hasher, f, buf); err != nil {
		return nil, errors.NewFileError("read", path, err)
	}

	return &fileInfo{
		size:        stat.Size(),
		md5:         hex.EncodeToString(hasher.Sum(nil)),
		modified:    stat.ModTime().Unix(),
		permissions: fileMode(stat),
	}, nil
}

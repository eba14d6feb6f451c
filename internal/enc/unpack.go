package enc

import (
	"bufio"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"cokacdir/internal/codec"
	"cokacdir/internal/encoding"
	"cokacdir/internal/errors"
	"cokacdir/internal/keystore"
	"cokacdir/internal/log"
	"cokacdir/internal/naming"
)

// UnpackDirectoryWithProgress restores every chunk group directly under
// dir using the key file at keyPath. Groups are processed in group-ID
// order; each success deletes the group's chunk files. Per-group
// failures are reported on progress and the sweep continues. The
// terminal message is always Completed(success, failure).
func UnpackDirectoryWithProgress(dir, keyPath string, progress chan<- ProgressMessage, cancel *atomic.Bool) {
	password, err := keystore.LoadKey(keyPath)
	if err != nil {
		send(progress, errorMsg("", "Key file error: "+err.Error()))
		send(progress, completed(0, 1))
		return
	}
	UnpackDirectory(dir, password, progress, cancel)
}

// UnpackDirectory is UnpackDirectoryWithProgress with the password
// already in hand.
func UnpackDirectory(dir string, password []byte, progress chan<- ProgressMessage, cancel *atomic.Bool) {
	rs, err := encoding.NewRS16Codec()
	if err != nil {
		send(progress, errorMsg("", err.Error()))
		send(progress, completed(0, 1))
		return
	}

	groups, err := naming.GroupEncFiles(dir)
	if err != nil {
		send(progress, errorMsg("", "Read dir error: "+err.Error()))
		send(progress, completed(0, 1))
		return
	}

	if len(groups) == 0 {
		send(progress, completed(0, 0))
		return
	}

	ids := naming.SortedGroupIDs(groups)
	send(progress, totalProgress(0, len(ids)))

	success, failure := 0, 0
	for i, groupID := range ids {
		if cancel != nil && cancel.Load() {
			break
		}

		chunks := groups[groupID]
		send(progress, fileStarted(groupLabel(groupID)))

		originalName, err := unpackFileGroup(rs, dir, chunks, password, progress)
		if err != nil {
			failure++
			send(progress, errorMsg(groupID, err.Error()))
			log.Warn("unpack failed", log.String("group", groupID), log.Err(err))
		} else {
			for _, chunk := range chunks {
				os.Remove(chunk.Path)
			}
			success++
			send(progress, fileCompleted(originalName))
		}

		send(progress, totalProgress(i+1, len(ids)))
	}

	send(progress, completed(success, failure))
}

// groupLabel is the placeholder name shown until chunk 0's metadata
// reveals the real filename.
func groupLabel(groupID string) string {
	if len(groupID) > 8 {
		groupID = groupID[:8]
	}
	return groupID + "..."
}

// UnpackFileGroup decrypts and merges one chunk group into its original
// file, returning the restored filename.
func UnpackFileGroup(dir string, chunks []naming.EncFileInfo, password []byte) (string, error) {
	rs, err := encoding.NewRS16Codec()
	if err != nil {
		return "", err
	}
	return unpackFileGroup(rs, dir, chunks, password, nil)
}

// unpackFileGroup writes decrypted data into a hidden scratch file, then
// verifies the whole-file MD5 and size before renaming it into place, so
// a partially restored file is never visible under its real name.
func unpackFileGroup(rs *encoding.RS16Codec, dir string, chunks []naming.EncFileInfo, password []byte, progress chan<- ProgressMessage) (string, error) {
	if len(chunks) == 0 {
		return "", errors.ErrNoEncFiles
	}

	for i, chunk := range chunks {
		if chunk.SeqIndex != i {
			label, err := naming.SeqLabel(i)
			if err != nil {
				return "", err
			}
			return "", &errors.MissingChunkError{Expected: label}
		}
	}

	groupID := chunks[0].GroupID
	tempPath := filepath.Join(dir, "."+groupID+".unpacking")

	outFile, err := os.Create(tempPath)
	if err != nil {
		return "", errors.NewFileError("create", tempPath, err)
	}
	fileWriter := bufio.NewWriter(outFile)
	hasher := md5.New()

	cleanup := func() {
		outFile.Close()
		os.Remove(tempPath)
	}

	var originalName, expectedMd5 string
	var fileSize, modified int64
	var permissions uint32

	for i, chunk := range chunks {
		meta, err := decryptChunkInto(rs, chunk.Path, password, fileWriter, hasher)
		if err != nil {
			cleanup()
			return "", err
		}

		if meta.ChunkIndex != i {
			cleanup()
			return "", errors.NewMetadataError(
				fmt.Sprintf("chunk index mismatch: expected %d, got %d", i, meta.ChunkIndex), nil)
		}

		if i == 0 {
			originalName = meta.Filename
			expectedMd5 = meta.FileMd5
			fileSize = meta.FileSize
			modified = meta.Modified
			permissions = meta.Permissions
			send(progress, fileStarted(originalName))
		} else if meta.Filename != originalName || meta.FileMd5 != expectedMd5 {
			cleanup()
			return "", errors.NewMetadataError("inconsistent metadata across chunks", nil)
		}

		send(progress, fileProgress(originalName, int64(i+1), int64(len(chunks))))
	}

	if err := fileWriter.Flush(); err != nil {
		cleanup()
		return "", errors.NewFileError("write", tempPath, err)
	}
	if err := outFile.Close(); err != nil {
		os.Remove(tempPath)
		return "", errors.NewFileError("write", tempPath, err)
	}

	actualMd5 := hex.EncodeToString(hasher.Sum(nil))
	if actualMd5 != expectedMd5 {
		os.Remove(tempPath)
		return "", &errors.Md5MismatchError{Expected: expectedMd5, Actual: actualMd5}
	}

	if stat, err := os.Stat(tempPath); err != nil || stat.Size() != fileSize {
		actual := int64(0)
		if err == nil {
			actual = stat.Size()
		}
		os.Remove(tempPath)
		return "", fmt.Errorf("size mismatch: expected %d, got %d", fileSize, actual)
	}

	outPath := filepath.Join(dir, originalName)
	if err := os.Rename(tempPath, outPath); err != nil {
		os.Remove(tempPath)
		return "", errors.NewFileError("rename", tempPath, err)
	}

	// Best effort: the file is already correct even if these fail.
	if permissions != 0 {
		os.Chmod(outPath, os.FileMode(permissions)&os.ModePerm)
	}
	if modified > 0 {
		t := time.Unix(modified, 0)
		os.Chtimes(outPath, t, t)
	}

	log.Debug("unpacked group",
		log.String("group", groupID),
		log.String("file", originalName),
		log.Int("chunks", len(chunks)))
	return originalName, nil
}

// decryptChunkInto decrypts one chunk file, forwarding its file data to
// out and hasher, and returns the parsed metadata frame.
func decryptChunkInto(rs *encoding.RS16Codec, path string, password []byte, out io.Writer, hasher hash.Hash) (*ChunkMetadata, error) {
	encFile, err := os.Open(path)
	if err != nil {
		return nil, errors.NewFileError("open", path, err)
	}
	defer encFile.Close()
	reader := bufio.NewReader(encFile)

	header, err := codec.ReadHeader(reader, rs)
	if err != nil {
		return nil, err
	}
	key := codec.DeriveKey(password, header.Salt)

	tee := &TeeWriter{File: out, Hasher: hasher}
	split := NewMetadataSplitWriter(tee)
	if err := codec.DecryptChunk(reader, split, key, header.IV); err != nil {
		return nil, err
	}

	metaBytes, err := split.TakeMetadataBytes()
	if err != nil {
		return nil, err
	}

	var meta ChunkMetadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, errors.NewMetadataError("parse", err)
	}
	return &meta, nil
}

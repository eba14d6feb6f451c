package enc

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"cokacdir/internal/codec"
	"cokacdir/internal/encoding"
	"cokacdir/internal/errors"
	"cokacdir/internal/keystore"
	"cokacdir/internal/log"
	"cokacdir/internal/naming"
	"cokacdir/internal/util"
)

// DefaultSplitSize is the chunk size used when no override is given.
const DefaultSplitSize = 1800 * util.MiB

// PackDirectoryWithProgress encrypts every eligible file directly under
// dir using the key file at keyPath. Eligible means a regular file whose
// name is not hidden and does not already carry the chunk extension.
// Files are processed in name order; each success deletes the original.
// Per-file failures are reported on progress and the sweep continues.
// The cancel flag is checked between files. The terminal message is
// always Completed(success, failure).
func PackDirectoryWithProgress(dir, keyPath string, splitSize int64, progress chan<- ProgressMessage, cancel *atomic.Bool) {
	password, err := keystore.LoadKey(keyPath)
	if err != nil {
		send(progress, errorMsg("", "Key file error: "+err.Error()))
		send(progress, completed(0, 1))
		return
	}
	PackDirectory(dir, password, splitSize, progress, cancel)
}

// PackDirectory is PackDirectoryWithProgress with the password already in
// hand.
func PackDirectory(dir string, password []byte, splitSize int64, progress chan<- ProgressMessage, cancel *atomic.Bool) {
	if splitSize <= 0 {
		splitSize = DefaultSplitSize
	}

	rs, err := encoding.NewRS16Codec()
	if err != nil {
		send(progress, errorMsg("", err.Error()))
		send(progress, completed(0, 1))
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		send(progress, errorMsg("", "Read dir error: "+err.Error()))
		send(progress, completed(0, 1))
		return
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasSuffix(name, naming.Ext) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		send(progress, completed(0, 0))
		return
	}

	send(progress, totalProgress(0, len(names)))

	success, failure := 0, 0
	for i, name := range names {
		if cancel != nil && cancel.Load() {
			break
		}

		path := filepath.Join(dir, name)
		send(progress, fileStarted(name))

		if err := packFile(rs, path, name, dir, password, splitSize, progress); err != nil {
			failure++
			send(progress, errorMsg(name, err.Error()))
			log.Warn("pack failed", log.String("file", name), log.Err(err))
		} else {
			if err := os.Remove(path); err != nil {
				send(progress, errorMsg(name, "Encrypted but failed to delete original: "+err.Error()))
			}
			success++
			send(progress, fileCompleted(name))
		}

		send(progress, totalProgress(i+1, len(names)))
	}

	send(progress, completed(success, failure))
}

// PackFile encrypts one file into its chunk group without progress
// reporting. On any error every chunk created so far is deleted.
func PackFile(path, originalName, outDir string, password []byte, splitSize int64) error {
	rs, err := encoding.NewRS16Codec()
	if err != nil {
		return err
	}
	return packFile(rs, path, originalName, outDir, password, splitSize, nil)
}

// packFile runs the two-pass pack: first pass gathers size, MD5, mtime
// and permissions; second pass streams the file through the encryptor,
// one chunk per splitSize bytes, each chunk prefixed with the full
// metadata frame.
func packFile(rs *encoding.RS16Codec, path, originalName, outDir string, password []byte, splitSize int64, progress chan<- ProgressMessage) error {
	info, err := gatherFileInfo(path)
	if err != nil {
		return err
	}

	groupID := naming.GenerateGroupID()
	keyPrefix := naming.KeyPrefix(password)
	totalChunks := 1
	if info.size > 0 {
		totalChunks = int((info.size + splitSize - 1) / splitSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.NewFileError("open", path, err)
	}
	defer f.Close()
	reader := bufio.NewReader(f)

	readBuf := util.ReadPool.Get()
	defer util.ReadPool.Put(readBuf)

	var createdChunks []string
	var written int64

	writeChunks := func() error {
		for chunkIdx := 0; chunkIdx < totalChunks; chunkIdx++ {
			chunkOffset := int64(chunkIdx) * splitSize
			var chunkDataSize int64
			if info.size > 0 {
				chunkDataSize = splitSize
				if rest := info.size - chunkOffset; rest < chunkDataSize {
					chunkDataSize = rest
				}
			}

			meta := ChunkMetadata{
				Version:       metadataVersion,
				GroupID:       groupID,
				Filename:      originalName,
				FileSize:      info.size,
				FileMd5:       info.md5,
				Modified:      info.modified,
				Permissions:   info.permissions,
				TotalChunks:   totalChunks,
				ChunkIndex:    chunkIdx,
				ChunkOffset:   chunkOffset,
				ChunkDataSize: chunkDataSize,
			}

			chunkPath, err := naming.ChunkFilename(outDir, keyPrefix, groupID, chunkIdx)
			if err != nil {
				return err
			}
			chunkFile, err := os.Create(chunkPath)
			if err != nil {
				return errors.NewFileError("create", chunkPath, err)
			}
			createdChunks = append(createdChunks, chunkPath)
			writer := bufio.NewWriter(chunkFile)

			err = func() error {
				defer chunkFile.Close()

				salt, err := codec.GenerateSalt()
				if err != nil {
					return err
				}
				iv, err := codec.GenerateIV()
				if err != nil {
					return err
				}
				key := codec.DeriveKey(password, salt)

				if err := codec.WriteHeader(writer, rs, salt, iv, originalName); err != nil {
					return err
				}

				enc, err := codec.NewChunkEncryptor(key, iv)
				if err != nil {
					return err
				}

				metaBytes, err := json.Marshal(meta)
				if err != nil {
					return errors.NewMetadataError("serialize", err)
				}
				var metaLen [4]byte
				binary.LittleEndian.PutUint32(metaLen[:], uint32(len(metaBytes)))

				if _, err := writer.Write(enc.Update(metaLen[:])); err != nil {
					return errors.NewFileError("write", chunkPath, err)
				}
				if _, err := writer.Write(enc.Update(metaBytes)); err != nil {
					return errors.NewFileError("write", chunkPath, err)
				}

				remaining := chunkDataSize
				for remaining > 0 {
					toRead := int64(len(readBuf))
					if remaining < toRead {
						toRead = remaining
					}
					n, rerr := reader.Read(readBuf[:toRead])
					if n > 0 {
						if _, werr := writer.Write(enc.Update(readBuf[:n])); werr != nil {
							return errors.NewFileError("write", chunkPath, werr)
						}
						remaining -= int64(n)
						written += int64(n)
						send(progress, fileProgress(originalName, written, info.size))
					}
					if rerr != nil {
						if rerr == io.EOF {
							break
						}
						return errors.NewFileError("read", path, rerr)
					}
				}

				if _, err := writer.Write(enc.Finalize()); err != nil {
					return errors.NewFileError("write", chunkPath, err)
				}
				return writer.Flush()
			}()
			if err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeChunks(); err != nil {
		for _, chunkPath := range createdChunks {
			os.Remove(chunkPath)
		}
		return err
	}

	log.Debug("packed file",
		log.String("file", originalName),
		log.String("group", groupID),
		log.Int("chunks", totalChunks))
	return nil
}

package enc

import (
	"encoding/binary"
	"hash"
	"io"

	"cokacdir/internal/errors"
	"cokacdir/internal/util"
)

// maxMetadataLen bounds the declared metadata frame length. The length
// field comes from unauthenticated plaintext, so a corrupt chunk that
// happens to decrypt with valid padding could otherwise demand an
// arbitrarily large allocation.
const maxMetadataLen = int(util.MiB)

type splitState int

const (
	stateReadingLen splitState = iota
	stateReadingMeta
	stateData
)

// MetadataSplitWriter splits a decrypted chunk plaintext stream into its
// metadata frame and file data. The plaintext layout is
//
//	[4B meta length LE u32][metadata JSON][file data...]
//
// The metadata bytes are buffered; file data is forwarded to the inner
// writer. A single Write call may cross any number of state boundaries.
type MetadataSplitWriter struct {
	state     splitState
	lenBuf    [4]byte
	lenFilled int
	metaBuf   []byte
	metaLen   int
	inner     io.Writer
}

// NewMetadataSplitWriter wraps inner, which receives only file data.
func NewMetadataSplitWriter(inner io.Writer) *MetadataSplitWriter {
	return &MetadataSplitWriter{inner: inner}
}

func (s *MetadataSplitWriter) Write(buf []byte) (int, error) {
	total := len(buf)
	pos := 0

	for pos < total {
		switch s.state {
		case stateReadingLen:
			take := 4 - s.lenFilled
			if rem := total - pos; rem < take {
				take = rem
			}
			copy(s.lenBuf[s.lenFilled:], buf[pos:pos+take])
			s.lenFilled += take
			pos += take
			if s.lenFilled == 4 {
				s.metaLen = int(binary.LittleEndian.Uint32(s.lenBuf[:]))
				if s.metaLen > maxMetadataLen {
					return pos, errors.NewMetadataError("metadata length out of range", nil)
				}
				s.metaBuf = make([]byte, 0, s.metaLen)
				if s.metaLen == 0 {
					s.state = stateData
				} else {
					s.state = stateReadingMeta
				}
			}

		case stateReadingMeta:
			take := s.metaLen - len(s.metaBuf)
			if rem := total - pos; rem < take {
				take = rem
			}
			s.metaBuf = append(s.metaBuf, buf[pos:pos+take]...)
			pos += take
			if len(s.metaBuf) == s.metaLen {
				s.state = stateData
			}

		case stateData:
			if _, err := s.inner.Write(buf[pos:]); err != nil {
				return pos, err
			}
			pos = total
		}
	}

	return total, nil
}

// TakeMetadataBytes returns the buffered metadata frame. It fails if the
// stream ended before the frame was complete.
func (s *MetadataSplitWriter) TakeMetadataBytes() ([]byte, error) {
	if s.state != stateData {
		return nil, errors.NewMetadataError("incomplete metadata in chunk", nil)
	}
	meta := s.metaBuf
	s.metaBuf = nil
	return meta, nil
}

// TeeWriter forwards writes to a file writer while feeding the same
// bytes into a hash, so unpack verifies the whole-file MD5 without a
// second read pass.
type TeeWriter struct {
	File   io.Writer
	Hasher hash.Hash
}

func (t *TeeWriter) Write(buf []byte) (int, error) {
	n, err := t.File.Write(buf)
	t.Hasher.Write(buf[:n])
	return n, err
}

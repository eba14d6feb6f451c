// Package codec implements the chunk file wire format: the plaintext
// header and the AES-256-CBC body cipher.
//
// Header layout:
//
//	magic "COKACENC"    8 bytes
//	version             4 bytes, little endian
//	salt                48 bytes, Reed-Solomon encoded (16 data)
//	iv                  48 bytes, Reed-Solomon encoded (16 data)
//	name length         2 bytes, little endian
//	advisory filename   up to 4096 bytes
//
// Everything after the header is ciphertext. The advisory filename exists
// only so a human can guess what a stray chunk belongs to; the
// authoritative name lives in the encrypted metadata.
package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"cokacdir/internal/encoding"
	"cokacdir/internal/errors"
)

const (
	// Version is the chunk format version this build reads and writes.
	Version uint32 = 2

	// MaxFilenameLen bounds the advisory filename field.
	MaxFilenameLen = 4096

	saltSize = 16
	ivSize   = 16
)

var magic = []byte("COKACENC")

// Header is the decoded plaintext prefix of a chunk file.
type Header struct {
	Salt     [saltSize]byte
	IV       [ivSize]byte
	Filename string
}

// WriteHeader writes the chunk header to w. The salt and IV are stored
// with Reed-Solomon parity so minor corruption does not make the chunk
// undecryptable.
func WriteHeader(w io.Writer, rs *encoding.RS16Codec, salt, iv [16]byte, filename string) error {
	if len(filename) > MaxFilenameLen {
		return errors.NewHeaderError("filename",
			fmt.Errorf("filename too long: %d bytes (max %d)", len(filename), MaxFilenameLen))
	}

	if _, err := w.Write(magic); err != nil {
		return errors.Wrap(err, "write magic")
	}

	var ver [4]byte
	binary.LittleEndian.PutUint32(ver[:], Version)
	if _, err := w.Write(ver[:]); err != nil {
		return errors.Wrap(err, "write version")
	}

	if _, err := w.Write(rs.Encode(salt[:])); err != nil {
		return errors.Wrap(err, "write salt")
	}
	if _, err := w.Write(rs.Encode(iv[:])); err != nil {
		return errors.Wrap(err, "write iv")
	}

	var nameLen [2]byte
	binary.LittleEndian.PutUint16(nameLen[:], uint16(len(filename)))
	if _, err := w.Write(nameLen[:]); err != nil {
		return errors.Wrap(err, "write name length")
	}
	if _, err := w.Write([]byte(filename)); err != nil {
		return errors.Wrap(err, "write filename")
	}
	return nil
}

// ReadHeader reads and validates a chunk header from r, repairing the
// salt and IV fields if they carry recoverable corruption.
func ReadHeader(r io.Reader, rs *encoding.RS16Codec) (*Header, error) {
	var m [8]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return nil, errors.NewHeaderError("magic", err)
	}
	for i := range magic {
		if m[i] != magic[i] {
			return nil, errors.ErrInvalidMagic
		}
	}

	var ver [4]byte
	if _, err := io.ReadFull(r, ver[:]); err != nil {
		return nil, errors.NewHeaderError("version", err)
	}
	if v := binary.LittleEndian.Uint32(ver[:]); v != Version {
		return nil, &errors.UnsupportedVersionError{Version: v}
	}

	var h Header

	var encoded [encoding.RS16EncodedSize]byte
	if _, err := io.ReadFull(r, encoded[:]); err != nil {
		return nil, errors.NewHeaderError("salt", err)
	}
	salt, err := rs.Decode(encoded[:])
	if err != nil {
		return nil, errors.NewHeaderError("salt", err)
	}
	copy(h.Salt[:], salt)

	if _, err := io.ReadFull(r, encoded[:]); err != nil {
		return nil, errors.NewHeaderError("iv", err)
	}
	iv, err := rs.Decode(encoded[:])
	if err != nil {
		return nil, errors.NewHeaderError("iv", err)
	}
	copy(h.IV[:], iv)

	var nameLen [2]byte
	if _, err := io.ReadFull(r, nameLen[:]); err != nil {
		return nil, errors.NewHeaderError("name length", err)
	}
	n := int(binary.LittleEndian.Uint16(nameLen[:]))
	if n > MaxFilenameLen {
		return nil, errors.NewHeaderError("name length",
			fmt.Errorf("filename length %d exceeds max %d", n, MaxFilenameLen))
	}

	name := make([]byte, n)
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, errors.NewHeaderError("filename", err)
	}
	if !utf8.Valid(name) {
		return nil, errors.NewHeaderError("filename", fmt.Errorf("invalid UTF-8"))
	}
	h.Filename = string(name)

	return &h, nil
}

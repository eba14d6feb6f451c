package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha512"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"cokacdir/internal/errors"
	"cokacdir/internal/util"
)

const (
	aesBlock = 16
	keyLen   = 32

	pbkdf2Iterations = 100_000
)

// GenerateSalt returns 16 random bytes for key derivation.
func GenerateSalt() ([16]byte, error) {
	var salt [16]byte
	_, err := rand.Read(salt[:])
	return salt, errors.Wrap(err, "generate salt")
}

// GenerateIV returns a random 16-byte CBC initialization vector.
func GenerateIV() ([16]byte, error) {
	var iv [16]byte
	_, err := rand.Read(iv[:])
	return iv, errors.Wrap(err, "generate iv")
}

// DeriveKey stretches the password into a 32-byte AES key with
// PBKDF2-HMAC-SHA512 at 100,000 iterations.
func DeriveKey(password []byte, salt [16]byte) [keyLen]byte {
	var key [keyLen]byte
	copy(key[:], pbkdf2.Key(password, salt[:], pbkdf2Iterations, keyLen, sha512.New))
	return key
}

// ChunkEncryptor encrypts a plaintext stream with AES-256-CBC, buffering
// partial blocks between Update calls. Finalize applies PKCS7 padding, so
// the ciphertext is always a whole number of blocks and at least one
// block long.
type ChunkEncryptor struct {
	mode    cipher.BlockMode
	pending []byte
	out     []byte
}

// NewChunkEncryptor builds an encryptor for one chunk body.
func NewChunkEncryptor(key [keyLen]byte, iv [16]byte) (*ChunkEncryptor, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, errors.Wrap(err, "init cipher")
	}
	return &ChunkEncryptor{
		mode:    cipher.NewCBCEncrypter(block, iv[:]),
		pending: make([]byte, 0, aesBlock),
	}, nil
}

// Update feeds plaintext and returns the encrypted full blocks produced so
// far. The returned slice is valid until the next Update or Finalize call
// and may be empty.
func (e *ChunkEncryptor) Update(data []byte) []byte {
	e.pending = append(e.pending, data...)

	processLen := (len(e.pending) / aesBlock) * aesBlock
	if processLen == 0 {
		return nil
	}

	e.out = append(e.out[:0], e.pending[:processLen]...)
	e.mode.CryptBlocks(e.out, e.out)

	remainder := copy(e.pending, e.pending[processLen:])
	e.pending = e.pending[:remainder]

	return e.out
}

// Finalize pads the buffered remainder with PKCS7 and returns the final
// encrypted block. A stream whose length is already a block multiple gets
// a full block of padding. The encryptor must not be used afterwards.
func (e *ChunkEncryptor) Finalize() []byte {
	padLen := aesBlock - len(e.pending)%aesBlock
	for i := 0; i < padLen; i++ {
		e.pending = append(e.pending, byte(padLen))
	}

	e.mode.CryptBlocks(e.pending, e.pending)
	return e.pending
}

// DecryptChunk reads ciphertext from r until EOF, decrypting with
// AES-256-CBC and writing the unpadded plaintext to w. It holds back one
// block at all times so PKCS7 padding can be stripped from the final block
// without knowing the stream length up front. Malformed ciphertext
// (empty, not a block multiple, or bad padding) yields ErrInvalidPadding.
func DecryptChunk(r io.Reader, w io.Writer, key [keyLen]byte, iv [16]byte) error {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return errors.Wrap(err, "init cipher")
	}
	mode := cipher.NewCBCDecrypter(block, iv[:])

	buf := util.ReadPool.Get()
	defer util.ReadPool.Put(buf)

	pending := make([]byte, 0, util.ReadBufSize+aesBlock)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)

			// Decrypt everything except a one-block holdback so the
			// final padded block is never flushed early.
			if len(pending) > aesBlock {
				processLen := ((len(pending) - aesBlock) / aesBlock) * aesBlock
				if processLen > 0 {
					mode.CryptBlocks(pending[:processLen], pending[:processLen])
					if _, err := w.Write(pending[:processLen]); err != nil {
						return errors.Wrap(err, "write plaintext")
					}
					remainder := copy(pending, pending[processLen:])
					pending = pending[:remainder]
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return errors.Wrap(readErr, "read ciphertext")
		}
	}

	if len(pending) != aesBlock {
		return errors.ErrInvalidPadding
	}
	mode.CryptBlocks(pending, pending)

	padLen := int(pending[aesBlock-1])
	if padLen == 0 || padLen > aesBlock {
		return errors.ErrInvalidPadding
	}
	for _, b := range pending[aesBlock-padLen:] {
		if int(b) != padLen {
			return errors.ErrInvalidPadding
		}
	}

	if _, err := w.Write(pending[:aesBlock-padLen]); err != nil {
		return errors.Wrap(err, "write plaintext")
	}
	return nil
}

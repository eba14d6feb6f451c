// Package encoding provides the Reed-Solomon error correction used by the
// chunk header. The salt and IV are the only bytes that must survive for a
// chunk to remain decryptable, so they are stored with 3x redundancy:
// RS16 encodes 16 data bytes into 48 total bytes and can repair multiple
// corrupted bytes per field on read.
package encoding

import (
	"errors"

	"github.com/Picocrypt/infectious"
)

// RS16 field sizes.
const (
	RS16DataSize    = 16 // salt or IV
	RS16EncodedSize = 48 // 16 data + 32 parity
)

// RS16Codec wraps the pre-initialized RS(16,48) forward error correction
// codec. Create it once and reuse it for every header read and write.
type RS16Codec struct {
	fec *infectious.FEC
}

// NewRS16Codec initializes the RS(16,48) codec.
func NewRS16Codec() (*RS16Codec, error) {
	fec, err := infectious.NewFEC(RS16DataSize, RS16EncodedSize)
	if err != nil {
		return nil, errors.New("failed to initialize Reed-Solomon codec")
	}
	return &RS16Codec{fec: fec}, nil
}

// Encode applies Reed-Solomon encoding to a 16-byte field.
// Returns the 48-byte encoded form with parity appended.
func (c *RS16Codec) Encode(data []byte) []byte {
	res := make([]byte, c.fec.Total())
	if err := c.fec.Encode(data, func(s infectious.Share) {
		res[s.Number] = s.Data[0]
	}); err != nil {
		// Only possible with a wrong input size, which is a programming error.
		panic("rs.Encode failed: " + err.Error())
	}
	return res
}

// Decode repairs and decodes a 48-byte encoded field back to 16 bytes.
// If too many bytes are corrupted to recover, it returns the unrepaired
// leading data bytes along with the error so callers can decide whether
// to continue.
func (c *RS16Codec) Decode(data []byte) ([]byte, error) {
	if len(data) != c.fec.Total() {
		return nil, errors.New("encoded field has wrong length")
	}

	shares := make([]infectious.Share, c.fec.Total())
	for i := range shares {
		shares[i].Number = i
		shares[i].Data = append(shares[i].Data, data[i])
	}

	res, err := c.fec.Decode(nil, shares)
	if err != nil {
		return data[:RS16DataSize], err
	}
	return res, nil
}

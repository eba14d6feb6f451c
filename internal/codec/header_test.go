package codec

import (
	"bytes"
	"strings"
	"testing"

	"cokacdir/internal/encoding"
	"cokacdir/internal/errors"
)

func mustRS(t testing.TB) *encoding.RS16Codec {
	t.Helper()
	rs, err := encoding.NewRS16Codec()
	if err != nil {
		t.Fatalf("NewRS16Codec: %v", err)
	}
	return rs
}

func sampleHeader() ([16]byte, [16]byte) {
	var salt, iv [16]byte
	for i := range salt {
		salt[i] = byte(i)
		iv[i] = byte(0xf0 - i)
	}
	return salt, iv
}

func TestHeaderRoundTrip(t *testing.T) {
	rs := mustRS(t)
	salt, iv := sampleHeader()

	var buf bytes.Buffer
	if err := WriteHeader(&buf, rs, salt, iv, "report.pdf"); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	h, err := ReadHeader(&buf, rs)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.Salt != salt {
		t.Errorf("salt mismatch: %x != %x", h.Salt, salt)
	}
	if h.IV != iv {
		t.Errorf("iv mismatch: %x != %x", h.IV, iv)
	}
	if h.Filename != "report.pdf" {
		t.Errorf("filename = %q", h.Filename)
	}
}

func TestHeaderEmptyFilename(t *testing.T) {
	rs := mustRS(t)
	salt, iv := sampleHeader()

	var buf bytes.Buffer
	if err := WriteHeader(&buf, rs, salt, iv, ""); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	h, err := ReadHeader(&buf, rs)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.Filename != "" {
		t.Errorf("filename = %q, want empty", h.Filename)
	}
}

func TestHeaderRepairsSaltCorruption(t *testing.T) {
	rs := mustRS(t)
	salt, iv := sampleHeader()

	var buf bytes.Buffer
	if err := WriteHeader(&buf, rs, salt, iv, "x"); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()

	// Flip bytes inside the RS-encoded salt field (offset 12..60).
	raw[14] ^= 0xff
	raw[30] ^= 0xff

	h, err := ReadHeader(bytes.NewReader(raw), rs)
	if err != nil {
		t.Fatalf("ReadHeader with recoverable corruption: %v", err)
	}
	if h.Salt != salt {
		t.Errorf("salt not repaired: %x != %x", h.Salt, salt)
	}
}

func TestHeaderBadMagic(t *testing.T) {
	rs := mustRS(t)
	salt, iv := sampleHeader()

	var buf bytes.Buffer
	if err := WriteHeader(&buf, rs, salt, iv, "x"); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()
	raw[0] = 'X'

	_, err := ReadHeader(bytes.NewReader(raw), rs)
	if !errors.Is(err, errors.ErrInvalidMagic) {
		t.Errorf("got %v, want ErrInvalidMagic", err)
	}
}

func TestHeaderUnsupportedVersion(t *testing.T) {
	rs := mustRS(t)
	salt, iv := sampleHeader()

	var buf bytes.Buffer
	if err := WriteHeader(&buf, rs, salt, iv, "x"); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()
	raw[8] = 99 // version field

	var verr *errors.UnsupportedVersionError
	_, err := ReadHeader(bytes.NewReader(raw), rs)
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want UnsupportedVersionError", err)
	}
	if verr.Version != 99 {
		t.Errorf("reported version = %d, want 99", verr.Version)
	}
}

func TestHeaderTruncated(t *testing.T) {
	rs := mustRS(t)
	salt, iv := sampleHeader()

	var buf bytes.Buffer
	if err := WriteHeader(&buf, rs, salt, iv, "document.txt"); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()

	for _, cut := range []int{0, 5, 10, 40, 100, len(raw) - 1} {
		if _, err := ReadHeader(bytes.NewReader(raw[:cut]), rs); err == nil {
			t.Errorf("truncation at %d accepted", cut)
		}
	}
}

func TestHeaderFilenameTooLong(t *testing.T) {
	rs := mustRS(t)
	salt, iv := sampleHeader()

	var buf bytes.Buffer
	err := WriteHeader(&buf, rs, salt, iv, strings.Repeat("a", MaxFilenameLen+1))
	if err == nil {
		t.Error("oversized filename accepted")
	}

	buf.Reset()
	if err := WriteHeader(&buf, rs, salt, iv, strings.Repeat("a", MaxFilenameLen)); err != nil {
		t.Errorf("filename at the limit rejected: %v", err)
	}
}

func FuzzReadHeader(f *testing.F) {
	rs, err := encoding.NewRS16Codec()
	if err != nil {
		f.Fatal(err)
	}
	salt, iv := sampleHeader()
	var buf bytes.Buffer
	if err := WriteHeader(&buf, rs, salt, iv, "seed.bin"); err != nil {
		f.Fatal(err)
	}
	f.Add(buf.Bytes())
	f.Add([]byte("COKACENC"))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		// Must never panic on arbitrary input.
		h, err := ReadHeader(bytes.NewReader(data), rs)
		if err == nil && len(h.Filename) > MaxFilenameLen {
			t.Errorf("accepted oversized filename: %d bytes", len(h.Filename))
		}
	})
}

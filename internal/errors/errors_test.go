package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelIdentity(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrInvalidPadding)
	if !Is(wrapped, ErrInvalidPadding) {
		t.Error("wrapped sentinel not matched by Is")
	}
	if Is(wrapped, ErrCancelled) {
		t.Error("unrelated sentinel matched")
	}
}

func TestMd5MismatchError(t *testing.T) {
	err := &Md5MismatchError{Expected: "abc", Actual: "def"}
	msg := err.Error()
	if !strings.Contains(msg, "abc") || !strings.Contains(msg, "def") {
		t.Errorf("message missing hashes: %q", msg)
	}

	var target *Md5MismatchError
	if !As(fmt.Errorf("unpack: %w", err), &target) {
		t.Error("As failed to extract Md5MismatchError")
	}
	if target.Expected != "abc" {
		t.Errorf("Expected = %q, want abc", target.Expected)
	}
}

func TestMissingChunkError(t *testing.T) {
	err := &MissingChunkError{Expected: "aaab"}
	if !strings.Contains(err.Error(), "aaab") {
		t.Errorf("message missing seq label: %q", err.Error())
	}
}

func TestSeqOverflowError(t *testing.T) {
	err := &SeqOverflowError{Index: 456976}
	if !strings.Contains(err.Error(), "456976") {
		t.Errorf("message missing index: %q", err.Error())
	}
}

func TestMetadataErrorUnwrap(t *testing.T) {
	cause := stderrors.New("unexpected end of JSON input")
	err := NewMetadataError("chunk 2", cause)
	if !stderrors.Is(err, cause) {
		t.Error("MetadataError did not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "chunk 2") {
		t.Errorf("message missing context: %q", err.Error())
	}
}

func TestFileErrorUnwrap(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := NewFileError("open", "/tmp/x", cause)
	if !stderrors.Is(err, cause) {
		t.Error("FileError did not unwrap to its cause")
	}
	want := "open /tmp/x: permission denied"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestHeaderError(t *testing.T) {
	err := NewHeaderError("salt", ErrInvalidMagic)
	if !Is(err, ErrInvalidMagic) {
		t.Error("HeaderError did not unwrap to sentinel")
	}
}

func TestIsCorrupt(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrInvalidPadding, true},
		{fmt.Errorf("chunk: %w", ErrInvalidPadding), true},
		{&Md5MismatchError{Expected: "a", Actual: "b"}, true},
		{NewMetadataError("bad json", nil), true},
		{ErrCancelled, false},
		{stderrors.New("plain"), false},
	}
	for _, tt := range tests {
		if got := IsCorrupt(tt.err); got != tt.want {
			t.Errorf("IsCorrupt(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestIsCancelled(t *testing.T) {
	if !IsCancelled(fmt.Errorf("sweep: %w", ErrCancelled)) {
		t.Error("wrapped cancellation not detected")
	}
}

// Package errors provides typed errors for cokacdir pack/unpack operations.
// This enables callers to use errors.Is() and errors.As() for specific
// error handling.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
// Use errors.Is(err, errors.ErrCancelled) to check for specific errors.
var (
	// Operation errors
	ErrCancelled = errors.New("operation cancelled")

	// Chunk format errors
	ErrInvalidMagic   = errors.New("invalid magic bytes in chunk header")
	ErrInvalidPadding = errors.New("invalid PKCS7 padding")

	// Key store errors
	ErrEmptyKeyFile = errors.New("key file is empty")

	// Group errors
	ErrNoEncFiles = errors.New("no encrypted chunk files found for group")
)

// UnsupportedVersionError reports a chunk header with a format version
// this build cannot read.
type UnsupportedVersionError struct {
	Version uint32
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported chunk format version: %d", e.Version)
}

// Md5MismatchError reports a whole-file integrity failure after unpack.
type Md5MismatchError struct {
	Expected string
	Actual   string
}

func (e *Md5MismatchError) Error() string {
	return fmt.Sprintf("MD5 mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// MissingChunkError reports a gap in a chunk group's sequence.
// Expected is the sequence label that should have been present.
type MissingChunkError struct {
	Expected string
}

func (e *MissingChunkError) Error() string {
	return fmt.Sprintf("missing chunk in sequence: expected seq %s but not found", e.Expected)
}

// SeqOverflowError reports a chunk index beyond the four-letter label space.
type SeqOverflowError struct {
	Index int
}

func (e *SeqOverflowError) Error() string {
	return fmt.Sprintf("sequence index %d exceeds maximum (456975)", e.Index)
}

// MetadataError reports malformed, incomplete, or inconsistent chunk
// metadata. It is fatal for the affected group only.
type MetadataError struct {
	Message string
	Err     error
}

func (e *MetadataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("metadata parse error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("metadata parse error: %s", e.Message)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

// NewMetadataError creates a MetadataError with an optional cause.
func NewMetadataError(message string, err error) *MetadataError {
	return &MetadataError{Message: message, Err: err}
}

// FileError represents an error during file operations.
type FileError struct {
	Op   string // Operation: "open", "read", "write", "stat", "create", "rename"
	Path string // File path
	Err  error  // Underlying error
}

func (e *FileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s failed", e.Op, e.Path)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// NewFileError creates a new FileError.
func NewFileError(op, path string, err error) *FileError {
	return &FileError{Op: op, Path: path, Err: err}
}

// HeaderError represents an error in chunk header parsing or validation.
type HeaderError struct {
	Field string // Header field that caused the error
	Err   error  // Underlying error
}

func (e *HeaderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("header %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("header %s invalid", e.Field)
}

func (e *HeaderError) Unwrap() error {
	return e.Err
}

// NewHeaderError creates a new HeaderError.
func NewHeaderError(field string, err error) *HeaderError {
	return &HeaderError{Field: field, Err: err}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsCancelled checks if the error indicates a cancelled operation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsCorrupt checks if the error indicates chunk corruption: bad padding,
// a failed integrity check, or unreadable metadata.
func IsCorrupt(err error) bool {
	var md5Err *Md5MismatchError
	var metaErr *MetadataError
	return errors.Is(err, ErrInvalidPadding) ||
		errors.As(err, &md5Err) ||
		errors.As(err, &metaErr)
}

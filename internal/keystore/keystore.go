// Package keystore manages the encryption key file under the user's home
// directory. The key file holds 4096 random bytes base64-encoded; the
// encoded text itself (not the decoded bytes) is used as the password.
package keystore

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"path/filepath"

	"cokacdir/internal/errors"
	"cokacdir/internal/log"
)

const (
	credentialDir = ".cokacdir/credential"
	keyFileName   = "cokacenc.key"
	rawKeySize    = 4096
)

// DefaultKeyPath returns the key file location under the user's home
// directory, without creating anything.
func DefaultKeyPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "cannot determine home directory")
	}
	return filepath.Join(home, credentialDir, keyFileName), nil
}

// EnsureKey creates the credential directory and key file if they do not
// exist and returns the key file path. An existing key file is never
// overwritten. The directory is created with mode 0700 and the key file
// with mode 0600.
func EnsureKey() (string, error) {
	keyPath, err := DefaultKeyPath()
	if err != nil {
		return "", err
	}
	return EnsureKeyAt(keyPath)
}

// EnsureKeyAt is EnsureKey for an explicit key file location.
func EnsureKeyAt(keyPath string) (string, error) {
	dir := filepath.Dir(keyPath)
	if _, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return "", errors.NewFileError("stat", dir, err)
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", errors.NewFileError("create", dir, err)
		}
	}

	if _, err := os.Stat(keyPath); err == nil {
		return keyPath, nil
	}

	raw := make([]byte, rawKeySize)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "failed to generate key material")
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	if err := os.WriteFile(keyPath, []byte(encoded), 0o600); err != nil {
		return "", errors.NewFileError("write", keyPath, err)
	}
	log.Info("generated new key file", log.String("path", keyPath))
	return keyPath, nil
}

// LoadKey reads the key file and returns the password bytes with trailing
// ASCII whitespace trimmed. Returns ErrEmptyKeyFile if nothing remains.
func LoadKey(keyPath string) ([]byte, error) {
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, errors.NewFileError("read", keyPath, err)
	}

	end := len(data)
	for end > 0 && isASCIIWhitespace(data[end-1]) {
		end--
	}
	if end == 0 {
		return nil, errors.ErrEmptyKeyFile
	}
	return data[:end], nil
}

func isASCIIWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

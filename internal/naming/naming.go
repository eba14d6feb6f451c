// Package naming implements the chunk file naming scheme:
//
//	[<key_prefix>_]<group_id>_<seq>.cokacenc
//
// where group_id is 16 lowercase hex characters, seq is a four-letter
// base-26 label (aaaa..zzzz), and key_prefix is an optional short
// alphanumeric hint derived from the password. Filenames are parsed from
// the right so a prefix containing underscores never shifts the fields
// that matter.
package naming

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"

	"cokacdir/internal/errors"
)

// Ext is the chunk file extension.
const Ext = ".cokacenc"

// MaxSeqIndex is the largest index representable by a four-letter label.
const MaxSeqIndex = 26*26*26*26 - 1 // "zzzz"

// GenerateGroupID returns a random 16-character lowercase hex group ID.
func GenerateGroupID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("naming: cannot read random bytes: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}

// SeqLabel converts a chunk index to its four-letter label:
// 0 -> "aaaa", 1 -> "aaab", 456975 -> "zzzz".
func SeqLabel(index int) (string, error) {
	if index < 0 || index > MaxSeqIndex {
		return "", &errors.SeqOverflowError{Index: index}
	}
	return string([]byte{
		'a' + byte(index/(26*26*26)),
		'a' + byte((index/(26*26))%26),
		'a' + byte((index/26)%26),
		'a' + byte(index%26),
	}), nil
}

// ParseSeqLabel converts a four-letter label back to its index.
// Returns -1 if the label is not exactly four lowercase letters.
func ParseSeqLabel(s string) int {
	if len(s) != 4 {
		return -1
	}
	index := 0
	for i := 0; i < 4; i++ {
		c := s[i]
		if c < 'a' || c > 'z' {
			return -1
		}
		index = index*26 + int(c-'a')
	}
	return index
}

// KeyPrefix derives the filename hint from a password: the ASCII
// alphanumeric characters among its first six bytes. May be empty.
func KeyPrefix(password []byte) string {
	n := len(password)
	if n > 6 {
		n = 6
	}
	out := make([]byte, 0, n)
	for _, b := range password[:n] {
		if isAlphanumeric(b) {
			out = append(out, b)
		}
	}
	return string(out)
}

func isAlphanumeric(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// ChunkFilename builds the full path for a chunk file in dir.
func ChunkFilename(dir, keyPrefix, groupID string, seq int) (string, error) {
	label, err := SeqLabel(seq)
	if err != nil {
		return "", err
	}
	if keyPrefix == "" {
		return filepath.Join(dir, groupID+"_"+label+Ext), nil
	}
	return filepath.Join(dir, keyPrefix+"_"+groupID+"_"+label+Ext), nil
}

// EncFileInfo is the information recovered from a chunk filename.
type EncFileInfo struct {
	GroupID  string
	SeqIndex int
	Path     string
}

// ParseEncFilename parses a chunk file path. It returns nil for anything
// that does not match the naming scheme; such files are simply ignored
// during scans.
func ParseEncFilename(path string) *EncFileInfo {
	filename := filepath.Base(path)
	if len(filename) <= len(Ext) || filename[len(filename)-len(Ext):] != Ext {
		return nil
	}
	base := filename[:len(filename)-len(Ext)]

	// group_id(16) + '_' + seq(4)
	if len(base) < 21 {
		return nil
	}

	seqIndex := ParseSeqLabel(base[len(base)-4:])
	if seqIndex < 0 {
		return nil
	}

	rest := base[:len(base)-4]
	if rest[len(rest)-1] != '_' {
		return nil
	}
	rest = rest[:len(rest)-1]

	if len(rest) < 16 {
		return nil
	}
	groupID := rest[len(rest)-16:]
	for i := 0; i < len(groupID); i++ {
		if !isHexDigit(groupID[i]) {
			return nil
		}
	}

	// Anything left is the key prefix plus its trailing separator.
	prefixPart := rest[:len(rest)-16]
	if prefixPart != "" {
		if prefixPart[len(prefixPart)-1] != '_' {
			return nil
		}
		kp := prefixPart[:len(prefixPart)-1]
		if kp == "" {
			return nil
		}
		for i := 0; i < len(kp); i++ {
			if !isAlphanumeric(kp[i]) {
				return nil
			}
		}
	}

	return &EncFileInfo{GroupID: groupID, SeqIndex: seqIndex, Path: path}
}

func isHexDigit(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'f' || b >= 'A' && b <= 'F'
}

// GroupEncFiles scans dir (non-recursively) for chunk files and groups
// them by group ID, each group sorted by sequence index.
func GroupEncFiles(dir string) (map[string][]EncFileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewFileError("read", dir, err)
	}

	groups := make(map[string][]EncFileInfo)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if info := ParseEncFilename(filepath.Join(dir, entry.Name())); info != nil {
			groups[info.GroupID] = append(groups[info.GroupID], *info)
		}
	}

	for _, files := range groups {
		sort.Slice(files, func(i, j int) bool {
			return files[i].SeqIndex < files[j].SeqIndex
		})
	}
	return groups, nil
}

// SortedGroupIDs returns the group IDs of a scan in lexicographic order.
func SortedGroupIDs(groups map[string][]EncFileInfo) []string {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

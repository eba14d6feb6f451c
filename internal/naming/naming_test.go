package naming

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSeqLabel(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "aaaa"},
		{1, "aaab"},
		{26, "aaba"},
		{456975, "zzzz"},
	}
	for _, tt := range tests {
		got, err := SeqLabel(tt.index)
		if err != nil {
			t.Errorf("SeqLabel(%d): %v", tt.index, err)
			continue
		}
		if got != tt.want {
			t.Errorf("SeqLabel(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}

	if _, err := SeqLabel(456976); err == nil {
		t.Error("SeqLabel(456976) should overflow")
	}
	if _, err := SeqLabel(-1); err == nil {
		t.Error("SeqLabel(-1) should be rejected")
	}
}

func TestParseSeqLabelRoundTrip(t *testing.T) {
	for _, index := range []int{0, 1, 25, 26, 675, 676, 456975} {
		label, err := SeqLabel(index)
		if err != nil {
			t.Fatalf("SeqLabel(%d): %v", index, err)
		}
		if got := ParseSeqLabel(label); got != index {
			t.Errorf("ParseSeqLabel(%q) = %d, want %d", label, got, index)
		}
	}

	for _, bad := range []string{"", "aaa", "aaaaa", "aaA0", "ab-d"} {
		if got := ParseSeqLabel(bad); got != -1 {
			t.Errorf("ParseSeqLabel(%q) = %d, want -1", bad, got)
		}
	}
}

func TestGenerateGroupID(t *testing.T) {
	gid := GenerateGroupID()
	if len(gid) != 16 {
		t.Fatalf("group ID length = %d, want 16", len(gid))
	}
	for i := 0; i < len(gid); i++ {
		if !isHexDigit(gid[i]) {
			t.Errorf("group ID has non-hex character %q", gid[i])
		}
	}
	if GenerateGroupID() == gid {
		t.Error("two generated group IDs collided")
	}
}

func TestKeyPrefix(t *testing.T) {
	tests := []struct {
		password string
		want     string
	}{
		{"Ab3+/Z", "Ab3Z"},
		{"Hello9", "Hello9"},
		{"!@#$%^", ""},
		{"aB", "aB"},
		{"abcdefghij", "abcdef"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := KeyPrefix([]byte(tt.password)); got != tt.want {
			t.Errorf("KeyPrefix(%q) = %q, want %q", tt.password, got, tt.want)
		}
	}
}

func TestChunkFilename(t *testing.T) {
	path, err := ChunkFilename("/tmp", "Ab3Z", "a1b2c3d4e5f6a7b8", 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := filepath.Base(path); got != "Ab3Z_a1b2c3d4e5f6a7b8_aaaa.cokacenc" {
		t.Errorf("with prefix: %q", got)
	}

	path, err = ChunkFilename("/tmp", "", "a1b2c3d4e5f6a7b8", 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := filepath.Base(path); got != "a1b2c3d4e5f6a7b8_aaaa.cokacenc" {
		t.Errorf("without prefix: %q", got)
	}

	if _, err := ChunkFilename("/tmp", "", "a1b2c3d4e5f6a7b8", 456976); err == nil {
		t.Error("overflowing seq accepted")
	}
}

func TestParseEncFilename(t *testing.T) {
	info := ParseEncFilename("/tmp/a1b2c3d4e5f6a7b8_aaab.cokacenc")
	if info == nil {
		t.Fatal("valid filename without prefix rejected")
	}
	if info.GroupID != "a1b2c3d4e5f6a7b8" || info.SeqIndex != 1 {
		t.Errorf("got group %q seq %d", info.GroupID, info.SeqIndex)
	}

	info = ParseEncFilename("/tmp/Ab3Z_a1b2c3d4e5f6a7b8_aaaa.cokacenc")
	if info == nil {
		t.Fatal("valid filename with prefix rejected")
	}
	if info.GroupID != "a1b2c3d4e5f6a7b8" || info.SeqIndex != 0 {
		t.Errorf("got group %q seq %d", info.GroupID, info.SeqIndex)
	}

	info = ParseEncFilename("/tmp/Hello9_a1b2c3d4e5f6a7b8_abcd.cokacenc")
	if info == nil {
		t.Fatal("valid filename with long prefix rejected")
	}
	if info.SeqIndex != 731 {
		t.Errorf("seq for abcd = %d, want 731", info.SeqIndex)
	}
}

func TestParseEncFilenameInvalid(t *testing.T) {
	invalid := []string{
		"/tmp/abc.cokacenc",                        // too short
		"/tmp/a1b2c3d4e5f6a7b8aaaa.cokacenc",       // no separator before seq
		"/tmp/a1b2c3d4e5f6a7b8_aaaa.txt",           // wrong extension
		"/tmp/g1b2c3d4e5f6a7b8_aaaa.cokacenc",      // non-hex group ID
		"/tmp/_a1b2c3d4e5f6a7b8_aaaa.cokacenc",     // empty key prefix
		"/tmp/a+b_a1b2c3d4e5f6a7b8_aaaa.cokacenc",  // non-alphanumeric prefix
		"/tmp/a1b2c3d4e5f6a7b8_aaAa.cokacenc",      // uppercase seq
		"/tmp/.cokacenc",                           // extension only
	}
	for _, path := range invalid {
		if info := ParseEncFilename(path); info != nil {
			t.Errorf("ParseEncFilename(%q) = %+v, want nil", path, info)
		}
	}
}

func TestGroupEncFiles(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"a1b2c3d4e5f6a7b8_aaab.cokacenc",
		"a1b2c3d4e5f6a7b8_aaaa.cokacenc",
		"Ab3Z_ffffffffffffffff_aaaa.cokacenc",
		"notes.txt",
		"broken_name.cokacenc",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	groups, err := GroupEncFiles(dir)
	if err != nil {
		t.Fatalf("GroupEncFiles: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	g := groups["a1b2c3d4e5f6a7b8"]
	if len(g) != 2 {
		t.Fatalf("group a1b2... has %d files, want 2", len(g))
	}
	if g[0].SeqIndex != 0 || g[1].SeqIndex != 1 {
		t.Errorf("group not sorted by seq: %d, %d", g[0].SeqIndex, g[1].SeqIndex)
	}

	ids := SortedGroupIDs(groups)
	if len(ids) != 2 || ids[0] != "a1b2c3d4e5f6a7b8" || ids[1] != "ffffffffffffffff" {
		t.Errorf("SortedGroupIDs = %v", ids)
	}
}

func FuzzParseEncFilename(f *testing.F) {
	f.Add("a1b2c3d4e5f6a7b8_aaaa.cokacenc")
	f.Add("Ab3Z_a1b2c3d4e5f6a7b8_zzzz.cokacenc")
	f.Add("_a1b2c3d4e5f6a7b8_aaaa.cokacenc")
	f.Add("x")
	f.Fuzz(func(t *testing.T, name string) {
		info := ParseEncFilename(name)
		if info == nil {
			return
		}
		if len(info.GroupID) != 16 {
			t.Errorf("parsed group ID %q has wrong length", info.GroupID)
		}
		if info.SeqIndex < 0 || info.SeqIndex > MaxSeqIndex {
			t.Errorf("parsed seq index %d out of range", info.SeqIndex)
		}
	})
}

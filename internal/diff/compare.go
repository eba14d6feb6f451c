package diff

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cokacdir/internal/util"
)

// readDirNames lists the entry names of dir, empty on any error.
// Unreadable directories simply contribute nothing to the comparison.
func readDirNames(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

// makeFileInfo stats path without following symlinks first, then follows
// them for size and directory checks. A broken symlink keeps its link
// metadata. Returns nil if the path cannot be stat'd at all.
func makeFileInfo(path, name string) *FileInfo {
	lstat, err := os.Lstat(path)
	if err != nil {
		return nil
	}
	isSymlink := lstat.Mode()&os.ModeSymlink != 0

	actual := lstat
	if isSymlink {
		if followed, err := os.Stat(path); err == nil {
			actual = followed
		}
	}

	isDirectory := actual.IsDir()
	var size int64
	if !isDirectory {
		size = actual.Size()
	}

	return &FileInfo{
		Name:        name,
		Size:        size,
		Modified:    lstat.ModTime(),
		IsDirectory: isDirectory,
		IsSymlink:   isSymlink,
		FullPath:    path,
	}
}

// CompareFiles reports whether two same-named files are equal under the
// given method. Two symlinks compare by target path regardless of method.
func CompareFiles(left, right *FileInfo, method CompareMethod) bool {
	if left.IsSymlink && right.IsSymlink {
		lt, lerr := os.Readlink(left.FullPath)
		rt, rerr := os.Readlink(right.FullPath)
		return lerr == nil && rerr == nil && lt == rt
	}

	switch method {
	case ModifiedTime:
		// Second granularity so filesystems with coarser timestamps
		// still match.
		return left.Modified.Unix() == right.Modified.Unix()
	case ContentAndTime:
		return left.Modified.Unix() == right.Modified.Unix() &&
			left.Size == right.Size &&
			byteCompare(left.FullPath, right.FullPath)
	default:
		if left.Size != right.Size {
			return false
		}
		return byteCompare(left.FullPath, right.FullPath)
	}
}

// byteCompare reads both files in lockstep and reports exact equality.
// Any read error counts as a difference.
func byteCompare(pathA, pathB string) bool {
	fa, err := os.Open(pathA)
	if err != nil {
		return false
	}
	defer fa.Close()
	fb, err := os.Open(pathB)
	if err != nil {
		return false
	}
	defer fb.Close()

	bufA := util.ComparePool.Get()
	defer util.ComparePool.Put(bufA)
	bufB := util.ComparePool.Get()
	defer util.ComparePool.Put(bufB)

	for {
		na := readExactOrEOF(fa, bufA)
		nb := readExactOrEOF(fb, bufB)
		if na != nb {
			return false
		}
		if na == 0 {
			return true
		}
		if !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false
		}
	}
}

// readExactOrEOF fills buf, stopping short only at EOF. Errors read as
// zero bytes, which makes the files compare unequal.
func readExactOrEOF(f *os.File, buf []byte) int {
	filled := 0
	for filled < len(buf) {
		n, err := f.Read(buf[filled:])
		filled += n
		if err != nil {
			if n == 0 && filled == 0 {
				return 0
			}
			break
		}
	}
	return filled
}

// sortNames orders a merged name list: directories first, then by the
// sort key, consulting whichever side has the entry (left preferred).
func sortNames(names []string, leftDir, rightDir string, leftSet, rightSet map[string]bool, sortBy SortBy, order SortOrder) {
	sort.SliceStable(names, func(i, j int) bool {
		return compareNames(names[i], names[j], leftDir, rightDir, leftSet, rightSet, sortBy, order)
	})
}

func compareNames(a, b string, leftDir, rightDir string, leftSet, rightSet map[string]bool, sortBy SortBy, order SortOrder) bool {
	aDir := isNameDir(a, leftDir, rightDir, leftSet, rightSet)
	bDir := isNameDir(b, leftDir, rightDir, leftSet, rightSet)
	if aDir != bDir {
		return aDir
	}

	var less, eq bool
	switch sortBy {
	case SortBySize:
		as := nameSize(a, leftDir, rightDir, leftSet, rightSet)
		bs := nameSize(b, leftDir, rightDir, leftSet, rightSet)
		less, eq = as < bs, as == bs
	case SortByModified:
		am := nameModified(a, leftDir, rightDir, leftSet, rightSet)
		bm := nameModified(b, leftDir, rightDir, leftSet, rightSet)
		less, eq = am < bm, am == bm
	case SortByType:
		ae, be := extensionOf(a), extensionOf(b)
		if ae != be {
			less, eq = ae < be, false
		} else {
			al, bl := strings.ToLower(a), strings.ToLower(b)
			less, eq = al < bl, al == bl
		}
	default:
		al, bl := strings.ToLower(a), strings.ToLower(b)
		less, eq = al < bl, al == bl
	}
	if eq {
		return false
	}
	if order == Desc {
		return !less
	}
	return less
}

func isNameDir(name, leftDir, rightDir string, leftSet, rightSet map[string]bool) bool {
	if leftSet[name] {
		if stat, err := os.Stat(filepath.Join(leftDir, name)); err == nil && stat.IsDir() {
			return true
		}
	}
	if rightSet[name] {
		if stat, err := os.Stat(filepath.Join(rightDir, name)); err == nil && stat.IsDir() {
			return true
		}
	}
	return false
}

func nameSize(name, leftDir, rightDir string, leftSet, rightSet map[string]bool) int64 {
	if leftSet[name] {
		if stat, err := os.Stat(filepath.Join(leftDir, name)); err == nil {
			return stat.Size()
		}
	}
	if rightSet[name] {
		if stat, err := os.Stat(filepath.Join(rightDir, name)); err == nil {
			return stat.Size()
		}
	}
	return 0
}

func nameModified(name, leftDir, rightDir string, leftSet, rightSet map[string]bool) int64 {
	if leftSet[name] {
		if stat, err := os.Stat(filepath.Join(leftDir, name)); err == nil {
			return stat.ModTime().UnixNano()
		}
	}
	if rightSet[name] {
		if stat, err := os.Stat(filepath.Join(rightDir, name)); err == nil {
			return stat.ModTime().UnixNano()
		}
	}
	return 0
}

// sortNamesSingleDir orders names within a directory that exists on only
// one side.
func sortNamesSingleDir(names []string, dir string, sortBy SortBy, order SortOrder) {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	sortNames(names, dir, dir, set, map[string]bool{}, sortBy, order)
}

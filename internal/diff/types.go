// Package diff implements recursive directory comparison: an
// asynchronous engine that walks two trees and classifies every entry,
// and a view model over the flattened result supporting filtering,
// sorting, collapsing and cursor movement.
package diff

import (
	"path/filepath"
	"strings"
	"time"
)

// Status classifies one entry of the comparison.
type Status int

const (
	Same Status = iota
	Modified
	LeftOnly
	RightOnly
	DirModified
	DirSame
)

func (s Status) String() string {
	switch s {
	case Same:
		return "Same"
	case Modified:
		return "Modified"
	case LeftOnly:
		return "LeftOnly"
	case RightOnly:
		return "RightOnly"
	case DirModified:
		return "DirModified"
	case DirSame:
		return "DirSame"
	}
	return "Unknown"
}

// differs reports whether the status counts as a difference for
// filtering and for directory roll-up.
func (s Status) differs() bool {
	switch s {
	case Modified, LeftOnly, RightOnly, DirModified:
		return true
	}
	return false
}

// FileInfo is the snapshot of one side of an entry. A nil *FileInfo
// means the side could not be read or does not exist.
type FileInfo struct {
	Name        string
	Size        int64
	Modified    time.Time
	IsDirectory bool
	IsSymlink   bool
	FullPath    string
}

// Entry is one row of the flattened comparison tree, in DFS order.
type Entry struct {
	RelativePath string
	Left         *FileInfo
	Right        *FileInfo
	Status       Status
	IsDirectory  bool
	Depth        int
}

// Filter selects which entries the view shows.
type Filter int

const (
	FilterAll Filter = iota
	FilterDifferentOnly
	FilterLeftOnly
	FilterRightOnly
)

// Next cycles to the following filter.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterDifferentOnly
	case FilterDifferentOnly:
		return FilterLeftOnly
	case FilterLeftOnly:
		return FilterRightOnly
	default:
		return FilterAll
	}
}

func (f Filter) String() string {
	switch f {
	case FilterAll:
		return "All"
	case FilterDifferentOnly:
		return "Different Only"
	case FilterLeftOnly:
		return "Left Only"
	case FilterRightOnly:
		return "Right Only"
	}
	return "All"
}

// CompareMethod decides how two same-named files are judged equal.
type CompareMethod int

const (
	Content CompareMethod = iota
	ModifiedTime
	ContentAndTime
)

func (m CompareMethod) String() string {
	switch m {
	case Content:
		return "Content"
	case ModifiedTime:
		return "Modified Time"
	case ContentAndTime:
		return "Content + Time"
	}
	return "Content"
}

// ParseCompareMethod parses a CLI flag value leniently; unknown values
// fall back to Content.
func ParseCompareMethod(s string) CompareMethod {
	switch strings.ToLower(s) {
	case "content":
		return Content
	case "time", "modified", "modifiedtime", "modified_time":
		return ModifiedTime
	case "contentandtime", "content_and_time", "contenttime":
		return ContentAndTime
	}
	return Content
}

// SortBy selects the sort key inside each directory level.
type SortBy int

const (
	SortByName SortBy = iota
	SortBySize
	SortByModified
	SortByType
)

// ParseSortBy parses a CLI flag value; unknown values fall back to name.
func ParseSortBy(s string) SortBy {
	switch strings.ToLower(s) {
	case "name":
		return SortByName
	case "size":
		return SortBySize
	case "modified", "time", "mtime":
		return SortByModified
	case "type", "ext", "extension":
		return SortByType
	}
	return SortByName
}

// SortOrder is ascending or descending.
type SortOrder int

const (
	Asc SortOrder = iota
	Desc
)

// extensionOf returns the lowercased extension without the dot, empty
// when there is none.
func extensionOf(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

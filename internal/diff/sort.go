package diff

import (
	"sort"
	"strings"
)

// ResortEntries re-sorts a flattened DFS entry list in memory without
// touching the filesystem, preserving the tree structure: every entry
// keeps its subtree directly below it.
func ResortEntries(entries []Entry, sortBy SortBy, order SortOrder) []Entry {
	if len(entries) == 0 {
		return entries
	}
	return resortLevel(entries, 0, 0, len(entries), sortBy, order)
}

// resortLevel sorts the entries at targetDepth inside [start, end). Each
// entry at that depth owns a contiguous block: itself plus all the
// deeper entries that follow it. Blocks are reordered by their head
// entry, then each directory block's children are sorted recursively.
func resortLevel(entries []Entry, targetDepth, start, end int, sortBy SortBy, order SortOrder) []Entry {
	type block struct{ start, end int }
	var blocks []block

	i := start
	for i < end {
		if entries[i].Depth == targetDepth {
			blockEnd := i + 1
			for blockEnd < end && entries[blockEnd].Depth > targetDepth {
				blockEnd++
			}
			blocks = append(blocks, block{i, blockEnd})
			i = blockEnd
		} else {
			i++
		}
	}

	sort.SliceStable(blocks, func(a, b int) bool {
		return compareEntriesForSort(&entries[blocks[a].start], &entries[blocks[b].start], sortBy, order)
	})

	result := make([]Entry, 0, end-start)
	for _, b := range blocks {
		result = append(result, entries[b.start])
		if entries[b.start].IsDirectory && b.end > b.start+1 {
			result = append(result, resortLevel(entries, targetDepth+1, b.start+1, b.end, sortBy, order)...)
		}
	}
	return result
}

// compareEntriesForSort orders two sibling entries: directories first,
// then by the sort key taken from whichever side exists (left preferred).
func compareEntriesForSort(a, b *Entry, sortBy SortBy, order SortOrder) bool {
	if a.IsDirectory != b.IsDirectory {
		return a.IsDirectory
	}

	aInfo := a.Left
	if aInfo == nil {
		aInfo = a.Right
	}
	bInfo := b.Left
	if bInfo == nil {
		bInfo = b.Right
	}

	var less, eq bool
	switch sortBy {
	case SortBySize:
		as, bs := infoSize(aInfo), infoSize(bInfo)
		less, eq = as < bs, as == bs
	case SortByModified:
		am, bm := infoModified(aInfo), infoModified(bInfo)
		less, eq = am < bm, am == bm
	case SortByType:
		ae, be := infoExtension(aInfo), infoExtension(bInfo)
		if ae != be {
			less, eq = ae < be, false
		} else {
			al, bl := infoFoldedName(aInfo), infoFoldedName(bInfo)
			less, eq = al < bl, al == bl
		}
	default:
		al, bl := infoFoldedName(aInfo), infoFoldedName(bInfo)
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

func infoSize(info *FileInfo) int64 {
	if info == nil {
		return 0
	}
	return info.Size
}

func infoModified(info *FileInfo) int64 {
	if info == nil {
		return 0
	}
	return info.Modified.UnixNano()
}

func infoExtension(info *FileInfo) string {
	if info == nil {
		return ""
	}
	return extensionOf(info.Name)
}

func infoFoldedName(info *FileInfo) string {
	if info == nil {
		return ""
	}
	return strings.ToLower(info.Name)
}

package diff

import "strings"

// View is the model behind a diff listing: the full comparison result
// plus the filter, collapse, cursor and scroll state a frontend renders
// from. It is not safe for concurrent use; drive it from one goroutine
// and call Poll periodically while a comparison runs.
type View struct {
	LeftRoot  string
	RightRoot string

	AllEntries      []Entry
	FilteredIndices []int
	SelectedIndex   int
	ScrollOffset    int
	VisibleHeight   int

	Filter        Filter
	SortBy        SortBy
	SortOrder     SortOrder
	CompareMethod CompareMethod

	CollapsedDirs map[string]bool
	SelectedFiles map[string]bool

	IsComparing     bool
	ProgressCurrent string
	ProgressCount   int
	ProgressTotal   int

	comparison *Comparison
}

// NewView creates a view for the two roots. The initial filter shows
// differences only.
func NewView(left, right string, method CompareMethod, sortBy SortBy, order SortOrder) *View {
	return &View{
		LeftRoot:      left,
		RightRoot:     right,
		Filter:        FilterDifferentOnly,
		SortBy:        sortBy,
		SortOrder:     order,
		CompareMethod: method,
		CollapsedDirs: make(map[string]bool),
		SelectedFiles: make(map[string]bool),
	}
}

// StartComparison launches a fresh comparison, cancelling any previous
// one and resetting the result state.
func (v *View) StartComparison() {
	if v.comparison != nil {
		v.comparison.Cancel()
	}

	v.IsComparing = true
	v.AllEntries = nil
	v.FilteredIndices = nil
	v.CollapsedDirs = make(map[string]bool)
	v.SelectedIndex = 0
	v.ScrollOffset = 0
	v.ProgressCurrent = ""
	v.ProgressCount = 0
	v.ProgressTotal = 0

	v.comparison = StartComparison(v.LeftRoot, v.RightRoot, v.CompareMethod, v.SortBy, v.SortOrder)
}

// Poll drains pending progress and accepts a finished result. On
// completion every directory starts collapsed. A result channel that
// closes without delivering means the comparison was cancelled.
func (v *View) Poll() {
	if !v.IsComparing || v.comparison == nil {
		return
	}

drain:
	for {
		select {
		case p, ok := <-v.comparison.Progress:
			if !ok {
				break drain
			}
			switch p.Kind {
			case Counting:
				v.ProgressTotal = p.Total
			case Comparing:
				v.ProgressCurrent = p.Path
				v.ProgressCount = p.Count
				v.ProgressTotal = p.Total
			}
		default:
			break drain
		}
	}

	select {
	case entries, ok := <-v.comparison.Results:
		if ok {
			v.AllEntries = entries
			v.CollapsedDirs = make(map[string]bool)
			for _, entry := range v.AllEntries {
				if entry.IsDirectory {
					v.CollapsedDirs[entry.RelativePath] = true
				}
			}
			v.ApplyFilter()
		}
		v.IsComparing = false
		v.comparison = nil
	default:
	}
}

// Cancel aborts a running comparison.
func (v *View) Cancel() {
	if v.comparison != nil {
		v.comparison.Cancel()
		v.comparison = nil
	}
	v.IsComparing = false
}

// matchesFilter reports whether the entry itself passes the filter,
// before ancestor inclusion.
func (v *View) matchesFilter(entry *Entry) bool {
	switch v.Filter {
	case FilterAll:
		return true
	case FilterDifferentOnly:
		return entry.Status.differs()
	case FilterLeftOnly:
		return entry.Status == LeftOnly
	case FilterRightOnly:
		return entry.Status == RightOnly
	}
	return true
}

// ApplyFilter rebuilds FilteredIndices from the filter, pulling in the
// ancestor directories of every match so the tree stays connected, then
// hides descendants of collapsed directories. The cursor is clamped and
// scroll reset.
func (v *View) ApplyFilter() {
	matching := make(map[int]bool)
	for i := range v.AllEntries {
		if v.matchesFilter(&v.AllEntries[i]) {
			matching[i] = true
		}
	}

	if v.Filter != FilterAll {
		dirIndex := make(map[string]int, len(v.AllEntries))
		for i := range v.AllEntries {
			if v.AllEntries[i].IsDirectory {
				dirIndex[v.AllEntries[i].RelativePath] = i
			}
		}
		for i := range matching {
			p := v.AllEntries[i].RelativePath
			for {
				pos := strings.LastIndexByte(p, '/')
				if pos < 0 {
					break
				}
				p = p[:pos]
				if j, ok := dirIndex[p]; ok {
					matching[j] = true
				}
			}
		}
	}

	v.FilteredIndices = v.FilteredIndices[:0]
	for i := range v.AllEntries {
		if !matching[i] {
			continue
		}
		if v.hiddenByCollapsedAncestor(&v.AllEntries[i]) {
			continue
		}
		v.FilteredIndices = append(v.FilteredIndices, i)
	}

	if v.SelectedIndex >= len(v.FilteredIndices) {
		v.SelectedIndex = len(v.FilteredIndices) - 1
		if v.SelectedIndex < 0 {
			v.SelectedIndex = 0
		}
	}
	v.ScrollOffset = 0
}

func (v *View) hiddenByCollapsedAncestor(entry *Entry) bool {
	if entry.Depth == 0 {
		return false
	}
	p := entry.RelativePath
	for {
		pos := strings.LastIndexByte(p, '/')
		if pos < 0 {
			return false
		}
		p = p[:pos]
		if v.CollapsedDirs[p] {
			return true
		}
	}
}

// CurrentEntry returns the entry under the cursor, nil when the listing
// is empty.
func (v *View) CurrentEntry() *Entry {
	if v.SelectedIndex < 0 || v.SelectedIndex >= len(v.FilteredIndices) {
		return nil
	}
	return &v.AllEntries[v.FilteredIndices[v.SelectedIndex]]
}

// collapseWithDescendants marks path and every directory beneath it
// collapsed.
func (v *View) collapseWithDescendants(path string) {
	prefix := path + "/"
	for i := range v.AllEntries {
		e := &v.AllEntries[i]
		if e.IsDirectory && strings.HasPrefix(e.RelativePath, prefix) {
			v.CollapsedDirs[e.RelativePath] = true
		}
	}
	v.CollapsedDirs[path] = true
}

// refilterKeepingCursor reapplies the filter and moves the cursor back
// to the entry it was on, identified by its AllEntries index.
func (v *View) refilterKeepingCursor() {
	var allIdx = -1
	if v.SelectedIndex < len(v.FilteredIndices) {
		allIdx = v.FilteredIndices[v.SelectedIndex]
	}

	v.ApplyFilter()

	if allIdx >= 0 {
		for i, fi := range v.FilteredIndices {
			if fi == allIdx {
				v.SelectedIndex = i
				break
			}
		}
	}
	v.keepCursorVisible()
}

func (v *View) keepCursorVisible() {
	if v.VisibleHeight <= 0 {
		return
	}
	if v.SelectedIndex < v.ScrollOffset {
		v.ScrollOffset = v.SelectedIndex
	} else if v.SelectedIndex >= v.ScrollOffset+v.VisibleHeight {
		v.ScrollOffset = v.SelectedIndex - v.VisibleHeight + 1
	}
}

// ToggleCollapse flips the collapse state of the directory under the
// cursor. Collapsing also collapses every descendant directory, so a
// later expand reveals only one level.
func (v *View) ToggleCollapse() {
	entry := v.CurrentEntry()
	if entry == nil || !entry.IsDirectory {
		return
	}
	path := entry.RelativePath
	if v.CollapsedDirs[path] {
		delete(v.CollapsedDirs, path)
	} else {
		v.collapseWithDescendants(path)
	}
	v.refilterKeepingCursor()
}

// ExpandOneLevel expands the directory under the cursor if collapsed;
// its child directories stay collapsed.
func (v *View) ExpandOneLevel() {
	entry := v.CurrentEntry()
	if entry == nil || !entry.IsDirectory || !v.CollapsedDirs[entry.RelativePath] {
		return
	}
	delete(v.CollapsedDirs, entry.RelativePath)
	v.refilterKeepingCursor()
}

// CollapseOneLevel collapses the directory under the cursor if expanded,
// together with its descendants.
func (v *View) CollapseOneLevel() {
	entry := v.CurrentEntry()
	if entry == nil || !entry.IsDirectory || v.CollapsedDirs[entry.RelativePath] {
		return
	}
	v.collapseWithDescendants(entry.RelativePath)
	v.refilterKeepingCursor()
}

// ExpandAll expands the directory under the cursor and everything
// beneath it.
func (v *View) ExpandAll() {
	entry := v.CurrentEntry()
	if entry == nil || !entry.IsDirectory {
		return
	}
	path := entry.RelativePath
	prefix := path + "/"
	delete(v.CollapsedDirs, path)
	for p := range v.CollapsedDirs {
		if strings.HasPrefix(p, prefix) {
			delete(v.CollapsedDirs, p)
		}
	}
	v.refilterKeepingCursor()
}

// Collapse collapses the directory under the cursor and all its
// descendants.
func (v *View) Collapse() {
	entry := v.CurrentEntry()
	if entry == nil || !entry.IsDirectory {
		return
	}
	v.collapseWithDescendants(entry.RelativePath)
	v.refilterKeepingCursor()
}

// MoveCursor moves the cursor by delta, clamped to the listing.
func (v *View) MoveCursor(delta int) {
	if len(v.FilteredIndices) == 0 {
		return
	}
	idx := v.SelectedIndex + delta
	if idx < 0 {
		idx = 0
	}
	if idx > len(v.FilteredIndices)-1 {
		idx = len(v.FilteredIndices) - 1
	}
	v.SelectedIndex = idx
}

// CursorToStart moves the cursor to the first row.
func (v *View) CursorToStart() {
	v.SelectedIndex = 0
}

// CursorToEnd moves the cursor to the last row.
func (v *View) CursorToEnd() {
	if n := len(v.FilteredIndices); n > 0 {
		v.SelectedIndex = n - 1
	}
}

// AdjustScroll records the viewport height and scrolls just enough to
// keep the cursor visible.
func (v *View) AdjustScroll(visibleHeight int) {
	v.VisibleHeight = visibleHeight
	v.keepCursorVisible()
}

// ToggleSelection flips the marked state of the entry under the cursor.
func (v *View) ToggleSelection() {
	entry := v.CurrentEntry()
	if entry == nil {
		return
	}
	if v.SelectedFiles[entry.RelativePath] {
		delete(v.SelectedFiles, entry.RelativePath)
	} else {
		v.SelectedFiles[entry.RelativePath] = true
	}
}

// ResortEntries re-sorts the in-memory result by the view's current sort
// settings and reapplies the filter. No filesystem access happens.
func (v *View) ResortEntries() {
	if len(v.AllEntries) == 0 {
		return
	}
	v.AllEntries = ResortEntries(v.AllEntries, v.SortBy, v.SortOrder)
	v.ApplyFilter()
}

package diff

import (
	"testing"
	"time"
)

// loadedView builds a view over a fixed entry list with every directory
// expanded, mimicking a finished comparison.
func loadedView(entries []Entry) *View {
	v := NewView("/left", "/right", Content, SortByName, Asc)
	v.AllEntries = entries
	v.Filter = FilterAll
	v.ApplyFilter()
	return v
}

func visiblePaths(v *View) []string {
	out := make([]string, len(v.FilteredIndices))
	for i, idx := range v.FilteredIndices {
		out[i] = v.AllEntries[idx].RelativePath
	}
	return out
}

func cursorOn(t *testing.T, v *View, rel string) {
	t.Helper()
	for i, idx := range v.FilteredIndices {
		if v.AllEntries[idx].RelativePath == rel {
			v.SelectedIndex = i
			return
		}
	}
	t.Fatalf("%q not visible: %v", rel, visiblePaths(v))
}

func assertVisible(t *testing.T, v *View, want []string) {
	t.Helper()
	got := visiblePaths(v)
	if len(got) != len(want) {
		t.Fatalf("visible %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("visible %v, want %v", got, want)
		}
	}
}

func TestApplyFilterDifferentOnlyIncludesAncestors(t *testing.T) {
	v := loadedView(sampleTree())
	v.Filter = FilterDifferentOnly
	v.ApplyFilter()

	// zdir/inner.txt is Modified, so zdir must appear even though its
	// own match would already include it; adir's subtree is all Same and
	// disappears entirely.
	assertVisible(t, v, []string{"zdir", "zdir/inner.txt", "Apple.txt"})
}

func TestApplyFilterAncestorsOfDeepMatch(t *testing.T) {
	entries := []Entry{
		flatEntry("outer", 0, true, 0, DirModified),
		flatEntry("outer/mid", 1, true, 0, DirModified),
		flatEntry("outer/mid/changed.txt", 2, false, 1, Modified),
		flatEntry("outer/mid/same.txt", 2, false, 1, Same),
	}
	v := loadedView(entries)
	v.Filter = FilterDifferentOnly
	v.ApplyFilter()

	assertVisible(t, v, []string{"outer", "outer/mid", "outer/mid/changed.txt"})
}

func TestApplyFilterLeftOnlyPullsInSameAncestors(t *testing.T) {
	entries := []Entry{
		flatEntry("keep", 0, true, 0, DirModified),
		flatEntry("keep/only_left.txt", 1, false, 1, LeftOnly),
		flatEntry("keep/only_right.txt", 1, false, 1, RightOnly),
	}
	v := loadedView(entries)
	v.Filter = FilterLeftOnly
	v.ApplyFilter()

	// The directory rides along as an ancestor even though DirModified
	// itself does not match LeftOnly.
	assertVisible(t, v, []string{"keep", "keep/only_left.txt"})
}

func TestCollapsedDirectoryHidesDescendants(t *testing.T) {
	v := loadedView(sampleTree())
	v.CollapsedDirs["zdir"] = true
	v.ApplyFilter()

	assertVisible(t, v, []string{"zdir", "adir", "adir/deep", "adir/deep/leaf.txt", "banana.txt", "Apple.txt"})
}

func TestToggleCollapseCollapsesDescendants(t *testing.T) {
	v := loadedView(sampleTree())
	cursorOn(t, v, "adir")
	v.ToggleCollapse()

	if !v.CollapsedDirs["adir"] || !v.CollapsedDirs["adir/deep"] {
		t.Errorf("collapse did not cover descendants: %v", v.CollapsedDirs)
	}

	// Expanding one level reveals deep but keeps it collapsed itself.
	cursorOn(t, v, "adir")
	v.ToggleCollapse()
	if v.CollapsedDirs["adir"] {
		t.Error("adir still collapsed after toggle")
	}
	if !v.CollapsedDirs["adir/deep"] {
		t.Error("adir/deep expanded along with its parent")
	}
	assertVisible(t, v, []string{"zdir", "zdir/inner.txt", "zdir/aaa.txt", "adir", "adir/deep", "banana.txt", "Apple.txt"})
}

func TestToggleCollapseKeepsCursorOnEntry(t *testing.T) {
	v := loadedView(sampleTree())
	cursorOn(t, v, "adir")
	v.ToggleCollapse()

	entry := v.CurrentEntry()
	if entry == nil || entry.RelativePath != "adir" {
		t.Errorf("cursor moved away from adir: %+v", entry)
	}
}

func TestExpandAll(t *testing.T) {
	v := loadedView(sampleTree())
	cursorOn(t, v, "adir")
	v.Collapse()
	cursorOn(t, v, "adir")
	v.ExpandAll()

	if v.CollapsedDirs["adir"] || v.CollapsedDirs["adir/deep"] {
		t.Errorf("ExpandAll left collapsed dirs: %v", v.CollapsedDirs)
	}
	cursorOn(t, v, "adir/deep/leaf.txt")
}

func TestExpandOneLevelOnlyWhenCollapsed(t *testing.T) {
	v := loadedView(sampleTree())
	cursorOn(t, v, "adir")
	v.ExpandOneLevel() // expanded already, no-op
	if len(v.CollapsedDirs) != 0 {
		t.Errorf("no-op expand changed state: %v", v.CollapsedDirs)
	}

	v.CollapseOneLevel()
	if !v.CollapsedDirs["adir"] || !v.CollapsedDirs["adir/deep"] {
		t.Errorf("CollapseOneLevel missed: %v", v.CollapsedDirs)
	}

	cursorOn(t, v, "adir")
	v.ExpandOneLevel()
	if v.CollapsedDirs["adir"] {
		t.Error("ExpandOneLevel did not expand")
	}
	if !v.CollapsedDirs["adir/deep"] {
		t.Error("ExpandOneLevel expanded grandchildren")
	}
}

func TestMoveCursorClamps(t *testing.T) {
	v := loadedView(sampleTree())

	v.MoveCursor(-5)
	if v.SelectedIndex != 0 {
		t.Errorf("cursor = %d after underflow", v.SelectedIndex)
	}
	v.MoveCursor(1000)
	if v.SelectedIndex != len(v.FilteredIndices)-1 {
		t.Errorf("cursor = %d after overflow", v.SelectedIndex)
	}
	v.CursorToStart()
	if v.SelectedIndex != 0 {
		t.Error("CursorToStart")
	}
	v.CursorToEnd()
	if v.SelectedIndex != len(v.FilteredIndices)-1 {
		t.Error("CursorToEnd")
	}
}

func TestMoveCursorEmptyListing(t *testing.T) {
	v := loadedView(nil)
	v.MoveCursor(1)
	v.CursorToEnd()
	v.ToggleSelection()
	if v.CurrentEntry() != nil {
		t.Error("CurrentEntry on empty listing")
	}
}

func TestAdjustScroll(t *testing.T) {
	v := loadedView(sampleTree())
	v.SelectedIndex = 6
	v.AdjustScroll(3)
	if v.ScrollOffset != 4 {
		t.Errorf("scroll = %d, want 4", v.ScrollOffset)
	}

	v.SelectedIndex = 1
	v.AdjustScroll(3)
	if v.ScrollOffset != 1 {
		t.Errorf("scroll = %d, want 1", v.ScrollOffset)
	}
}

func TestToggleSelection(t *testing.T) {
	v := loadedView(sampleTree())
	cursorOn(t, v, "banana.txt")

	v.ToggleSelection()
	if !v.SelectedFiles["banana.txt"] {
		t.Error("selection not recorded")
	}
	v.ToggleSelection()
	if v.SelectedFiles["banana.txt"] {
		t.Error("selection not cleared")
	}
}

func TestResortEntriesReappliesFilter(t *testing.T) {
	v := loadedView(sampleTree())
	v.SortOrder = Desc
	v.ResortEntries()

	assertVisible(t, v, []string{
		"zdir", "zdir/inner.txt", "zdir/aaa.txt",
		"adir", "adir/deep", "adir/deep/leaf.txt",
		"banana.txt", "Apple.txt",
	})
}

func TestViewPollAcceptsResultAndCollapsesAll(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	buildTree(t, left, map[string]string{"d/x.txt": "1", "top.txt": "2"})
	buildTree(t, right, map[string]string{"d/x.txt": "other", "top.txt": "2"})

	v := NewView(left, right, Content, SortByName, Asc)
	v.StartComparison()

	deadline := time.Now().Add(30 * time.Second)
	for v.IsComparing {
		if time.Now().After(deadline) {
			t.Fatal("comparison never finished")
		}
		v.Poll()
		time.Sleep(time.Millisecond)
	}

	if !v.CollapsedDirs["d"] {
		t.Error("directories not collapsed after load")
	}
	// Default filter is DifferentOnly: d is DirModified and visible,
	// its child hidden by the collapse, top.txt same and filtered out.
	assertVisible(t, v, []string{"d"})
}

func TestViewCancelStopsComparing(t *testing.T) {
	v := NewView(t.TempDir(), t.TempDir(), Content, SortByName, Asc)
	v.StartComparison()
	v.Cancel()
	if v.IsComparing {
		t.Error("IsComparing after Cancel")
	}
}

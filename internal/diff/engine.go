package diff

import (
	"path"
	"path/filepath"
	"sync/atomic"

	"cokacdir/internal/log"
)

// ProgressKind discriminates Progress variants.
type ProgressKind int

const (
	// Counting is phase 1: Total carries the running entry count.
	Counting ProgressKind = iota
	// Comparing is phase 2: Path is the entry being classified, Count
	// out of Total.
	Comparing
)

// Progress is a snapshot of comparison progress. Updates are lossy: the
// engine never blocks on the progress channel, so a slow consumer only
// misses intermediate snapshots.
type Progress struct {
	Kind  ProgressKind
	Path  string
	Count int
	Total int
}

// Comparison is a running (or finished) directory comparison. Results
// delivers at most one entry list and is closed by the worker; a close
// without a result means the comparison was cancelled.
type Comparison struct {
	Results  <-chan []Entry
	Progress <-chan Progress

	cancel *atomic.Bool
}

// Cancel requests the worker to stop. Safe to call more than once.
func (c *Comparison) Cancel() {
	c.cancel.Store(true)
}

// Cancelled reports whether Cancel was called.
func (c *Comparison) Cancelled() bool {
	return c.cancel.Load()
}

// StartComparison walks left and right concurrently with the caller and
// returns immediately. Phase 1 counts entries for the progress total,
// phase 2 builds the classified DFS entry list. Unreadable directories
// contribute empty listings; stat failures leave the side's FileInfo nil
// and a nil side compares unequal.
func StartComparison(left, right string, method CompareMethod, sortBy SortBy, order SortOrder) *Comparison {
	results := make(chan []Entry, 1)
	progress := make(chan Progress, 16)
	cancel := &atomic.Bool{}

	c := &Comparison{
		Results:  results,
		Progress: progress,
		cancel:   cancel,
	}

	go func() {
		defer close(results)
		defer close(progress)

		w := &walker{
			leftRoot:  left,
			rightRoot: right,
			method:    method,
			sortBy:    sortBy,
			order:     order,
			cancel:    cancel,
			progress:  progress,
		}

		total := w.countBoth("")
		if cancel.Load() {
			return
		}

		w.total = total
		entries := make([]Entry, 0, total)
		w.buildBoth("", 0, &entries)

		if !cancel.Load() {
			log.Debug("comparison finished",
				log.String("left", left),
				log.String("right", right),
				log.Int("entries", len(entries)))
			results <- entries
		}
	}()

	return c
}

type walker struct {
	leftRoot  string
	rightRoot string
	method    CompareMethod
	sortBy    SortBy
	order     SortOrder
	cancel    *atomic.Bool
	progress  chan<- Progress

	counted int
	visited int
	total   int
}

// report sends a progress snapshot without blocking.
func (w *walker) report(p Progress) {
	select {
	case w.progress <- p:
	default:
	}
}

func (w *walker) dirs(relative string) (string, string) {
	if relative == "" {
		return w.leftRoot, w.rightRoot
	}
	return filepath.Join(w.leftRoot, relative), filepath.Join(w.rightRoot, relative)
}

// mergeNames returns the union of both listings plus membership sets.
func mergeNames(leftNames, rightNames []string) ([]string, map[string]bool, map[string]bool) {
	leftSet := make(map[string]bool, len(leftNames))
	for _, name := range leftNames {
		leftSet[name] = true
	}
	rightSet := make(map[string]bool, len(rightNames))
	for _, name := range rightNames {
		rightSet[name] = true
	}

	all := append([]string{}, leftNames...)
	for _, name := range rightNames {
		if !leftSet[name] {
			all = append(all, name)
		}
	}
	return all, leftSet, rightSet
}

// countBoth is phase 1 over directories present on both sides.
func (w *walker) countBoth(relative string) int {
	if w.cancel.Load() {
		return 0
	}

	leftDir, rightDir := w.dirs(relative)
	all, leftSet, rightSet := mergeNames(readDirNames(leftDir), readDirNames(rightDir))

	w.counted += len(all)
	w.report(Progress{Kind: Counting, Total: w.counted})

	count := len(all)
	for _, name := range all {
		if w.cancel.Load() {
			return count
		}
		child := path.Join(relative, name)
		switch {
		case leftSet[name] && rightSet[name]:
			if isDirViaInfo(filepath.Join(leftDir, name)) && isDirViaInfo(filepath.Join(rightDir, name)) {
				count += w.countBoth(child)
			}
		case leftSet[name]:
			if isDirViaInfo(filepath.Join(leftDir, name)) {
				count += w.countOneSide(w.leftRoot, child)
			}
		default:
			if isDirViaInfo(filepath.Join(rightDir, name)) {
				count += w.countOneSide(w.rightRoot, child)
			}
		}
	}
	return count
}

func (w *walker) countOneSide(root, relative string) int {
	if w.cancel.Load() {
		return 0
	}
	dir := filepath.Join(root, relative)
	names := readDirNames(dir)

	w.counted += len(names)
	w.report(Progress{Kind: Counting, Total: w.counted})

	count := len(names)
	for _, name := range names {
		if w.cancel.Load() {
			return count
		}
		if isDirViaInfo(filepath.Join(dir, name)) {
			count += w.countOneSide(root, path.Join(relative, name))
		}
	}
	return count
}

// isDirViaInfo matches makeFileInfo's symlink handling so the count and
// build phases agree on what recurses.
func isDirViaInfo(p string) bool {
	info := makeFileInfo(p, "")
	return info != nil && info.IsDirectory
}

// buildBoth is phase 2 over directories present on both sides. Each
// directory pair gets a placeholder entry whose status is rolled up from
// its descendants after the recursive call.
func (w *walker) buildBoth(relative string, depth int, entries *[]Entry) {
	if w.cancel.Load() {
		return
	}

	leftDir, rightDir := w.dirs(relative)
	all, leftSet, rightSet := mergeNames(readDirNames(leftDir), readDirNames(rightDir))
	sortNames(all, leftDir, rightDir, leftSet, rightSet, w.sortBy, w.order)

	for _, name := range all {
		if w.cancel.Load() {
			return
		}

		child := path.Join(relative, name)
		w.visited++
		w.report(Progress{Kind: Comparing, Path: child, Count: w.visited, Total: w.total})

		leftPath := filepath.Join(leftDir, name)
		rightPath := filepath.Join(rightDir, name)
		leftInfo := makeFileInfo(leftPath, name)
		rightInfo := makeFileInfo(rightPath, name)

		leftExists := leftSet[name]
		rightExists := rightSet[name]
		leftIsDir := leftInfo != nil && leftInfo.IsDirectory
		rightIsDir := rightInfo != nil && rightInfo.IsDirectory

		switch {
		case leftExists && rightExists && leftIsDir && rightIsDir:
			dirIndex := len(*entries)
			*entries = append(*entries, Entry{
				RelativePath: child,
				Left:         leftInfo,
				Right:        rightInfo,
				Status:       DirSame,
				IsDirectory:  true,
				Depth:        depth,
			})

			w.buildBoth(child, depth+1, entries)

			status := DirSame
			for _, e := range (*entries)[dirIndex+1:] {
				if e.Status.differs() {
					status = DirModified
					break
				}
			}
			(*entries)[dirIndex].Status = status

		case leftExists && rightExists && !leftIsDir && !rightIsDir:
			status := Modified
			if leftInfo != nil && rightInfo != nil && CompareFiles(leftInfo, rightInfo, w.method) {
				status = Same
			}
			*entries = append(*entries, Entry{
				RelativePath: child,
				Left:         leftInfo,
				Right:        rightInfo,
				Status:       status,
				IsDirectory:  false,
				Depth:        depth,
			})

		case leftExists && rightExists:
			// Directory on one side, file on the other.
			*entries = append(*entries, Entry{
				RelativePath: child,
				Left:         leftInfo,
				Right:        rightInfo,
				Status:       Modified,
				IsDirectory:  leftIsDir || rightIsDir,
				Depth:        depth,
			})

		case leftExists:
			*entries = append(*entries, Entry{
				RelativePath: child,
				Left:         leftInfo,
				Status:       LeftOnly,
				IsDirectory:  leftIsDir,
				Depth:        depth,
			})
			if leftIsDir {
				w.buildOneSide(w.leftRoot, child, depth+1, true, entries)
			}

		default:
			*entries = append(*entries, Entry{
				RelativePath: child,
				Right:        rightInfo,
				Status:       RightOnly,
				IsDirectory:  rightIsDir,
				Depth:        depth,
			})
			if rightIsDir {
				w.buildOneSide(w.rightRoot, child, depth+1, false, entries)
			}
		}
	}
}

// buildOneSide lists a subtree that exists on only one side; every entry
// inherits LeftOnly or RightOnly.
func (w *walker) buildOneSide(root, relative string, depth int, isLeft bool, entries *[]Entry) {
	if w.cancel.Load() {
		return
	}

	dir := filepath.Join(root, relative)
	names := readDirNames(dir)
	sortNamesSingleDir(names, dir, w.sortBy, w.order)

	for _, name := range names {
		if w.cancel.Load() {
			return
		}

		child := path.Join(relative, name)
		w.visited++
		w.report(Progress{Kind: Comparing, Path: child, Count: w.visited, Total: w.total})

		info := makeFileInfo(filepath.Join(dir, name), name)
		isDir := info != nil && info.IsDirectory

		entry := Entry{
			RelativePath: child,
			Status:       RightOnly,
			IsDirectory:  isDir,
			Depth:        depth,
		}
		if isLeft {
			entry.Status = LeftOnly
			entry.Left = info
		} else {
			entry.Right = info
		}
		*entries = append(*entries, entry)

		if isDir {
			w.buildOneSide(root, child, depth+1, isLeft, entries)
		}
	}
}

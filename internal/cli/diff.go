package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cokacdir/internal/diff"
)

var diffCmd = &cobra.Command{
	Use:   "diff <left> <right>",
	Short: "Compare two directory trees recursively",
	Long: `Compare two directory trees and print the differences as an
indented tree. Each line is prefixed with a status letter:

  M  modified (content of the file, or of something inside the directory)
  L  exists on the left side only
  R  exists on the right side only
     identical on both sides (shown with --filter all)

Examples:
  # Show what changed between a directory and its backup
  cokacdir diff ~/work ~/backup/work

  # Compare by modification time only, fastest for large trees
  cokacdir diff ~/work ~/backup/work --method time

  # Everything, including identical entries, largest first
  cokacdir diff ~/work ~/backup/work --filter all --sort size --desc`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

var (
	diffMethod string
	diffSort   string
	diffDesc   bool
	diffFilter string
	diffQuiet  bool
)

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().StringVar(&diffMethod, "method", "", "Comparison method: content, time, contentandtime (default: COKACDIR_COMPARE_METHOD)")
	diffCmd.Flags().StringVar(&diffSort, "sort", "name", "Sort key: name, size, modified, type")
	diffCmd.Flags().BoolVar(&diffDesc, "desc", false, "Sort in descending order")
	diffCmd.Flags().StringVar(&diffFilter, "filter", "different", "Which entries to show: all, different, left, right")
	diffCmd.Flags().BoolVarP(&diffQuiet, "quiet", "q", false, "Suppress progress output")
}

// parseFilter maps a CLI flag value to a listing filter. Unknown values
// fall back to differences only.
func parseFilter(s string) diff.Filter {
	switch strings.ToLower(s) {
	case "all":
		return diff.FilterAll
	case "left":
		return diff.FilterLeftOnly
	case "right":
		return diff.FilterRightOnly
	default:
		return diff.FilterDifferentOnly
	}
}

// statusLetter is the one-character prefix for a listing line.
func statusLetter(s diff.Status) string {
	switch s {
	case diff.Modified, diff.DirModified:
		return "M"
	case diff.LeftOnly:
		return "L"
	case diff.RightOnly:
		return "R"
	default:
		return " "
	}
}

// entryLine renders one listing line: status letter, indentation by
// depth, and the entry's name with a trailing slash for directories.
func entryLine(entry *diff.Entry) string {
	name := entry.RelativePath
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if entry.IsDirectory {
		name += "/"
	}
	return fmt.Sprintf("%s %s%s", statusLetter(entry.Status), strings.Repeat("  ", entry.Depth), name)
}

func runDiff(cmd *cobra.Command, args []string) error {
	left, right := args[0], args[1]
	for _, dir := range []string{left, right} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("cannot access %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("not a directory: %s", dir)
		}
	}

	method := diffMethod
	if method == "" && cfg != nil {
		method = cfg.CompareMethod
	}
	order := diff.Asc
	if diffDesc {
		order = diff.Desc
	}

	v := diff.NewView(left, right, diff.ParseCompareMethod(method), diff.ParseSortBy(diffSort), order)
	v.Filter = parseFilter(diffFilter)
	v.StartComparison()

	lastLine := 0
	for v.IsComparing {
		v.Poll()
		if !diffQuiet && v.ProgressTotal > 0 {
			line := fmt.Sprintf("\rComparing %d/%d %s", v.ProgressCount, v.ProgressTotal, v.ProgressCurrent)
			if len(line) < lastLine {
				line += strings.Repeat(" ", lastLine-len(line))
			}
			lastLine = len(line)
			fmt.Fprint(os.Stderr, line)
		}
		time.Sleep(20 * time.Millisecond)
	}
	if lastLine > 0 {
		fmt.Fprint(os.Stderr, "\r", strings.Repeat(" ", lastLine), "\r")
	}

	// The view collapses every directory on load; the printed tree
	// shows all levels.
	v.CollapsedDirs = make(map[string]bool)
	v.ApplyFilter()

	var modified, leftOnly, rightOnly int
	for _, idx := range v.FilteredIndices {
		entry := &v.AllEntries[idx]
		fmt.Println(entryLine(entry))
		switch entry.Status {
		case diff.Modified:
			modified++
		case diff.LeftOnly:
			leftOnly++
		case diff.RightOnly:
			rightOnly++
		}
	}

	if !diffQuiet {
		fmt.Fprintf(os.Stderr, "%d modified, %d left only, %d right only\n", modified, leftOnly, rightOnly)
	}
	return nil
}

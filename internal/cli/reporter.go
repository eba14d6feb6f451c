package cli

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"cokacdir/internal/enc"
	"cokacdir/internal/util"
)

// Reporter renders the pack/unpack progress stream as a single terminal
// line that gets overwritten. If quiet is true, only errors are printed.
type Reporter struct {
	quiet     bool
	cancelled atomic.Bool

	fileStart time.Time
	lastLine  int

	// Final tallies, valid once Handle has seen a Completed message.
	Success int
	Failure int
	Errors  []string
}

// NewReporter creates a CLI progress reporter.
func NewReporter(quiet bool) *Reporter {
	return &Reporter{quiet: quiet}
}

// CancelFlag exposes the flag the encryption pipelines poll.
func (r *Reporter) CancelFlag() *atomic.Bool {
	return &r.cancelled
}

// Cancel marks the operation as cancelled.
func (r *Reporter) Cancel() {
	r.cancelled.Store(true)
}

// IsCancelled checks if the operation was cancelled.
func (r *Reporter) IsCancelled() bool {
	return r.cancelled.Load()
}

// Handle consumes one progress message and returns true when the
// terminal Completed message has arrived.
func (r *Reporter) Handle(msg enc.ProgressMessage) bool {
	switch msg.Kind {
	case enc.KindPreparing:
		r.print(msg.Message)
	case enc.KindFileStarted:
		r.fileStart = time.Now()
		r.print(fmt.Sprintf("%s ...", msg.Name))
	case enc.KindFileProgress:
		progress, speed, eta := util.Statify(msg.Done, msg.Total, r.fileStart)
		r.print(fmt.Sprintf("%s %s [%3.0f%%] %.2f MiB/s (ETA %s)",
			msg.Name, util.Sizeify(msg.Total), progress*100, speed, eta))
	case enc.KindFileCompleted:
		r.print(fmt.Sprintf("%s done", msg.Name))
	case enc.KindTotalProgress:
		r.print(fmt.Sprintf("%d/%d files", msg.DoneFiles, msg.TotalFiles))
	case enc.KindError:
		r.Errors = append(r.Errors, msg.Message)
		r.PrintError("%s: %s", msg.Name, msg.Message)
	case enc.KindCompleted:
		r.Success = msg.Success
		r.Failure = msg.Failure
		return true
	}
	return false
}

// print overwrites the current progress line.
func (r *Reporter) print(text string) {
	if r.quiet {
		return
	}
	line := "\r" + text
	if len(line) < r.lastLine {
		line += strings.Repeat(" ", r.lastLine-len(line))
	}
	r.lastLine = len(line)
	fmt.Fprint(os.Stderr, line)
}

// Finish prints a newline to move past the progress line.
func (r *Reporter) Finish() {
	if !r.quiet && r.lastLine > 0 {
		fmt.Fprintln(os.Stderr)
		r.lastLine = 0
	}
}

// PrintError prints an error message on its own line.
func (r *Reporter) PrintError(format string, args ...any) {
	if !r.quiet && r.lastLine > 0 {
		fmt.Fprintln(os.Stderr)
		r.lastLine = 0
	}
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// PrintSuccess prints a success message.
func (r *Reporter) PrintSuccess(format string, args ...any) {
	if r.quiet {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

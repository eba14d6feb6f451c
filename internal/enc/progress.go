package enc

// ProgressKind discriminates ProgressMessage variants.
type ProgressKind int

const (
	KindPreparing ProgressKind = iota
	KindPrepareComplete
	KindFileStarted
	KindFileProgress
	KindFileCompleted
	KindTotalProgress
	KindCompleted
	KindError
)

// ProgressMessage is the stream of events a pack or unpack sweep emits.
// The channel is owned by the caller, which must drain it until the
// terminal Completed message arrives; the pipelines never close it.
type ProgressMessage struct {
	Kind ProgressKind

	// Name is the file (or group label) for FileStarted, FileProgress,
	// FileCompleted, and Error.
	Name string

	// Message carries the text of Preparing and Error events.
	Message string

	// Done and Total are byte counts for FileProgress.
	Done  int64
	Total int64

	// DoneFiles and TotalFiles are file counts for TotalProgress.
	DoneFiles  int
	TotalFiles int

	// Success and Failure are the final tallies for Completed.
	Success int
	Failure int
}

func fileStarted(name string) ProgressMessage {
	return ProgressMessage{Kind: KindFileStarted, Name: name}
}

func fileProgress(name string, done, total int64) ProgressMessage {
	return ProgressMessage{Kind: KindFileProgress, Name: name, Done: done, Total: total}
}

func fileCompleted(name string) ProgressMessage {
	return ProgressMessage{Kind: KindFileCompleted, Name: name}
}

func totalProgress(doneFiles, totalFiles int) ProgressMessage {
	return ProgressMessage{Kind: KindTotalProgress, DoneFiles: doneFiles, TotalFiles: totalFiles}
}

func completed(success, failure int) ProgressMessage {
	return ProgressMessage{Kind: KindCompleted, Success: success, Failure: failure}
}

func errorMsg(name, message string) ProgressMessage {
	return ProgressMessage{Kind: KindError, Name: name, Message: message}
}

// send delivers msg if a channel was provided. Pipelines run with a nil
// channel when the caller does not care about progress.
func send(ch chan<- ProgressMessage, msg ProgressMessage) {
	if ch != nil {
		ch <- msg
	}
}

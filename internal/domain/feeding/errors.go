package feeding

import "fmt"

// ScanError wraps a key-value listing failure. It is fatal to the current
// cycle: the run aborts and the last good cursor is returned to the caller.
type ScanError struct {
	Cursor string
	Err    error
}

func (e *ScanError) Error() string {
	if e.Cursor == "" {
		return fmt.Sprintf("recipe key scan failed from start of key space: %v", e.Err)
	}
	return fmt.Sprintf("recipe key scan failed at cursor %q: %v", e.Cursor, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// QueueChunkError records one failed publish chunk. It carries the member
// ids so the caller can retry the chunk later; the producer itself does not
// retry. Not fatal to the remaining chunks.
type QueueChunkError struct {
	Chunk int
	IDs   []string
	Err   error
}

func (e *QueueChunkError) Error() string {
	return fmt.Sprintf("failed to publish chunk %d (%d recipe ids): %v", e.Chunk, len(e.IDs), e.Err)
}

func (e *QueueChunkError) Unwrap() error {
	return e.Err
}

// ValidationError reports how many ids were dropped before enqueueing
// because they were empty after trimming whitespace. Dropped ids make the
// overall outcome unsuccessful but do not abort the remaining valid ids.
type ValidationError struct {
	Dropped int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dropped %d invalid recipe ids before enqueue", e.Dropped)
}

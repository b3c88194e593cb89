// Package feeding holds the domain types for the recipe embedding feeder:
// scan pages, existence partitions, queue outcomes, and the statistics
// accumulated over one feeding run. All values are transient and
// request-scoped; the only state a caller keeps between invocations is
// the cursor.
package feeding

import "time"

// ScanPage is one page of recipe keys from the key-value store.
// Exhausted is true iff the store reports no further keys after this page.
type ScanPage struct {
	Keys      []string `json:"keys"`
	Cursor    string   `json:"cursor"`
	Exhausted bool     `json:"exhausted"`
}

// ExistenceResult partitions an input batch of recipe keys by whether the
// vector index already holds an embedding for them. Exists and Missing are
// disjoint and together contain every input key exactly once.
type ExistenceResult struct {
	Exists  []string `json:"exists"`
	Missing []string `json:"missing"`
}

// QueueOutcome reports the result of enqueueing a batch of recipe ids.
// Success is false when any chunk failed to publish or any id was dropped
// by validation, even if every remaining chunk enqueued cleanly.
type QueueOutcome struct {
	Success      bool    `json:"success"`
	QueuedCount  int     `json:"queued_count"`
	InvalidCount int     `json:"invalid_count"`
	Errors       []error `json:"-"`
}

// Stats accumulates feeding statistics. All fields are additive across the
// nested loops of one invocation and never decrease.
type Stats struct {
	Scanned           int           `json:"scanned"`
	ExistsInVector    int           `json:"exists_in_vector"`
	MissingFromVector int           `json:"missing_from_vector"`
	Queued            int           `json:"queued"`
	Errors            []string      `json:"errors"`
	BatchesProcessed  int           `json:"batches_processed"`
	ProcessingTime    time.Duration `json:"processing_time_ms"`
}

// Add merges another stats accumulator into this one.
func (s *Stats) Add(other Stats) {
	s.Scanned += other.Scanned
	s.ExistsInVector += other.ExistsInVector
	s.MissingFromVector += other.MissingFromVector
	s.Queued += other.Queued
	s.Errors = append(s.Errors, other.Errors...)
	s.BatchesProcessed += other.BatchesProcessed
	s.ProcessingTime += other.ProcessingTime
}

// RecordError appends an error message to the accumulator.
func (s *Stats) RecordError(err error) {
	if err != nil {
		s.Errors = append(s.Errors, err.Error())
	}
}

// CycleResult is the outcome of one orchestrator pass: scan until the
// missing set reaches the target (or the store runs out), then enqueue.
type CycleResult struct {
	Success         bool   `json:"success"`
	Stats           Stats  `json:"stats"`
	NextCursor      string `json:"next_cursor"`
	ReachedTarget   bool   `json:"reached_target"`
	SourceExhausted bool   `json:"source_exhausted"`
}

// RunResult is the outcome of a full feeding run: up to maxCycles passes
// bounded by a wall-clock budget. CompletedFully is false when the budget
// cut the run short or a cycle aborted with a hard error. NextCursor is
// always the last successfully advanced cursor, so a failed run still
// resumes safely.
type RunResult struct {
	Success        bool   `json:"success"`
	Stats          Stats  `json:"stats"`
	Cycles         int    `json:"cycles"`
	CompletedFully bool   `json:"completed_fully"`
	NextCursor     string `json:"next_cursor"`
	Error          string `json:"error,omitempty"`
}

package mock

import (
	"context"
	"sync"
)

// EmbeddingQueue is an in-memory EmbeddingQueue recording every published
// chunk. Specific chunk indexes can be made to fail to exercise the
// producer's partial-failure handling.
type EmbeddingQueue struct {
	mu         sync.Mutex
	published  [][]string
	failChunks map[int]error
	callCount  int
}

// NewEmbeddingQueue creates a new mock queue.
func NewEmbeddingQueue() *EmbeddingQueue {
	return &EmbeddingQueue{failChunks: make(map[int]error)}
}

// FailChunk makes the publish call with the given zero-based index fail.
func (q *EmbeddingQueue) FailChunk(index int, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failChunks[index] = err
}

// Published returns every successfully published chunk, in publish order.
func (q *EmbeddingQueue) Published() [][]string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([][]string, len(q.published))
	for i, chunk := range q.published {
		out[i] = append([]string(nil), chunk...)
	}
	return out
}

// PublishedIDs returns all successfully published recipe ids flattened, in
// publish order.
func (q *EmbeddingQueue) PublishedIDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	var ids []string
	for _, chunk := range q.published {
		ids = append(ids, chunk...)
	}
	return ids
}

// PublishEmbeddingJobs records the chunk or fails it if configured to.
func (q *EmbeddingQueue) PublishEmbeddingJobs(_ context.Context, recipeIDs []string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	call := q.callCount
	q.callCount++
	if err, ok := q.failChunks[call]; ok {
		return err
	}

	q.published = append(q.published, append([]string(nil), recipeIDs...))
	return nil
}

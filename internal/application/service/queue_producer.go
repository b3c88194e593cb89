package service

import (
	"context"
	"strings"
	"time"

	"recipefeeder/internal/application/common/slogger"
	"recipefeeder/internal/domain/feeding"
	"recipefeeder/internal/port/outbound"
)

const defaultChunkSize = 50

// EnqueueOptions controls validation and chunking for one enqueue call.
type EnqueueOptions struct {
	// ChunkSize bounds the number of ids per batch publish. Values below 1
	// fall back to the default of 50.
	ChunkSize int
	// Validate drops ids that are empty after trimming whitespace. Dropped
	// ids make the overall outcome unsuccessful.
	Validate bool
	// ChunkPause is an optional pause between chunk publishes to avoid
	// overwhelming the queue backend. Not required for correctness.
	ChunkPause time.Duration
}

// QueueProducer validates recipe ids and publishes them to the embedding
// work queue in bounded chunks. A failed chunk does not stop the remaining
// chunks; each failure is collected with enough context to retry that chunk
// later. The producer itself never retries.
type QueueProducer struct {
	queue outbound.EmbeddingQueue
}

// NewQueueProducer creates a producer over the given embedding queue.
func NewQueueProducer(queue outbound.EmbeddingQueue) *QueueProducer {
	return &QueueProducer{queue: queue}
}

// Enqueue publishes ids to the queue in chunks. Empty input is a no-op
// returning success.
func (p *QueueProducer) Enqueue(ctx context.Context, ids []string, opts EnqueueOptions) *feeding.QueueOutcome {
	outcome := &feeding.QueueOutcome{Success: true}
	if len(ids) == 0 {
		return outcome
	}

	valid := ids
	if opts.Validate {
		valid = make([]string, 0, len(ids))
		for _, id := range ids {
			if strings.TrimSpace(id) == "" {
				outcome.InvalidCount++
				continue
			}
			valid = append(valid, id)
		}
		if outcome.InvalidCount > 0 {
			outcome.Success = false
			outcome.Errors = append(outcome.Errors, &feeding.ValidationError{Dropped: outcome.InvalidCount})
		}
	}

	chunkSize := opts.ChunkSize
	if chunkSize < 1 {
		chunkSize = defaultChunkSize
	}

	for start := 0; start < len(valid); start += chunkSize {
		end := start + chunkSize
		if end > len(valid) {
			end = len(valid)
		}
		chunk := valid[start:end]
		chunkIndex := start / chunkSize

		if err := p.queue.PublishEmbeddingJobs(ctx, chunk); err != nil {
			outcome.Success = false
			outcome.Errors = append(outcome.Errors, &feeding.QueueChunkError{
				Chunk: chunkIndex,
				IDs:   append([]string(nil), chunk...),
				Err:   err,
			})
			slogger.ErrorWithError(ctx, err, "Failed to publish embedding job chunk", slogger.Fields{
				"chunk":      chunkIndex,
				"chunk_size": len(chunk),
			})
			continue
		}

		outcome.QueuedCount += len(chunk)

		if opts.ChunkPause > 0 && end < len(valid) {
			select {
			case <-ctx.Done():
				outcome.Success = false
				outcome.Errors = append(outcome.Errors, ctx.Err())
				return outcome
			case <-time.After(opts.ChunkPause):
			}
		}
	}

	return outcome
}

package service

import (
	"context"
	"errors"
	"testing"

	"recipefeeder/internal/adapter/outbound/mock"
	"recipefeeder/internal/domain/feeding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProducer_Enqueue_EmptyInputIsNoOp(t *testing.T) {
	queue := mock.NewEmbeddingQueue()
	producer := NewQueueProducer(queue)

	outcome := producer.Enqueue(context.Background(), nil, EnqueueOptions{Validate: true})

	assert.True(t, outcome.Success)
	assert.Equal(t, 0, outcome.QueuedCount)
	assert.Empty(t, outcome.Errors)
	assert.Empty(t, queue.Published())
}

func TestQueueProducer_Enqueue_ValidationGate(t *testing.T) {
	queue := mock.NewEmbeddingQueue()
	producer := NewQueueProducer(queue)

	outcome := producer.Enqueue(context.Background(), []string{"a", "", "   ", "b"}, EnqueueOptions{
		ChunkSize: 10,
		Validate:  true,
	})

	// Dropped ids make the outcome unsuccessful even though every valid
	// chunk enqueued cleanly.
	assert.False(t, outcome.Success)
	assert.Equal(t, 2, outcome.QueuedCount)
	assert.Equal(t, 2, outcome.InvalidCount)
	assert.Equal(t, []string{"a", "b"}, queue.PublishedIDs())

	require.Len(t, outcome.Errors, 1)
	var validationErr *feeding.ValidationError
	require.ErrorAs(t, outcome.Errors[0], &validationErr)
	assert.Equal(t, 2, validationErr.Dropped)
}

func TestQueueProducer_Enqueue_ValidationDisabledPassesEverything(t *testing.T) {
	queue := mock.NewEmbeddingQueue()
	producer := NewQueueProducer(queue)

	outcome := producer.Enqueue(context.Background(), []string{"a", "", "b"}, EnqueueOptions{ChunkSize: 10})

	assert.True(t, outcome.Success)
	assert.Equal(t, 3, outcome.QueuedCount)
	assert.Equal(t, 0, outcome.InvalidCount)
}

func TestQueueProducer_Enqueue_ChunksByConfiguredSize(t *testing.T) {
	queue := mock.NewEmbeddingQueue()
	producer := NewQueueProducer(queue)

	ids := []string{"r1", "r2", "r3", "r4", "r5"}
	outcome := producer.Enqueue(context.Background(), ids, EnqueueOptions{ChunkSize: 2, Validate: true})

	assert.True(t, outcome.Success)
	assert.Equal(t, 5, outcome.QueuedCount)
	assert.Equal(t, [][]string{{"r1", "r2"}, {"r3", "r4"}, {"r5"}}, queue.Published())
}

func TestQueueProducer_Enqueue_PartialChunkFailureContinues(t *testing.T) {
	queue := mock.NewEmbeddingQueue()
	queue.FailChunk(1, errors.New("jetstream unavailable"))
	producer := NewQueueProducer(queue)

	ids := []string{"r1", "r2", "r3", "r4", "r5", "r6"}
	outcome := producer.Enqueue(context.Background(), ids, EnqueueOptions{ChunkSize: 2, Validate: true})

	assert.False(t, outcome.Success)
	assert.Equal(t, 4, outcome.QueuedCount)
	assert.Equal(t, [][]string{{"r1", "r2"}, {"r5", "r6"}}, queue.Published())

	require.Len(t, outcome.Errors, 1)
	var chunkErr *feeding.QueueChunkError
	require.ErrorAs(t, outcome.Errors[0], &chunkErr)
	assert.Equal(t, 1, chunkErr.Chunk)
	// The failed chunk's member ids are preserved so the caller can retry
	// that chunk later.
	assert.Equal(t, []string{"r3", "r4"}, chunkErr.IDs)
}

func TestQueueProducer_Enqueue_DefaultChunkSize(t *testing.T) {
	queue := mock.NewEmbeddingQueue()
	producer := NewQueueProducer(queue)

	ids := make([]string, 75)
	for i := range ids {
		ids[i] = "r"
	}
	outcome := producer.Enqueue(context.Background(), ids, EnqueueOptions{})

	assert.True(t, outcome.Success)
	assert.Equal(t, 75, outcome.QueuedCount)
	published := queue.Published()
	require.Len(t, published, 2)
	assert.Len(t, published[0], 50)
	assert.Len(t, published[1], 25)
}

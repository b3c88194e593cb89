package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"recipefeeder/internal/adapter/outbound/mock"
	"recipefeeder/internal/application/common/logging"
	"recipefeeder/internal/config"
	"recipefeeder/internal/domain/feeding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeeder(
	store *mock.RecipeStore,
	index *mock.VectorIndex,
	queue *mock.EmbeddingQueue,
	cfg config.FeederConfig,
) *FeedingService {
	return NewFeedingService(
		NewKeyScanner(store),
		NewExistenceChecker(index, cfg.CheckConcurrency),
		NewQueueProducer(queue),
		cfg,
		nil,
	)
}

// recordingLogger captures performance log calls for assertions.
type recordingLogger struct {
	operations []string
	durations  []time.Duration
	fields     []logging.Fields
}

func (l *recordingLogger) Debug(context.Context, string, logging.Fields)                 {}
func (l *recordingLogger) Info(context.Context, string, logging.Fields)                  {}
func (l *recordingLogger) Warn(context.Context, string, logging.Fields)                  {}
func (l *recordingLogger) Error(context.Context, string, logging.Fields)                 {}
func (l *recordingLogger) ErrorWithError(context.Context, error, string, logging.Fields) {}

func (l *recordingLogger) LogPerformance(_ context.Context, operation string, duration time.Duration, fields logging.Fields) {
	l.operations = append(l.operations, operation)
	l.durations = append(l.durations, duration)
	l.fields = append(l.fields, fields)
}

func (l *recordingLogger) WithComponent(string) logging.ApplicationLogger { return l }

func defaultTestConfig() config.FeederConfig {
	return config.FeederConfig{
		TargetQueueCount:   10,
		MaxCycles:          1,
		MaxProcessingTime:  50 * time.Second,
		InnerScanBatchSize: 50,
		ChunkSize:          50,
	}
}

func TestFeedingService_RunOnce_SinglePageStore(t *testing.T) {
	store := mock.NewRecipeStore([]string{"r1", "r2", "r3", "r4", "r5"})
	index := mock.NewVectorIndex("r1", "r4")
	queue := mock.NewEmbeddingQueue()
	feeder := newTestFeeder(store, index, queue, defaultTestConfig())

	result, err := feeder.RunOnce(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 5, result.Stats.Scanned)
	assert.Equal(t, 2, result.Stats.ExistsInVector)
	assert.Equal(t, 3, result.Stats.MissingFromVector)
	assert.Equal(t, 3, result.Stats.Queued)
	assert.False(t, result.ReachedTarget)
	assert.True(t, result.SourceExhausted)
	assert.True(t, result.Success)
	assert.Equal(t, []string{"r2", "r3", "r5"}, queue.PublishedIDs())
}

func TestFeedingService_RunOnce_StopsAtTarget(t *testing.T) {
	keys := make([]string, 150)
	for i := range keys {
		keys[i] = fmt.Sprintf("recipe-%03d", i)
	}
	store := mock.NewRecipeStore(keys)
	index := mock.NewVectorIndex() // everything is missing
	queue := mock.NewEmbeddingQueue()
	feeder := newTestFeeder(store, index, queue, defaultTestConfig())

	result, err := feeder.RunOnce(context.Background(), "")
	require.NoError(t, err)

	// Only as many keys as needed to accumulate 10 missing are scanned.
	assert.LessOrEqual(t, result.Stats.Scanned, 50)
	assert.Equal(t, 10, result.Stats.Queued)
	assert.True(t, result.ReachedTarget)
	assert.False(t, result.SourceExhausted)
	assert.Len(t, queue.PublishedIDs(), 10)
}

func TestFeedingService_RunOnce_QueuedNeverExceedsTarget(t *testing.T) {
	keys := make([]string, 80)
	for i := range keys {
		keys[i] = fmt.Sprintf("recipe-%03d", i)
	}
	store := mock.NewRecipeStore(keys)
	index := mock.NewVectorIndex()
	queue := mock.NewEmbeddingQueue()

	cfg := defaultTestConfig()
	cfg.TargetQueueCount = 7
	cfg.InnerScanBatchSize = 3
	feeder := newTestFeeder(store, index, queue, cfg)

	result, err := feeder.RunOnce(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 7, result.Stats.Queued)
	assert.LessOrEqual(t, result.Stats.Queued, cfg.TargetQueueCount)
}

func TestFeedingService_RunOnce_EmptyStore(t *testing.T) {
	store := mock.NewRecipeStore(nil)
	index := mock.NewVectorIndex()
	queue := mock.NewEmbeddingQueue()
	feeder := newTestFeeder(store, index, queue, defaultTestConfig())

	result, err := feeder.RunOnce(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 0, result.Stats.Scanned)
	assert.Equal(t, 1, result.Stats.BatchesProcessed)
	assert.Equal(t, 0, result.Stats.Queued)
	assert.True(t, result.SourceExhausted)
	assert.False(t, result.ReachedTarget)
}

func TestFeedingService_RunOnce_AccumulatesAcrossPages(t *testing.T) {
	// 30 keys, every third one missing an embedding.
	keys := make([]string, 30)
	var existing []string
	for i := range keys {
		keys[i] = fmt.Sprintf("recipe-%02d", i)
		if i%3 != 0 {
			existing = append(existing, keys[i])
		}
	}
	store := mock.NewRecipeStore(keys)
	index := mock.NewVectorIndex(existing...)
	queue := mock.NewEmbeddingQueue()

	cfg := defaultTestConfig()
	cfg.TargetQueueCount = 5
	cfg.InnerScanBatchSize = 5
	feeder := newTestFeeder(store, index, queue, cfg)

	result, err := feeder.RunOnce(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 5, result.Stats.Queued)
	assert.True(t, result.ReachedTarget)
	assert.Greater(t, result.Stats.BatchesProcessed, 1)
	assert.Equal(t, result.Stats.Scanned,
		result.Stats.ExistsInVector+result.Stats.MissingFromVector)
}

func TestFeedingService_RunOnce_ChunkFailureMakesCycleUnsuccessful(t *testing.T) {
	store := mock.NewRecipeStore([]string{"r1", "r2", "r3"})
	index := mock.NewVectorIndex()
	queue := mock.NewEmbeddingQueue()
	queue.FailChunk(0, errors.New("jetstream unavailable"))

	cfg := defaultTestConfig()
	feeder := newTestFeeder(store, index, queue, cfg)

	result, err := feeder.RunOnce(context.Background(), "")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Stats.Queued)
	assert.NotEmpty(t, result.Stats.Errors)
}

func TestFeedingService_RunFull_StopsWhenTargetReached(t *testing.T) {
	keys := make([]string, 100)
	for i := range keys {
		keys[i] = fmt.Sprintf("recipe-%03d", i)
	}
	store := mock.NewRecipeStore(keys)
	index := mock.NewVectorIndex()
	queue := mock.NewEmbeddingQueue()

	cfg := defaultTestConfig()
	cfg.MaxCycles = 5
	feeder := newTestFeeder(store, index, queue, cfg)

	result, err := feeder.RunFull(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Cycles)
	assert.Equal(t, 10, result.Stats.Queued)
	assert.True(t, result.Success)
	assert.True(t, result.CompletedFully)
}

func TestFeedingService_RunFull_ContinuesPastExhaustionWithWorkQueued(t *testing.T) {
	// Exhaustion with recipes still queued may be a transient page
	// boundary; the run continues and only stops once a cycle queues
	// nothing.
	store := mock.NewRecipeStore([]string{"r1", "r2", "r3"})
	index := mock.NewVectorIndex()
	queue := mock.NewEmbeddingQueue()

	cfg := defaultTestConfig()
	cfg.MaxCycles = 4
	feeder := newTestFeeder(store, index, queue, cfg)

	result, err := feeder.RunFull(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Cycles)
	assert.Equal(t, 3, result.Stats.Queued)
	assert.True(t, result.CompletedFully)
	assert.Equal(t, []string{"r1", "r2", "r3"}, queue.PublishedIDs())
}

func TestFeedingService_RunFull_AggregatesStatsAcrossCycles(t *testing.T) {
	store := mock.NewRecipeStore([]string{"r1", "r2", "r3", "r4"})
	index := mock.NewVectorIndex("r2")
	queue := mock.NewEmbeddingQueue()

	cfg := defaultTestConfig()
	cfg.MaxCycles = 3
	feeder := newTestFeeder(store, index, queue, cfg)

	result, err := feeder.RunFull(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 4, result.Stats.Scanned)
	assert.Equal(t, 1, result.Stats.ExistsInVector)
	assert.Equal(t, 3, result.Stats.MissingFromVector)
	assert.Equal(t, 3, result.Stats.Queued)
}

func TestFeedingService_RunFull_AbortsOnScanError(t *testing.T) {
	store := mock.NewRecipeStore([]string{"r1", "r2", "r3", "r4", "r5"})
	store.FailListAtCall(2, errors.New("kv unavailable"))
	index := mock.NewVectorIndex()
	queue := mock.NewEmbeddingQueue()

	cfg := defaultTestConfig()
	cfg.MaxCycles = 3
	feeder := newTestFeeder(store, index, queue, cfg)

	result, err := feeder.RunFull(context.Background(), "")
	require.Error(t, err)

	var scanErr *feeding.ScanError
	require.ErrorAs(t, err, &scanErr)

	// Partial statistics and the last successfully advanced cursor are
	// still reported so the caller can resume.
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.False(t, result.CompletedFully)
	assert.Equal(t, 1, result.Cycles)
	assert.Equal(t, 5, result.Stats.Scanned)
	assert.Equal(t, "5", result.NextCursor)
	assert.NotEmpty(t, result.Error)
}

func TestFeedingService_RunFull_StopsOnWallClockBudget(t *testing.T) {
	store := mock.NewRecipeStore([]string{"r1", "r2", "r3"})
	index := mock.NewVectorIndex()
	queue := mock.NewEmbeddingQueue()

	cfg := defaultTestConfig()
	cfg.MaxCycles = 10
	cfg.MaxProcessingTime = time.Nanosecond
	feeder := newTestFeeder(store, index, queue, cfg)

	result, err := feeder.RunFull(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 0, result.Cycles)
	assert.False(t, result.CompletedFully)
	assert.Empty(t, queue.PublishedIDs())
}

func TestFeedingService_RunFull_ResumesFromSuppliedCursor(t *testing.T) {
	store := mock.NewRecipeStore([]string{"r1", "r2", "r3", "r4"})
	index := mock.NewVectorIndex()
	queue := mock.NewEmbeddingQueue()

	cfg := defaultTestConfig()
	cfg.TargetQueueCount = 2
	feeder := newTestFeeder(store, index, queue, cfg)

	first, err := feeder.RunFull(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, queue.PublishedIDs())

	second, err := feeder.RunFull(context.Background(), first.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2", "r3", "r4"}, queue.PublishedIDs())
	assert.NotEqual(t, first.NextCursor, "")
	assert.Equal(t, 2, second.Stats.Queued)
}

func TestFeedingService_RunFull_LogsRunDuration(t *testing.T) {
	store := mock.NewRecipeStore([]string{"r1", "r2", "r3"})
	index := mock.NewVectorIndex()
	queue := mock.NewEmbeddingQueue()
	logger := &recordingLogger{}

	cfg := defaultTestConfig()
	feeder := NewFeedingService(
		NewKeyScanner(store),
		NewExistenceChecker(index, cfg.CheckConcurrency),
		NewQueueProducer(queue),
		cfg,
		logger,
	)

	_, err := feeder.RunFull(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, logger.operations, 1)
	assert.Equal(t, "feeding run", logger.operations[0])
	assert.GreaterOrEqual(t, logger.durations[0], time.Duration(0))
	assert.Equal(t, 3, logger.fields[0]["queued"])
	assert.Equal(t, true, logger.fields[0]["success"])
}

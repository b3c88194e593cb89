package service

import (
	"context"
	"time"

	"recipefeeder/internal/application/common/logging"
	"recipefeeder/internal/application/common/slogger"
	"recipefeeder/internal/config"
	"recipefeeder/internal/domain/feeding"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// FeedingService drives the scan -> check -> enqueue loop. It is stateless
// across invocations: the caller supplies the cursor from the previous run
// and persists the one returned. Two overlapping invocations may enqueue
// the same recipe twice; deduplication is intentionally left to the
// idempotent embedding consumer downstream.
type FeedingService struct {
	scanner  *KeyScanner
	checker  *ExistenceChecker
	producer *QueueProducer
	config   config.FeederConfig
	logger   logging.ApplicationLogger

	tracer          trace.Tracer
	meter           metric.Meter
	scannedCounter  metric.Int64Counter
	missingCounter  metric.Int64Counter
	queuedCounter   metric.Int64Counter
	runDurationHist metric.Float64Histogram
}

// NewFeedingService wires the orchestrator from its three collaborators and
// the feeder configuration. A nil logger falls back to the global one.
func NewFeedingService(
	scanner *KeyScanner,
	checker *ExistenceChecker,
	producer *QueueProducer,
	cfg config.FeederConfig,
	logger logging.ApplicationLogger,
) *FeedingService {
	if logger == nil {
		logger = slogger.WithComponent("feeding-orchestrator")
	}

	s := &FeedingService{
		scanner:  scanner,
		checker:  checker,
		producer: producer,
		config:   cfg,
		logger:   logger,
		tracer:   otel.Tracer("feeding-orchestrator"),
		meter:    otel.Meter("feeding-orchestrator"),
	}

	s.scannedCounter, _ = s.meter.Int64Counter("feeder.recipes_scanned",
		metric.WithDescription("Recipe keys scanned from the key-value store"))
	s.missingCounter, _ = s.meter.Int64Counter("feeder.recipes_missing",
		metric.WithDescription("Recipes found missing from the vector index"))
	s.queuedCounter, _ = s.meter.Int64Counter("feeder.recipes_queued",
		metric.WithDescription("Recipes enqueued onto the embedding work queue"))
	s.runDurationHist, _ = s.meter.Float64Histogram("feeder.run_duration_ms",
		metric.WithDescription("Duration of full feeding runs in milliseconds"))

	return s
}

// RunOnce executes a single cycle: keep scanning and checking until the
// accumulated missing set reaches the target or the store is exhausted,
// then enqueue exactly up to the target.
func (s *FeedingService) RunOnce(ctx context.Context, cursor string) (*feeding.CycleResult, error) {
	ctx, span := s.tracer.Start(ctx, "feeder.run_once")
	defer span.End()

	start := time.Now()
	target := s.config.TargetQueueCount

	stats := feeding.Stats{Errors: []string{}}
	var missingAccumulated []string
	sourceExhausted := false

	for len(missingAccumulated) < target && !sourceExhausted {
		pageSize := s.config.InnerScanBatchSize
		if remaining := target - len(missingAccumulated); remaining < pageSize {
			pageSize = remaining
		}

		page, err := s.scanner.Scan(ctx, pageSize, cursor)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		if len(page.Keys) == 0 {
			sourceExhausted = true
			stats.BatchesProcessed++
			break
		}

		existence := s.checker.Check(ctx, page.Keys)
		missingAccumulated = append(missingAccumulated, existence.Missing...)

		stats.Scanned += len(page.Keys)
		stats.ExistsInVector += len(existence.Exists)
		stats.MissingFromVector += len(existence.Missing)
		stats.BatchesProcessed++
		cursor = page.Cursor

		if page.Exhausted {
			sourceExhausted = true
		}
	}

	reachedTarget := len(missingAccumulated) >= target
	if len(missingAccumulated) > target {
		// Never enqueue more than requested.
		missingAccumulated = missingAccumulated[:target]
	}

	outcome := s.producer.Enqueue(ctx, missingAccumulated, EnqueueOptions{
		ChunkSize: s.config.ChunkSize,
		Validate:  true,
	})
	stats.Queued += outcome.QueuedCount
	for _, err := range outcome.Errors {
		stats.RecordError(err)
	}

	stats.ProcessingTime = time.Since(start)
	s.scannedCounter.Add(ctx, int64(stats.Scanned))
	s.missingCounter.Add(ctx, int64(stats.MissingFromVector))
	s.queuedCounter.Add(ctx, int64(stats.Queued))

	s.logger.Info(ctx, "Feeding cycle completed", logging.Fields{
		"scanned":          stats.Scanned,
		"exists_in_vector": stats.ExistsInVector,
		"missing":          stats.MissingFromVector,
		"queued":           stats.Queued,
		"reached_target":   reachedTarget,
		"source_exhausted": sourceExhausted,
		"duration_ms":      stats.ProcessingTime.Milliseconds(),
	})

	return &feeding.CycleResult{
		Success:         outcome.Success,
		Stats:           stats,
		NextCursor:      cursor,
		ReachedTarget:   reachedTarget,
		SourceExhausted: sourceExhausted,
	}, nil
}

// RunFull repeats RunOnce up to maxCycles times, re-using the returned
// cursor, stopping early when a cycle reaches its target, when the source
// is exhausted and the cycle queued nothing, or when the wall-clock budget
// is exceeded. The budget is checked between cycles only; a single cycle is
// not preemptible mid-flight.
func (s *FeedingService) RunFull(ctx context.Context, cursor string) (*feeding.RunResult, error) {
	ctx, span := s.tracer.Start(ctx, "feeder.run_full")
	defer span.End()

	start := time.Now()
	result := &feeding.RunResult{
		Success:        true,
		Stats:          feeding.Stats{Errors: []string{}},
		CompletedFully: true,
		NextCursor:     cursor,
	}

	for result.Cycles < s.config.MaxCycles {
		if elapsed := time.Since(start); elapsed > s.config.MaxProcessingTime {
			s.logger.Warn(ctx, "Feeding run stopped: wall-clock budget exceeded", logging.Fields{
				"elapsed_ms": elapsed.Milliseconds(),
				"budget_ms":  s.config.MaxProcessingTime.Milliseconds(),
				"cycles":     result.Cycles,
			})
			result.CompletedFully = false
			break
		}

		cycle, err := s.RunOnce(ctx, result.NextCursor)
		if err != nil {
			span.RecordError(err)
			s.logger.ErrorWithError(ctx, err, "Feeding run aborted", logging.Fields{
				"cycles":      result.Cycles,
				"last_cursor": result.NextCursor,
			})
			result.Success = false
			result.CompletedFully = false
			result.Error = err.Error()
			s.recordRunDuration(ctx, start, result)
			return result, err
		}

		result.Cycles++
		result.Stats.Add(cycle.Stats)
		result.NextCursor = cycle.NextCursor
		if !cycle.Success {
			result.Success = false
		}

		if cycle.ReachedTarget {
			break
		}
		// Exhaustion with work still queued may be a transient page
		// boundary rather than true end-of-data; only stop when the cycle
		// queued nothing.
		if cycle.SourceExhausted && cycle.Stats.Queued == 0 {
			break
		}
	}

	s.recordRunDuration(ctx, start, result)

	s.logger.LogPerformance(ctx, "feeding run", time.Since(start), logging.Fields{
		"cycles":          result.Cycles,
		"scanned":         result.Stats.Scanned,
		"queued":          result.Stats.Queued,
		"completed_fully": result.CompletedFully,
		"success":         result.Success,
	})

	return result, nil
}

func (s *FeedingService) recordRunDuration(ctx context.Context, start time.Time, result *feeding.RunResult) {
	s.runDurationHist.Record(ctx, float64(time.Since(start).Milliseconds()),
		metric.WithAttributes(
			attribute.Bool("success", result.Success),
			attribute.Int("cycles", result.Cycles),
		))
}

package service

import (
	"context"

	"recipefeeder/internal/application/common/slogger"
	"recipefeeder/internal/domain/feeding"
	"recipefeeder/internal/port/outbound"

	"golang.org/x/sync/errgroup"
)

// ExistenceChecker partitions a batch of recipe keys by whether the vector
// index already holds an embedding for them.
//
// A key whose existence query fails is classified as missing. This is a
// deliberate policy, not error masking by accident: re-embedding a recipe is
// cheap and idempotent, silently skipping one is not recoverable. The
// checker is the only component allowed to turn a transport error into a
// business outcome.
type ExistenceChecker struct {
	index       outbound.VectorIndex
	concurrency int
}

// NewExistenceChecker creates a checker over the given vector index.
// Concurrency values below 2 keep the checker sequential; higher values
// issue existence queries in bounded concurrent groups.
func NewExistenceChecker(index outbound.VectorIndex, concurrency int) *ExistenceChecker {
	return &ExistenceChecker{index: index, concurrency: concurrency}
}

// Check partitions keys into exists/missing. The partitioning is identical
// in sequential and concurrent mode regardless of completion order: results
// are gathered by input position and assembled in input order.
func (c *ExistenceChecker) Check(ctx context.Context, keys []string) *feeding.ExistenceResult {
	result := &feeding.ExistenceResult{
		Exists:  []string{},
		Missing: []string{},
	}
	if len(keys) == 0 {
		return result
	}

	found := make([]bool, len(keys))

	if c.concurrency > 1 {
		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(c.concurrency)
		for i, key := range keys {
			i, key := i, key
			group.Go(func() error {
				found[i] = c.hasEmbedding(groupCtx, key)
				return nil
			})
		}
		// Workers never return errors; failures are already folded into
		// the missing partition.
		_ = group.Wait()
	} else {
		for i, key := range keys {
			found[i] = c.hasEmbedding(ctx, key)
		}
	}

	for i, key := range keys {
		if found[i] {
			result.Exists = append(result.Exists, key)
		} else {
			result.Missing = append(result.Missing, key)
		}
	}
	return result
}

func (c *ExistenceChecker) hasEmbedding(ctx context.Context, key string) bool {
	exists, err := c.index.HasEmbedding(ctx, key)
	if err != nil {
		slogger.Warn(ctx, "Existence query failed, treating recipe as missing", slogger.Fields{
			"recipe_id": key,
			"error":     err.Error(),
		})
		return false
	}
	return exists
}

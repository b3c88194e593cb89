package inbound

import (
	"context"

	"recipefeeder/internal/domain/feeding"
)

// FeederService defines the inbound port for the recipe embedding feeder.
// Both entry points are stateless: the caller supplies the cursor from the
// previous invocation and is responsible for persisting the one returned.
type FeederService interface {
	// RunOnce executes a single scan-accumulate-enqueue cycle.
	RunOnce(ctx context.Context, cursor string) (*feeding.CycleResult, error)

	// RunFull executes up to the configured number of cycles within the
	// configured wall-clock budget. On a hard cycle error the partial
	// result is returned alongside the error so the caller still sees the
	// statistics and the last good cursor.
	RunFull(ctx context.Context, cursor string) (*feeding.RunResult, error)
}

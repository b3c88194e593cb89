package cmd

import (
	"context"
	"fmt"

	"recipefeeder/internal/adapter/outbound/messaging"
	"recipefeeder/internal/adapter/outbound/recipestore"
	"recipefeeder/internal/adapter/outbound/vectorindex"
	"recipefeeder/internal/application/service"
	"recipefeeder/internal/config"
	"recipefeeder/internal/port/inbound"

	"github.com/jackc/pgx/v5/pgxpool"
)

// feederDependencies bundles everything a command needs to run the feeder.
type feederDependencies struct {
	pool      *pgxpool.Pool
	publisher *messaging.NATSQueuePublisher
	store     *recipestore.PostgresRecipeStore
	index     *vectorindex.PostgresVectorIndex
	feeder    inbound.FeederService
}

// buildFeederDependencies wires the adapters and the feeding service from
// config. The caller owns the returned resources and must call close.
func buildFeederDependencies(ctx context.Context, cfg *config.Config, feederCfg config.FeederConfig) (*feederDependencies, error) {
	pool, err := recipestore.NewConnectionPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	publisher, err := messaging.NewNATSQueuePublisher(cfg.NATS)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create queue publisher: %w", err)
	}
	if err := publisher.Connect(); err != nil {
		pool.Close()
		return nil, err
	}
	if err := publisher.EnsureStream(); err != nil {
		_ = publisher.Disconnect()
		pool.Close()
		return nil, err
	}

	deps := &feederDependencies{
		pool:      pool,
		publisher: publisher,
		store:     recipestore.NewPostgresRecipeStore(pool),
		index:     vectorindex.NewPostgresVectorIndex(pool),
	}
	deps.feeder = deps.newFeeder(feederCfg)
	return deps, nil
}

// newFeeder builds a feeding service for the given effective configuration,
// sharing the already-connected adapters. The HTTP shell uses this to honor
// per-request overrides.
func (d *feederDependencies) newFeeder(feederCfg config.FeederConfig) inbound.FeederService {
	return service.NewFeedingService(
		service.NewKeyScanner(d.store),
		service.NewExistenceChecker(d.index, feederCfg.CheckConcurrency),
		service.NewQueueProducer(d.publisher),
		feederCfg,
		nil,
	)
}

func (d *feederDependencies) close() {
	_ = d.publisher.Disconnect()
	d.pool.Close()
}

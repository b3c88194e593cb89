// Package vectorindex provides the PostgreSQL/pgvector-backed adapter for
// the vector index port. The feeder only probes for existence by recipe id;
// nearest-neighbor search belongs to the search service, not here.
package vectorindex

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const embeddingsTable = "recipe_embeddings"

// PostgresVectorIndex implements the VectorIndex port against the
// recipe_embeddings table.
type PostgresVectorIndex struct {
	pool *pgxpool.Pool
}

// NewPostgresVectorIndex creates a new PostgreSQL vector index adapter.
func NewPostgresVectorIndex(pool *pgxpool.Pool) *PostgresVectorIndex {
	return &PostgresVectorIndex{pool: pool}
}

// HasEmbedding reports whether an embedding exists for the recipe id.
func (v *PostgresVectorIndex) HasEmbedding(ctx context.Context, recipeID string) (bool, error) {
	if recipeID == "" {
		return false, fmt.Errorf("recipe id cannot be empty")
	}

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE recipe_id = $1)`, embeddingsTable)

	var exists bool
	if err := v.pool.QueryRow(ctx, query, recipeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to query embedding existence for %q: %w", recipeID, err)
	}
	return exists, nil
}

// CountEmbeddings returns the total number of stored embeddings.
func (v *PostgresVectorIndex) CountEmbeddings(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, embeddingsTable)

	var count int64
	if err := v.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}
	return count, nil
}

package outbound

import "context"

// VectorIndex defines the outbound port for the recipe embedding index.
type VectorIndex interface {
	// HasEmbedding reports whether the index holds an embedding for the
	// given recipe id.
	HasEmbedding(ctx context.Context, recipeID string) (bool, error)

	// CountEmbeddings returns the total number of stored embeddings.
	CountEmbeddings(ctx context.Context) (int64, error)
}

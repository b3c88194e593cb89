package mock

import (
	"context"
	"sync"
)

// VectorIndex is an in-memory VectorIndex keyed by recipe id. Individual
// ids can be made to fail their existence query to exercise the checker's
// conservative-missing policy.
type VectorIndex struct {
	mu       sync.Mutex
	existing map[string]bool
	failWith map[string]error
	queries  []string
}

// NewVectorIndex creates a mock index where the given ids have embeddings.
func NewVectorIndex(existing ...string) *VectorIndex {
	index := &VectorIndex{
		existing: make(map[string]bool, len(existing)),
		failWith: make(map[string]error),
	}
	for _, id := range existing {
		index.existing[id] = true
	}
	return index
}

// FailQueryFor makes HasEmbedding return err for the given recipe id.
func (v *VectorIndex) FailQueryFor(recipeID string, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.failWith[recipeID] = err
}

// Queries returns the recipe ids queried so far, in call order.
func (v *VectorIndex) Queries() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.queries...)
}

// HasEmbedding reports whether the mock holds an embedding for the id.
func (v *VectorIndex) HasEmbedding(_ context.Context, recipeID string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.queries = append(v.queries, recipeID)
	if err, ok := v.failWith[recipeID]; ok {
		return false, err
	}
	return v.existing[recipeID], nil
}

// CountEmbeddings returns the number of ids with embeddings.
func (v *VectorIndex) CountEmbeddings(_ context.Context) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return int64(len(v.existing)), nil
}

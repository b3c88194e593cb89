package outbound

import "context"

// KeyPage is one page of a paginated key listing from the recipe store.
// Cursor is an opaque continuation token; passing it back to ListKeys
// resumes from the same logical position. ListComplete is true when the
// store reports no further keys after this page.
type KeyPage struct {
	Keys         []string
	Cursor       string
	ListComplete bool
}

// RecipeStore defines the outbound port for the recipe key-value store.
// The store is an eventually-consistent external system; the feeder only
// reads from it.
type RecipeStore interface {
	// ListKeys returns at most limit recipe keys starting after the given
	// cursor. An empty cursor means the start of the key space.
	ListKeys(ctx context.Context, limit int, cursor string) (*KeyPage, error)
}

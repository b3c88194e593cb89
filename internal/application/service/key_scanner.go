package service

import (
	"context"
	"errors"

	"recipefeeder/internal/application/common/slogger"
	"recipefeeder/internal/domain/feeding"
	"recipefeeder/internal/port/outbound"
)

// KeyScanner pages through the recipe key namespace using an opaque cursor.
// It is a pure read: any storage fault surfaces as a feeding.ScanError and
// is not retried here.
type KeyScanner struct {
	store outbound.RecipeStore
}

// NewKeyScanner creates a new KeyScanner backed by the given recipe store.
func NewKeyScanner(store outbound.RecipeStore) *KeyScanner {
	return &KeyScanner{store: store}
}

// Scan returns at most pageSize keys starting after the given cursor, plus
// a continuation cursor and an exhaustion flag. An empty cursor means the
// start of the key space.
func (s *KeyScanner) Scan(ctx context.Context, pageSize int, cursor string) (*feeding.ScanPage, error) {
	if pageSize <= 0 {
		return nil, errors.New("page size must be greater than 0")
	}

	page, err := s.store.ListKeys(ctx, pageSize, cursor)
	if err != nil {
		return nil, &feeding.ScanError{Cursor: cursor, Err: err}
	}

	slogger.Debug(ctx, "Scanned recipe key page", slogger.Fields{
		"page_size": pageSize,
		"returned":  len(page.Keys),
		"exhausted": page.ListComplete,
	})

	return &feeding.ScanPage{
		Keys:      page.Keys,
		Cursor:    page.Cursor,
		Exhausted: page.ListComplete,
	}, nil
}

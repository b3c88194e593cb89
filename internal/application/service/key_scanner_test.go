package service

import (
	"context"
	"errors"
	"testing"

	"recipefeeder/internal/adapter/outbound/mock"
	"recipefeeder/internal/domain/feeding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyScanner_Scan_InvalidPageSize(t *testing.T) {
	scanner := NewKeyScanner(mock.NewRecipeStore(nil))

	tests := []struct {
		name     string
		pageSize int
	}{
		{name: "zero", pageSize: 0},
		{name: "negative", pageSize: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := scanner.Scan(context.Background(), tt.pageSize, "")
			require.Error(t, err)
			assert.Nil(t, page)
		})
	}
}

func TestKeyScanner_Scan_PagesThroughKeySpace(t *testing.T) {
	store := mock.NewRecipeStore([]string{"r1", "r2", "r3", "r4", "r5"})
	scanner := NewKeyScanner(store)

	first, err := scanner.Scan(context.Background(), 2, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, first.Keys)
	assert.False(t, first.Exhausted)
	require.NotEmpty(t, first.Cursor)

	second, err := scanner.Scan(context.Background(), 2, first.Cursor)
	require.NoError(t, err)
	assert.Equal(t, []string{"r3", "r4"}, second.Keys)
	assert.False(t, second.Exhausted)

	third, err := scanner.Scan(context.Background(), 2, second.Cursor)
	require.NoError(t, err)
	assert.Equal(t, []string{"r5"}, third.Keys)
	assert.True(t, third.Exhausted)
}

func TestKeyScanner_Scan_ResumptionDoesNotResurfaceKeys(t *testing.T) {
	store := mock.NewRecipeStore([]string{"a", "b", "c", "d"})
	scanner := NewKeyScanner(store)

	seen := make(map[string]int)
	cursor := ""
	for {
		page, err := scanner.Scan(context.Background(), 3, cursor)
		require.NoError(t, err)
		for _, key := range page.Keys {
			seen[key]++
		}
		cursor = page.Cursor
		if page.Exhausted {
			break
		}
	}

	require.Len(t, seen, 4)
	for key, count := range seen {
		assert.Equal(t, 1, count, "key %q scanned more than once", key)
	}
}

func TestKeyScanner_Scan_StoreFaultSurfacesAsScanError(t *testing.T) {
	store := mock.NewRecipeStore([]string{"r1"})
	store.FailListWith(errors.New("kv unavailable"))
	scanner := NewKeyScanner(store)

	page, err := scanner.Scan(context.Background(), 10, "some-cursor")
	require.Error(t, err)
	assert.Nil(t, page)

	var scanErr *feeding.ScanError
	require.ErrorAs(t, err, &scanErr)
	assert.Equal(t, "some-cursor", scanErr.Cursor)
}

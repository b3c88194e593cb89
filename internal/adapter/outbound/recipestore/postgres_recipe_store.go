package recipestore

import (
	"context"
	"encoding/base64"
	"fmt"

	"recipefeeder/internal/port/outbound"

	"github.com/jackc/pgx/v5/pgxpool"
)

const recipesTable = "recipes"

// PostgresRecipeStore implements the RecipeStore port with keyset
// pagination over the recipes table. The cursor is the base64url-encoded
// last key of the previous page, which keeps it opaque to callers while
// making resumption stable under a stable store.
type PostgresRecipeStore struct {
	pool *pgxpool.Pool
}

// NewPostgresRecipeStore creates a new PostgreSQL recipe store.
func NewPostgresRecipeStore(pool *pgxpool.Pool) *PostgresRecipeStore {
	return &PostgresRecipeStore{pool: pool}
}

// ListKeys returns at most limit keys after the cursor position. It probes
// one row past the limit to decide ListComplete without a second query.
func (s *PostgresRecipeStore) ListKeys(ctx context.Context, limit int, cursor string) (*outbound.KeyPage, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0, got %d", limit)
	}

	afterKey, err := decodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT key FROM %s WHERE ($1 = '' OR key > $1) ORDER BY key LIMIT $2`,
		recipesTable,
	)

	rows, err := s.pool.Query(ctx, query, afterKey, limit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe keys: %w", err)
	}
	defer rows.Close()

	keys := make([]string, 0, limit)
	for rows.Next() {
		var key string
		if scanErr := rows.Scan(&key); scanErr != nil {
			return nil, fmt.Errorf("failed to scan recipe key: %w", scanErr)
		}
		keys = append(keys, key)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to read recipe keys: %w", rowsErr)
	}

	listComplete := len(keys) <= limit
	if !listComplete {
		keys = keys[:limit]
	}

	page := &outbound.KeyPage{
		Keys:         keys,
		ListComplete: listComplete,
	}
	if len(keys) > 0 {
		page.Cursor = encodeCursor(keys[len(keys)-1])
	}
	return page, nil
}

func encodeCursor(lastKey string) string {
	return base64.URLEncoding.EncodeToString([]byte(lastKey))
}

func decodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}
	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("invalid cursor: %w", err)
	}
	return string(decoded), nil
}

// Package mock provides in-memory implementations of the outbound ports for
// development and testing.
package mock

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"recipefeeder/internal/port/outbound"
)

// RecipeStore is an in-memory RecipeStore holding a fixed, ordered key
// list. The cursor is the stringified offset into that list, which keeps
// resumption deterministic for tests.
type RecipeStore struct {
	mu         sync.Mutex
	keys       []string
	listErr    error
	failAtCall int
	failAtErr  error
	calls      int
}

// NewRecipeStore creates a mock store over the given keys.
func NewRecipeStore(keys []string) *RecipeStore {
	return &RecipeStore{keys: keys}
}

// FailListWith makes every subsequent ListKeys call return err.
func (s *RecipeStore) FailListWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

// FailListAtCall makes only the n-th ListKeys call (1-based) return err.
func (s *RecipeStore) FailListAtCall(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAtCall = n
	s.failAtErr = err
}

// ListCalls returns how many times ListKeys was invoked.
func (s *RecipeStore) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// ListKeys pages through the fixed key list.
func (s *RecipeStore) ListKeys(_ context.Context, limit int, cursor string) (*outbound.KeyPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	if s.failAtCall > 0 && s.calls == s.failAtCall {
		return nil, s.failAtErr
	}

	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor: %w", err)
		}
		offset = parsed
	}
	if offset > len(s.keys) {
		offset = len(s.keys)
	}

	end := offset + limit
	if end > len(s.keys) {
		end = len(s.keys)
	}

	page := &outbound.KeyPage{
		Keys:         append([]string(nil), s.keys[offset:end]...),
		ListComplete: end >= len(s.keys),
	}
	if end > offset {
		page.Cursor = strconv.Itoa(end)
	} else {
		page.Cursor = cursor
	}
	return page, nil
}

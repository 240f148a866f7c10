package counter

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/burner/internal/db"
	"github.com/kailas-cloud/burner/internal/domain"
)

// store is the consumer interface for counter operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store persists named integer counters as decimal strings (GET/SET).
// There is a single writer per key, so last write wins is enough.
type Store struct {
	store  store
	prefix string
}

// New creates a counter store. Keys are namespaced with prefix.
func New(s store, prefix string) *Store {
	if prefix == "" {
		prefix = domain.DefaultKeyPrefix
	}
	return &Store{store: s, prefix: prefix}
}

// Get returns the counter value. Returns 0 if the key does not exist.
func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	full := s.prefix + key

	data, err := s.store.Get(ctx, full)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("counter GET %s: %w: %w", full, domain.ErrStoreUnavailable, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("counter GET %s parse: %w", full, err)
	}
	return val, nil
}

// Set overwrites the counter value.
func (s *Store) Set(ctx context.Context, key string, val int64) error {
	full := s.prefix + key
	if err := s.store.Set(ctx, full, []byte(strconv.FormatInt(val, 10))); err != nil {
		return fmt.Errorf("counter SET %s: %w: %w", full, domain.ErrStoreUnavailable, err)
	}
	return nil
}

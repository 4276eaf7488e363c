package fx

import (
	"context"
	"fmt"

	"github.com/teklifbul/mukayese-backend/pkg/redis"
)

// RedisStore keeps the shared rate table in a Redis hash so every API
// replica converges on the same rates.
type RedisStore struct {
	client redis.HashStore
	key    string
}

func NewRedisStore(client redis.HashStore, key string) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if key == "" {
		return nil, fmt.Errorf("rate table key required")
	}
	return &RedisStore{client: client, key: key}, nil
}

func (s *RedisStore) Save(ctx context.Context, table *Table) error {
	if table.Len() == 0 {
		return fmt.Errorf("cannot store an empty rate table")
	}
	return s.client.ReplaceHash(ctx, s.key, table.Raw())
}

// Load returns the stored table; found is false when the hash does not exist.
func (s *RedisStore) Load(ctx context.Context) (table *Table, found bool, err error) {
	raw, err := s.client.HGetAll(ctx, s.key)
	if err != nil {
		return nil, false, fmt.Errorf("read rate table: %w", err)
	}
	if len(raw) == 0 {
		return nil, false, nil
	}
	table, err = ParseTable(raw)
	if err != nil {
		return nil, true, fmt.Errorf("stored rate table is invalid: %w", err)
	}
	return table, true, nil
}

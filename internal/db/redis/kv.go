package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/snapquery/snapquery/internal/db"
)

// Get returns the value for key, or db.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := s.client.B().Get().Key(key).Build()
	val, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.NewError(db.OpGet, key, db.ErrKeyNotFound)
		}
		return nil, db.NewError(db.OpGet, key, err)
	}
	return val, nil
}

// Set writes value at key without expiration.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.client.B().Set().Key(key).Value(rueidis.BinaryString(value)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return db.NewError(db.OpSet, key, err)
	}
	return nil
}

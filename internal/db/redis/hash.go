package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/snapquery/snapquery/internal/db"
)

// HSet writes all fields of a single hash document.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	b := s.client.B().Hset().Key(key).FieldValue()
	for f, v := range fields {
		b = b.FieldValue(f, v)
	}
	if err := s.client.Do(ctx, b.Build()).Error(); err != nil {
		return db.NewError(db.OpHSet, key, err)
	}
	return nil
}

// HSetMulti writes multiple hash documents in a single pipelined round trip.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}
	cmds := make(rueidis.Commands, 0, len(items))
	for _, item := range items {
		b := s.client.B().Hset().Key(item.Key).FieldValue()
		for f, v := range item.Fields {
			b = b.FieldValue(f, v)
		}
		cmds = append(cmds, b.Build())
	}
	for i, resp := range s.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return db.NewError(db.OpHSet, items[i].Key, err)
		}
	}
	return nil
}

// Del removes keys. Missing keys are not an error.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	cmd := s.client.B().Del().Key(keys...).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return db.NewError(db.OpDel, keys[0], err)
	}
	return nil
}

// Scan returns all keys matching pattern using cursor iteration.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		entry, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, db.NewError(db.OpScan, pattern, err)
		}
		keys = append(keys, entry.Elements...)
		cursor = entry.Cursor
		if cursor == 0 {
			return keys, nil
		}
	}
}

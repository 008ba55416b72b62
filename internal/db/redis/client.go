// Package redis implements the db contracts on top of a Redis-compatible
// server with the RediSearch module loaded.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/snapquery/snapquery/internal/db"
)

// Config holds connection settings for the store.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Store implements db.Store over rueidis.
type Store struct {
	client rueidis.Client
	logger *zap.Logger
}

// New connects to the server and returns a Store.
func New(cfg Config, logger *zap.Logger) (*Store, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{cfg.Addr},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
		// FT.SEARCH replies are RESP2-shaped maps; client-side caching is
		// not used by this service.
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("redis connect %s: %w", cfg.Addr, err)
	}
	return &Store{client: client, logger: logger}, nil
}

// NewFromClient wraps an existing client, used by tests.
func NewFromClient(client rueidis.Client, logger *zap.Logger) *Store {
	return &Store{client: client, logger: logger}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return db.NewError(db.OpPing, "", fmt.Errorf("%w: %v", db.ErrConnFailed, err))
	}
	return nil
}

// WaitForReady polls the server until it responds or the timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		if err := s.Ping(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return fmt.Errorf("store not ready after %s: %w", timeout, lastErr)
}

// Close releases the underlying client.
func (s *Store) Close() {
	s.client.Close()
}

package process

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/snapquery/snapquery/internal/domain"
	"github.com/snapquery/snapquery/internal/metrics"
)

// Chain tries description providers in their configured order until one
// succeeds. Provider failures are not equivalent (network, encoding, API
// incompatibility) so each is logged individually before moving on.
type Chain struct {
	providers []domain.Describer
	logger    *zap.Logger
}

// NewChain creates a provider chain.
func NewChain(providers []domain.Describer, logger *zap.Logger) *Chain {
	return &Chain{providers: providers, logger: logger}
}

// Describe returns the first successful description. When every provider
// fails the error wraps domain.ErrDescribeFailed and joins all causes.
func (c *Chain) Describe(ctx context.Context, img domain.Image) (string, error) {
	if len(c.providers) == 0 {
		return "", fmt.Errorf("%w: no providers configured", domain.ErrDescribeFailed)
	}

	var errs []error
	for _, p := range c.providers {
		desc, err := p.Describe(ctx, img)
		if err != nil {
			metrics.VisionRequestsTotal.WithLabelValues(p.Name(), "error").Inc()
			c.logger.Warn("description provider failed",
				zap.String("provider", p.Name()),
				zap.String("image", img.Name),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		metrics.VisionRequestsTotal.WithLabelValues(p.Name(), "success").Inc()
		return desc, nil
	}

	return "", fmt.Errorf("%w: %w", domain.ErrDescribeFailed, errors.Join(errs...))
}

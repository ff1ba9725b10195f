package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/carmeet/internal/logging"
	"github.com/dmitrijs2005/carmeet/internal/server/metrics"
)

// ExpiredRemover is the part of the token request store the cleaner needs.
type ExpiredRemover interface {
	RemoveExpiredTokenRequests(ctx context.Context) (int64, error)
}

// TokenCleaner removes expired token requests. When disabled it only runs
// on forced passes.
type TokenCleaner struct {
	store   ExpiredRemover
	enabled bool
	logger  logging.Logger
	metrics *metrics.Metrics
}

func NewTokenCleaner(store ExpiredRemover, enabled bool, logger logging.Logger, m *metrics.Metrics) *TokenCleaner {
	return &TokenCleaner{
		store:   store,
		enabled: enabled,
		logger:  logger.With("module", "cleaner"),
		metrics: m,
	}
}

func (c *TokenCleaner) Enabled() bool {
	return c.enabled
}

// HandleGarbageCollection returns the number of removed requests, or 0
// without touching the store when the cleaner is disabled and force is false.
func (c *TokenCleaner) HandleGarbageCollection(ctx context.Context, force bool) (int64, error) {
	if !c.enabled && !force {
		return 0, nil
	}

	removed, err := c.store.RemoveExpiredTokenRequests(ctx)
	if err != nil {
		return 0, fmt.Errorf("error removing expired token requests: %w", err)
	}

	c.metrics.GarbageCollected(removed)
	if removed > 0 {
		c.logger.Info(ctx, "expired token requests removed", "count", removed, "forced", force)
	}

	return removed, nil
}

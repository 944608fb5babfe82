package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers webhook delivery digests so that identical
// redeliveries can be acknowledged without re-running the pipeline.
// It is a best-effort cache: losing an entry is always safe because the
// database upserts converge on redelivery anyway.
type IdempotencyStore interface {
	// MarkProcessed marks a delivery digest as processed with a TTL.
	// Returns true if the digest was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, digest string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether a delivery digest has already been processed
	IsProcessed(ctx context.Context, digest string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for delivery deduplication
type IdempotencyConfig struct {
	// TTL is the time-to-live for remembered digests. After this duration
	// an identical delivery runs through the full pipeline again.
	// Default: 24 hours
	TTL time.Duration

	// Enabled determines whether deduplication is enabled
	// Default: true
	Enabled bool
}

// DefaultIdempotencyConfig returns the default deduplication configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}

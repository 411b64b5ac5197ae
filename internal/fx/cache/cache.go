// Package cache holds the resolver's single-slot rate cache: one base
// currency at a time, targets merged in while the base is unchanged and
// dropped wholesale when it switches.
package cache

import (
	"context"
	"time"
)

// RateCache stores the latest fetched rates for a single base currency.
// Get reports the stored rate and when it was fetched; staleness is the
// caller's decision, which is why fetchedAt is exposed rather than a TTL
// being enforced here.
type RateCache interface {
	Get(ctx context.Context, base, target string) (rate float64, fetchedAt time.Time, ok bool)
	// Put merges rates into the slot when base matches the stored base,
	// otherwise replaces the slot for the new base. fetchedAt is refreshed
	// either way.
	Put(ctx context.Context, base string, rates map[string]float64) error
	Invalidate(ctx context.Context) error
}

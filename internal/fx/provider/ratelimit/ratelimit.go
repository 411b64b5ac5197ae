// Package ratelimit gates upstream FX providers so free-tier APIs are not
// hammered by batch lookups.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/TaxTrail-Team/taxtrail-server/internal/fx"
)

// MinInterval wraps a provider and enforces a minimum time between calls.
// Concurrent calls wait until the interval has elapsed since the last
// call, or return early when the context is canceled.
type MinInterval struct {
	P        fx.Provider
	Interval time.Duration

	mu   sync.Mutex
	last time.Time
}

func (m *MinInterval) Name() string { return m.P.Name() }

func (m *MinInterval) Latest(ctx context.Context, base string, symbols []string) (map[string]float64, error) {
	if m.Interval > 0 {
		m.mu.Lock()
		wait := time.Until(m.last.Add(m.Interval))
		m.mu.Unlock()
		if wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-t.C:
			}
		}
	}
	rates, err := m.P.Latest(ctx, base, symbols)
	if m.Interval > 0 {
		m.mu.Lock()
		m.last = time.Now()
		m.mu.Unlock()
	}
	return rates, err
}

package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is the in-process RateCache. The slot is guarded by a mutex so
// concurrent resolutions cannot interleave mid-mutation.
type Memory struct {
	mu        sync.RWMutex
	base      string
	rates     map[string]float64
	fetchedAt time.Time
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(_ context.Context, base, target string) (float64, time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.base != base || m.rates == nil {
		return 0, time.Time{}, false
	}
	rate, ok := m.rates[target]
	if !ok {
		return 0, time.Time{}, false
	}
	return rate, m.fetchedAt, true
}

func (m *Memory) Put(_ context.Context, base string, rates map[string]float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.base != base || m.rates == nil {
		m.base = base
		m.rates = make(map[string]float64, len(rates))
	}
	for target, rate := range rates {
		m.rates[target] = rate
	}
	m.fetchedAt = time.Now()
	return nil
}

func (m *Memory) Invalidate(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.base = ""
	m.rates = nil
	m.fetchedAt = time.Time{}
	return nil
}

package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls []time.Time
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Latest(_ context.Context, _ string, symbols []string) (map[string]float64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, time.Now())
	f.mu.Unlock()
	out := make(map[string]float64, len(symbols))
	for _, s := range symbols {
		out[s] = 1.5
	}
	return out, nil
}

func TestMinIntervalSpacesCalls(t *testing.T) {
	fake := &fakeProvider{}
	p := &MinInterval{P: fake, Interval: 40 * time.Millisecond}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := p.Latest(ctx, "LKR", []string{"USD"}); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	if len(fake.calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(fake.calls))
	}
	for i := 1; i < len(fake.calls); i++ {
		gap := fake.calls[i].Sub(fake.calls[i-1])
		if gap < 35*time.Millisecond {
			t.Fatalf("calls %d and %d only %v apart", i-1, i, gap)
		}
	}
}

func TestMinIntervalHonorsContextCancel(t *testing.T) {
	fake := &fakeProvider{}
	p := &MinInterval{P: fake, Interval: time.Hour}

	if _, err := p.Latest(context.Background(), "LKR", []string{"USD"}); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.Latest(ctx, "LKR", []string{"USD"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("canceled call reached the provider: %d calls", len(fake.calls))
	}
}

func TestMinIntervalZeroPassesThrough(t *testing.T) {
	fake := &fakeProvider{}
	p := &MinInterval{P: fake}

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := p.Latest(context.Background(), "LKR", []string{"USD"}); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("unconfigured interval throttled calls: %v", elapsed)
	}
}

func TestTokenBucketAllowsBurstThenThrottles(t *testing.T) {
	fake := &fakeProvider{}
	p := &TokenBucketProvider{P: fake, TB: NewTokenBucket(20, 2)}

	start := time.Now()
	for i := 0; i < 2; i++ {
		if _, err := p.Latest(context.Background(), "LKR", []string{"USD"}); err != nil {
			t.Fatalf("burst call %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 30*time.Millisecond {
		t.Fatalf("burst was throttled: %v", elapsed)
	}

	if _, err := p.Latest(context.Background(), "LKR", []string{"USD"}); err != nil {
		t.Fatalf("post-burst call: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("third call not throttled: %v", elapsed)
	}
}

package cache

import (
	"testing"
	"time"
)

func TestMemory_MergesTargetsForSameBase(t *testing.T) {
	c := NewMemory()
	ctx := t.Context()

	if err := c.Put(ctx, "LKR", map[string]float64{"USD": 0.0031}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.Put(ctx, "LKR", map[string]float64{"EUR": 0.0029}); err != nil {
		t.Fatalf("put: %v", err)
	}

	if rate, _, ok := c.Get(ctx, "LKR", "USD"); !ok || rate != 0.0031 {
		t.Fatalf("USD survived merge: ok=%v rate=%v", ok, rate)
	}
	if rate, _, ok := c.Get(ctx, "LKR", "EUR"); !ok || rate != 0.0029 {
		t.Fatalf("EUR merged in: ok=%v rate=%v", ok, rate)
	}
}

func TestMemory_BaseSwitchReplacesSlot(t *testing.T) {
	c := NewMemory()
	ctx := t.Context()

	_ = c.Put(ctx, "LKR", map[string]float64{"USD": 0.0031})
	_ = c.Put(ctx, "EUR", map[string]float64{"GBP": 0.85})

	if _, _, ok := c.Get(ctx, "LKR", "USD"); ok {
		t.Fatal("old base survived slot replacement")
	}
	if rate, _, ok := c.Get(ctx, "EUR", "GBP"); !ok || rate != 0.85 {
		t.Fatalf("new base missing: ok=%v rate=%v", ok, rate)
	}
}

func TestMemory_PutRefreshesFetchedAt(t *testing.T) {
	c := NewMemory()
	ctx := t.Context()

	_ = c.Put(ctx, "LKR", map[string]float64{"USD": 0.0031})
	_, first, _ := c.Get(ctx, "LKR", "USD")
	time.Sleep(2 * time.Millisecond)
	_ = c.Put(ctx, "LKR", map[string]float64{"EUR": 0.0029})
	_, second, _ := c.Get(ctx, "LKR", "USD")

	if !second.After(first) {
		t.Fatalf("fetchedAt not refreshed: %v then %v", first, second)
	}
}

func TestMemory_Invalidate(t *testing.T) {
	c := NewMemory()
	ctx := t.Context()

	_ = c.Put(ctx, "LKR", map[string]float64{"USD": 0.0031})
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, _, ok := c.Get(ctx, "LKR", "USD"); ok {
		t.Fatal("entry survived invalidation")
	}
}

func TestMemory_MissOnUnknownTarget(t *testing.T) {
	c := NewMemory()
	ctx := t.Context()

	_ = c.Put(ctx, "LKR", map[string]float64{"USD": 0.0031})
	if _, _, ok := c.Get(ctx, "LKR", "JPY"); ok {
		t.Fatal("unexpected hit for target never stored")
	}
}

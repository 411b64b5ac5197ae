package main

import (
	"context"
	"testing"
	"time"

	"github.com/TaxTrail-Team/taxtrail-server/internal/config"
	"github.com/TaxTrail-Team/taxtrail-server/internal/fx"
	"github.com/TaxTrail-Team/taxtrail-server/internal/fx/provider/ratelimit"
)

type noopProvider struct{}

func (noopProvider) Name() string { return "noop" }

func (noopProvider) Latest(context.Context, string, []string) (map[string]float64, error) {
	return nil, nil
}

func TestLimitedWiring(t *testing.T) {
	var base fx.Provider = noopProvider{}

	if p := limited(base, config.ProviderEndpoint{}); p != base {
		t.Fatalf("unconfigured endpoint should not wrap: %T", p)
	}

	p := limited(base, config.ProviderEndpoint{MaxRequestsPerMinute: 60, Burst: 2})
	if _, ok := p.(*ratelimit.TokenBucketProvider); !ok {
		t.Fatalf("rpm cap should wrap with a token bucket: %T", p)
	}

	p = limited(base, config.ProviderEndpoint{MinIntervalMS: 250})
	mi, ok := p.(*ratelimit.MinInterval)
	if !ok {
		t.Fatalf("min interval should wrap with MinInterval: %T", p)
	}
	if mi.Interval != 250*time.Millisecond {
		t.Fatalf("interval mis-wired: %v", mi.Interval)
	}

	// The bucket takes precedence when both are set.
	p = limited(base, config.ProviderEndpoint{MaxRequestsPerMinute: 60, MinIntervalMS: 250})
	if _, ok := p.(*ratelimit.TokenBucketProvider); !ok {
		t.Fatalf("rpm cap should win over min interval: %T", p)
	}
}

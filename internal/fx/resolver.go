package fx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/TaxTrail-Team/taxtrail-server/internal/fx/cache"
	"github.com/TaxTrail-Team/taxtrail-server/internal/metrics"
)

// ErrInvalidCurrency is returned when a currency code is empty after
// normalization.
var ErrInvalidCurrency = errors.New("invalid currency code")

const (
	DefaultAnchor = "EUR"
	DefaultTTL    = 30 * time.Minute
)

// ResolverConfig wires a Resolver. Providers are tried in slice order and
// the first usable rate wins.
type ResolverConfig struct {
	Providers []Provider
	// CrossRate is the provider allowed to answer through the anchor
	// currency when its direct quote fails. Historically only the second
	// provider in the chain supports this; nil disables cross-rates.
	CrossRate Provider
	Anchor    string
	Cache     cache.RateCache
	TTL       time.Duration
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// Resolver answers "units of target per 1 unit of base" queries.
type Resolver struct {
	providers []Provider
	cross     Provider
	anchor    string
	cache     cache.RateCache
	ttl       time.Duration
	log       *slog.Logger
	metrics   *metrics.Metrics
	group     singleflight.Group
}

func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.Anchor == "" {
		cfg.Anchor = DefaultAnchor
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewMemory()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Resolver{
		providers: cfg.Providers,
		cross:     cfg.CrossRate,
		anchor:    NormalizeCode(cfg.Anchor),
		cache:     cfg.Cache,
		ttl:       cfg.TTL,
		log:       cfg.Logger,
		metrics:   cfg.Metrics,
	}
}

// Resolve returns the current rate for base -> target, consulting the
// cache first and then each provider in priority order. Provider failures
// are absorbed and logged; only exhausting every provider (and the
// cross-rate branch) surfaces an error.
func (r *Resolver) Resolve(ctx context.Context, base, target string) (Quote, error) {
	b := NormalizeCode(base)
	t := NormalizeCode(target)
	if b == "" || t == "" {
		return Quote{}, fmt.Errorf("%w: %q -> %q", ErrInvalidCurrency, base, target)
	}
	if b == t {
		return Quote{Base: b, Target: t, Rate: 1, Source: "internal", RetrievedAt: time.Now()}, nil
	}

	if rate, fetchedAt, ok := r.cache.Get(ctx, b, t); ok && time.Since(fetchedAt) < r.ttl {
		if r.metrics != nil {
			r.metrics.CacheHitsTotal.Inc()
		}
		return Quote{Base: b, Target: t, Rate: rate, Source: "cache", RetrievedAt: fetchedAt}, nil
	}
	if r.metrics != nil {
		r.metrics.CacheMissesTotal.Inc()
	}

	// Collapse concurrent lookups of the same pair into one upstream pass.
	v, err, _ := r.group.Do(b+":"+t, func() (any, error) {
		return r.resolveUpstream(ctx, b, t)
	})
	if err != nil {
		if r.metrics != nil {
			r.metrics.ResolutionsTotal.WithLabelValues("error").Inc()
		}
		return Quote{}, err
	}
	if r.metrics != nil {
		r.metrics.ResolutionsTotal.WithLabelValues("ok").Inc()
	}
	return v.(Quote), nil
}

func (r *Resolver) resolveUpstream(ctx context.Context, base, target string) (Quote, error) {
	for _, p := range r.providers {
		rates, err := p.Latest(ctx, base, []string{target})
		if err == nil {
			if rate, present := rates[target]; present && ValidRate(rate) {
				r.store(ctx, base, map[string]float64{target: rate})
				r.count(p.Name(), "ok")
				return Quote{Base: base, Target: target, Rate: rate, Source: p.Name(), RetrievedAt: time.Now()}, nil
			}
			err = fmt.Errorf("no usable rate for %s", target)
		}
		r.count(p.Name(), "failed")
		r.log.Warn("fx provider did not answer", "provider", p.Name(), "base", base, "target", target, "error", err)

		if r.cross != nil && p == r.cross {
			if q, ok := r.crossRate(ctx, base, target); ok {
				return q, nil
			}
		}
	}
	return Quote{}, fmt.Errorf("%w: %s -> %s", ErrRateUnavailable, base, target)
}

// crossRate asks the cross provider for anchor-based quotes of both codes
// and divides them: rate = anchor->target / anchor->base.
func (r *Resolver) crossRate(ctx context.Context, base, target string) (Quote, bool) {
	rates, err := r.cross.Latest(ctx, r.anchor, []string{base, target})
	if err != nil {
		r.count(r.cross.Name(), "failed")
		r.log.Warn("fx cross-rate lookup failed", "provider", r.cross.Name(), "anchor", r.anchor, "error", err)
		return Quote{}, false
	}
	rBase, okBase := rates[base]
	rTarget, okTarget := rates[target]
	if !okBase || !okTarget || !ValidRate(rBase) || !ValidRate(rTarget) {
		r.count(r.cross.Name(), "failed")
		return Quote{}, false
	}
	rate := rTarget / rBase
	if !ValidRate(rate) {
		return Quote{}, false
	}
	r.store(ctx, base, map[string]float64{target: rate})
	r.count(r.cross.Name(), "ok")
	return Quote{
		Base:        base,
		Target:      target,
		Rate:        rate,
		Source:      fmt.Sprintf("%s (via %s)", r.cross.Name(), r.anchor),
		RetrievedAt: time.Now(),
	}, true
}

func (r *Resolver) store(ctx context.Context, base string, rates map[string]float64) {
	if err := r.cache.Put(ctx, base, rates); err != nil {
		r.log.Warn("fx cache write failed", "base", base, "error", err)
	}
}

func (r *Resolver) count(provider, outcome string) {
	if r.metrics != nil {
		r.metrics.ProviderRequestsTotal.WithLabelValues(provider, outcome).Inc()
	}
}

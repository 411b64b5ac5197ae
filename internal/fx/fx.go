// Package fx resolves foreign-exchange rates by trying upstream providers
// in priority order, with a short-lived cache and an anchored cross-rate
// fallback.
package fx

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
)

// ErrRateUnavailable is returned when every provider and the cross-rate
// fallback have been exhausted without producing a usable rate.
var ErrRateUnavailable = errors.New("fx rate unavailable")

// Quote is a successfully resolved exchange rate. Rate is units of Target
// per 1 unit of Base and is always positive and finite.
type Quote struct {
	Base        string    `json:"base"`
	Target      string    `json:"target"`
	Rate        float64   `json:"rate"`
	Source      string    `json:"source"`
	RetrievedAt time.Time `json:"rate_ts"`
}

// Provider fetches latest rates for a base currency from one upstream API.
//
//go:generate mockgen -package=fx_test -destination=mock_provider_test.go -source=fx.go Provider
type Provider interface {
	Name() string
	// Latest returns target->rate for the requested symbols. A provider
	// may return fewer entries than requested; missing or non-numeric
	// symbols are simply absent from the map.
	Latest(ctx context.Context, base string, symbols []string) (map[string]float64, error)
}

// NormalizeCode upper-cases and trims a currency code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidRate reports whether an upstream value is usable: finite and > 0.
// NaN, Inf, zero and negative values all mean "provider did not answer".
func ValidRate(r float64) bool {
	return r > 0 && !math.IsNaN(r) && !math.IsInf(r, 0)
}

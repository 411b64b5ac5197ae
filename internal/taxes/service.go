package taxes

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/TaxTrail-Team/taxtrail-server/internal/fx"
	"github.com/TaxTrail-Team/taxtrail-server/pkg/fanout"
)

const (
	DefaultLimit = 100
	MaxLimit     = 200

	// rateConcurrency bounds parallel rate lookups during a conversion;
	// items usually share one source currency so this rarely matters.
	rateConcurrency = 4
)

// RateSource is the slice of the fx resolver the tax service needs.
type RateSource interface {
	Resolve(ctx context.Context, base, target string) (fx.Quote, error)
}

type Service struct {
	repo  Repository
	rates RateSource
	log   *slog.Logger
}

func NewService(repo Repository, rates RateSource, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, rates: rates, log: log}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func (s *Service) List(ctx context.Context, f Filter) ([]Item, error) {
	f.Limit = clampLimit(f.Limit)
	return s.repo.List(ctx, f)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// Create stores a new item. An empty currency falls back to LKR, the
// currency the app historically recorded everything in.
func (s *Service) Create(ctx context.Context, item *Item) error {
	item.Currency = fx.NormalizeCode(item.Currency)
	if item.Currency == "" {
		item.Currency = "LKR"
	}
	return s.repo.Create(ctx, item)
}

// ConvertedItem is a tax item restated in the target currency. Amount is
// rounded to 2 decimal places; the applied rate and its provenance ride
// along for audit.
type ConvertedItem struct {
	Item
	OriginalAmount   float64 `json:"original_amount"`
	OriginalCurrency string  `json:"original_currency"`
	Rate             float64 `json:"rate"`
	RateSource       string  `json:"rate_source"`
}

// Convert lists items matching f and restates each amount in target.
// Rates are looked up once per distinct source currency. A missing rate
// for any needed currency fails the whole conversion.
func (s *Service) Convert(ctx context.Context, f Filter, target string) ([]ConvertedItem, error) {
	target = fx.NormalizeCode(target)
	if target == "" {
		return nil, fmt.Errorf("%w: empty target", fx.ErrInvalidCurrency)
	}

	f.Limit = clampLimit(f.Limit)
	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []ConvertedItem{}, nil
	}

	seen := make(map[string]struct{})
	var currencies []string
	for _, it := range items {
		code := fx.NormalizeCode(it.Currency)
		if _, ok := seen[code]; !ok {
			seen[code] = struct{}{}
			currencies = append(currencies, code)
		}
	}
	sort.Strings(currencies)

	quotes, err := fanout.Map(ctx, currencies, rateConcurrency, func(ctx context.Context, base string, _ int) (fx.Quote, error) {
		return s.rates.Resolve(ctx, base, target)
	})
	if err != nil {
		return nil, err
	}
	quoteByBase := make(map[string]fx.Quote, len(quotes))
	for _, q := range quotes {
		quoteByBase[q.Base] = q
	}

	out := make([]ConvertedItem, 0, len(items))
	for _, it := range items {
		q := quoteByBase[fx.NormalizeCode(it.Currency)]
		converted := it
		converted.Amount = roundAmount(it.Amount, q.Rate)
		converted.Currency = target
		out = append(out, ConvertedItem{
			Item:             converted,
			OriginalAmount:   it.Amount,
			OriginalCurrency: it.Currency,
			Rate:             q.Rate,
			RateSource:       q.Source,
		})
	}
	return out, nil
}

// roundAmount converts a monetary amount and rounds the result (not the
// rate) to 2 decimal places, keeping float noise out of currency totals.
func roundAmount(amount, rate float64) float64 {
	return decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(rate)).
		Round(2).
		InexactFloat64()
}

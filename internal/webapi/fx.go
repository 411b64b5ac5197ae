package webapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/TaxTrail-Team/taxtrail-server/internal/fx"
	"github.com/TaxTrail-Team/taxtrail-server/pkg/fanout"
)

func registerFXRoutes(api fiber.Router, d Deps) {
	group := api.Group("/fx")
	group.Get("/rate", getRate(d))
	group.Get("/rates", getRates(d))
	group.Get("/currencies", getCurrencies())
}

type rateResponse struct {
	Base   string    `json:"base"`
	Target string    `json:"target"`
	Rate   float64   `json:"rate"`
	Source string    `json:"source"`
	RateTS time.Time `json:"rate_ts"`
}

// getRate resolves one pair. Defaults mirror the mobile app's home
// screen: LKR against USD.
func getRate(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		base := c.Query("base", "LKR")
		target := c.Query("target", "USD")

		q, err := d.Rates.Resolve(c.UserContext(), base, target)
		if err != nil {
			return problemJSON(c, errorStatus(err), "Rate resolution failed", err.Error())
		}
		return c.JSON(rateResponse{
			Base:   q.Base,
			Target: q.Target,
			Rate:   q.Rate,
			Source: q.Source,
			RateTS: q.RetrievedAt,
		})
	}
}

type batchItem struct {
	Target string    `json:"target"`
	Rate   float64   `json:"rate"`
	Source string    `json:"source"`
	RateTS time.Time `json:"rate_ts"`
}

type batchResponse struct {
	Base  string      `json:"base"`
	TS    time.Time   `json:"ts"`
	Count int         `json:"count"`
	Items []batchItem `json:"items"`
}

// getRates resolves the registry against one base with bounded
// concurrency. Targets that cannot be resolved are dropped from the
// response rather than failing the batch.
func getRates(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		base := fx.NormalizeCode(c.Query("base", "LKR"))
		if base == "" {
			return problemJSON(c, fiber.StatusBadRequest, "Invalid base currency", "base is empty")
		}
		limit := clamp(c.QueryInt("limit", d.Batch.DefaultTargets), 1, d.Batch.MaxTargets)
		concurrency := clamp(c.QueryInt("concurrency", d.Batch.DefaultConcurrency), 1, d.Batch.MaxConcurrency)

		targets := fx.SymbolCodes(base)
		if len(targets) > limit {
			targets = targets[:limit]
		}

		type row struct {
			quote fx.Quote
			ok    bool
		}
		rows, err := fanout.Map(c.UserContext(), targets, concurrency, func(ctx context.Context, target string, _ int) (row, error) {
			q, rerr := d.Rates.Resolve(ctx, base, target)
			if rerr != nil {
				d.Logger.Debug("batch target skipped", "base", base, "target", target, "error", rerr)
				return row{}, nil
			}
			return row{quote: q, ok: true}, nil
		})
		if err != nil {
			return problemJSON(c, errorStatus(err), "Batch resolution failed", err.Error())
		}

		// Targets are fed in sorted order and fanout preserves it.
		items := make([]batchItem, 0, len(rows))
		for _, r := range rows {
			if !r.ok {
				continue
			}
			items = append(items, batchItem{
				Target: r.quote.Target,
				Rate:   r.quote.Rate,
				Source: r.quote.Source,
				RateTS: r.quote.RetrievedAt,
			})
		}
		return c.JSON(batchResponse{Base: base, TS: time.Now().UTC(), Count: len(items), Items: items})
	}
}

func getCurrencies() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fx.Symbols())
	}
}

// Package webapi exposes the HTTP surface consumed by the Tax Trail
// mobile app: rate lookups, batch rates, currency symbols and tax item
// listing/conversion.
package webapi

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TaxTrail-Team/taxtrail-server/internal/config"
	"github.com/TaxTrail-Team/taxtrail-server/internal/fx"
	"github.com/TaxTrail-Team/taxtrail-server/internal/metrics"
	"github.com/TaxTrail-Team/taxtrail-server/internal/taxes"
)

// RateSource is the resolver surface the handlers need.
type RateSource interface {
	Resolve(ctx context.Context, base, target string) (fx.Quote, error)
}

type Deps struct {
	Rates   RateSource
	Taxes   *taxes.Service // nil disables the tax routes
	Metrics *metrics.Metrics
	// Registry serves /metrics; nil disables the endpoint.
	Registry *prometheus.Registry
	Logger   *slog.Logger
	Batch    config.Batch
}

// New builds the fiber app with all routes registered.
func New(d Deps) *fiber.App {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Batch == (config.Batch{}) {
		d.Batch = config.Batch{DefaultTargets: 40, MaxTargets: 60, DefaultConcurrency: 4, MaxConcurrency: 8}
	}

	app := fiber.New(fiber.Config{
		AppName:               "taxtrail-server",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(requestObserver(d.Logger, d.Metrics))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	if d.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	registerFXRoutes(api, d)
	if d.Taxes != nil {
		registerTaxRoutes(api, d)
	}
	return app
}

// requestObserver logs each request and feeds the HTTP metrics.
func requestObserver(log *slog.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		elapsed := time.Since(start)
		path := c.Route().Path
		if m != nil {
			m.HTTPRequestsTotal.WithLabelValues(path, c.Method(), strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(path, c.Method()).Observe(elapsed.Seconds())
		}
		log.Info("request", "method", c.Method(), "path", path, "status", status, "duration", elapsed)
		return err
	}
}

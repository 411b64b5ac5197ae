package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/TaxTrail-Team/taxtrail-server/internal/config"
	"github.com/TaxTrail-Team/taxtrail-server/internal/fx"
	"github.com/TaxTrail-Team/taxtrail-server/internal/fx/cache"
	"github.com/TaxTrail-Team/taxtrail-server/internal/fx/provider/exchangeratehost"
	"github.com/TaxTrail-Team/taxtrail-server/internal/fx/provider/frankfurter"
	"github.com/TaxTrail-Team/taxtrail-server/internal/fx/provider/openerapi"
	"github.com/TaxTrail-Team/taxtrail-server/internal/fx/provider/ratelimit"
	"github.com/TaxTrail-Team/taxtrail-server/internal/httpx"
	"github.com/TaxTrail-Team/taxtrail-server/internal/metrics"
	"github.com/TaxTrail-Team/taxtrail-server/internal/taxes"
	"github.com/TaxTrail-Team/taxtrail-server/internal/webapi"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Log.Level)
	slog.SetDefault(log)

	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

	var providers []fx.Provider
	var crossRate fx.Provider
	if cfg.FX.ExchangerateHost.Enabled {
		p := limited(exchangeratehost.New(exchangeratehost.Config{
			Endpoint:  cfg.FX.ExchangerateHost.Endpoint,
			AccessKey: cfg.FX.ExchangerateHost.AccessKey,
		}, httpClient), cfg.FX.ExchangerateHost)
		providers = append(providers, p)
	}
	if cfg.FX.Frankfurter.Enabled {
		p := limited(frankfurter.New(frankfurter.Config{
			Endpoint: cfg.FX.Frankfurter.Endpoint,
		}, httpClient), cfg.FX.Frankfurter)
		providers = append(providers, p)
		// Frankfurter quotes everything against EUR, so it alone can
		// answer through the anchor when a direct pair is missing.
		crossRate = p
	}
	if cfg.FX.OpenERAPI.Enabled {
		p := limited(openerapi.New(openerapi.Config{
			Endpoint: cfg.FX.OpenERAPI.Endpoint,
		}, httpClient), cfg.FX.OpenERAPI)
		providers = append(providers, p)
	}
	if len(providers) == 0 {
		log.Error("no FX providers enabled")
		os.Exit(1)
	}

	var rateCache cache.RateCache = cache.NewMemory()
	ttl := time.Duration(cfg.FX.CacheTTLMin) * time.Minute
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn("redis unreachable, using in-process cache", "addr", cfg.Redis.Addr, "error", err)
		} else {
			rateCache = cache.NewRedis(rdb, cfg.Redis.CacheKey, ttl)
			log.Info("rate cache on redis", "addr", cfg.Redis.Addr, "key", cfg.Redis.CacheKey)
		}
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	resolver := fx.NewResolver(fx.ResolverConfig{
		Providers: providers,
		CrossRate: crossRate,
		Anchor:    cfg.FX.Anchor,
		Cache:     rateCache,
		TTL:       ttl,
		Logger:    log,
		Metrics:   m,
	})

	var taxSvc *taxes.Service
	if cfg.Database.DSN != "" {
		db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
		if err != nil {
			log.Error("database", "error", err)
			os.Exit(1)
		}
		repo := taxes.NewGormRepository(db)
		if err := repo.Migrate(); err != nil {
			log.Error("migrate", "error", err)
			os.Exit(1)
		}
		taxSvc = taxes.NewService(repo, resolver, log)
		log.Info("tax endpoints enabled")
	} else {
		log.Info("DATABASE_DSN not set, tax endpoints disabled")
	}

	app := webapi.New(webapi.Deps{
		Rates:    resolver,
		Taxes:    taxSvc,
		Metrics:  m,
		Registry: registry,
		Logger:   log,
		Batch:    cfg.FX.Batch,
	})

	go func() {
		log.Info("server listening", "port", cfg.Server.Port)
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Error("server", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Error("shutdown", "error", err)
	}
}

// limited wraps p per the endpoint config: a token bucket when requests
// per minute are capped, else a minimum spacing between calls.
func limited(p fx.Provider, ep config.ProviderEndpoint) fx.Provider {
	if ep.MaxRequestsPerMinute > 0 {
		rate := float64(ep.MaxRequestsPerMinute) / 60.0
		burst := ep.Burst
		if burst <= 0 {
			burst = 1
		}
		return &ratelimit.TokenBucketProvider{P: p, TB: ratelimit.NewTokenBucket(rate, burst)}
	}
	if ep.MinIntervalMS > 0 {
		return &ratelimit.MinInterval{P: p, Interval: time.Duration(ep.MinIntervalMS) * time.Millisecond}
	}
	return p
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

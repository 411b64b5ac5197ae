package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/TaxTrail-Team/taxtrail-server/internal/config"
	"github.com/TaxTrail-Team/taxtrail-server/internal/fx"
	"github.com/TaxTrail-Team/taxtrail-server/internal/fx/provider/exchangeratehost"
	"github.com/TaxTrail-Team/taxtrail-server/internal/fx/provider/frankfurter"
	"github.com/TaxTrail-Team/taxtrail-server/internal/fx/provider/openerapi"
	"github.com/TaxTrail-Team/taxtrail-server/internal/httpx"
)

// ratecheck resolves one currency pair from the command line, useful for
// poking the provider chain without starting the server.
func main() {
	var base string
	var target string
	var configPath string
	var timeout int

	flag.StringVar(&base, "base", "LKR", "base currency code")
	flag.StringVar(&target, "target", "USD", "target currency code")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.yaml (optional)")
	flag.IntVar(&timeout, "timeout", 15, "request timeout seconds")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	httpClient := httpx.New(time.Duration(timeout) * time.Second)

	var providers []fx.Provider
	var crossRate fx.Provider
	if cfg.FX.ExchangerateHost.Enabled {
		providers = append(providers, exchangeratehost.New(exchangeratehost.Config{
			Endpoint:  cfg.FX.ExchangerateHost.Endpoint,
			AccessKey: cfg.FX.ExchangerateHost.AccessKey,
		}, httpClient))
	}
	if cfg.FX.Frankfurter.Enabled {
		p := frankfurter.New(frankfurter.Config{Endpoint: cfg.FX.Frankfurter.Endpoint}, httpClient)
		providers = append(providers, p)
		crossRate = p
	}
	if cfg.FX.OpenERAPI.Enabled {
		providers = append(providers, openerapi.New(openerapi.Config{Endpoint: cfg.FX.OpenERAPI.Endpoint}, httpClient))
	}
	if len(providers) == 0 {
		fmt.Fprintln(os.Stderr, "no FX providers enabled")
		os.Exit(1)
	}

	resolver := fx.NewResolver(fx.ResolverConfig{
		Providers: providers,
		CrossRate: crossRate,
		Anchor:    cfg.FX.Anchor,
		Logger:    log,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	q, err := resolver.Resolve(ctx, base, target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve: %v\n", err)
		os.Exit(1)
	}

	b, _ := json.MarshalIndent(q, "", "  ")
	fmt.Println(string(b))
}

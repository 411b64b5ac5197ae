// Package frankfurter talks to a frankfurter.dev style API:
// GET {endpoint}/v1/latest?base=X&symbols=A,B returning {"rates": {...}}.
// The resolver also uses it for EUR-anchored cross-rates, since the ECB
// data behind it quotes everything against EUR.
package frankfurter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/TaxTrail-Team/taxtrail-server/internal/httpx"
)

type Config struct {
	Name     string
	Endpoint string
}

type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "frankfurter"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.frankfurter.dev"
	}
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

type apiResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

func (p *Provider) Latest(ctx context.Context, base string, symbols []string) (map[string]float64, error) {
	q := url.Values{}
	q.Set("base", base)
	if len(symbols) > 0 {
		q.Set("symbols", strings.Join(symbols, ","))
	}

	var resp apiResponse
	if err := p.client.GetJSON(ctx, p.cfg.Endpoint+"/v1/latest", q, &resp); err != nil {
		return nil, err
	}
	if resp.Rates == nil {
		return nil, fmt.Errorf("%s response has no rates", p.cfg.Name)
	}

	out := make(map[string]float64, len(symbols))
	for _, s := range symbols {
		if r, ok := resp.Rates[s]; ok {
			out[s] = r
		}
	}
	return out, nil
}

// Package exchangeratehost talks to an exchangerate.host style API:
// GET {endpoint}/latest?base=X&symbols=A,B returning {"rates": {...}}.
package exchangeratehost

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
	// AccessKey is appended as access_key when set; the free tier works
	// without one.
	AccessKey string
}

type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "exchangerate.host"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.exchangerate.host"
	}
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

type apiResponse struct {
	Success *bool              `json:"success"`
	Rates   map[string]float64 `json:"rates"`
}

func (p *Provider) Latest(ctx context.Context, base string, symbols []string) (map[string]float64, error) {
	q := url.Values{}
	q.Set("base", base)
	if len(symbols) > 0 {
		q.Set("symbols", strings.Join(symbols, ","))
	}
	if p.cfg.AccessKey != "" {
		q.Set("access_key", p.cfg.AccessKey)
	}

	var resp apiResponse
	if err := p.client.GetJSON(ctx, p.cfg.Endpoint+"/latest", q, &resp); err != nil {
		return nil, err
	}
	if resp.Success != nil && !*resp.Success {
		return nil, fmt.Errorf("%s reported failure", p.cfg.Name)
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

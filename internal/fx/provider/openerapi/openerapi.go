// Package openerapi talks to an open.er-api.com style API:
// GET {endpoint}/v6/latest/{base} returning the full rates table for the
// base. There is no symbols filter upstream, so filtering happens here.
package openerapi

import (
	"context"
	"fmt"
	"net/url"

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
		cfg.Name = "open.er-api"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://open.er-api.com"
	}
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

type apiResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

func (p *Provider) Latest(ctx context.Context, base string, symbols []string) (map[string]float64, error) {
	endpoint := p.cfg.Endpoint + "/v6/latest/" + url.PathEscape(base)

	var resp apiResponse
	if err := p.client.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Result != "" && resp.Result != "success" {
		return nil, fmt.Errorf("%s reported result %q", p.cfg.Name, resp.Result)
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

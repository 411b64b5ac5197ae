package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Server struct {
	Port              string `yaml:"port" env:"PORT" env-default:"8080"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec" env:"REQUEST_TIMEOUT_SEC" env-default:"10"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// ProviderEndpoint configures one upstream FX API. MaxRequestsPerMinute
// enables a token-bucket gate in front of the provider when > 0;
// otherwise MinIntervalMS > 0 enforces a minimum spacing between calls.
type ProviderEndpoint struct {
	Enabled              bool   `yaml:"enabled" env-default:"true"`
	Endpoint             string `yaml:"endpoint"`
	AccessKey            string `yaml:"access_key"`
	MaxRequestsPerMinute int    `yaml:"max_requests_per_minute"`
	Burst                int    `yaml:"burst"`
	MinIntervalMS        int    `yaml:"min_interval_ms"`
}

type Batch struct {
	DefaultTargets     int `yaml:"default_targets" env-default:"40"`
	MaxTargets         int `yaml:"max_targets" env-default:"60"`
	DefaultConcurrency int `yaml:"default_concurrency" env-default:"4"`
	MaxConcurrency     int `yaml:"max_concurrency" env-default:"8"`
}

type FX struct {
	Anchor           string           `yaml:"anchor" env:"FX_ANCHOR" env-default:"EUR"`
	CacheTTLMin      int              `yaml:"cache_ttl_min" env:"FX_CACHE_TTL_MIN" env-default:"30"`
	Batch            Batch            `yaml:"batch"`
	ExchangerateHost ProviderEndpoint `yaml:"exchangerate_host"`
	Frankfurter      ProviderEndpoint `yaml:"frankfurter"`
	OpenERAPI        ProviderEndpoint `yaml:"open_er_api"`
}

// Redis is optional; an empty Addr keeps the rate cache in process.
type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	CacheKey string `yaml:"cache_key" env:"REDIS_CACHE_KEY" env-default:"fx:rates"`
}

// Database is optional; an empty DSN disables the tax endpoints.
type Database struct {
	DSN string `yaml:"dsn" env:"DATABASE_DSN"`
}

type Config struct {
	Server   Server   `yaml:"server"`
	Log      Log      `yaml:"log"`
	FX       FX       `yaml:"fx"`
	Redis    Redis    `yaml:"redis"`
	Database Database `yaml:"database"`
}

// Load reads YAML config from path with env overrides. An empty path
// falls back to config.yaml when present, else env-only. A .env file is
// honored first so local runs behave like the deployed service.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("read config %s: %w", path, err)
			}
		} else {
			return cfg, nil
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("read env config: %w", err)
	}
	return cfg, nil
}

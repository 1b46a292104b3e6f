package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type Server struct {
	Port              string `json:"port" toml:"port" yaml:"port" validate:"required,numeric"`
	RequestTimeoutSec int    `json:"request_timeout_sec" toml:"request_timeout_sec" yaml:"request_timeout_sec" validate:"gte=1,lte=120"`
}

type IEX struct {
	Token   string `json:"token" toml:"token" yaml:"token"`
	BaseURL string `json:"base_url" toml:"base_url" yaml:"base_url" validate:"required,url"`
}

type CoinGecko struct {
	BaseURL string `json:"base_url" toml:"base_url" yaml:"base_url" validate:"required,url"`
	// APIKey is optional; when set it is sent as the demo API key header.
	APIKey string `json:"api_key" toml:"api_key" yaml:"api_key"`
}

type Telegram struct {
	Token string `json:"token" toml:"token" yaml:"token"`
}

type Lists struct {
	StockURL       string `json:"stock_url" toml:"stock_url" yaml:"stock_url" validate:"required,url"`
	StockTTLMin    int    `json:"stock_ttl_min" toml:"stock_ttl_min" yaml:"stock_ttl_min" validate:"gte=1"`
	CryptoTTLMin   int    `json:"crypto_ttl_min" toml:"crypto_ttl_min" yaml:"crypto_ttl_min" validate:"gte=1"`
	RefreshCron    string `json:"refresh_cron" toml:"refresh_cron" yaml:"refresh_cron" validate:"omitempty,cron"`
	SearchCacheMax int    `json:"search_cache_max" toml:"search_cache_max" yaml:"search_cache_max" validate:"gte=1"`
}

type Chart struct {
	Source        string `json:"source" toml:"source" yaml:"source" validate:"oneof=yahoo iex"`
	CacheMaxItems int    `json:"cache_max_items" toml:"cache_max_items" yaml:"cache_max_items" validate:"gte=1"`
}

type Log struct {
	Env string `json:"env" toml:"env" yaml:"env" validate:"oneof=production development"`
}

type Config struct {
	Server    Server    `json:"server" toml:"server" yaml:"server"`
	IEX       IEX       `json:"iex" toml:"iex" yaml:"iex"`
	CoinGecko CoinGecko `json:"coingecko" toml:"coingecko" yaml:"coingecko"`
	Telegram  Telegram  `json:"telegram" toml:"telegram" yaml:"telegram"`
	Lists     Lists     `json:"lists" toml:"lists" yaml:"lists"`
	Chart     Chart     `json:"chart" toml:"chart" yaml:"chart"`
	Log       Log       `json:"log" toml:"log" yaml:"log"`
}

func Default() Config {
	return Config{
		Server:    Server{Port: "8080", RequestTimeoutSec: 10},
		IEX:       IEX{BaseURL: "https://cloud.iexapis.com/stable"},
		CoinGecko: CoinGecko{BaseURL: "https://api.coingecko.com/api/v3"},
		Lists: Lists{
			StockURL:       "http://oatsreportable.finra.org/OATSReportableSecurities-SOD.txt",
			StockTTLMin:    180,
			CryptoTTLMin:   24 * 60,
			RefreshCron:    "0 10,17 * * 1-5",
			SearchCacheMax: 1024,
		},
		Chart: Chart{Source: "yahoo", CacheMaxItems: 256},
		Log:   Log{Env: "development"},
	}
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSec) * time.Second
}

func (c Config) StockTTL() time.Duration  { return time.Duration(c.Lists.StockTTLMin) * time.Minute }
func (c Config) CryptoTTL() time.Duration { return time.Duration(c.Lists.CryptoTTLMin) * time.Minute }

// Load reads config from path, picking the format from its extension (.json,
// .toml, .yaml or .yml). If path is empty, config.json, config.toml and
// config.yaml are tried in that order; if none exists the defaults are used.
// A .env file in the working directory is loaded into the environment first
// and environment variables override file values. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		for _, candidate := range []string{"config.json", "config.toml", "config.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := decode(path, b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, b []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return json.Unmarshal(b, cfg)
	case ".toml":
		return toml.Unmarshal(b, cfg)
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("cron", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks field constraints.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setInt(&cfg.Server.RequestTimeoutSec, "REQUEST_TIMEOUT_SEC")

	setString(&cfg.IEX.Token, "IEX_TOKEN")
	setString(&cfg.IEX.BaseURL, "IEX_BASE_URL")

	setString(&cfg.CoinGecko.BaseURL, "COINGECKO_BASE_URL")
	setString(&cfg.CoinGecko.APIKey, "COINGECKO_API_KEY")

	// TELEGRAM is the legacy name of the token variable.
	setString(&cfg.Telegram.Token, "TELEGRAM")
	setString(&cfg.Telegram.Token, "TELEGRAM_TOKEN")

	setString(&cfg.Lists.StockURL, "STOCK_LIST_URL")
	setInt(&cfg.Lists.StockTTLMin, "STOCK_LIST_TTL_MIN")
	setInt(&cfg.Lists.CryptoTTLMin, "CRYPTO_LIST_TTL_MIN")
	setInt(&cfg.Lists.SearchCacheMax, "SEARCH_CACHE_SIZE")
	if v, ok := os.LookupEnv("REFRESH_CRON"); ok {
		// An explicitly empty value disables the scheduled refresh.
		cfg.Lists.RefreshCron = strings.TrimSpace(v)
	}

	setString(&cfg.Chart.Source, "CHART_SOURCE")
	setInt(&cfg.Chart.CacheMaxItems, "CHART_CACHE_MAX_ITEMS")

	setString(&cfg.Log.Env, "LOG_ENV")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if x, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = x
		}
	}
}

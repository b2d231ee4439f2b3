package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Binance  BinanceConfig  `mapstructure:"binance"`
	Stream   StreamConfig   `mapstructure:"stream"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Settings SettingsConfig `mapstructure:"settings"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

type BinanceConfig struct {
	REST RESTConfig `mapstructure:"rest"`
	WS   WSConfig   `mapstructure:"ws"`
}

type RESTConfig struct {
	SpotURL    string        `mapstructure:"spot_url"`
	FuturesURL string        `mapstructure:"futures_url"`
	AlphaURL   string        `mapstructure:"alpha_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type WSConfig struct {
	SpotURL          string        `mapstructure:"spot_url"`
	FuturesURL       string        `mapstructure:"futures_url"`
	Interval         string        `mapstructure:"interval"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	PingInterval     time.Duration `mapstructure:"ping_interval"`
}

// StreamConfig tunes the per-symbol stream lifecycle.
type StreamConfig struct {
	Throttle     time.Duration `mapstructure:"throttle"`      // minimum spacing between applied ticker updates
	BackoffBase  time.Duration `mapstructure:"backoff_base"`  // delay for the first reconnect, doubled per attempt
	MaxAttempts  int           `mapstructure:"max_attempts"`  // reconnects before a stream is left disconnected
	HistoryLimit int           `mapstructure:"history_limit"` // bars requested before the live kline stream opens
	KlineCap     int           `mapstructure:"kline_cap"`     // bars retained per symbol
	TrendPoints  int           `mapstructure:"trend_points"`  // rolling trend line length
}

type CatalogConfig struct {
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

type SettingsConfig struct {
	Path string `mapstructure:"path"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Options defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("binance.rest.spot_url", "https://api.binance.com")
	v.SetDefault("binance.rest.futures_url", "https://fapi.binance.com")
	v.SetDefault("binance.rest.alpha_url", "https://www.binance.com")
	v.SetDefault("binance.rest.timeout", 10*time.Second)

	v.SetDefault("binance.ws.spot_url", "wss://stream.binance.com:9443/ws")
	v.SetDefault("binance.ws.futures_url", "wss://fstream.binance.com/ws")
	v.SetDefault("binance.ws.interval", "1m")
	v.SetDefault("binance.ws.handshake_timeout", 10*time.Second)
	v.SetDefault("binance.ws.ping_interval", 15*time.Second)

	v.SetDefault("stream.throttle", 200*time.Millisecond)
	v.SetDefault("stream.backoff_base", time.Second)
	v.SetDefault("stream.max_attempts", 5)
	v.SetDefault("stream.history_limit", 30)
	v.SetDefault("stream.kline_cap", 30)
	v.SetDefault("stream.trend_points", 20)

	v.SetDefault("catalog.cache_ttl", 10*time.Minute)
	v.SetDefault("catalog.refresh_interval", 10*time.Minute)

	home, _ := os.UserHomeDir()
	v.SetDefault("settings.path", filepath.Join(home, ".binance-widget-settings.json"))

	v.SetDefault("metrics.addr", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.environment", "dev")
}

// Load loads application configuration using Viper.
// It reads config.yaml from dir (or the directory next to the executable when
// dir is empty) and overrides with environment variables. A missing file
// leaves the defaults in place.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")

	if dir != "" {
		v.AddConfigPath(dir)
	} else {
		ex, _ := os.Executable()
		if strings.Contains(ex, "go-build") {
			pwd, _ := os.Getwd()
			v.AddConfigPath(filepath.Join(pwd, "../../config"))
		} else {
			v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
		}
	}

	// Support environment variables with dot notation (e.g., BINANCE_WS_SPOT_URL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

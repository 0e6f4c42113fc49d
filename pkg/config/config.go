package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. TRACECTL_SERVER_ADDRESS.
const EnvPrefix = "TRACECTL"

// Transports understood by tracectl serve.
const (
	TransportFiber = "fiber"
	TransportHTTP  = "http"
)

// Config holds the process configuration of the traceability server.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Scan    ScanConfig    `mapstructure:"scan"`
	Session SessionConfig `mapstructure:"session"`
	Layouts LayoutsConfig `mapstructure:"layouts"`
	Render  RenderConfig  `mapstructure:"render"`
	Charts  ChartsConfig  `mapstructure:"charts"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	Address   string `mapstructure:"address"`
	Transport string `mapstructure:"transport"`
	BasePath  string `mapstructure:"base_path"`
	Title     string `mapstructure:"title"`
}

// ScanConfig tunes the scan simulator.
type ScanConfig struct {
	Delay    time.Duration `mapstructure:"delay"`
	DemoCode string        `mapstructure:"demo_code"`
}

// SessionConfig bounds the in-memory session store.
type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
	Max int           `mapstructure:"max"`
}

// LayoutsConfig selects the preview default and extra manifests.
type LayoutsConfig struct {
	Default   string   `mapstructure:"default"`
	Manifests []string `mapstructure:"manifests"`
}

// RenderConfig controls fragment caching.
type RenderConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// ChartsConfig controls the go-echarts output.
type ChartsConfig struct {
	AssetsHost string `mapstructure:"assets_host"`
	Theme      string `mapstructure:"theme"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads path (optional) and environment overrides into a Config. An empty
// path looks for tracectl.yaml in the working directory and tolerates its absence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tracectl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", describe(path), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case TransportFiber, TransportHTTP:
	default:
		return fmt.Errorf("config: unknown server.transport %q (want %s or %s)", c.Server.Transport, TransportFiber, TransportHTTP)
	}
	if c.Server.Address == "" {
		return errors.New("config: server.address is required")
	}
	if c.Scan.Delay < 0 {
		return fmt.Errorf("config: scan.delay must not be negative, got %s", c.Scan.Delay)
	}
	if c.Session.TTL < 0 || c.Session.Max < 0 {
		return fmt.Errorf("config: session.ttl and session.max must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.transport", TransportFiber)
	v.SetDefault("server.base_path", "/trace")
	v.SetDefault("server.title", "Shrimp Traceability")

	v.SetDefault("scan.delay", 2*time.Second)
	v.SetDefault("scan.demo_code", "SHRIMP-ECU-2024-001")

	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("session.max", 10000)

	v.SetDefault("layouts.default", "comprehensive")
	v.SetDefault("layouts.manifests", []string{})

	v.SetDefault("render.cache_ttl", 5*time.Minute)

	v.SetDefault("charts.assets_host", "")
	v.SetDefault("charts.theme", "westeros")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

func describe(path string) string {
	if path == "" {
		return "tracectl.yaml"
	}
	return path
}

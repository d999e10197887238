package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Server    ServerConfig    `toml:"server"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Network   NetworkConfig   `toml:"network"`
	Theme     ThemeConfig     `toml:"theme"`
	Log       LogConfig       `toml:"log"`
}

// APIConfig holds settings for the remote news API.
type APIConfig struct {
	BaseURL               string  `toml:"base_url"`
	TimeoutSeconds        int     `toml:"timeout_seconds"`
	CollectTimeoutMinutes int     `toml:"collect_timeout_minutes"`
	RateLimitRPS          float64 `toml:"rate_limit_rps"`
	RateLimitBurst        int     `toml:"rate_limit_burst"`
	BreakerFailures       int     `toml:"breaker_failures"`
	BreakerCooldownSecs   int     `toml:"breaker_cooldown_seconds"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `toml:"port"`
	AutoOpenBrowser bool `toml:"auto_open_browser"`
}

// DashboardConfig holds the article view settings.
type DashboardConfig struct {
	PageSize               int `toml:"page_size"`
	DefaultWindowDays      int `toml:"default_window_days"`
	ArticleLimit           int `toml:"article_limit"`
	KeywordLimit           int `toml:"keyword_limit"`
	NetworkLimit           int `toml:"network_limit"`
	RefreshIntervalMinutes int `toml:"refresh_interval_minutes"`
}

// NetworkConfig holds keyword network rendering settings.
type NetworkConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Seed   uint64 `toml:"seed"`
	Theme  string `toml:"theme"`
}

// ThemeConfig overrides individual palette colours with hex values.
type ThemeConfig struct {
	Background string `toml:"background"`
	Accent     string `toml:"accent"`
	Foreground string `toml:"foreground"`
	Divider    string `toml:"divider"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

const defaultConfigContent = `[api]
base_url = "http://localhost:8000"  # News API (or set NEWSDASH_API_URL env var)
timeout_seconds = 30
collect_timeout_minutes = 5         # "collect now" runs server-side ingestion
rate_limit_rps = 10                 # 0 disables client-side throttling
rate_limit_burst = 20
breaker_failures = 5
breaker_cooldown_seconds = 30

[server]
port = 8080
auto_open_browser = false

[dashboard]
page_size = 10
default_window_days = 7             # 0 shows all dates by default
article_limit = 1000
keyword_limit = 50
network_limit = 30
refresh_interval_minutes = 0        # 0 disables background refresh

[network]
width = 800
height = 600
seed = 0                            # 0 re-randomizes the layout on every draw
theme = "light"                     # "light" or "dark"

[theme]
# Hex overrides for the active palette, e.g. accent = "#1976d2"

[log]
level = "info"                      # debug, info, warn, error
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Validate explicitly-set values before applying defaults, so that
	// "page_size = 0" is an error rather than silently becoming 10.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg, md)
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg, toml.MetaData{})
	return &cfg
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if err := checkPort(cfg.Server.Port); err != nil {
			return err
		}
	}
	if md.IsDefined("dashboard", "page_size") && cfg.Dashboard.PageSize < 1 {
		return fmt.Errorf("invalid dashboard.page_size %d: must be >= 1", cfg.Dashboard.PageSize)
	}
	if md.IsDefined("network", "width") && cfg.Network.Width < 1 {
		return fmt.Errorf("invalid network.width %d: must be >= 1", cfg.Network.Width)
	}
	if md.IsDefined("network", "height") && cfg.Network.Height < 1 {
		return fmt.Errorf("invalid network.height %d: must be >= 1", cfg.Network.Height)
	}
	if md.IsDefined("api", "timeout_seconds") && cfg.API.TimeoutSeconds < 1 {
		return fmt.Errorf("invalid api.timeout_seconds %d: must be >= 1", cfg.API.TimeoutSeconds)
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields. Keys where
// zero is meaningful are only defaulted when the file leaves them out.
func applyDefaults(cfg *Config, md toml.MetaData) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8000"
	}
	if cfg.API.TimeoutSeconds == 0 {
		cfg.API.TimeoutSeconds = 30
	}
	if cfg.API.CollectTimeoutMinutes == 0 {
		cfg.API.CollectTimeoutMinutes = 5
	}
	if cfg.API.RateLimitRPS == 0 && !md.IsDefined("api", "rate_limit_rps") {
		cfg.API.RateLimitRPS = 10
	}
	if cfg.API.RateLimitBurst == 0 {
		cfg.API.RateLimitBurst = 20
	}
	if cfg.API.BreakerFailures == 0 {
		cfg.API.BreakerFailures = 5
	}
	if cfg.API.BreakerCooldownSecs == 0 {
		cfg.API.BreakerCooldownSecs = 30
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Dashboard.PageSize == 0 {
		cfg.Dashboard.PageSize = 10
	}
	if cfg.Dashboard.DefaultWindowDays == 0 && !md.IsDefined("dashboard", "default_window_days") {
		cfg.Dashboard.DefaultWindowDays = 7
	}
	if cfg.Dashboard.ArticleLimit == 0 {
		cfg.Dashboard.ArticleLimit = 1000
	}
	if cfg.Dashboard.KeywordLimit == 0 {
		cfg.Dashboard.KeywordLimit = 50
	}
	if cfg.Dashboard.NetworkLimit == 0 {
		cfg.Dashboard.NetworkLimit = 30
	}
	if cfg.Network.Width == 0 {
		cfg.Network.Width = 800
	}
	if cfg.Network.Height == 0 {
		cfg.Network.Height = 600
	}
	if cfg.Network.Theme == "" {
		cfg.Network.Theme = "light"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("NEWSDASH_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("NEWSDASH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid NEWSDASH_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("NEWSDASH_THEME"); v != "" {
		cfg.Network.Theme = v
	}
	if v := os.Getenv("NEWSDASH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q: must be an http(s) URL", cfg.API.BaseURL)
	}

	if err := checkPort(cfg.Server.Port); err != nil {
		return err
	}

	if cfg.Dashboard.ArticleLimit < 1 || cfg.Dashboard.ArticleLimit > 1000 {
		return fmt.Errorf("invalid dashboard.article_limit %d: must be between 1 and 1000", cfg.Dashboard.ArticleLimit)
	}

	if cfg.Dashboard.DefaultWindowDays < 0 {
		return fmt.Errorf("invalid dashboard.default_window_days %d: must be >= 0", cfg.Dashboard.DefaultWindowDays)
	}

	if cfg.Dashboard.RefreshIntervalMinutes < 0 {
		return fmt.Errorf("invalid dashboard.refresh_interval_minutes %d: must be >= 0", cfg.Dashboard.RefreshIntervalMinutes)
	}

	switch strings.ToLower(cfg.Network.Theme) {
	case "light", "dark":
		// valid
	default:
		return fmt.Errorf("invalid network.theme %q: must be \"light\" or \"dark\"", cfg.Network.Theme)
	}

	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		return err
	}

	if cfg.API.RateLimitRPS < 0 {
		return fmt.Errorf("invalid api.rate_limit_rps %v: must be >= 0", cfg.API.RateLimitRPS)
	}

	return nil
}

func checkPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", port)
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log.level %q: %w", s, err)
	}
	return level, nil
}

// Timeout returns the per-request timeout for ordinary API calls.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CollectTimeout returns the timeout for the long-running collect call.
func (c APIConfig) CollectTimeout() time.Duration {
	return time.Duration(c.CollectTimeoutMinutes) * time.Minute
}

// BreakerCooldown returns how long an open breaker waits before probing.
func (c APIConfig) BreakerCooldown() time.Duration {
	return time.Duration(c.BreakerCooldownSecs) * time.Second
}

// RefreshInterval returns the background refresh period, zero if disabled.
func (c DashboardConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMinutes) * time.Minute
}

package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the licensing service.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int

	DatabaseURL string
	RedisURL    string

	APIToken string

	AutoRegisterDomains bool
	AllowLocalhost      bool
	AllowWildcards      bool
	DefaultMaxDomains   int

	CacheTTL           time.Duration
	RateLimitThreshold int
	RateLimitWindow    time.Duration
	StatisticsWindow   time.Duration

	EnvatoEnabled bool
	EnvatoBaseURL string
	EnvatoToken   string
	EnvatoTimeout time.Duration

	MaxDBConns int32
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		APIToken string `yaml:"api_token"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Licensing struct {
		AutoRegisterDomains *bool `yaml:"auto_register_domains"`
		AllowLocalhost      *bool `yaml:"allow_localhost"`
		AllowWildcards      *bool `yaml:"allow_wildcards"`
		DefaultMaxDomains   int   `yaml:"default_max_domains"`
		CacheTTLMinutes     int   `yaml:"cache_ttl_minutes"`
		RateLimitThreshold  int   `yaml:"rate_limit_threshold"`
		RateLimitWindowSecs int   `yaml:"rate_limit_window_seconds"`
		StatisticsHours     int   `yaml:"statistics_window_hours"`
	} `yaml:"licensing"`
	Envato struct {
		Enabled *bool  `yaml:"enabled"`
		BaseURL string `yaml:"base_url"`
		Token   string `yaml:"token"`
	} `yaml:"envato"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:           "licensing-service",
		HTTPPort:            8080,
		AutoRegisterDomains: true,
		AllowLocalhost:      true,
		AllowWildcards:      false,
		DefaultMaxDomains:   1,
		CacheTTL:            30 * time.Minute,
		RateLimitThreshold:  10,
		RateLimitWindow:     time.Minute,
		StatisticsWindow:    24 * time.Hour,
		EnvatoEnabled:       false,
		EnvatoTimeout:       8 * time.Second,
		MaxDBConns:          20,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.APIToken != "" {
			cfg.APIToken = f.Service.APIToken
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Licensing.AutoRegisterDomains != nil {
			cfg.AutoRegisterDomains = *f.Licensing.AutoRegisterDomains
		}
		if f.Licensing.AllowLocalhost != nil {
			cfg.AllowLocalhost = *f.Licensing.AllowLocalhost
		}
		if f.Licensing.AllowWildcards != nil {
			cfg.AllowWildcards = *f.Licensing.AllowWildcards
		}
		if f.Licensing.DefaultMaxDomains > 0 {
			cfg.DefaultMaxDomains = f.Licensing.DefaultMaxDomains
		}
		if f.Licensing.CacheTTLMinutes > 0 {
			cfg.CacheTTL = time.Duration(f.Licensing.CacheTTLMinutes) * time.Minute
		}
		if f.Licensing.RateLimitThreshold > 0 {
			cfg.RateLimitThreshold = f.Licensing.RateLimitThreshold
		}
		if f.Licensing.RateLimitWindowSecs > 0 {
			cfg.RateLimitWindow = time.Duration(f.Licensing.RateLimitWindowSecs) * time.Second
		}
		if f.Licensing.StatisticsHours > 0 {
			cfg.StatisticsWindow = time.Duration(f.Licensing.StatisticsHours) * time.Hour
		}
		if f.Envato.Enabled != nil {
			cfg.EnvatoEnabled = *f.Envato.Enabled
		}
		if f.Envato.BaseURL != "" {
			cfg.EnvatoBaseURL = f.Envato.BaseURL
		}
		if f.Envato.Token != "" {
			cfg.EnvatoToken = f.Envato.Token
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.APIToken = envOrDefault("API_TOKEN", cfg.APIToken)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.AutoRegisterDomains = envBool("LICENSE_AUTO_REGISTER_DOMAINS", cfg.AutoRegisterDomains)
	cfg.AllowLocalhost = envBool("LICENSE_ALLOW_LOCALHOST", cfg.AllowLocalhost)
	cfg.AllowWildcards = envBool("LICENSE_ALLOW_WILDCARDS", cfg.AllowWildcards)
	cfg.DefaultMaxDomains = envInt("LICENSE_DEFAULT_MAX_DOMAINS", cfg.DefaultMaxDomains)

	cfg.CacheTTL = time.Duration(envInt("VERIFY_CACHE_TTL_MINUTES", int(cfg.CacheTTL.Minutes()))) * time.Minute
	cfg.RateLimitThreshold = envInt("RATE_LIMIT_THRESHOLD", cfg.RateLimitThreshold)
	cfg.RateLimitWindow = time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", int(cfg.RateLimitWindow.Seconds()))) * time.Second
	cfg.StatisticsWindow = time.Duration(envInt("STATISTICS_WINDOW_HOURS", int(cfg.StatisticsWindow.Hours()))) * time.Hour

	cfg.EnvatoEnabled = envBool("ENVATO_ENABLED", cfg.EnvatoEnabled)
	cfg.EnvatoBaseURL = envOrDefault("ENVATO_BASE_URL", cfg.EnvatoBaseURL)
	cfg.EnvatoToken = envOrDefault("ENVATO_TOKEN", cfg.EnvatoToken)
	cfg.EnvatoTimeout = time.Duration(envInt("ENVATO_TIMEOUT_SECONDS", int(cfg.EnvatoTimeout.Seconds()))) * time.Second

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.APIToken == "" {
		return Config{}, fmt.Errorf("missing API_TOKEN")
	}
	if cfg.EnvatoEnabled && cfg.EnvatoToken == "" {
		return Config{}, fmt.Errorf("missing ENVATO_TOKEN with envato enabled")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envBool parses common boolean env forms while keeping a deterministic fallback.
func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}

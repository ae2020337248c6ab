package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Digital-Shane/jojo/internal/playback"
	"github.com/Digital-Shane/jojo/internal/storage"
)

// Config holds user settings persisted in ~/.jojo/config.json.
type Config struct {
	// Catalog settings
	TMDBAPIKey         string `json:"tmdb_api_key"`
	TMDBLanguage       string `json:"tmdb_language"`
	OMDBAPIKey         string `json:"omdb_api_key"`
	CacheEnabled       bool   `json:"cache_enabled"`
	CacheDurationHours int    `json:"cache_duration_hours"`
	TrendingLimit      int    `json:"trending_limit"`
	DefaultServer      string `json:"default_server"`

	// Storage settings
	StorageBackend string `json:"storage_backend"`
	StorageDir     string `json:"storage_dir,omitempty"`
	RedisAddress   string `json:"redis_address,omitempty"`
	RedisPassword  string `json:"redis_password,omitempty"`
	RedisDB        int    `json:"redis_db"`

	// Logging
	EnableLogging    bool   `json:"enable_logging"`
	LogRetentionDays int    `json:"log_retention_days"`
	LogLevel         string `json:"log_level"`
}

// Environment variables that override the stored API keys.
const (
	EnvTMDBAPIKey     = "JOJO_TMDB_API_KEY"
	EnvTMDBAPIKeyAlt  = "TMDB_API_KEY"
	EnvOMDBAPIKey     = "JOJO_OMDB_API_KEY"
	DefaultTrending   = 8
	MaxTrendingLimit  = 20
	configDirName     = ".jojo"
	configFileName    = "config.json"
	defaultLogLevel   = "warn"
	defaultCacheHours = 24
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TMDBAPIKey:         "",
		TMDBLanguage:       "en-US",
		OMDBAPIKey:         "",
		CacheEnabled:       true,
		CacheDurationHours: defaultCacheHours,
		TrendingLimit:      DefaultTrending,
		DefaultServer:      playback.DefaultServers[0].Name,
		StorageBackend:     storage.DefaultProvider,
		RedisDB:            0,
		EnableLogging:      true,
		LogRetentionDays:   30,
		LogLevel:           defaultLogLevel,
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, configDirName, configFileName), nil
}

// Load reads the configuration from disk and applies environment overrides.
func Load() (*Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// LoadFile reads the configuration from disk without environment overrides.
// A missing file yields the defaults.
func LoadFile() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Absent booleans keep their defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Fill in any zeroed fields with defaults
	defaults := DefaultConfig()
	if cfg.TMDBLanguage == "" {
		cfg.TMDBLanguage = defaults.TMDBLanguage
	}
	if cfg.TrendingLimit == 0 {
		cfg.TrendingLimit = defaults.TrendingLimit
	}
	if cfg.DefaultServer == "" {
		cfg.DefaultServer = defaults.DefaultServer
	}
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = defaults.StorageBackend
	}
	if cfg.CacheDurationHours == 0 {
		cfg.CacheDurationHours = defaults.CacheDurationHours
	}
	if cfg.LogRetentionDays == 0 {
		cfg.LogRetentionDays = defaults.LogRetentionDays
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	return cfg, nil
}

// ApplyEnv overrides API keys from the environment. JOJO_TMDB_API_KEY takes
// precedence over TMDB_API_KEY.
func (cfg *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvTMDBAPIKey)); v != "" {
		cfg.TMDBAPIKey = v
	} else if v := strings.TrimSpace(os.Getenv(EnvTMDBAPIKeyAlt)); v != "" {
		cfg.TMDBAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOMDBAPIKey)); v != "" {
		cfg.OMDBAPIKey = v
	}
}

// Save writes the configuration to disk
func (cfg *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports every setting that cannot be used as-is.
func (cfg *Config) Validate() error {
	var errs []error
	if !storage.IsRegistered(cfg.StorageBackend) {
		errs = append(errs, fmt.Errorf("unknown storage backend %q (registered: %v)",
			cfg.StorageBackend, storage.RegisteredProviders()))
	}
	if cfg.StorageBackend == "redis" && strings.TrimSpace(cfg.RedisAddress) == "" {
		errs = append(errs, errors.New("redis_address is required for the redis backend"))
	}
	if cfg.TrendingLimit < 1 || cfg.TrendingLimit > MaxTrendingLimit {
		errs = append(errs, fmt.Errorf("trending_limit must be between 1 and %d, got %d", MaxTrendingLimit, cfg.TrendingLimit))
	}
	if !playback.IsKnownServer(cfg.DefaultServer) {
		errs = append(errs, fmt.Errorf("unknown default_server %q (available: %s)",
			cfg.DefaultServer, strings.Join(playback.ServerNames(), ", ")))
	}
	if cfg.CacheDurationHours < 0 {
		errs = append(errs, errors.New("cache_duration_hours cannot be negative"))
	}
	if cfg.LogRetentionDays < 0 {
		errs = append(errs, errors.New("log_retention_days cannot be negative"))
	}
	if cfg.RedisDB < 0 {
		errs = append(errs, errors.New("redis_db cannot be negative"))
	}
	return errors.Join(errs...)
}

// CacheDuration is the TMDB response cache lifetime.
func (cfg *Config) CacheDuration() time.Duration {
	return time.Duration(cfg.CacheDurationHours) * time.Hour
}

// StorageConfig builds the provider config for the selected backend.
func (cfg *Config) StorageConfig() storage.ProviderConfig {
	return storage.ProviderConfig{
		Dir:           cfg.StorageDir,
		RedisAddress:  cfg.RedisAddress,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	}
}

type field struct {
	get func(*Config) string
	set func(*Config, string) error
}

func stringField(p func(*Config) *string) field {
	return field{
		get: func(c *Config) string { return *p(c) },
		set: func(c *Config, v string) error { *p(c) = strings.TrimSpace(v); return nil },
	}
}

func intField(p func(*Config) *int) field {
	return field{
		get: func(c *Config) string { return strconv.Itoa(*p(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("expected a number, got %q", v)
			}
			*p(c) = n
			return nil
		},
	}
}

func boolField(p func(*Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*p(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("expected true or false, got %q", v)
			}
			*p(c) = b
			return nil
		},
	}
}

var fields = map[string]field{
	"tmdb_api_key":         stringField(func(c *Config) *string { return &c.TMDBAPIKey }),
	"tmdb_language":        stringField(func(c *Config) *string { return &c.TMDBLanguage }),
	"omdb_api_key":         stringField(func(c *Config) *string { return &c.OMDBAPIKey }),
	"cache_enabled":        boolField(func(c *Config) *bool { return &c.CacheEnabled }),
	"cache_duration_hours": intField(func(c *Config) *int { return &c.CacheDurationHours }),
	"trending_limit":       intField(func(c *Config) *int { return &c.TrendingLimit }),
	"default_server":       stringField(func(c *Config) *string { return &c.DefaultServer }),
	"storage_backend":      stringField(func(c *Config) *string { return &c.StorageBackend }),
	"storage_dir":          stringField(func(c *Config) *string { return &c.StorageDir }),
	"redis_address":        stringField(func(c *Config) *string { return &c.RedisAddress }),
	"redis_password":       stringField(func(c *Config) *string { return &c.RedisPassword }),
	"redis_db":             intField(func(c *Config) *int { return &c.RedisDB }),
	"enable_logging":       boolField(func(c *Config) *bool { return &c.EnableLogging }),
	"log_retention_days":   intField(func(c *Config) *int { return &c.LogRetentionDays }),
	"log_level":            stringField(func(c *Config) *string { return &c.LogLevel }),
}

// Keys lists the settable keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the string form of a setting.
func (cfg *Config) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return f.get(cfg), nil
}

// Set parses value into the named setting. The config is not validated or
// saved.
func (cfg *Config) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := f.set(cfg, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// Masked returns v with all but the last four characters hidden.
func Masked(v string) string {
	if v == "" {
		return "(not set)"
	}
	if len(v) <= 4 {
		return strings.Repeat("*", len(v))
	}
	return strings.Repeat("*", len(v)-4) + v[len(v)-4:]
}

// Package app owns runtime configuration for the dealhound backend.
package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Supabase   SupabaseConfig   `mapstructure:"supabase"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Deals      DealsConfig      `mapstructure:"deals"`
	Refresh    RefreshConfig    `mapstructure:"refresh"`
	Cleanup    CleanupConfig    `mapstructure:"cleanup"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Source     SourceConfig     `mapstructure:"source"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// SupabaseConfig holds durable store credentials. When either field is empty
// the durable store reports itself as not configured.
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// CacheConfig configures the ephemeral cache layer.
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Path       string        `mapstructure:"path"`
	TTLSeconds int           `mapstructure:"ttl_seconds"`
	TTL        time.Duration `mapstructure:"-"`
}

// DealsConfig bounds the cache orchestrator.
type DealsConfig struct {
	LookbackDays int `mapstructure:"lookback_days"`
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// RefreshConfig drives the scheduled refresh job.
type RefreshConfig struct {
	Schedule       string        `mapstructure:"schedule"`
	MaxPages       int           `mapstructure:"max_pages"`
	BatchSize      int           `mapstructure:"batch_size"`
	InterBatchWait time.Duration `mapstructure:"inter_batch_wait"`
}

// CleanupConfig drives the scheduled ephemeral cleanup.
type CleanupConfig struct {
	Schedule   string        `mapstructure:"schedule"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// ClassifierConfig configures the hosted classifier.
type ClassifierConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SourceConfig configures the listing page fetcher.
type SourceConfig struct {
	PageURL   string        `mapstructure:"page_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LoadConfig initialises configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("DEALHOUND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	config.Cache.TTL = time.Duration(config.Cache.TTLSeconds) * time.Second

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.service_key", "")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "./data/dealhound-cache.sqlite")
	v.SetDefault("cache.ttl_seconds", 3600)

	v.SetDefault("deals.lookback_days", 7)
	v.SetDefault("deals.default_limit", 100)
	v.SetDefault("deals.max_limit", 1000)

	v.SetDefault("refresh.schedule", "0 */6 * * *")
	v.SetDefault("refresh.max_pages", 3)
	v.SetDefault("refresh.batch_size", 20)
	v.SetDefault("refresh.inter_batch_wait", "2s")

	v.SetDefault("cleanup.schedule", "@hourly")
	v.SetDefault("cleanup.expiration", "24h")

	v.SetDefault("classifier.enabled", false)
	v.SetDefault("classifier.endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("classifier.api_key", "")
	v.SetDefault("classifier.model", "gpt-4o-mini")
	v.SetDefault("classifier.timeout", "15s")

	v.SetDefault("source.page_url", "")
	v.SetDefault("source.user_agent", "dealhound/1.0")
	v.SetDefault("source.timeout", "20s")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

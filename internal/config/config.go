package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. CASEWHR_BASE_URL.
const EnvPrefix = "CASEWHR"

// Config is the process-wide client configuration. It is built once at
// startup and handed to constructors; nothing reads it from globals.
type Config struct {
	BaseURL         string
	AnonKey         string
	TimeoutMs       int
	MaxRetries      int
	RetryBackoffMs  int
	RedirectDelayMs int
	DevMode         bool
	Compression     bool
	LogLevel        string
	LogCalls        bool

	// Session material supplied by the external auth collaborator.
	Token        string
	RefreshToken string
}

// DefaultConfig returns a Config with sensible defaults. Dev mode is off.
func DefaultConfig() Config {
	return Config{
		BaseURL:         "http://localhost:8787/functions/v1/server",
		TimeoutMs:       15000,
		MaxRetries:      2,
		RetryBackoffMs:  500,
		RedirectDelayMs: 3000,
		DevMode:         false,
		Compression:     true,
		LogLevel:        "info",
		LogCalls:        false,
	}
}

// Load reads configuration from CASEWHR_* environment variables and, when
// CASEWHR_CONFIG names a file, from that YAML file. Environment values win
// over file values; both win over defaults.
func Load() (Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom is Load against a caller-supplied viper instance, so flags bound by
// the CLI participate in resolution.
func LoadFrom(v *viper.Viper) (Config, error) {
	def := DefaultConfig()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("anon_key", def.AnonKey)
	v.SetDefault("timeout_ms", def.TimeoutMs)
	v.SetDefault("max_retries", def.MaxRetries)
	v.SetDefault("retry_backoff_ms", def.RetryBackoffMs)
	v.SetDefault("redirect_delay_ms", def.RedirectDelayMs)
	v.SetDefault("dev_mode", def.DevMode)
	v.SetDefault("compression", def.Compression)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_calls", def.LogCalls)
	v.SetDefault("token", "")
	v.SetDefault("refresh_token", "")

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := Config{
		BaseURL:         strings.TrimRight(v.GetString("base_url"), "/"),
		AnonKey:         v.GetString("anon_key"),
		TimeoutMs:       v.GetInt("timeout_ms"),
		MaxRetries:      v.GetInt("max_retries"),
		RetryBackoffMs:  v.GetInt("retry_backoff_ms"),
		RedirectDelayMs: v.GetInt("redirect_delay_ms"),
		DevMode:         v.GetBool("dev_mode"),
		Compression:     v.GetBool("compression"),
		LogLevel:        v.GetString("log_level"),
		LogCalls:        v.GetBool("log_calls"),
		Token:           v.GetString("token"),
		RefreshToken:    v.GetString("refresh_token"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks ranges; it does not require an anon key because read-only
// tooling such as the stub server can run without one.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base_url is required", ErrInvalidConfig)
	}
	if c.TimeoutMs <= 0 {
		return fmt.Errorf("%w: timeout_ms must be positive, got %d", ErrInvalidConfig, c.TimeoutMs)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must be >= 0, got %d", ErrInvalidConfig, c.MaxRetries)
	}
	if c.RetryBackoffMs < 0 {
		return fmt.Errorf("%w: retry_backoff_ms must be >= 0, got %d", ErrInvalidConfig, c.RetryBackoffMs)
	}
	if c.RedirectDelayMs < 0 {
		return fmt.Errorf("%w: redirect_delay_ms must be >= 0, got %d", ErrInvalidConfig, c.RedirectDelayMs)
	}
	return nil
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMs) * time.Millisecond
}

func (c Config) RedirectDelay() time.Duration {
	return time.Duration(c.RedirectDelayMs) * time.Millisecond
}

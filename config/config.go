package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process-wide configuration tree.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Kiosk    KioskConfig    `mapstructure:"kiosk"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
}

// ServerConfig HTTP listener settings.
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	BaseURL      string     `mapstructure:"base_url"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig cross-origin settings.
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// BackendConfig locates the hosted backend. URL is a Postgres connection URL,
// Key signs auth sessions. Leaving either empty runs the service offline.
type BackendConfig struct {
	URL string `mapstructure:"url"`
	Key string `mapstructure:"key"`
}

// Offline reports whether backend-dependent operations must be skipped.
func (c *BackendConfig) Offline() bool {
	return c.URL == "" || c.Key == ""
}

// DatabaseConfig connection pool tuning for the backend database.
type DatabaseConfig struct {
	MaxOpenConns    int  `mapstructure:"max_open_conns"`
	MaxIdleConns    int  `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int  `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int  `mapstructure:"conn_max_idle_time"` // minutes
	AutoMigrate     bool `mapstructure:"auto_migrate"`
}

// RedisConfig durable key-value store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig session lifetimes and the login/registration bridge timings.
type AuthConfig struct {
	AccessTokenTTL          time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTLDefault  time.Duration `mapstructure:"refresh_token_ttl_default"`
	RefreshTokenTTLRemember time.Duration `mapstructure:"refresh_token_ttl_remember_me"`
	LoginResolveTimeout     time.Duration `mapstructure:"login_resolve_timeout"`
	ProfileTriggerDelay     time.Duration `mapstructure:"profile_trigger_delay"`
	MinPasswordLength       int           `mapstructure:"min_password_length"`
	SessionCacheSize        int           `mapstructure:"session_cache_size"`
}

// LogConfig zap settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// KioskConfig practice simulator settings.
type KioskConfig struct {
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	MaxSessions int           `mapstructure:"max_sessions"`
}

// JobsConfig periodic maintenance.
type JobsConfig struct {
	ActivityTrimSchedule string `mapstructure:"activity_trim_schedule"`
	ActivityLogCap       int    `mapstructure:"activity_log_cap"`
}

// Load reads configuration. Precedence: env > config file > .env > defaults.
func Load(path string) (*Config, error) {
	// .env is optional; real env vars already set are not overridden.
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("backend.url", "")
	v.SetDefault("backend.key", "")

	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)
	v.SetDefault("db.auto_migrate", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "1h")
	v.SetDefault("auth.refresh_token_ttl_default", "24h")
	v.SetDefault("auth.refresh_token_ttl_remember_me", "720h")
	v.SetDefault("auth.login_resolve_timeout", "5s")
	v.SetDefault("auth.profile_trigger_delay", "1s")
	v.SetDefault("auth.min_password_length", 6)
	v.SetDefault("auth.session_cache_size", 4096)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("kiosk.idle_timeout", "120s")
	v.SetDefault("kiosk.max_sessions", 1024)

	v.SetDefault("jobs.activity_trim_schedule", "@every 1h")
	v.SetDefault("jobs.activity_log_cap", 1000)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// KKAKDUGI_BACKEND_URL, KKAKDUGI_BACKEND_KEY, KKAKDUGI_SERVER_PORT ...
	v.SetEnvPrefix("KKAKDUGI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the process cannot run without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be within 1-65535")
	}
	if !c.Backend.Offline() && len(c.Backend.Key) < 16 {
		return fmt.Errorf("config: backend.key must be at least 16 characters")
	}
	if c.Auth.LoginResolveTimeout <= 0 {
		return fmt.Errorf("config: auth.login_resolve_timeout must be positive")
	}
	if c.Auth.ProfileTriggerDelay < 0 {
		return fmt.Errorf("config: auth.profile_trigger_delay must not be negative")
	}
	if c.Jobs.ActivityLogCap <= 0 {
		return fmt.Errorf("config: jobs.activity_log_cap must be positive")
	}
	return nil
}

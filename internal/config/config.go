// Package config loads service configuration from an optional YAML file
// and HEALTHOPS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override: database.dsn is read
// from HEALTHOPS_DATABASE_DSN.
const EnvPrefix = "HEALTHOPS"

// Config is the full service configuration.
type Config struct {
	Env string `mapstructure:"env"`

	Log          LogConfig          `mapstructure:"log"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Revalidation RevalidationConfig `mapstructure:"revalidation"`
	Archive      ArchiveConfig      `mapstructure:"archive"`
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// Driver is "pgx" (PostgreSQL) or "sqlite".
	Driver           string        `mapstructure:"driver"`
	DSN              string        `mapstructure:"dsn"`
	MaxConns         int32         `mapstructure:"max_conns"`
	MinConns         int32         `mapstructure:"min_conns"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	AutoMigrate      bool          `mapstructure:"auto_migrate"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

type CacheConfig struct {
	Size int           `mapstructure:"size"`
	TTL  time.Duration `mapstructure:"ttl"`
	// NotifyChannel is the PostgreSQL channel used to fan out invalidations.
	// Empty disables cross-instance invalidation.
	NotifyChannel string `mapstructure:"notify_channel"`
}

type RevalidationConfig struct {
	URL         string        `mapstructure:"url"`
	Secret      string        `mapstructure:"secret"`
	Timeout     time.Duration `mapstructure:"timeout"`
	IncludeTags bool          `mapstructure:"include_tags"`
}

type ArchiveConfig struct {
	// Driver is "fs", "s3" or "memory".
	Driver    string        `mapstructure:"driver"`
	Dir       string        `mapstructure:"dir"`
	Bucket    string        `mapstructure:"bucket"`
	Prefix    string        `mapstructure:"prefix"`
	Region    string        `mapstructure:"region"`
	Endpoint  string        `mapstructure:"endpoint"`
	PathStyle bool          `mapstructure:"path_style"`
	Interval  time.Duration `mapstructure:"interval"`
	BatchSize int           `mapstructure:"batch_size"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	// RPS is the sustained per-client request rate; zero disables limiting.
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("log.level", "info")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:healthops.db?_pragma=busy_timeout(5000)")
	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.statement_timeout", 5*time.Second)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_ttl", 15*time.Minute)
	v.SetDefault("auth.bcrypt_cost", 12)

	v.SetDefault("cache.size", 4096)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.notify_channel", "")

	v.SetDefault("revalidation.url", "")
	v.SetDefault("revalidation.secret", "")
	v.SetDefault("revalidation.timeout", 3*time.Second)
	v.SetDefault("revalidation.include_tags", false)

	v.SetDefault("archive.driver", "fs")
	v.SetDefault("archive.dir", "./archive")
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.prefix", "history")
	v.SetDefault("archive.region", "")
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.path_style", false)
	v.SetDefault("archive.interval", time.Hour)
	v.SetDefault("archive.batch_size", 1000)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("rate_limit.rps", 20.0)
	v.SetDefault("rate_limit.burst", 40)
}

// Load reads configPath (a YAML file; empty means defaults and environment
// only) and applies HEALTHOPS_* overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
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

// Validate checks settings that would otherwise fail late at startup.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "pgx", "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver: unsupported %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn: required"))
	}

	if c.Auth.JWTSecret == "" {
		if !c.IsDevelopment() {
			errs = append(errs, errors.New("auth.jwt_secret: required outside development"))
		} else {
			c.Auth.JWTSecret = "development-only-secret"
		}
	}

	switch c.Archive.Driver {
	case "fs", "memory":
	case "s3":
		if c.Archive.Bucket == "" {
			errs = append(errs, errors.New("archive.bucket: required for the s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("archive.driver: unsupported %q", c.Archive.Driver))
	}

	if c.Cache.NotifyChannel != "" && c.Database.Driver == "sqlite" {
		errs = append(errs, errors.New("cache.notify_channel: requires the PostgreSQL driver"))
	}

	return errors.Join(errs...)
}

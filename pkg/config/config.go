package config

import (
	"context"
	"time"
)

// Config represents the complete configuration for the chemgate gateway.
// It provides type-safe access to all configuration values with validation.
type Config struct {
	Server ServerConfig `koanf:"server" validate:"required"`
	Redis  RedisConfig  `koanf:"redis"  validate:"required"`
	Broker BrokerConfig `koanf:"broker" validate:"required"`
	Auth   AuthConfig   `koanf:"auth"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host         string        `koanf:"host"          validate:"required"        env:"SERVER_HOST"`
	Port         int           `koanf:"port"          validate:"min=1,max=65535" env:"SERVER_PORT"`
	ReadTimeout  time.Duration `koanf:"read_timeout"                             env:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `koanf:"write_timeout"                            env:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"                             env:"SERVER_IDLE_TIMEOUT"`
}

// RedisConfig contains connection settings for the Redis instance backing
// the task broker and token store.
type RedisConfig struct {
	URL          string        `koanf:"url"           env:"REDIS_URL"`
	Host         string        `koanf:"host"          env:"REDIS_HOST"`
	Port         string        `koanf:"port"          env:"REDIS_PORT"`
	Password     string        `koanf:"password"      env:"REDIS_PASSWORD"`
	DB           int           `koanf:"db"            env:"REDIS_DB"`
	PoolSize     int           `koanf:"pool_size"     env:"REDIS_POOL_SIZE"`
	DialTimeout  time.Duration `koanf:"dial_timeout"  env:"REDIS_DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `koanf:"read_timeout"  env:"REDIS_READ_TIMEOUT"`
	WriteTimeout time.Duration `koanf:"write_timeout" env:"REDIS_WRITE_TIMEOUT"`
	PingTimeout  time.Duration `koanf:"ping_timeout"  env:"REDIS_PING_TIMEOUT"`
}

// BrokerConfig contains task broker behavior configuration.
type BrokerConfig struct {
	KeyPrefix    string        `koanf:"key_prefix"    validate:"required" env:"BROKER_KEY_PREFIX"`
	ResultTTL    time.Duration `koanf:"result_ttl"    validate:"required" env:"BROKER_RESULT_TTL"`
	SyncTimeout  time.Duration `koanf:"sync_timeout"  validate:"required" env:"BROKER_SYNC_TIMEOUT"`
	PollInterval time.Duration `koanf:"poll_interval" validate:"required" env:"BROKER_POLL_INTERVAL"`
}

// AuthConfig contains authentication configuration. Users maps usernames to
// bcrypt password hashes; tokens issued against them are stored in Redis.
type AuthConfig struct {
	Enabled  bool              `koanf:"enabled"   env:"AUTH_ENABLED"`
	TokenTTL time.Duration     `koanf:"token_ttl" env:"AUTH_TOKEN_TTL"`
	Users    map[string]string `koanf:"users"`
	Admins   []string          `koanf:"admins"    env:"AUTH_ADMINS"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         9100,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Redis: RedisConfig{
			Host:         "localhost",
			Port:         "6379",
			PoolSize:     10,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PingTimeout:  10 * time.Second,
		},
		Broker: BrokerConfig{
			KeyPrefix:    "chemgate",
			ResultTTL:    24 * time.Hour,
			SyncTimeout:  30 * time.Second,
			PollInterval: 100 * time.Millisecond,
		},
		Auth: AuthConfig{
			Enabled:  true,
			TokenTTL: 24 * time.Hour,
		},
	}
}

type ctxKey struct{}

// ContextWithConfig attaches a configuration to the context.
func ContextWithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext returns the configuration attached to the context, or nil.
func FromContext(ctx context.Context) *Config {
	if ctx == nil {
		return nil
	}
	cfg, _ := ctx.Value(ctxKey{}).(*Config)
	return cfg
}

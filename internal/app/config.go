package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	iauth "github.com/exowars/exowars/internal/auth"
	"github.com/exowars/exowars/internal/cache"
	"github.com/exowars/exowars/internal/database"
	"github.com/exowars/exowars/internal/sources"
)

// Config represents the runtime configuration for the ExoWars backend.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// DatabaseConfig selects and configures the relation store backend. The
// driver is the global backend-selection flag: sqlite, mysql and postgres
// pick the relational store; leveldb picks the key-value store.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// CacheConfig describes cache backends.
type CacheConfig struct {
	Redis    RedisCacheConfig `mapstructure:"redis"`
	LocalTTL time.Duration    `mapstructure:"local_ttl"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TLS      bool          `mapstructure:"tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// AuthConfig captures authentication settings.
type AuthConfig struct {
	JWT JWTSettings `mapstructure:"jwt"`
}

// JWTSettings configures JWT access tokens.
type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// SourcesConfig configures the external catalog connectors.
type SourcesConfig struct {
	Swapi SwapiSettings `mapstructure:"swapi"`
	Nasa  NasaSettings  `mapstructure:"nasa"`
}

// SwapiSettings configures the Star Wars catalog connector.
type SwapiSettings struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// NasaSettings configures the NASA catalog connector.
type NasaSettings struct {
	ExoplanetURL string        `mapstructure:"exoplanet_url"`
	ImageURL     string        `mapstructure:"image_url"`
	APIKey       string        `mapstructure:"api_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig bundles the per-route-group limiter windows.
type RateLimitConfig struct {
	API    RateWindow `mapstructure:"api"`
	Submit RateWindow `mapstructure:"submit"`
}

// RateWindow is a fixed request budget per window.
type RateWindow struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("EXOWARS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/exowars.sqlite")

	v.SetDefault("cache.redis.enabled", false)
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.timeout", "5s")
	v.SetDefault("cache.local_ttl", "30m")

	v.SetDefault("auth.jwt.secret", "")
	v.SetDefault("auth.jwt.issuer", "exowars")
	v.SetDefault("auth.jwt.ttl", "24h")

	v.SetDefault("sources.swapi.base_url", "https://swapi.dev/api")
	v.SetDefault("sources.swapi.timeout", "15s")
	v.SetDefault("sources.nasa.exoplanet_url", "https://exoplanetarchive.ipac.caltech.edu/TAP/sync")
	v.SetDefault("sources.nasa.image_url", "https://images-api.nasa.gov")
	v.SetDefault("sources.nasa.api_key", "")
	v.SetDefault("sources.nasa.timeout", "15s")

	v.SetDefault("ratelimit.api.requests", 60)
	v.SetDefault("ratelimit.api.window", "1m")
	v.SetDefault("ratelimit.submit.requests", 10)
	v.SetDefault("ratelimit.submit.window", "1m")
}

// RedisClientConfig converts cache settings to the Redis client's config.
func (c CacheConfig) RedisClientConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Address:  c.Redis.Address,
		Username: c.Redis.Username,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		TLS:      c.Redis.TLS,
		Timeout:  c.Redis.Timeout,
	}
}

// JWTServiceConfig converts auth settings to the JWT service's config.
func (c AuthConfig) JWTServiceConfig() iauth.JWTConfig {
	return iauth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: c.JWT.TTL,
	}
}

// DatabaseOptions converts database settings to the relational open config.
func (c DatabaseConfig) DatabaseOptions() database.Config {
	return database.Config{
		Driver:   c.Driver,
		Path:     c.Path,
		DSN:      c.DSN,
		Host:     c.Host,
		Port:     c.Port,
		Name:     c.Name,
		User:     c.User,
		Password: c.Password,
	}
}

// SwapiClientConfig converts source settings to the SWAPI connector config.
func (c SourcesConfig) SwapiClientConfig() sources.SwapiConfig {
	return sources.SwapiConfig{
		BaseURL: c.Swapi.BaseURL,
		Timeout: c.Swapi.Timeout,
	}
}

// NasaClientConfig converts source settings to the NASA connector config.
func (c SourcesConfig) NasaClientConfig() sources.NasaConfig {
	return sources.NasaConfig{
		ExoplanetURL: c.Nasa.ExoplanetURL,
		ImageURL:     c.Nasa.ImageURL,
		APIKey:       c.Nasa.APIKey,
		Timeout:      c.Nasa.Timeout,
	}
}

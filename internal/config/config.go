package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Fipe      FipeConfig      `mapstructure:"fipe"`
	Price     PriceConfig     `mapstructure:"price"`
	Favorites FavoritesConfig `mapstructure:"favorites"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	Host            string `mapstructure:"host"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// FipeConfig holds the price table API configuration
type FipeConfig struct {
	BaseURL              string   `mapstructure:"base_url"`
	Timeout              int      `mapstructure:"timeout"` // seconds, 0 disables
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	Proxies              []string `mapstructure:"proxies"`
	UserAgent            string   `mapstructure:"user_agent"`
}

// PriceConfig holds the single-code price provider configuration
type PriceConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Timeout   int    `mapstructure:"timeout"`
	ErrorPage string `mapstructure:"error_page"`
}

// FavoritesConfig selects where the favorites slot lives
type FavoritesConfig struct {
	Backend string `mapstructure:"backend"` // file, redis or postgres
	Slot    string `mapstructure:"slot"`
	Dir     string `mapstructure:"dir"`
}

// NotifyConfig holds banner settings
type NotifyConfig struct {
	TTL int `mapstructure:"ttl"` // seconds
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LogConfig holds logrus settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// Load loads configuration from an optional YAML file with environment variable overrides
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("FIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	switch c.Favorites.Backend {
	case "file", "redis", "postgres":
	default:
		return fmt.Errorf("unknown favorites backend %q", c.Favorites.Backend)
	}
	if c.Favorites.Slot == "" {
		return fmt.Errorf("favorites.slot must not be empty")
	}
	if c.Fipe.MaxRequestsPerSecond <= 0 {
		return fmt.Errorf("fipe.max_requests_per_second must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.request_timeout", 60)
	v.SetDefault("server.shutdown_timeout", 10)

	v.SetDefault("fipe.base_url", "https://parallelum.com.br/fipe/api/v1")
	v.SetDefault("fipe.timeout", 30)
	v.SetDefault("fipe.max_requests_per_second", 5)
	v.SetDefault("fipe.proxies", []string{})
	v.SetDefault("fipe.user_agent", "fipe-consulta/1.0")

	v.SetDefault("price.base_url", "https://fipe.parallelum.com.br")
	v.SetDefault("price.timeout", 30)
	v.SetDefault("price.error_page", "/erro.html")

	v.SetDefault("favorites.backend", "file")
	v.SetDefault("favorites.slot", "fipeFavorites")
	v.SetDefault("favorites.dir", ".")

	v.SetDefault("notify.ttl", 5)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "fipe")
	v.SetDefault("database.user", "fipe_user")
	v.SetDefault("database.password", "fipe_pass")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Email     EmailConfig     `mapstructure:"email"`
	S3        S3Config        `mapstructure:"s3"`
	Log       LogConfig       `mapstructure:"log"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	// BaseURL is the public origin used to build links in outgoing email.
	BaseURL   string `mapstructure:"base_url"`
	StaticDir string `mapstructure:"static_dir"`
}

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
}

type AuthConfig struct {
	Secret        string        `mapstructure:"secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	ResetTokenTTL time.Duration `mapstructure:"reset_token_ttl"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`
}

// EmailConfig configures the SES sender. When disabled, reset links are only logged.
type EmailConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Region      string `mapstructure:"region"`
	AccessKeyID string `mapstructure:"access_key_id"`
	APIKey      string `mapstructure:"api_key"`
	From        string `mapstructure:"from"`
}

type S3Config struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	File   string `mapstructure:"file"`
	Stdout bool   `mapstructure:"stdout"`
	JSON   bool   `mapstructure:"json"`
}

type SentryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

type RateLimitConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	PerMinute int  `mapstructure:"per_minute"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
}

var defaults = map[string]interface{}{
	"server.address":       ":8080",
	"server.base_url":      "http://localhost:8080",
	"server.static_dir":    "",
	"database.driver":      DriverMongo,
	"database.uri":         "mongodb://localhost:27017",
	"database.name":        "trainlog",
	"auth.secret":          "",
	"auth.session_ttl":     "720h",
	"auth.reset_token_ttl": "1h",
	"auth.cookie_secure":   false,
	"email.enabled":        false,
	"email.region":         "us-east-1",
	"email.access_key_id":  "",
	"email.api_key":        "",
	"email.from":           "Trainlog <noreply@localhost>",
	"s3.enabled":           false,
	"s3.endpoint":          "",
	"s3.region":            "us-east-1",
	"s3.access_key_id":     "",
	"s3.secret_access_key": "",
	"s3.bucket_name":       "trainlog-exports",
	"log.level":            "info",
	"log.file":             "",
	"log.stdout":           true,
	"log.json":             false,
	"sentry.enabled":       false,
	"sentry.dsn":           "",
	"sentry.environment":   "development",
	"ratelimit.enabled":    false,
	"ratelimit.per_minute": 10,
	"redis.addr":           "localhost:6379",
	"redis.password":       "",
}

// LoadConfig reads configuration from path/config.yaml (optional) and the
// environment. Nested keys map to env vars with dots replaced: auth.secret -> AUTH_SECRET.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	// Every key needs a default so AutomaticEnv can see it during Unmarshal.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	return config, config.Validate()
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.Auth.Secret == "" {
		return errors.New("auth.secret is required")
	}
	if c.Database.Driver != DriverMongo && c.Database.Driver != DriverMemory {
		return errors.New("database.driver must be mongo or memory")
	}
	if c.Email.Enabled && c.Email.From == "" {
		return errors.New("email.from is required when email is enabled")
	}
	if c.S3.Enabled && c.S3.BucketName == "" {
		return errors.New("s3.bucket_name is required when s3 is enabled")
	}
	if c.RateLimit.Enabled && c.RateLimit.PerMinute <= 0 {
		return errors.New("ratelimit.per_minute must be positive")
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"

	PasswordlessDeleteAuthor = "author"
	PasswordlessDeleteAnyone = "anyone"
)

type DBConfig struct {
	Username string
	Password string
	Host     string
	Port     string
	DBName   string
	SSLMode  string
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Addr     string
	Password string
}

type ServerConfig struct {
	Port           string
	Handler        http.Handler
	MaxHeaderBytes int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type Config struct {
	Env          string
	Port         string
	ClientOrigin string
	StoreDriver  string
	JWTSecret    string
	TokenTTL     time.Duration

	PasswordlessDelete  string
	CompensationTimeout time.Duration

	Mongo    MongoConfig
	Postgres DBConfig
	Redis    RedisConfig
}

// Load reads secrets from .env (when present) and everything else from
// app.yaml found in dir. Environment variables override yaml keys.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigType("yaml")
	v.SetConfigName("app")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.port", "3000")
	v.SetDefault("app.env", "production")
	v.SetDefault("client.origin", "http://localhost:5173")
	v.SetDefault("store.driver", DriverMongo)
	v.SetDefault("mongo.database", "fillog")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("comments.passwordless_delete", PasswordlessDeleteAuthor)
	v.SetDefault("engagement.compensation_timeout", "5s")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{
		Env:                 v.GetString("app.env"),
		Port:                v.GetString("app.port"),
		ClientOrigin:        v.GetString("client.origin"),
		StoreDriver:         strings.ToLower(strings.TrimSpace(v.GetString("store.driver"))),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		TokenTTL:            v.GetDuration("auth.token_ttl"),
		PasswordlessDelete:  strings.ToLower(strings.TrimSpace(v.GetString("comments.passwordless_delete"))),
		CompensationTimeout: v.GetDuration("engagement.compensation_timeout"),
		Mongo: MongoConfig{
			URI:      os.Getenv("MONGO_URI"),
			Database: v.GetString("mongo.database"),
		},
		Postgres: DBConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     os.Getenv("POSTGRES_PORT"),
			DBName:   os.Getenv("POSTGRES_DATABASE"),
			SSLMode:  os.Getenv("POSTGRES_SSLMODE"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Port == "" {
		return errors.New("app.port is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if c.CompensationTimeout <= 0 {
		return errors.New("engagement.compensation_timeout must be positive")
	}

	switch c.PasswordlessDelete {
	case PasswordlessDeleteAuthor, PasswordlessDeleteAnyone:
	default:
		return fmt.Errorf("comments.passwordless_delete must be %q or %q", PasswordlessDeleteAuthor, PasswordlessDeleteAnyone)
	}

	switch c.StoreDriver {
	case DriverMemory:
	case DriverMongo:
		if c.Mongo.URI == "" {
			return errors.New("MONGO_URI is required for the mongo store driver")
		}
		if c.Postgres.Host == "" {
			return errors.New("POSTGRES_HOST is required for the mongo store driver")
		}
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR is required for the mongo store driver")
		}
		if c.Postgres.SSLMode == "" {
			c.Postgres.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.StoreDriver)
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

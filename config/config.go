// Package config loads service settings from defaults, an optional TOML
// file and EMAIL_DESIGNER_* environment variables, in rising precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"email-designer/notify"
	"email-designer/param"
	"email-designer/storage"
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Log      LogConfig
	Storage  StorageConfig
	Notify   NotifyConfig
	Composer ComposerConfig
	Params   ParamsConfig
}

// ServerConfig.CORSAllowOrigin is empty for same-origin only.
type ServerConfig struct {
	Port            string
	CORSAllowOrigin string `mapstructure:"cors_allow_origin"`
}

// AuthConfig enables bearer-token auth when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	JWTIssuer string `mapstructure:"jwt_issuer"`
}

type LogConfig struct {
	Level  string
	Format string
}

// StorageConfig selects the backend holding the saved design.
type StorageConfig struct {
	Backend  string
	File     FileConfig
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	DynamoDB DynamoDBConfig `mapstructure:"dynamodb"`
}

type FileConfig struct {
	Dir string
}

type SQLiteConfig struct {
	Path string
}

type DynamoDBConfig struct {
	Table    string
	Region   string
	Endpoint string
}

type NotifyConfig struct {
	TTL time.Duration
}

// ComposerConfig bounds how long a composer request may wait. Zero waits
// until the composer answers or the request is abandoned.
type ComposerConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ParamsConfig seeds the parameter list at startup.
type ParamsConfig struct {
	Defaults []ParamSeed
}

type ParamSeed struct {
	Key   string
	Value string
}

// Load reads configuration from file and env. Env var overrides use prefix
// EMAIL_DESIGNER_, with dots in key names replaced by underscores.
func Load() (Config, error) {
	v := viper.New()

	dataDir := filepath.Join(os.Getenv("HOME"), ".local", "share", "email-designer")

	// default values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.cors_allow_origin", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("storage.backend", storage.BackendFile)
	v.SetDefault("storage.file.dir", dataDir)
	v.SetDefault("storage.sqlite.path", filepath.Join(dataDir, "email-designer.db"))
	v.SetDefault("storage.dynamodb.table", "email-designer")
	v.SetDefault("storage.dynamodb.region", "us-east-1")
	v.SetDefault("storage.dynamodb.endpoint", "")
	v.SetDefault("notify.ttl", notify.DefaultTTL)
	v.SetDefault("composer.request_timeout", time.Duration(0))
	v.SetDefault("params.defaults", []map[string]any{
		{"key": "customer_name", "value": "Amit Kumar"},
		{"key": "plan_type", "value": "Premium"},
	})

	v.SetConfigType("toml")

	cfgPath := os.Getenv("EMAIL_DESIGNER_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "email-designer"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("EMAIL_DESIGNER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; an explicitly named or malformed one is not.
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Notify.TTL <= 0 {
		c.Notify.TTL = notify.DefaultTTL
	}
	if c.Composer.RequestTimeout < 0 {
		return Config{}, fmt.Errorf("composer.request_timeout must not be negative, got %s", c.Composer.RequestTimeout)
	}
	return c, nil
}

// SlogLevel maps the configured level name to a slog level; unknown names
// mean info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Handler builds the slog handler for the configured format: "text" for
// human-readable output, JSON otherwise.
func (l LogConfig) Handler() slog.Handler {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if strings.EqualFold(l.Format, "text") {
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}

// Store converts the storage settings for storage.Open.
func (s StorageConfig) Store() storage.Config {
	return storage.Config{
		Backend: s.Backend,
		File:    storage.FileConfig{Dir: s.File.Dir},
		SQLite:  storage.SQLiteConfig{Path: s.SQLite.Path},
		Dynamo: storage.DynamoConfig{
			Table:    s.DynamoDB.Table,
			Region:   s.DynamoDB.Region,
			Endpoint: s.DynamoDB.Endpoint,
		},
	}
}

// Seeds returns the configured default parameters.
func (p ParamsConfig) Seeds() []param.Parameter {
	out := make([]param.Parameter, len(p.Defaults))
	for i, d := range p.Defaults {
		out[i] = param.Parameter{Key: d.Key, Value: d.Value}
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Token store backends.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

// Config holds all configuration for the console.
type Config struct {
	APIURL        string        `mapstructure:"api_url"`
	TokenStore    string        `mapstructure:"token_store"`
	TokenDir      string        `mapstructure:"token_dir"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`
	LogLevel      string        `mapstructure:"log_level"`
	LogFile       string        `mapstructure:"log_file"`
	HTTPTimeout   time.Duration `mapstructure:"http_timeout"`
}

// DefaultDir is ~/.casedesk, or .casedesk when the home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".casedesk"
	}
	return filepath.Join(home, ".casedesk")
}

// Load reads .env from the working directory, then ~/.casedesk/config.yaml
// and CASEDESK_* environment variables.
func Load() (*Config, error) {
	return LoadFrom(DefaultDir(), ".env")
}

// LoadFrom loads configuration with dir as the casedesk home. envFiles that
// do not exist are skipped; variables already set in the environment win.
func LoadFrom(dir string, envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("CASEDESK")
	v.AutomaticEnv()
	setDefaults(v, dir)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env and defaults cover everything.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("api_url", "http://127.0.0.1:8000")
	v.SetDefault("token_store", StoreFile)
	v.SetDefault("token_dir", dir)
	v.SetDefault("redis_addr", "127.0.0.1:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_prefix", "casedesk:")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", filepath.Join(dir, "casedesk.log"))
	v.SetDefault("http_timeout", 30*time.Second)
}

// Validate rejects configurations the console cannot start with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("config: api_url %q must be an absolute URL", c.APIURL)
	}
	switch c.TokenStore {
	case StoreFile, StoreRedis:
	default:
		return fmt.Errorf("config: unknown token_store %q (want %s or %s)", c.TokenStore, StoreFile, StoreRedis)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("config: http_timeout must be positive, got %s", c.HTTPTimeout)
	}
	return nil
}

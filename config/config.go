package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config stores all configuration for the service.
type Config struct {
	Port            string        `mapstructure:"PORT"`
	GinMode         string        `mapstructure:"GIN_MODE"`
	DevMode         bool          `mapstructure:"DEV_MODE"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	AnalyzerURL     string        `mapstructure:"ANALYZER_URL"`
	AnalyzerTimeout time.Duration `mapstructure:"ANALYZER_TIMEOUT"`
	BannerTTL       time.Duration `mapstructure:"BANNER_TTL"`
	SessionTTL      time.Duration `mapstructure:"SESSION_TTL"`
	MaxSessions     int           `mapstructure:"MAX_SESSIONS"`
	RateLimit       float64       `mapstructure:"RATE_LIMIT"`
	RateBurst       int           `mapstructure:"RATE_BURST"`
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	DataDir         string        `mapstructure:"DATA_DIR"`
}

var defaults = map[string]any{
	"PORT":             "8082",
	"GIN_MODE":         "release",
	"DEV_MODE":         false,
	"LOG_LEVEL":        "info",
	"ANALYZER_URL":     "http://localhost:8000",
	"ANALYZER_TIMEOUT": "60s",
	"BANNER_TTL":       "5s",
	"SESSION_TTL":      "30m",
	"MAX_SESSIONS":     1000,
	"RATE_LIMIT":       2.0,
	"RATE_BURST":       5,
	"REDIS_ADDR":       "",
	"REDIS_PASSWORD":   "",
	"REDIS_DB":         0,
	"DATA_DIR":         "data",
}

// LoadEnv loads .env.development for local development, falling back to
// .env. It reports whether a file was found.
func LoadEnv() bool {
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			return false
		}
	}
	return true
}

// Load reads configuration from environment variables and, if configFile is
// set, from that file. Environment variables win over the file.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if strings.HasPrefix(configFile, ".env") || strings.HasSuffix(configFile, ".env") {
			v.SetConfigType("env")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.AnalyzerURL = strings.TrimRight(cfg.AnalyzerURL, "/")
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Port == "":
		return fmt.Errorf("PORT must not be empty")
	case c.AnalyzerURL == "":
		return fmt.Errorf("ANALYZER_URL must not be empty")
	case c.AnalyzerTimeout <= 0:
		return fmt.Errorf("ANALYZER_TIMEOUT must be positive, got %s", c.AnalyzerTimeout)
	case c.RateLimit <= 0 || c.RateBurst <= 0:
		return fmt.Errorf("RATE_LIMIT and RATE_BURST must be positive")
	}
	return nil
}

// UseRedis reports whether submissions are tracked in Redis.
func (c *Config) UseRedis() bool {
	return c.RedisAddr != ""
}

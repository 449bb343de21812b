// Package server provides configuration helpers that define runtime defaults,
// validation, and rate-limiting parameters for the chat service.
package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 5000
	defaultMaxMessageSize  = 8192
	defaultBurst           = 5
	defaultRefillInterval  = time.Second
	defaultSendBufferSize  = 256
	defaultShutdownTimeout = 10 * time.Second
	defaultLogLevel        = "INFO"
)

// RateLimitConfig defines the parameters for per-connection message rate limiting.
type RateLimitConfig struct {
	Burst          int
	RefillInterval time.Duration
}

// Config holds the server configuration settings including security controls.
type Config struct {
	Host            string        `env:"HOST,default=0.0.0.0"`
	Port            int           `env:"PORT,default=5000"`
	AllowedOrigins  string        `env:"ALLOWED_ORIGINS,default=http://localhost:5000"`
	MaxMessageSize  int           `env:"MAX_MESSAGE_SIZE,default=8192"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST,default=5"`
	RateLimitRefill time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL,default=1s"`
	SendBufferSize  int           `env:"SEND_BUFFER_SIZE,default=256"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() Config {
	return Config{
		Host:            defaultHost,
		Port:            defaultPort,
		AllowedOrigins:  "http://localhost:5000",
		MaxMessageSize:  defaultMaxMessageSize,
		RateLimitBurst:  defaultBurst,
		RateLimitRefill: defaultRefillInterval,
		SendBufferSize:  defaultSendBufferSize,
		ShutdownTimeout: defaultShutdownTimeout,
		LogLevel:        defaultLogLevel,
	}
}

// LoadConfig reads the configuration from the environment. When envFile is
// set and exists, its variables are loaded first without overriding ones
// already present in the environment.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return cfg.sanitize(), nil
}

// sanitize replaces out-of-range values with their defaults.
func (c Config) sanitize() Config {
	if strings.TrimSpace(c.Host) == "" {
		c.Host = defaultHost
	}
	if c.Port <= 0 || c.Port > 65535 {
		c.Port = defaultPort
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = defaultMaxMessageSize
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = defaultBurst
	}
	if c.RateLimitRefill <= 0 {
		c.RateLimitRefill = defaultRefillInterval
	}
	if c.SendBufferSize <= 0 {
		c.SendBufferSize = defaultSendBufferSize
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = defaultLogLevel
	}
	return c
}

// Addr is the host:port the HTTP server listens on.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c Config) Origins() []string {
	return parseOrigins(c.AllowedOrigins)
}

func (c Config) RateLimit() RateLimitConfig {
	return RateLimitConfig{Burst: c.RateLimitBurst, RefillInterval: c.RateLimitRefill}
}

func parseOrigins(origins string) []string {
	if strings.TrimSpace(origins) == "" {
		return nil
	}
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

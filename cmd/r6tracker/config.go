package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/r6tracker/internal/logger"
	"github.com/nkiryanov/r6tracker/internal/service/ubi"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
	defaultCacheTTL     = 10 * time.Minute
	defaultUbiTimeout   = 10 * time.Second
	defaultRefreshAhead = time.Minute
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key
	// Some internal parts (like signing JWT tokens) uses symmetric encryption, so this key is used for that purpose
	SecretKey string

	// Environment
	Environment string

	// Upstream account the service keeps session for
	UbiEmail    string
	UbiPassword string

	// Upstream application id sent as 'ubi-appid' header
	UbiAppID string

	// Prefix of Authorization header value, ticket is appended to it
	UbiAuthPrefix string

	// Upstream base url and optional per platform sandbox overrides
	UbiBaseURL        string
	UbiSandboxPCURL   string
	UbiSandboxXboxURL string
	UbiSandboxPSNURL  string

	// Single upstream request timeout
	UbiTimeout time.Duration

	// Credential is refreshed when it expires within this window
	UbiRefreshAhead time.Duration

	// Profile lookups cache. Redis is used if address set, in memory cache otherwise
	RedisAddr string
	CacheTTL  time.Duration
}

func NewConfig() *Config {
	return &Config{
		LogLevel:        defaultLoggingLevel,
		ListenAddr:      defaultListenAddr,
		Environment:     defaultEnvironment,
		UbiAuthPrefix:   ubi.DefaultAuthPrefix,
		UbiBaseURL:      ubi.DefaultBaseURL,
		UbiTimeout:      defaultUbiTimeout,
		UbiRefreshAhead: defaultRefreshAhead,
		CacheTTL:        defaultCacheTTL,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":          setString(&c.ListenAddr),
		"DATABASE_URI":         setString(&c.DatabaseDSN),
		"SECRET_KEY":           setString(&c.SecretKey),
		"LOG_LEVEL":            setString(&c.LogLevel),
		"ENVIRONMENT":          setString(&c.Environment),
		"UBI_EMAIL":            setString(&c.UbiEmail),
		"UBI_PASSWORD":         setString(&c.UbiPassword),
		"UBI_APPID":            setString(&c.UbiAppID),
		"UBI_AUTH_PREFIX":      setString(&c.UbiAuthPrefix),
		"UBI_BASE_URL":         setString(&c.UbiBaseURL),
		"UBI_SANDBOX_PC_URL":   setString(&c.UbiSandboxPCURL),
		"UBI_SANDBOX_XBOX_URL": setString(&c.UbiSandboxXboxURL),
		"UBI_SANDBOX_PSN_URL":  setString(&c.UbiSandboxPSNURL),
		"UBI_TIMEOUT":          setDuration(&c.UbiTimeout),
		"UBI_REFRESH_AHEAD":    setDuration(&c.UbiRefreshAhead),
		"REDIS_ADDR":           setString(&c.RedisAddr),
		"CACHE_TTL":            setDuration(&c.CacheTTL),
	}

	var errs []error
	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("r6tracker", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")

	fs.StringVar(&c.UbiEmail, "ubi-email", c.UbiEmail, "Upstream account email")
	fs.StringVar(&c.UbiPassword, "ubi-password", c.UbiPassword, "Upstream account password")
	fs.StringVar(&c.UbiAppID, "ubi-appid", c.UbiAppID, "Upstream application id")
	fs.StringVar(&c.UbiAuthPrefix, "ubi-auth-prefix", c.UbiAuthPrefix, "Upstream Authorization header prefix")
	fs.StringVar(&c.UbiBaseURL, "ubi-base-url", c.UbiBaseURL, "Upstream base url")
	fs.StringVar(&c.UbiSandboxPCURL, "ubi-sandbox-pc-url", c.UbiSandboxPCURL, "PC sandbox url override")
	fs.StringVar(&c.UbiSandboxXboxURL, "ubi-sandbox-xbox-url", c.UbiSandboxXboxURL, "Xbox sandbox url override")
	fs.StringVar(&c.UbiSandboxPSNURL, "ubi-sandbox-psn-url", c.UbiSandboxPSNURL, "PSN sandbox url override")
	fs.DurationVar(&c.UbiTimeout, "ubi-timeout", c.UbiTimeout, "Upstream request timeout")
	fs.DurationVar(&c.UbiRefreshAhead, "ubi-refresh-ahead", c.UbiRefreshAhead, "Refresh credential when it expires within this window")

	fs.StringVar(&c.RedisAddr, "redis", c.RedisAddr, "Redis address for profile cache, in memory cache if empty")
	fs.DurationVar(&c.CacheTTL, "cache-ttl", c.CacheTTL, "Profile cache TTL")

	return fs.Parse(args)
}

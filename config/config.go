package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	TokenFormatOpaque = "opaque"
	TokenFormatJWT    = "jwt"
)

// dev default, same origins the frontend runs on locally
const defaultAllowOrigins = "http://127.0.0.1:5500,http://localhost:5500,http://localhost:3000"

type Config struct {
	Addr         string
	AllowOrigins string
	WebDir       string
	DatabaseURL  string
	AccessLog    bool
	SeedSamples  bool
	LogLevel     slog.Level
	Session      SessionConfig
}

type SessionConfig struct {
	Lifetime      time.Duration
	TokenFormat   string
	Secret        string
	SweepInterval time.Duration
}

// Load reads .env (if present), then the environment, then args. Flags win
// over environment variables.
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	lifetime, err := envDuration("SESSION_LIFETIME", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	sweep, err := envDuration("SESSION_SWEEP_INTERVAL", 0)
	if err != nil {
		return Config{}, err
	}
	seed, err := envBool("SEED_SAMPLES", true)
	if err != nil {
		return Config{}, err
	}
	accessLog, err := envBool("ACCESS_LOG", true)
	if err != nil {
		return Config{}, err
	}

	var logLevel string
	flags := pflag.NewFlagSet("stockroom", pflag.ContinueOnError)
	flags.StringVar(&cfg.Addr, "addr", envString("ADDR", ":8080"), "listen address")
	flags.StringVar(&cfg.AllowOrigins, "allow-origins", envString("ALLOW_ORIGINS", defaultAllowOrigins), "comma separated CORS origins")
	flags.StringVar(&cfg.WebDir, "web-dir", envString("WEB_DIR", "web"), "directory served for non-API paths")
	flags.StringVar(&cfg.DatabaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres URL for the user directory; empty keeps users in memory")
	flags.BoolVar(&cfg.AccessLog, "access-log", accessLog, "log every request")
	flags.BoolVar(&cfg.SeedSamples, "seed-samples", seed, "load the sample catalogue at startup")
	flags.StringVar(&logLevel, "log-level", envString("LOG_LEVEL", "info"), "debug, info, warn or error")
	flags.DurationVar(&cfg.Session.Lifetime, "session-lifetime", lifetime, "how long a login token stays valid")
	flags.StringVar(&cfg.Session.TokenFormat, "session-token-format", envString("SESSION_TOKEN_FORMAT", TokenFormatOpaque), "opaque or jwt")
	flags.StringVar(&cfg.Session.Secret, "session-secret", os.Getenv("SESSION_SECRET"), "HMAC secret for jwt tokens")
	flags.DurationVar(&cfg.Session.SweepInterval, "session-sweep-interval", sweep, "how often expired sessions are purged; 0 disables the sweeper")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return Config{}, fmt.Errorf("invalid log level %q", logLevel)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Session.Lifetime <= 0 {
		return fmt.Errorf("session lifetime must be positive, got %s", c.Session.Lifetime)
	}
	if c.Session.SweepInterval < 0 {
		return fmt.Errorf("session sweep interval must not be negative, got %s", c.Session.SweepInterval)
	}
	switch c.Session.TokenFormat {
	case TokenFormatOpaque:
	case TokenFormatJWT:
		if c.Session.Secret == "" {
			return errors.New("SESSION_SECRET is required for jwt session tokens")
		}
	default:
		return fmt.Errorf("unknown session token format %q", c.Session.TokenFormat)
	}
	return nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/aussiebroadwan/whisper/pkg/httpx"
	"github.com/aussiebroadwan/whisper/pkg/jwtx"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is layered: defaults, then the YAML file named by --config, then
// environment variables, then command-line flags.
type Config struct {
	Issuer          string   `yaml:"issuer"`            // iss claim of every token (default: whisper)
	Algorithm       string   `yaml:"algorithm"`         // EdDSA or HS256 (default: EdDSA)
	KeyFile         string   `yaml:"key_file"`          // active signing key, generated when missing; empty means ephemeral
	RetiredKeyFiles []string `yaml:"retired_key_files"` // verify-only keys
	PepperFile      string   `yaml:"pepper_file"`       // password pepper, generated when missing (default: ./pepper)

	DatabaseDriver string `yaml:"database_driver"` // sqlite or postgres (default: sqlite)
	DatabaseDSN    string `yaml:"database_dsn"`    // file path / DSN (default: whisper.db)

	Env       string `yaml:"env"`        // dev, staging, prod (default: dev)
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error (default: info)
	LogFormat string `yaml:"log_format"` // json, text (default: json)
	Port      int    `yaml:"port"`       // HTTP port (default: 8080)

	ShutdownGracePeriod  time.Duration `yaml:"shutdown_grace_period"` // default: 10s
	HousekeepingInterval time.Duration `yaml:"housekeeping_interval"` // default: 1h

	DisableRateLimit  bool             `yaml:"disable_rate_limit"`
	TrustProxyHeaders bool             `yaml:"trust_proxy_headers"` // key rate limits by X-Forwarded-For (default: false)
	RateLimits        httpx.RateLimits `yaml:"-"`                   // RATELIMIT_* environment variables only
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Issuer:               "whisper",
		Algorithm:            jwtx.AlgorithmEdDSA,
		KeyFile:              "signing.key",
		PepperFile:           "pepper",
		DatabaseDriver:       DriverSQLite,
		DatabaseDSN:          "whisper.db",
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: time.Hour,
		RateLimits:           httpx.DefaultRateLimits(),
	}
}

// LoadConfig builds the configuration from args (without the program
// name). It returns pflag.ErrHelp when --help was requested.
func LoadConfig(args []string) (Config, error) {
	cfg := DefaultConfig()

	path, err := configPath(args)
	if err != nil {
		return Config{}, err
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	fs := cfg.flagSet(io.Discard)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Usage prints the command-line help to w.
func Usage(w io.Writer) {
	cfg := DefaultConfig()
	fs := cfg.flagSet(w)
	fmt.Fprintln(w, "Usage: whisper [flags]")
	fs.PrintDefaults()
}

// configPath finds --config before anything else is parsed, so the file can
// sit underneath environment variables and the other flags.
func configPath(args []string) (string, error) {
	fs := pflag.NewFlagSet("whisper-config", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	path := fs.String("config", os.Getenv("WHISPER_CONFIG"), "")
	fs.BoolP("help", "h", false, "")

	if err := fs.Parse(args); err != nil && !errors.Is(err, pflag.ErrHelp) {
		return "", err
	}
	return *path, nil
}

func (c *Config) flagSet(out io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("whisper", pflag.ContinueOnError)
	fs.SetOutput(out)

	fs.String("config", "", "path to a YAML config file (env: WHISPER_CONFIG)")
	fs.StringVar(&c.Issuer, "issuer", c.Issuer, "token issuer")
	fs.StringVar(&c.Algorithm, "algorithm", c.Algorithm, "token signing algorithm (EdDSA, HS256)")
	fs.StringVar(&c.KeyFile, "key-file", c.KeyFile, "signing key file, created when missing; empty for an in-memory key")
	fs.StringSliceVar(&c.RetiredKeyFiles, "retired-key-file", c.RetiredKeyFiles, "verify-only key file (repeatable)")
	fs.StringVar(&c.PepperFile, "pepper-file", c.PepperFile, "password pepper file, created when missing")
	fs.StringVar(&c.DatabaseDriver, "db-driver", c.DatabaseDriver, "database driver (sqlite, postgres)")
	fs.StringVar(&c.DatabaseDSN, "db-dsn", c.DatabaseDSN, "database file or DSN")
	fs.StringVar(&c.Env, "env", c.Env, "environment (dev, staging, prod)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format (json, text)")
	fs.IntVarP(&c.Port, "port", "p", c.Port, "HTTP port")
	fs.DurationVar(&c.ShutdownGracePeriod, "shutdown-grace-period", c.ShutdownGracePeriod, "graceful shutdown timeout")
	fs.DurationVar(&c.HousekeepingInterval, "housekeeping-interval", c.HousekeepingInterval, "revocation cleanup interval")
	fs.BoolVar(&c.DisableRateLimit, "disable-rate-limit", c.DisableRateLimit, "turn off rate limiting")
	fs.BoolVar(&c.TrustProxyHeaders, "trust-proxy-headers", c.TrustProxyHeaders, "rate limit by X-Forwarded-For/X-Real-IP; only behind a proxy that sets them")
	return fs
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Issuer = getEnvOrDefault("WHISPER_ISSUER", c.Issuer)
	c.Algorithm = getEnvOrDefault("WHISPER_ALGORITHM", c.Algorithm)
	c.KeyFile = getEnvOrDefault("WHISPER_KEY_FILE", c.KeyFile)
	if v := os.Getenv("WHISPER_RETIRED_KEY_FILES"); v != "" {
		c.RetiredKeyFiles = splitList(v)
	}
	c.PepperFile = getEnvOrDefault("WHISPER_PEPPER_FILE", c.PepperFile)
	c.DatabaseDriver = getEnvOrDefault("WHISPER_DATABASE_DRIVER", c.DatabaseDriver)
	c.DatabaseDSN = getEnvOrDefault("WHISPER_DATABASE_DSN", c.DatabaseDSN)

	c.Env = getEnvOrDefault("ENV", c.Env)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvOrDefault("LOG_FORMAT", c.LogFormat)
	c.Port = getEnvIntOrDefault("PORT", c.Port)
	c.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", c.ShutdownGracePeriod)
	c.HousekeepingInterval = getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", c.HousekeepingInterval)

	if v, err := strconv.ParseBool(os.Getenv("WHISPER_DISABLE_RATE_LIMIT")); err == nil {
		c.DisableRateLimit = v
	}
	if v, err := strconv.ParseBool(os.Getenv("WHISPER_TRUST_PROXY_HEADERS")); err == nil {
		c.TrustProxyHeaders = v
	}
	c.RateLimits = c.RateLimits.FromEnv()
}

// Validate rejects combinations the application cannot start with.
func (c Config) Validate() error {
	switch c.Algorithm {
	case jwtx.AlgorithmEdDSA, jwtx.AlgorithmHS256:
	default:
		return fmt.Errorf("unsupported algorithm %q (supported: EdDSA, HS256)", c.Algorithm)
	}
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q (supported: sqlite, postgres)", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return errors.New("database DSN is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.KeyFile == "" && len(c.RetiredKeyFiles) > 0 {
		return errors.New("retired key files need a persistent key file")
	}
	return nil
}

// EffectiveRateLimits returns the limits the router should apply.
func (c Config) EffectiveRateLimits() httpx.RateLimits {
	if c.DisableRateLimit {
		return httpx.RateLimits{}
	}
	return c.RateLimits.WithTrustedProxy(c.TrustProxyHeaders)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

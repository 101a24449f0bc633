package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/salesdesk/pkg/cryptox"
	"github.com/aussiebroadwan/salesdesk/pkg/httpx"
	"github.com/aussiebroadwan/salesdesk/pkg/jwtx"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Role policies selectable with ROLE_POLICY.
const (
	RolePolicyAllowList      = "allowlist"
	RolePolicyEmailHeuristic = "email-heuristic"
)

type Config struct {
	DatabaseURL          string        // postgres URL selects the gorm primary; anything else is a sqlite path
	FallbackDatabaseFile string        // sqlite file used as fallback (default: crm.db)
	JWTSecret            string        // HS256 secret, required in production
	Issuer               string        // iss claim (default: salesdesk)
	Env                  string        // Environment (development, staging, production) (default: development)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	SessionTTL           time.Duration // Session lifetime (default: 168h)
	StorageTimeout       time.Duration // Per-call storage timeout (default: 5s)
	BcryptCost           int           // bcrypt work factor (default and minimum: 12)
	HashConcurrency      int           // Concurrent bcrypt operations (default: NumCPU)
	RolePolicy           string        // allowlist or email-heuristic (default: allowlist in production)
	AdminEmails          []string      // Administrator emails for the allowlist policy
	CORSAllowedOrigins   []string      // Browser origins allowed to call the API
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	SessionRetention     time.Duration // Dead sessions kept before deletion (default: 720h)
	RateLimits           httpx.RateLimits
}

// LoadConfig reads an optional .env file and then the environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := loadConfig(os.Getenv)
	return cfg, cfg.Validate()
}

func loadConfig(getenv func(string) string) Config {
	env := envReader(getenv)

	cfg := Config{
		DatabaseURL:          env.get("DATABASE_URL", ""),
		FallbackDatabaseFile: env.get("FALLBACK_DATABASE_FILE", "crm.db"),
		JWTSecret:            getenv("JWT_SECRET"),
		Issuer:               env.get("JWT_ISSUER", "salesdesk"),
		Env:                  env.get("ENV", "development"),
		LogLevel:             env.get("LOG_LEVEL", "info"),
		LogFormat:            env.get("LOG_FORMAT", "json"),
		Port:                 env.getInt("PORT", 8080),
		SessionTTL:           env.getDuration("SESSION_TTL", jwtx.DefaultSessionTTL),
		StorageTimeout:       env.getDuration("STORAGE_TIMEOUT", 5*time.Second),
		BcryptCost:           env.getInt("BCRYPT_COST", cryptox.DefaultCost),
		HashConcurrency:      env.getInt("HASH_CONCURRENCY", runtime.NumCPU()),
		AdminEmails:          env.getList("ADMIN_EMAILS"),
		CORSAllowedOrigins:   env.getList("CORS_ALLOWED_ORIGINS"),
		ShutdownGracePeriod:  env.getDuration("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: env.getDuration("HOUSEKEEPING_INTERVAL", time.Hour),
		SessionRetention:     env.getDuration("SESSION_RETENTION", 30*24*time.Hour),
	}

	defaultPolicy := RolePolicyEmailHeuristic
	if cfg.IsProduction() {
		defaultPolicy = RolePolicyAllowList
	}
	cfg.RolePolicy = env.get("ROLE_POLICY", defaultPolicy)

	// Values below the minimum are raised rather than rejected.
	cfg.BcryptCost = max(cfg.BcryptCost, cryptox.DefaultCost)

	defaults := httpx.DefaultRateLimits()
	cfg.RateLimits = httpx.RateLimits{
		Auth:  httpx.ParseRateLimitFromEnv(getenv, "AUTH", defaults.Auth),
		API:   httpx.ParseRateLimitFromEnv(getenv, "API", defaults.API),
		Probe: httpx.ParseRateLimitFromEnv(getenv, "PROBE", defaults.Probe),
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate rejects configurations the service must not start with.
func (c Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" && c.IsProduction() {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < jwtx.MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", jwtx.MinSecretLength))
	}
	if c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be at most %d", bcrypt.MaxCost))
	}
	switch c.RolePolicy {
	case RolePolicyAllowList, RolePolicyEmailHeuristic:
	default:
		errs = append(errs, fmt.Errorf("ROLE_POLICY must be %q or %q", RolePolicyAllowList, RolePolicyEmailHeuristic))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.StorageTimeout <= 0 {
		errs = append(errs, errors.New("STORAGE_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

// IsPostgresURL reports whether dsn selects the PostgreSQL primary.
func IsPostgresURL(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

type envReader func(string) string

func (e envReader) get(key, def string) string {
	if v := e(key); v != "" {
		return v
	}
	return def
}

func (e envReader) getInt(key string, def int) int {
	if n, err := strconv.Atoi(e(key)); err == nil {
		return n
	}
	return def
}

func (e envReader) getDuration(key string, def time.Duration) time.Duration {
	v := e(key)
	if v == "" {
		return def
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(v); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return def
}

func (e envReader) getList(key string) []string {
	var out []string
	for _, p := range strings.Split(e(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

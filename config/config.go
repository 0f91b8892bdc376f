package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gallery-api/internal/logging"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	SourcePostgres = "postgres"
	SourceMemory   = "memory"
)

// devJWTSecret is only accepted when APP_ENV=development.
const devJWTSecret = "dev-only-secret-change-me"

type Config struct {
	Port   string `koanf:"port"`
	AppEnv string `koanf:"app_env"`

	DataSource        string        `koanf:"data_source"`
	DatabaseURL       string        `koanf:"database_url"`
	DBMaxOpenConns    int           `koanf:"db_max_open_conns"`
	DBMinIdleConns    int           `koanf:"db_min_idle_conns"`
	DBConnMaxLifetime time.Duration `koanf:"db_conn_max_lifetime"`
	DBQueryTimeout    time.Duration `koanf:"db_query_timeout"`

	JWTSecret        string        `koanf:"jwt_secret"`
	JWTRefreshSecret string        `koanf:"jwt_refresh_secret"`
	JWTIssuer        string        `koanf:"jwt_issuer"`
	JWTAudience      string        `koanf:"jwt_audience"`
	JWTAccessTTL     time.Duration `koanf:"jwt_access_ttl"`
	JWTRefreshTTL    time.Duration `koanf:"jwt_refresh_ttl"`
	JWTResetTTL      time.Duration `koanf:"jwt_reset_ttl"`

	AdminDefaultUsername string `koanf:"admin_default_username"`
	AdminDefaultEmail    string `koanf:"admin_default_email"`
	AdminDefaultPassword string `koanf:"admin_default_password"`

	CorsOrigins   []string `koanf:"cors_origins"`
	UploadDir     string   `koanf:"upload_dir"`
	PublicBaseURL string   `koanf:"public_base_url"`

	CacheCategoriesTTL time.Duration `koanf:"cache_categories_ttl"`
	CacheArtworksTTL   time.Duration `koanf:"cache_artworks_ttl"`
	RedisURL           string        `koanf:"redis_url"`

	RateLimitRPS        float64 `koanf:"rate_limit_rps"`
	RateLimitBurst      int     `koanf:"rate_limit_burst"`
	AuthRateLimitPerMin int     `koanf:"auth_rate_limit_per_min"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	StripeSecretKey     string `koanf:"stripe_secret_key"`
	StripeWebhookSecret string `koanf:"stripe_webhook_secret"`
	StripeCurrency      string `koanf:"stripe_currency"`

	GoogleClientID         string `koanf:"google_client_id"`
	GoogleClientSecret     string `koanf:"google_client_secret"`
	GoogleRedirectURL      string `koanf:"google_redirect_url"`
	GoogleFrontendRedirect string `koanf:"google_frontend_redirect"`
}

func defaults() *Config {
	return &Config{
		Port:       "8080",
		AppEnv:     EnvProduction,
		DataSource: SourcePostgres,

		DBMaxOpenConns:    20,
		DBMinIdleConns:    2,
		DBConnMaxLifetime: time.Hour,
		DBQueryTimeout:    10 * time.Second,

		JWTIssuer:     "gallery-api",
		JWTAudience:   "gallery-web",
		JWTAccessTTL:  15 * time.Minute,
		JWTRefreshTTL: 7 * 24 * time.Hour,
		JWTResetTTL:   time.Hour,

		AdminDefaultUsername: "admin",
		AdminDefaultEmail:    "admin@gallery.local",
		AdminDefaultPassword: "ChangeMe123!",

		CorsOrigins:   []string{"http://localhost:5173"},
		UploadDir:     "uploads",
		PublicBaseURL: "http://localhost:5173",

		CacheCategoriesTTL: 5 * time.Minute,
		CacheArtworksTTL:   2 * time.Minute,

		RateLimitRPS:        10,
		RateLimitBurst:      30,
		AuthRateLimitPerMin: 10,

		LogLevel:  "info",
		LogFormat: "json",

		StripeCurrency: "eur",
	}
}

// legacyKeys are old environment names still honoured.
var legacyKeys = map[string]string{
	"db_url": "database_url",
}

// Load reads .env (if any), an optional YAML file at CONFIG_PATH, then the
// environment. Later layers win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logging.Debug().Msg("no .env file found, using system environment variables")
	}
	k, err := layers()
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func layers() (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// the defaults layer holds every Config key; anything else in the
	// environment is not ours
	known := make(map[string]bool)
	for _, key := range k.Keys() {
		known[key] = true
	}
	envKey := func(name string) string {
		key := strings.ToLower(name)
		if known[key] || legacyKeys[key] != "" {
			return key
		}
		return ""
	}
	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	for old, current := range legacyKeys {
		if k.String(current) != "" || k.String(old) == "" {
			continue
		}
		if err := k.Set(current, k.String(old)); err != nil {
			return nil, fmt.Errorf("set %s from %s: %w", current, old, err)
		}
	}
	if err := splitList(k, "cors_origins"); err != nil {
		return nil, err
	}
	return k, nil
}

// splitList turns "a, b" from the environment into []string{"a","b"}.
func splitList(k *koanf.Koanf, key string) error {
	raw, ok := k.Get(key).(string)
	if !ok {
		return nil
	}
	out := make([]string, 0)
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if err := k.Set(key, out); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, EnvDevelopment)
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("JWT_SECRET is required")
		}
		c.JWTSecret = devJWTSecret
	}
	if c.JWTRefreshSecret == "" {
		c.JWTRefreshSecret = c.JWTSecret
	}

	switch c.DataSource {
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DATA_SOURCE=postgres")
		}
	case SourceMemory:
	default:
		return fmt.Errorf("unknown DATA_SOURCE %q", c.DataSource)
	}

	for name, d := range map[string]time.Duration{
		"JWT_ACCESS_TTL":       c.JWTAccessTTL,
		"JWT_REFRESH_TTL":      c.JWTRefreshTTL,
		"JWT_RESET_TTL":        c.JWTResetTTL,
		"CACHE_CATEGORIES_TTL": c.CacheCategoriesTTL,
		"CACHE_ARTWORKS_TTL":   c.CacheArtworksTTL,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.DBMaxOpenConns <= 0 || c.DBMinIdleConns < 0 || c.DBMinIdleConns > c.DBMaxOpenConns {
		return errors.New("DB_MIN_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS")
	}
	if c.AdminDefaultEmail == "" || c.AdminDefaultPassword == "" {
		return errors.New("ADMIN_DEFAULT_EMAIL and ADMIN_DEFAULT_PASSWORD are required")
	}
	return nil
}

func (c *Config) StripeEnabled() bool { return c.StripeSecretKey != "" }

func (c *Config) GoogleEnabled() bool { return c.GoogleClientID != "" && c.GoogleClientSecret != "" }

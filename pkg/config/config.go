package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "personalizer"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Cache        CacheConfig
	Storefront   StorefrontConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PERSONALIZER_APP_ENV" required:"true"`
	Port         string `envconfig:"PERSONALIZER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PERSONALIZER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PERSONALIZER_LOG_WARN_STACK" default:"false"`

	// AdminOrigins extends the built-in admin CORS allowlist, comma separated.
	AdminOrigins []string `envconfig:"PERSONALIZER_ADMIN_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PERSONALIZER_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PERSONALIZER_DB_DSN"`
	Driver string `envconfig:"PERSONALIZER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PERSONALIZER_DB_HOST"`
	LegacyPort     int    `envconfig:"PERSONALIZER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PERSONALIZER_DB_USER"`
	LegacyPassword string `envconfig:"PERSONALIZER_DB_PASSWORD"`
	LegacyName     string `envconfig:"PERSONALIZER_DB_NAME"`
	LegacySSLMode  string `envconfig:"PERSONALIZER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PERSONALIZER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PERSONALIZER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PERSONALIZER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PERSONALIZER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN builds the DSN from the individual legacy variables when a full
// DSN was not provided.
func (d *DBConfig) ensureDSN() error {
	if strings.TrimSpace(d.DSN) != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("database config incomplete: set PERSONALIZER_DB_DSN or host/user/name")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.LegacyUser, d.LegacyPassword),
		Host:   fmt.Sprintf("%s:%d", d.LegacyHost, d.LegacyPort),
		Path:   d.LegacyName,
	}
	q := u.Query()
	q.Set("sslmode", d.LegacySSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"PERSONALIZER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PERSONALIZER_REDIS_ADDR"`
	Password     string        `envconfig:"PERSONALIZER_REDIS_PASSWORD"`
	DB           int           `envconfig:"PERSONALIZER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PERSONALIZER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PERSONALIZER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PERSONALIZER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PERSONALIZER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PERSONALIZER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CacheConfig struct {
	DefaultTTL    time.Duration `envconfig:"PERSONALIZER_CACHE_DEFAULT_TTL" default:"5m"`
	SweepInterval time.Duration `envconfig:"PERSONALIZER_CACHE_SWEEP_INTERVAL" default:"10m"`
}

type StorefrontConfig struct {
	RateLimitWindow time.Duration `envconfig:"PERSONALIZER_STOREFRONT_RATE_WINDOW" default:"1m"`
	RateLimitPerIP  int           `envconfig:"PERSONALIZER_STOREFRONT_RATE_PER_IP" default:"120"`
	DebounceWindow  time.Duration `envconfig:"PERSONALIZER_STOREFRONT_DEBOUNCE" default:"100ms"`
	TemplateTTL     time.Duration `envconfig:"PERSONALIZER_STOREFRONT_TEMPLATE_TTL" default:"5m"`
}

type CronConfig struct {
	Interval                time.Duration `envconfig:"PERSONALIZER_CRON_INTERVAL" default:"10m"`
	LockTTL                 time.Duration `envconfig:"PERSONALIZER_CRON_LOCK_TTL" default:"15m"`
	SubmissionRetentionDays int           `envconfig:"PERSONALIZER_CRON_SUBMISSION_RETENTION_DAYS" default:"90"`
	OrphanRetentionDays     int           `envconfig:"PERSONALIZER_CRON_ORPHAN_RETENTION_DAYS" default:"7"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PERSONALIZER_AUTO_MIGRATE" default:"false"`
}

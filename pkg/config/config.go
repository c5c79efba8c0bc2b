package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Ledger       LedgerConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Ledger.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CRUISEGUIDE_APP_ENV" required:"true"`
	Port         string `envconfig:"CRUISEGUIDE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CRUISEGUIDE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CRUISEGUIDE_LOG_WARN_STACK" default:"false"`

	// CORSOrigins lists the admin dashboard origins allowed to call the API.
	CORSOrigins []string `envconfig:"CRUISEGUIDE_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CRUISEGUIDE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CRUISEGUIDE_DB_DSN"`
	Driver string `envconfig:"CRUISEGUIDE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CRUISEGUIDE_DB_HOST"`
	LegacyPort     int    `envconfig:"CRUISEGUIDE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CRUISEGUIDE_DB_USER"`
	LegacyPassword string `envconfig:"CRUISEGUIDE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CRUISEGUIDE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CRUISEGUIDE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CRUISEGUIDE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CRUISEGUIDE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CRUISEGUIDE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CRUISEGUIDE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is SQLite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"CRUISEGUIDE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CRUISEGUIDE_REDIS_ADDR"`
	Password     string        `envconfig:"CRUISEGUIDE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CRUISEGUIDE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CRUISEGUIDE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CRUISEGUIDE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CRUISEGUIDE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CRUISEGUIDE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CRUISEGUIDE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CRUISEGUIDE_AUTO_MIGRATE" default:"false"`
}

// LedgerConfig holds the platform defaults the commission split falls back to.
type LedgerConfig struct {
	DefaultCurrency        string          `envconfig:"CRUISEGUIDE_LEDGER_DEFAULT_CURRENCY" default:"KRW"`
	DefaultWithholdingRate decimal.Decimal `envconfig:"CRUISEGUIDE_LEDGER_DEFAULT_WITHHOLDING_RATE" default:"3.3"`
	SummaryCacheTTL        time.Duration   `envconfig:"CRUISEGUIDE_LEDGER_SUMMARY_CACHE_TTL" default:"5m"`
}

func (l *LedgerConfig) validate() error {
	l.DefaultCurrency = strings.ToUpper(strings.TrimSpace(l.DefaultCurrency))
	if len(l.DefaultCurrency) != 3 {
		return fmt.Errorf("%s must be a three-letter currency code", EnvLedgerDefaultCurrency)
	}
	if l.DefaultWithholdingRate.IsNegative() || l.DefaultWithholdingRate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%s must be between 0 and 100", EnvLedgerDefaultWithholdingRate)
	}
	return nil
}

type CronConfig struct {
	Interval          time.Duration `envconfig:"CRUISEGUIDE_CRON_INTERVAL" default:"15m"`
	BackfillBatchSize int           `envconfig:"CRUISEGUIDE_CRON_BACKFILL_BATCH_SIZE" default:"100"`
	BackfillMinAge    time.Duration `envconfig:"CRUISEGUIDE_CRON_BACKFILL_MIN_AGE" default:"2m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

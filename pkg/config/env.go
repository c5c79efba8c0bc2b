package config

const EnvPrefix = "CRUISEGUIDE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "CRUISEGUIDE_APP_ENV"
	EnvPort     = "CRUISEGUIDE_APP_PORT"
	EnvLogLevel = "CRUISEGUIDE_LOG_LEVEL"
	EnvCORS     = "CRUISEGUIDE_CORS_ORIGINS"

	EnvDBDSN    = "CRUISEGUIDE_DB_DSN"
	EnvDBDriver = "CRUISEGUIDE_DB_DRIVER"
	EnvDBHost   = "CRUISEGUIDE_DB_HOST"
	EnvDBPort   = "CRUISEGUIDE_DB_PORT"
	EnvDBUser   = "CRUISEGUIDE_DB_USER"
	EnvDBPass   = "CRUISEGUIDE_DB_PASSWORD"
	EnvDBName   = "CRUISEGUIDE_DB_NAME"
	EnvDBSSL    = "CRUISEGUIDE_DB_SSLMODE"

	EnvRedisURL = "CRUISEGUIDE_REDIS_URL"

	EnvLedgerDefaultCurrency        = "CRUISEGUIDE_LEDGER_DEFAULT_CURRENCY"
	EnvLedgerDefaultWithholdingRate = "CRUISEGUIDE_LEDGER_DEFAULT_WITHHOLDING_RATE"
	EnvLedgerSummaryCacheTTL        = "CRUISEGUIDE_LEDGER_SUMMARY_CACHE_TTL"

	EnvCronInterval          = "CRUISEGUIDE_CRON_INTERVAL"
	EnvCronBackfillBatchSize = "CRUISEGUIDE_CRON_BACKFILL_BATCH_SIZE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

package config

const (
	EnvPrefix = "BREWHOUSE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "BREWHOUSE_APP_ENV"
	EnvPort     = "BREWHOUSE_APP_PORT"
	EnvLogLevel = "BREWHOUSE_LOG_LEVEL"

	EnvDBDSN      = "BREWHOUSE_DB_DSN"
	EnvDBHost     = "BREWHOUSE_DB_HOST"
	EnvDBPort     = "BREWHOUSE_DB_PORT"
	EnvDBUser     = "BREWHOUSE_DB_USER"
	EnvDBPassword = "BREWHOUSE_DB_PASSWORD"
	EnvDBName     = "BREWHOUSE_DB_NAME"

	EnvRedisURL          = "BREWHOUSE_REDIS_URL"
	EnvAutoMigrate       = "BREWHOUSE_AUTO_MIGRATE"
	EnvCancelledExempt   = "BREWHOUSE_SHIPMENT_CANCELLED_EXEMPT"
	EnvPageDefaultSize   = "BREWHOUSE_PAGE_DEFAULT_SIZE"
	EnvPageMaxSize       = "BREWHOUSE_PAGE_MAX_SIZE"
	EnvGCPProjectID      = "BREWHOUSE_GCP_PROJECT_ID"
	EnvPubSubEventsTopic = "BREWHOUSE_PUBSUB_EVENTS_TOPIC"
	EnvCORSOrigins       = "BREWHOUSE_CORS_ORIGINS"
)

var componentDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

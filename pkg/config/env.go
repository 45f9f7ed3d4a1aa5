package config

const (
	EnvPrefix = "CATALOG"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	RevocationBackendRedis  = "redis"
	RevocationBackendMemory = "memory"

	EnvAppEnv  = "CATALOG_APP_ENV"
	EnvPort    = "CATALOG_APP_PORT"
	EnvDBDSN   = "CATALOG_DB_DSN"
	EnvDBHost  = "CATALOG_DB_HOST"
	EnvDBUser  = "CATALOG_DB_USER"
	EnvDBName  = "CATALOG_DB_NAME"
	EnvDBDrv   = "CATALOG_DB_DRIVER"
	EnvRedis   = "CATALOG_REDIS_URL"
	EnvJWTKey  = "CATALOG_JWT_SECRET"
	EnvJWTIss  = "CATALOG_JWT_ISSUER"
	EnvJWTExp  = "CATALOG_JWT_EXPIRATION_MINUTES"
	EnvRefresh = "CATALOG_REFRESH_TOKEN_TTL_MINUTES"
	EnvStrict  = "CATALOG_AUTH_STRICT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "FLOKOUT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced outside envconfig tags (tests, error
// messages). Kept in sync with the struct tags in config.go.
const (
	EnvAppEnv    = "FLOKOUT_APP_ENV"
	EnvPort      = "FLOKOUT_APP_PORT"
	EnvDBDSN     = "FLOKOUT_DB_DSN"
	EnvDBHost    = "FLOKOUT_DB_HOST"
	EnvDBUser    = "FLOKOUT_DB_USER"
	EnvDBName    = "FLOKOUT_DB_NAME"
	EnvRedisURL  = "FLOKOUT_REDIS_URL"
	EnvJWTSecret = "FLOKOUT_JWT_SECRET"
	EnvJWTIssuer = "FLOKOUT_JWT_ISSUER"
	EnvJWTExp    = "FLOKOUT_JWT_EXPIRATION_MINUTES"

	EnvRefreshTokenTTLMinutes = "FLOKOUT_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

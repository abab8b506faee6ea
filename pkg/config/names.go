package config

// EnvPrefix is applied by envconfig on top of the explicit envconfig tags.
const EnvPrefix = "domino"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced in error messages.
const (
	EnvDBDSN  = "DOMINO_DB_DSN"
	EnvDBHost = "DOMINO_DB_HOST"
	EnvDBUser = "DOMINO_DB_USER"
	EnvDBName = "DOMINO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

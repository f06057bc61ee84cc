package config

// EnvPrefix is the envconfig prefix; individual fields carry explicit
// BLOODBANK_* names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "BLOODBANK_DB_DSN"
	EnvDBHost = "BLOODBANK_DB_HOST"
	EnvDBUser = "BLOODBANK_DB_USER"
	EnvDBName = "BLOODBANK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

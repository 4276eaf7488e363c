package config

const (
	EnvPrefix = "MUKAYESE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "MUKAYESE_APP_ENV"
	EnvPort      = "MUKAYESE_APP_PORT"
	EnvLogLevel  = "MUKAYESE_LOG_LEVEL"
	EnvLogFormat = "MUKAYESE_LOG_FORMAT"

	EnvDBDSN    = "MUKAYESE_DB_DSN"
	EnvDBDriver = "MUKAYESE_DB_DRIVER"
	EnvDBHost   = "MUKAYESE_DB_HOST"
	EnvDBUser   = "MUKAYESE_DB_USER"
	EnvDBName   = "MUKAYESE_DB_NAME"

	EnvRedisURL = "MUKAYESE_REDIS_URL"

	EnvFXReportingCurrency = "MUKAYESE_FX_REPORTING_CURRENCY"
	EnvFXRates             = "MUKAYESE_FX_RATES"
	EnvFXRefreshInterval   = "MUKAYESE_FX_REFRESH_INTERVAL"

	EnvMembershipDefaultTier     = "MUKAYESE_MEMBERSHIP_DEFAULT_TIER"
	EnvMembershipStandardRowCap  = "MUKAYESE_MEMBERSHIP_STANDARD_MAX_VENDORS_PER_ROW"
	EnvMembershipVendorsPerSheet = "MUKAYESE_MEMBERSHIP_MAX_VENDORS_PER_SHEET"

	EnvExportTemplatePath    = "MUKAYESE_EXPORT_TEMPLATE_PATH"
	EnvExportTemplateTimeout = "MUKAYESE_EXPORT_TEMPLATE_TIMEOUT"
	EnvExportMaxProducts     = "MUKAYESE_EXPORT_MAX_PRODUCTS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

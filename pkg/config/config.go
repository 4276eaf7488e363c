package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

// TemplateVendorSlots is the number of vendor column groups the comparison
// template lays out per sheet.
const TemplateVendorSlots = 5

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FX           FXConfig
	Membership   MembershipConfig
	Export       ExportConfig
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
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	var errs error
	switch strings.ToLower(c.DB.Driver) {
	case "postgres", "sqlite":
	default:
		errs = multierr.Append(errs, fmt.Errorf("%s must be postgres or sqlite, got %q", EnvDBDriver, c.DB.Driver))
	}
	switch strings.ToLower(c.App.LogFormat) {
	case "", "json", "console":
	default:
		errs = multierr.Append(errs, fmt.Errorf("%s must be json or console, got %q", EnvLogFormat, c.App.LogFormat))
	}
	if len(strings.TrimSpace(c.FX.ReportingCurrency)) != 3 {
		errs = multierr.Append(errs, fmt.Errorf("%s must be a 3-letter currency code", EnvFXReportingCurrency))
	}
	if c.FX.RefreshInterval <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("%s must be positive", EnvFXRefreshInterval))
	}
	if c.Membership.StandardMaxVendorsPerRow < 0 || c.Membership.PremiumMaxVendorsPerRow < 0 {
		errs = multierr.Append(errs, fmt.Errorf("%s cannot be negative", EnvMembershipStandardRowCap))
	}
	if n := c.Membership.MaxVendorsPerSheet; n < 1 || n > TemplateVendorSlots {
		errs = multierr.Append(errs, fmt.Errorf("%s must be between 1 and %d, got %d", EnvMembershipVendorsPerSheet, TemplateVendorSlots, n))
	}
	if c.Export.TemplateTimeout <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("%s must be positive", EnvExportTemplateTimeout))
	}
	if c.Export.MaxProducts <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("%s must be positive", EnvExportMaxProducts))
	}
	return errs
}

type AppConfig struct {
	Env          string `envconfig:"MUKAYESE_APP_ENV" required:"true"`
	Port         string `envconfig:"MUKAYESE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"MUKAYESE_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"MUKAYESE_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"MUKAYESE_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"MUKAYESE_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MUKAYESE_DB_DSN"`
	Driver string `envconfig:"MUKAYESE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MUKAYESE_DB_HOST"`
	LegacyPort     int    `envconfig:"MUKAYESE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MUKAYESE_DB_USER"`
	LegacyPassword string `envconfig:"MUKAYESE_DB_PASSWORD"`
	LegacyName     string `envconfig:"MUKAYESE_DB_NAME"`
	LegacySSLMode  string `envconfig:"MUKAYESE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MUKAYESE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MUKAYESE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MUKAYESE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MUKAYESE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional; an empty URL and address leaves the service on
// in-process rate limiting and the configured FX table.
type RedisConfig struct {
	URL          string        `envconfig:"MUKAYESE_REDIS_URL"`
	Address      string        `envconfig:"MUKAYESE_REDIS_ADDR"`
	Password     string        `envconfig:"MUKAYESE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MUKAYESE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MUKAYESE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MUKAYESE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MUKAYESE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MUKAYESE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MUKAYESE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FXConfig struct {
	ReportingCurrency string            `envconfig:"MUKAYESE_FX_REPORTING_CURRENCY" default:"TRY"`
	Rates             map[string]string `envconfig:"MUKAYESE_FX_RATES" default:"USD_TRY:30.5,EUR_TRY:33.2,GBP_TRY:38.7"`
	DeriveInverse     bool              `envconfig:"MUKAYESE_FX_DERIVE_INVERSE" default:"true"`
	RefreshInterval   time.Duration     `envconfig:"MUKAYESE_FX_REFRESH_INTERVAL" default:"1m"`
	RedisKey          string            `envconfig:"MUKAYESE_FX_REDIS_KEY" default:"mukayese:fx:rates"`
}

type MembershipConfig struct {
	DefaultTier              string `envconfig:"MUKAYESE_MEMBERSHIP_DEFAULT_TIER" default:"standard"`
	StandardMaxVendorsPerRow int    `envconfig:"MUKAYESE_MEMBERSHIP_STANDARD_MAX_VENDORS_PER_ROW" default:"3"`
	PremiumMaxVendorsPerRow  int    `envconfig:"MUKAYESE_MEMBERSHIP_PREMIUM_MAX_VENDORS_PER_ROW" default:"0"`
	MaxVendorsPerSheet       int    `envconfig:"MUKAYESE_MEMBERSHIP_MAX_VENDORS_PER_SHEET" default:"5"`
}

type ExportConfig struct {
	TemplatePath    string        `envconfig:"MUKAYESE_EXPORT_TEMPLATE_PATH" default:"assets/templates/mukayese.xlsx"`
	TemplateTimeout time.Duration `envconfig:"MUKAYESE_EXPORT_TEMPLATE_TIMEOUT" default:"10s"`
	MaxProducts     int           `envconfig:"MUKAYESE_EXPORT_MAX_PRODUCTS" default:"500"`
	RateLimitWindow time.Duration `envconfig:"MUKAYESE_EXPORT_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitLimit  int           `envconfig:"MUKAYESE_EXPORT_RATE_LIMIT_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MUKAYESE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
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

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Auth         AuthConfig
	Queue        QueueConfig
	Mail         MailConfig
	FeatureFlags FeatureFlagsConfig
	Metrics      MetricsConfig
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
	Env          string   `envconfig:"CATALOG_APP_ENV" required:"true"`
	Port         string   `envconfig:"CATALOG_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"CATALOG_LOG_LEVEL" default:"info"`
	LogFormat    string   `envconfig:"CATALOG_LOG_FORMAT" default:"json"`
	LogWarnStack bool     `envconfig:"CATALOG_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"CATALOG_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CATALOG_DB_DSN"`
	Driver string `envconfig:"CATALOG_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CATALOG_DB_HOST"`
	LegacyPort     int    `envconfig:"CATALOG_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CATALOG_DB_USER"`
	LegacyPassword string `envconfig:"CATALOG_DB_PASSWORD"`
	LegacyName     string `envconfig:"CATALOG_DB_NAME"`
	LegacySSLMode  string `envconfig:"CATALOG_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CATALOG_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CATALOG_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CATALOG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CATALOG_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is sqlite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"CATALOG_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CATALOG_REDIS_ADDR"`
	Password     string        `envconfig:"CATALOG_REDIS_PASSWORD"`
	DB           int           `envconfig:"CATALOG_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CATALOG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CATALOG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CATALOG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CATALOG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CATALOG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CATALOG_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CATALOG_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"CATALOG_JWT_EXPIRATION_MINUTES" default:"15"`
	RefreshTokenTTLMinutes int    `envconfig:"CATALOG_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// AccessTokenTTL returns the access token TTL configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CATALOG_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CATALOG_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CATALOG_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CATALOG_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CATALOG_ARGON_KEY_LEN" default:"32"`
}

type AuthConfig struct {
	// Strict requires authentication on every store/tag route and admin for destructive ones.
	Strict            bool   `envconfig:"CATALOG_AUTH_STRICT" default:"false"`
	RevocationBackend string `envconfig:"CATALOG_AUTH_REVOCATION_BACKEND" default:"redis"`
}

type QueueConfig struct {
	Name           string        `envconfig:"CATALOG_QUEUE_NAME" default:"emails"`
	MaxAttempts    int           `envconfig:"CATALOG_QUEUE_MAX_ATTEMPTS" default:"5"`
	BlockTimeout   time.Duration `envconfig:"CATALOG_QUEUE_BLOCK_TIMEOUT" default:"5s"`
	IdempotencyTTL time.Duration `envconfig:"CATALOG_QUEUE_IDEMPOTENCY_TTL" default:"168h"`
}

type MailConfig struct {
	Domain      string `envconfig:"CATALOG_MAILGUN_DOMAIN"`
	APIKey      string `envconfig:"CATALOG_MAILGUN_API_KEY"`
	BaseURL     string `envconfig:"CATALOG_MAILGUN_BASE_URL" default:"https://api.mailgun.net/v3"`
	FromName    string `envconfig:"CATALOG_MAIL_FROM_NAME" default:"Stores REST API"`
	TemplateDir string `envconfig:"CATALOG_MAIL_TEMPLATE_DIR"`
}

// Enabled reports whether enough Mailgun settings exist to send mail.
func (m MailConfig) Enabled() bool {
	return strings.TrimSpace(m.Domain) != "" && strings.TrimSpace(m.APIKey) != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CATALOG_AUTO_MIGRATE" default:"false"`
}

type MetricsConfig struct {
	Addr string `envconfig:"CATALOG_METRICS_ADDR" default:":9090"`
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

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	PubSub        PubSubConfig
	Sendgrid      SendgridConfig
	Outbox        OutboxConfig
	Commission    CommissionConfig
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
	Env          string `envconfig:"DOMINO_APP_ENV" required:"true"`
	Port         string `envconfig:"DOMINO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DOMINO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DOMINO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DOMINO_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DOMINO_DB_DSN"`
	Driver string `envconfig:"DOMINO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DOMINO_DB_HOST"`
	LegacyPort     int    `envconfig:"DOMINO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DOMINO_DB_USER"`
	LegacyPassword string `envconfig:"DOMINO_DB_PASSWORD"`
	LegacyName     string `envconfig:"DOMINO_DB_NAME"`
	LegacySSLMode  string `envconfig:"DOMINO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DOMINO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DOMINO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DOMINO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DOMINO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DOMINO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DOMINO_REDIS_ADDR"`
	Password     string        `envconfig:"DOMINO_REDIS_PASSWORD"`
	DB           int           `envconfig:"DOMINO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DOMINO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DOMINO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DOMINO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DOMINO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DOMINO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"DOMINO_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"DOMINO_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"DOMINO_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"DOMINO_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DOMINO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DOMINO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DOMINO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DOMINO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DOMINO_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"DOMINO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"DOMINO_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"DOMINO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"DOMINO_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"DOMINO_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"DOMINO_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DOMINO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DOMINO_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"DOMINO_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"DOMINO_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"DOMINO_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"DOMINO_GCS_BUCKET_NAME" required:"true"`
	UploadURLExpiry   time.Duration `envconfig:"DOMINO_GCS_UPLOAD_URL_EXPIRY" required:"true"`
	DownloadURLExpiry time.Duration `envconfig:"DOMINO_GCS_DOWNLOAD_URL_EXPIRY" required:"true"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"DOMINO_MAX_UPLOAD_MB" default:"50"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"DOMINO_PUBSUB_NOTIFICATION_TOPIC" default:"domino-notification-events"`
	NotificationSubscription string `envconfig:"DOMINO_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"DOMINO_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"DOMINO_SENDGRID_FROM_EMAIL"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"DOMINO_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"DOMINO_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"DOMINO_OUTBOX_MAX_ATTEMPTS" default:"10"`
	IdempotencyTTL time.Duration `envconfig:"DOMINO_OUTBOX_IDEMPOTENCY_TTL" default:"720h"`
}

// CommissionConfig carries the office's default split used to prefill closure
// submissions. The three values are independent inputs; nothing enforces that
// they add up to 100.
type CommissionConfig struct {
	DefaultOfficePercentage   float64 `envconfig:"DOMINO_COMMISSION_DEFAULT_OFFICE_PCT" default:"30"`
	DefaultCaptadorPercentage float64 `envconfig:"DOMINO_COMMISSION_DEFAULT_CAPTADOR_PCT" default:"35"`
	DefaultVendedorPercentage float64 `envconfig:"DOMINO_COMMISSION_DEFAULT_VENDEDOR_PCT" default:"35"`
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

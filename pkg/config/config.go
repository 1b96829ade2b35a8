package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable the service reads.
	EnvPrefix = "GREENLOOP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "GREENLOOP_DB_DSN"
	EnvDBHost = "GREENLOOP_DB_HOST"
	EnvDBUser = "GREENLOOP_DB_USER"
	EnvDBName = "GREENLOOP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
	Pickups       PickupsConfig
	Notifications NotificationsConfig
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
	Env          string `envconfig:"GREENLOOP_APP_ENV" required:"true"`
	Port         string `envconfig:"GREENLOOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GREENLOOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GREENLOOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GREENLOOP_DB_DSN"`
	Driver string `envconfig:"GREENLOOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GREENLOOP_DB_HOST"`
	LegacyPort     int    `envconfig:"GREENLOOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GREENLOOP_DB_USER"`
	LegacyPassword string `envconfig:"GREENLOOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"GREENLOOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"GREENLOOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GREENLOOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GREENLOOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GREENLOOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GREENLOOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GREENLOOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GREENLOOP_REDIS_ADDR"`
	Password     string        `envconfig:"GREENLOOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"GREENLOOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GREENLOOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GREENLOOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GREENLOOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GREENLOOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GREENLOOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GREENLOOP_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"GREENLOOP_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"GREENLOOP_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"GREENLOOP_PUBSUB_DOMAIN_TOPIC" default:"gl-domain-events"`
	DomainSubscription string `envconfig:"GREENLOOP_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"GREENLOOP_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"GREENLOOP_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"GREENLOOP_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"GREENLOOP_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"GREENLOOP_CRON_LOCK_TTL" default:"2h"`
}

type PickupsConfig struct {
	// PendingTTL is how long a request may sit in pending before the
	// expiry job cancels it.
	PendingTTL time.Duration `envconfig:"GREENLOOP_PICKUP_PENDING_TTL" default:"168h"`
}

type NotificationsConfig struct {
	ReadRetention   time.Duration `envconfig:"GREENLOOP_NOTIFICATION_READ_RETENTION" default:"720h"`
	OutboxRetention time.Duration `envconfig:"GREENLOOP_OUTBOX_RETENTION" default:"168h"`
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

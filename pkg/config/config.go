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
	HTTP         HTTPConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Pagination   PaginationConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Pagination.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BREWHOUSE_APP_ENV" required:"true"`
	Port         string `envconfig:"BREWHOUSE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"BREWHOUSE_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"BREWHOUSE_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"BREWHOUSE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `envconfig:"BREWHOUSE_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"BREWHOUSE_HTTP_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"BREWHOUSE_HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"BREWHOUSE_HTTP_SHUTDOWN_TIMEOUT" default:"20s"`
	CORSOrigins     []string      `envconfig:"BREWHOUSE_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

type DBConfig struct {
	DSN    string `envconfig:"BREWHOUSE_DB_DSN"`
	Driver string `envconfig:"BREWHOUSE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"BREWHOUSE_DB_HOST"`
	Port     int    `envconfig:"BREWHOUSE_DB_PORT" default:"5432"`
	User     string `envconfig:"BREWHOUSE_DB_USER"`
	Password string `envconfig:"BREWHOUSE_DB_PASSWORD"`
	Name     string `envconfig:"BREWHOUSE_DB_NAME"`
	SSLMode  string `envconfig:"BREWHOUSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BREWHOUSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BREWHOUSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BREWHOUSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BREWHOUSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional. With neither URL nor Address set the beer cache
// is disabled.
type RedisConfig struct {
	URL          string        `envconfig:"BREWHOUSE_REDIS_URL"`
	Address      string        `envconfig:"BREWHOUSE_REDIS_ADDR"`
	Password     string        `envconfig:"BREWHOUSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BREWHOUSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BREWHOUSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BREWHOUSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BREWHOUSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BREWHOUSE_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"BREWHOUSE_REDIS_WRITE_TIMEOUT" default:"3s"`
	BeerCacheTTL time.Duration `envconfig:"BREWHOUSE_REDIS_BEER_CACHE_TTL" default:"5m"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate             bool `envconfig:"BREWHOUSE_AUTO_MIGRATE" default:"false"`
	CancelledShipmentExempt bool `envconfig:"BREWHOUSE_SHIPMENT_CANCELLED_EXEMPT" default:"false"`
}

type PaginationConfig struct {
	DefaultSize int `envconfig:"BREWHOUSE_PAGE_DEFAULT_SIZE" default:"20"`
	MaxSize     int `envconfig:"BREWHOUSE_PAGE_MAX_SIZE" default:"100"`
}

func (p PaginationConfig) validate() error {
	if p.DefaultSize <= 0 || p.MaxSize <= 0 {
		return fmt.Errorf("%s and %s must be positive", EnvPageDefaultSize, EnvPageMaxSize)
	}
	if p.DefaultSize > p.MaxSize {
		return fmt.Errorf("%s (%d) exceeds %s (%d)", EnvPageDefaultSize, p.DefaultSize, EnvPageMaxSize, p.MaxSize)
	}
	return nil
}

type GCPConfig struct {
	ProjectID       string `envconfig:"BREWHOUSE_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"BREWHOUSE_GCP_CREDENTIALS_JSON"`
	CredentialsFile string `envconfig:"BREWHOUSE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	EventsTopic string `envconfig:"BREWHOUSE_PUBSUB_EVENTS_TOPIC" default:"brewhouse-domain-events"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"BREWHOUSE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"BREWHOUSE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"BREWHOUSE_OUTBOX_MAX_ATTEMPTS" default:"10"`
	PublishTimeout time.Duration `envconfig:"BREWHOUSE_OUTBOX_PUBLISH_TIMEOUT" default:"15s"`
	MaxBackoff     time.Duration `envconfig:"BREWHOUSE_OUTBOX_MAX_BACKOFF" default:"10s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range componentDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

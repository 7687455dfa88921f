package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/feeledger/internal/types"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment     DeploymentConfig     `mapstructure:"deployment" validate:"required"`
	Server         ServerConfig         `mapstructure:"server" validate:"required"`
	Postgres       PostgresConfig       `mapstructure:"postgres" validate:"required"`
	Logging        LoggingConfig        `mapstructure:"logging" validate:"required"`
	Sentry         SentryConfig         `mapstructure:"sentry"`
	Auth           AuthConfig           `mapstructure:"auth" validate:"required"`
	Billing        BillingConfig        `mapstructure:"billing" validate:"required"`
	PayerDirectory PayerDirectoryConfig `mapstructure:"payer_directory"`
	Cache          CacheConfig          `mapstructure:"cache"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Event          EventConfig          `mapstructure:"event"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
}

type DeploymentConfig struct {
	Mode string `mapstructure:"mode"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type PostgresConfig struct {
	Host                   string        `mapstructure:"host" validate:"required"`
	Port                   int           `mapstructure:"port" validate:"required"`
	User                   string        `mapstructure:"user" validate:"required"`
	Password               string        `mapstructure:"password"`
	DBName                 string        `mapstructure:"dbname" validate:"required"`
	SSLMode                string        `mapstructure:"sslmode"`
	MaxOpenConns           int           `mapstructure:"max_open_conns"`
	MaxIdleConns           int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int           `mapstructure:"conn_max_lifetime_minutes"`
	StatementTimeout       time.Duration `mapstructure:"statement_timeout"`
	AutoMigrate            bool          `mapstructure:"auto_migrate"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type AuthConfig struct {
	// Secret verifies HS256 bearer tokens minted by the identity service.
	Secret string `mapstructure:"secret"`
	// UserIDClaim names the JWT claim carrying the operator id.
	UserIDClaim string `mapstructure:"user_id_claim"`
}

type BillingConfig struct {
	Currency        string        `mapstructure:"currency"`
	Timezone        string        `mapstructure:"timezone"`
	BulkConcurrency int           `mapstructure:"bulk_concurrency"`
	BulkRateLimit   float64       `mapstructure:"bulk_rate_limit"`
	MaxBulkSize     int           `mapstructure:"max_bulk_size"`
	NumberRetries   uint64        `mapstructure:"number_retries"`
	RetryInterval   time.Duration `mapstructure:"retry_interval"`
}

type PayerDirectoryConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
	RetryMax int           `mapstructure:"retry_max"`
}

type CacheConfig struct {
	Enabled bool            `mapstructure:"enabled"`
	Type    types.CacheType `mapstructure:"type"`
	TTL     time.Duration   `mapstructure:"ttl"`
}

type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	UseTLS   bool          `mapstructure:"use_tls"`
	PoolSize int           `mapstructure:"pool_size"`
	Timeout  time.Duration `mapstructure:"timeout"`

	// KeyPrefix namespaces every key so a shared instance can be flushed safely.
	KeyPrefix string `mapstructure:"key_prefix"`
}

type EventConfig struct {
	PublisherType types.PublisherType `mapstructure:"publisher_type"`
	Topic         string              `mapstructure:"topic"`
}

type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	ClientID      string   `mapstructure:"client_id"`
	TLS           bool     `mapstructure:"tls"`
	UseSASL       bool     `mapstructure:"use_sasl"`
	SASLMechanism string   `mapstructure:"sasl_mechanism"`
	SASLUser      string   `mapstructure:"sasl_user"`
	SASLPassword  string   `mapstructure:"sasl_password"`
}

// NewConfig loads .env (if present), config.yaml (if present) and FEELEDGER_*
// environment overrides, in increasing order of precedence.
func NewConfig() (*Configuration, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FEELEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	return &cfg, nil
}

// GetDefaultConfig returns defaults only, for scripts and tests.
func GetDefaultConfig() *Configuration {
	v := viper.New()
	setDefaults(v)

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("invalid default configuration: %v", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", "local")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "feeledger")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "feeledger")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 20)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 30)
	v.SetDefault("postgres.statement_timeout", 30*time.Second)
	v.SetDefault("postgres.auto_migrate", false)

	v.SetDefault("logging.level", string(types.LogLevelInfo))

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "local")
	v.SetDefault("sentry.sample_rate", 1.0)

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.user_id_claim", "sub")

	v.SetDefault("billing.currency", "usd")
	v.SetDefault("billing.timezone", "UTC")
	v.SetDefault("billing.bulk_concurrency", 8)
	v.SetDefault("billing.bulk_rate_limit", 0)
	v.SetDefault("billing.max_bulk_size", 1000)
	v.SetDefault("billing.number_retries", 5)
	v.SetDefault("billing.retry_interval", 50*time.Millisecond)

	v.SetDefault("payer_directory.base_url", "")
	v.SetDefault("payer_directory.api_key", "")
	v.SetDefault("payer_directory.timeout", 5*time.Second)
	v.SetDefault("payer_directory.retry_max", 3)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.type", string(types.CacheTypeMemory))
	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.use_tls", false)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.timeout", 5*time.Second)
	v.SetDefault("redis.key_prefix", "feeledger:")

	v.SetDefault("event.publisher_type", string(types.PublisherTypeNoop))
	v.SetDefault("event.topic", "invoice_events")

	v.SetDefault("kafka.brokers", []string{"localhost:29092"})
	v.SetDefault("kafka.client_id", "feeledger")
	v.SetDefault("kafka.tls", false)
	v.SetDefault("kafka.use_sasl", false)
	v.SetDefault("kafka.sasl_mechanism", "PLAIN")
	v.SetDefault("kafka.sasl_user", "")
	v.SetDefault("kafka.sasl_password", "")
}

// GetPostgresDSN renders a lib/pq connection string
func (c PostgresConfig) GetPostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

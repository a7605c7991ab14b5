package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type PersistenceMode string

const (
	PersistenceRemote PersistenceMode = "remote"
	PersistenceLocal  PersistenceMode = "local"
)

type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
)

type Config struct {
	Server      ServerConfig
	DB          DBConfig
	CORS        CORSConfig
	Log         LogConfig
	JWT         JWTConfig
	Cookie      CookieConfig
	Persistence PersistenceConfig
	Cache       CacheConfig
	Kafka       KafkaConfig
	Ledger      LedgerConfig
	Storage     StorageConfig
	Seed        SeedConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host        string        `envconfig:"DB_HOST" default:"localhost"`
	Port        string        `envconfig:"DB_PORT" default:"5432"`
	User        string        `envconfig:"DB_USER"`
	Password    string        `envconfig:"DB_PASSWORD"`
	DBName      string        `envconfig:"DB_NAME"`
	SSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone    string        `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns    int32         `envconfig:"DB_MAX_CONNS" default:"20"`
	CallTimeout time.Duration `envconfig:"DB_CALL_TIMEOUT" default:"5s"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type JWTConfig struct {
	Secret               string `envconfig:"JWT_SECRET" required:"true"`
	AccessTokenDuration  string `envconfig:"JWT_ACCESS_TOKEN_DURATION" default:"15m"`
	RefreshTokenDuration string `envconfig:"JWT_REFRESH_TOKEN_DURATION" default:"168h"`
}

type CookieConfig struct {
	Domain   string `envconfig:"COOKIE_DOMAIN" default:""`
	Secure   bool   `envconfig:"COOKIE_SECURE" default:"true"`
	SameSite string `envconfig:"COOKIE_SAME_SITE" default:"Lax"`
}

type PersistenceConfig struct {
	Mode            PersistenceMode `envconfig:"PERSISTENCE_MODE" default:"remote"`
	FallbackEnabled bool            `envconfig:"FALLBACK_ENABLED" default:"false"`
}

type CacheConfig struct {
	Backend         CacheBackend  `envconfig:"CACHE_BACKEND" default:"memory"`
	RedisAddr       string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0"`
	CatalogTTL      time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"30s"`
	AtomicRetries   int           `envconfig:"CACHE_ATOMIC_RETRIES" default:"10"`
	FallbackDataTTL time.Duration `envconfig:"FALLBACK_DATA_TTL" default:"0s"`
}

type KafkaConfig struct {
	Brokers      []string      `envconfig:"KAFKA_BROKERS" default:""`
	Topic        string        `envconfig:"KAFKA_TOPIC" default:"techpoints.events"`
	PollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"2s"`
	BatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`
	MaxAttempts  int           `envconfig:"OUTBOX_MAX_ATTEMPTS" default:"5"`
}

type LedgerConfig struct {
	RetentionMaxEntries int           `envconfig:"LEDGER_RETENTION_MAX_ENTRIES" default:"10000"`
	RetentionMaxAge     time.Duration `envconfig:"LEDGER_RETENTION_MAX_AGE" default:"8760h"`
	SignupBonusPoints   int64         `envconfig:"SIGNUP_BONUS_POINTS" default:"0"`
	StatsWindow         time.Duration `envconfig:"LEDGER_STATS_WINDOW" default:"168h"`
}

type StorageConfig struct {
	Root          string `envconfig:"STORAGE_ROOT" default:"./data/objects"`
	PublicBaseURL string `envconfig:"STORAGE_PUBLIC_BASE_URL" default:"/static"`
	ImageBucket   string `envconfig:"STORAGE_IMAGE_BUCKET" default:"product-images"`
	MaxImageBytes int64  `envconfig:"STORAGE_MAX_IMAGE_BYTES" default:"5242880"`
}

type SeedConfig struct {
	File string `envconfig:"SEED_FILE" default:""`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func (c Config) Validate() error {
	switch c.Persistence.Mode {
	case PersistenceRemote:
		if c.DB.User == "" || c.DB.DBName == "" {
			return fmt.Errorf("DB_USER and DB_NAME are required in %s persistence mode", PersistenceRemote)
		}
	case PersistenceLocal:
	default:
		return fmt.Errorf("unknown PERSISTENCE_MODE %q", c.Persistence.Mode)
	}

	switch c.Cache.Backend {
	case CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend)
	}
	return nil
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:        "localhost",
			Port:        "15433", // Test DB port
			User:        "test",
			Password:    "test",
			DBName:      "test_db",
			SSLMode:     "disable",
			TimeZone:    "UTC",
			MaxConns:    20,
			CallTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret:               "test-secret",
			AccessTokenDuration:  "15m",
			RefreshTokenDuration: "24h",
		},
		Cookie: CookieConfig{
			SameSite: "Lax",
		},
		Persistence: PersistenceConfig{
			Mode: PersistenceRemote,
		},
		Cache: CacheConfig{
			Backend:       CacheMemory,
			CatalogTTL:    30 * time.Second,
			AtomicRetries: 10,
		},
		Kafka: KafkaConfig{
			Topic:        "techpoints.events",
			PollInterval: time.Second,
			BatchSize:    50,
			MaxAttempts:  5,
		},
		Ledger: LedgerConfig{
			RetentionMaxEntries: 10000,
			RetentionMaxAge:     365 * 24 * time.Hour,
			StatsWindow:         7 * 24 * time.Hour,
		},
		Storage: StorageConfig{
			Root:          "./testdata/objects",
			PublicBaseURL: "/static",
			ImageBucket:   "product-images",
			MaxImageBytes: 5 << 20,
		},
	}
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Lock      LockConfig      `mapstructure:"lock"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	IPN       IPNConfig       `mapstructure:"ipn"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

type StoreConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Migrate         bool          `mapstructure:"migrate"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Lock drivers.
const (
	LockDriverLocal = "local"
	LockDriverRedis = "redis"
)

type LockConfig struct {
	Driver string `mapstructure:"driver"`
	// Key names the Redis lock; deployments sharing a store must share it.
	Key         string        `mapstructure:"key"`
	TTL         time.Duration `mapstructure:"ttl"`
	WaitTimeout time.Duration `mapstructure:"wait_timeout"`
}

type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int64         `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

type IPNConfig struct {
	Secret          string            `mapstructure:"secret"`
	SignatureHeader string            `mapstructure:"signature_header"`
	CurrencyAliases map[string]string `mapstructure:"currency_aliases"`
}

type TelegramConfig struct {
	Token        string        `mapstructure:"token"`
	AdminChatIDs []string      `mapstructure:"admin_chat_ids"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: IPN_.
// Nested keys use underscore: IPN_IPN_SECRET, IPN_TELEGRAM_TOKEN, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("store.driver", StoreDriverSQLite)
	v.SetDefault("store.sqlite_path", "bot.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "ipn_relay")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrate", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("lock.driver", LockDriverLocal)
	v.SetDefault("lock.key", "ipn-relay:reconcile")
	v.SetDefault("lock.ttl", "30s")
	v.SetDefault("lock.wait_timeout", "10s")
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.limit", 120)
	v.SetDefault("ratelimit.window", "1m")
	v.SetDefault("ipn.secret", "")
	v.SetDefault("ipn.signature_header", "x-nowpayments-sig")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_chat_ids", []string{})
	v.SetDefault("telegram.timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// IPN_TELEGRAM_TOKEN -> telegram.token
	v.SetEnvPrefix("IPN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Telegram.AdminChatIDs = splitList(cfg.Telegram.AdminChatIDs)

	return &cfg, nil
}

// Validate reports settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if c.IPN.Secret == "" {
		errs = append(errs, errors.New("ipn.secret is required"))
	}
	if c.IPN.SignatureHeader == "" {
		errs = append(errs, errors.New("ipn.signature_header is required"))
	}
	if c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram.token is required"))
	}

	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverMemory:
	case StoreDriverSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("store.sqlite_path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}

	switch c.Lock.Driver {
	case LockDriverLocal:
	case LockDriverRedis:
		if c.Lock.Key == "" {
			errs = append(errs, errors.New("lock.key is required for the redis driver"))
		}
		if c.Lock.TTL <= 0 {
			errs = append(errs, errors.New("lock.ttl must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown lock.driver %q", c.Lock.Driver))
	}

	if c.RateLimit.Enabled && (c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("ratelimit.limit and ratelimit.window must be positive"))
	}

	return errors.Join(errs...)
}

// UsesRedis reports whether any enabled component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Lock.Driver == LockDriverRedis || c.RateLimit.Enabled
}

// splitList accepts both YAML lists and a single comma-separated env value.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	FakeStore FakeStoreConfig `yaml:"fake_store"`
	Checkout  CheckoutConfig  `yaml:"checkout"`
	CORS      CORSConfig      `yaml:"cors"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func (s ServerConfig) Addr() string {
	return ":" + strconv.Itoa(s.Port)
}

type DatabaseConfig struct {
	Driver       string `yaml:"driver"`
	Path         string `yaml:"path"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Name         string `yaml:"name"`
	SSLMode      string `yaml:"sslmode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

// DSN returns the data source name for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "postgres" {
		return d.ConnectionString()
	}
	return d.Path
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type KafkaConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Brokers       []string `yaml:"brokers"`
	ReceiptsTopic string   `yaml:"receipts_topic"`
}

type FakeStoreConfig struct {
	Enabled bool          `yaml:"enabled"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

const (
	ClearScopeAll  = "all"
	ClearScopeUser = "user"
)

type CheckoutConfig struct {
	// ClearScope is ClearScopeAll or ClearScopeUser.
	ClearScope string `yaml:"clear_scope"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3001,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       "sqlite",
			Path:         "store.db",
			Host:         "localhost",
			Port:         5432,
			User:         "minishop",
			Password:     "minishop",
			Name:         "minishop",
			SSLMode:      "disable",
			MaxOpenConns: 10,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			TTL:  60 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ReceiptsTopic: "receipts",
		},
		FakeStore: FakeStoreConfig{
			BaseURL: "https://fakestoreapi.com",
			Timeout: 5 * time.Second,
		},
		Checkout: CheckoutConfig{ClearScope: ClearScopeAll},
		CORS:     CORSConfig{AllowedOrigins: []string{"*"}},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE (if set),
// then environment variables. Later sources win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnvInt("PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvSeconds("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvSeconds("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.ShutdownTimeout = getEnvSeconds("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Database.Driver = getEnvString("DB_DRIVER", c.Database.Driver)
	c.Database.Path = getEnvString("DB_PATH", c.Database.Path)
	c.Database.Host = getEnvString("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvInt("DB_PORT", c.Database.Port)
	c.Database.User = getEnvString("DB_USER", c.Database.User)
	c.Database.Password = getEnvString("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnvString("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnvString("DB_SSLMODE", c.Database.SSLMode)
	c.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)

	c.Redis.Enabled = getEnvBool("REDIS_ENABLED", c.Redis.Enabled)
	c.Redis.Addr = getEnvString("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnvString("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)
	c.Redis.TTL = getEnvSeconds("REDIS_TTL_SECONDS", c.Redis.TTL)

	c.Kafka.Enabled = getEnvBool("KAFKA_ENABLED", c.Kafka.Enabled)
	c.Kafka.Brokers = getEnvList("KAFKA_BROKERS", c.Kafka.Brokers)
	c.Kafka.ReceiptsTopic = getEnvString("KAFKA_RECEIPTS_TOPIC", c.Kafka.ReceiptsTopic)

	c.FakeStore.Enabled = getEnvBool("USE_FAKE_STORE", c.FakeStore.Enabled)
	c.FakeStore.BaseURL = getEnvString("FAKE_STORE_URL", c.FakeStore.BaseURL)
	c.FakeStore.Timeout = getEnvSeconds("FAKE_STORE_TIMEOUT", c.FakeStore.Timeout)

	c.Checkout.ClearScope = getEnvString("CHECKOUT_CLEAR_SCOPE", c.Checkout.ClearScope)
	c.CORS.AllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", c.CORS.AllowedOrigins)

	c.Log.Level = getEnvString("LOG_LEVEL", c.Log.Level)
	c.Log.Development = getEnvBool("LOG_DEVELOPMENT", c.Log.Development)
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: want sqlite or postgres", c.Database.Driver)
	}
	switch c.Checkout.ClearScope {
	case ClearScopeAll, ClearScopeUser:
	default:
		return fmt.Errorf("invalid CHECKOUT_CLEAR_SCOPE %q: want all or user", c.Checkout.ClearScope)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_ENABLED requires at least one broker")
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

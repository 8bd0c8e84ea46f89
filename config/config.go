package config

import (
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const envPrefix = "STOREFRONT_"

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
	SeedDemo bool   `yaml:"seed_demo"`
}

// WebConfig http server configuration
type WebConfig struct {
	Host      string  `yaml:"host"`
	Port      int     `yaml:"port"`
	Secret    string  `yaml:"secret"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second per client, 0 disables
	RateBurst int     `yaml:"rate_burst"`
	BodyLimit string  `yaml:"body_limit"`
}

// DBConfig database configuration, type is one of postgres, mysql, sqlite
type DBConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// CacheConfig read-through cache, driver is memory, redis or bolt
type CacheConfig struct {
	Driver string `yaml:"driver"`
	TTL    int    `yaml:"ttl"` // minutes
	Prefix string `yaml:"prefix"`
}

type AuthConfig struct {
	JwtSecret         string `yaml:"jwt_secret"`
	TokenTTL          int    `yaml:"token_ttl"`    // hours
	RememberTTL       int    `yaml:"remember_ttl"` // hours
	SessionSecret     string `yaml:"session_secret"`
	BootstrapEmail    string `yaml:"bootstrap_email"`
	BootstrapPassword string `yaml:"bootstrap_password"`
}

// DispatcherConfig async order side effects, notifier is log or kafka
type DispatcherConfig struct {
	Workers       int    `yaml:"workers"`
	QueueSize     int    `yaml:"queue_size"` // jobs waiting for a worker, retries included
	Tries         int    `yaml:"tries"`
	Timeout       int    `yaml:"timeout"` // seconds per attempt
	MaxExceptions int    `yaml:"max_exceptions"`
	Backoff       int    `yaml:"backoff"` // seconds, grows linearly with the attempt
	Notifier      string `yaml:"notifier"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AppConfig struct {
	System     SysConfig        `yaml:"system"`
	Web        WebConfig        `yaml:"web"`
	Database   DBConfig         `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Cache      CacheConfig      `yaml:"cache"`
	Auth       AuthConfig       `yaml:"auth"`
	Dispatcher DispatcherConfig `yaml:"dispatcher"`
	Logger     LogConfig        `yaml:"logger"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

// CacheTTL entry lifetime of the read-through cache
func (c *AppConfig) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Minute
}

func (c *AppConfig) TokenTTL(remember bool) time.Duration {
	if remember {
		return time.Duration(c.Auth.RememberTTL) * time.Hour
	}
	return time.Duration(c.Auth.TokenTTL) * time.Hour
}

// DefaultSecrets names the signing secrets still set to the shipped defaults
func (c *AppConfig) DefaultSecrets() []string {
	var names []string
	if c.Auth.JwtSecret == DefaultAppConfig.Auth.JwtSecret {
		names = append(names, "auth.jwt_secret")
	}
	if c.Auth.SessionSecret == DefaultAppConfig.Auth.SessionSecret {
		names = append(names, "auth.session_secret")
	}
	if c.Web.Secret == DefaultAppConfig.Web.Secret {
		names = append(names, "web.secret")
	}
	return names
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "Storefront",
		Location: "UTC",
		Workdir:  "/var/storefront",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      8000,
		Secret:    "9b6de5cc-0731-4bf1-8d3f-7c2e1a0f5d11",
		RateLimit: 20,
		RateBurst: 40,
		BodyLimit: "2M",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "storefront",
		User:     "postgres",
		Passwd:   "storefront",
		MaxConn:  100,
		IdleConn: 10,
	},
	Redis: RedisConfig{
		Addr: "127.0.0.1:6379",
	},
	Kafka: KafkaConfig{
		Brokers: []string{"127.0.0.1:9092"},
		Topic:   "orders",
	},
	Cache: CacheConfig{
		Driver: "memory",
		TTL:    60,
		Prefix: "storefront:",
	},
	Auth: AuthConfig{
		JwtSecret:     "storefront-jwt-secret",
		TokenTTL:      24,
		RememberTTL:   24 * 30,
		SessionSecret: "storefront-session-secret",
	},
	Dispatcher: DispatcherConfig{
		Workers:       8,
		QueueSize:     1024,
		Tries:         5,
		Timeout:       120,
		MaxExceptions: 3,
		Backoff:       5,
		Notifier:      "log",
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: false,
		Filename:   "/var/storefront/storefront.log",
	},
}

// LoadConfig reads the yaml file when present, then applies STOREFRONT_* environment overrides.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := *DefaultAppConfig
	cfg.Kafka.Brokers = append([]string(nil), DefaultAppConfig.Kafka.Brokers...)
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfile)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", cfile)
		}
	}
	cfg.applyEnv()
	return &cfg, nil
}

func (c *AppConfig) applyEnv() {
	setEnvValue("SYSTEM_WORKDIR", &c.System.Workdir)
	setEnvValue("SYSTEM_LOCATION", &c.System.Location)
	setEnvBoolValue("SYSTEM_DEBUG", &c.System.Debug)
	setEnvBoolValue("SYSTEM_SEED_DEMO", &c.System.SeedDemo)

	setEnvValue("WEB_HOST", &c.Web.Host)
	setEnvIntValue("WEB_PORT", &c.Web.Port)
	setEnvValue("WEB_SECRET", &c.Web.Secret)

	setEnvValue("DB_TYPE", &c.Database.Type)
	setEnvValue("DB_HOST", &c.Database.Host)
	setEnvIntValue("DB_PORT", &c.Database.Port)
	setEnvValue("DB_NAME", &c.Database.Name)
	setEnvValue("DB_USER", &c.Database.User)
	setEnvValue("DB_PWD", &c.Database.Passwd)
	setEnvBoolValue("DB_DEBUG", &c.Database.Debug)

	setEnvValue("REDIS_ADDR", &c.Redis.Addr)
	setEnvValue("REDIS_PASSWORD", &c.Redis.Password)
	setEnvIntValue("REDIS_DB", &c.Redis.DB)

	if v := os.Getenv(envPrefix + "KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	setEnvValue("KAFKA_TOPIC", &c.Kafka.Topic)

	setEnvValue("CACHE_DRIVER", &c.Cache.Driver)
	setEnvIntValue("CACHE_TTL", &c.Cache.TTL)

	setEnvValue("AUTH_JWT_SECRET", &c.Auth.JwtSecret)
	setEnvValue("AUTH_SESSION_SECRET", &c.Auth.SessionSecret)
	setEnvValue("AUTH_BOOTSTRAP_EMAIL", &c.Auth.BootstrapEmail)
	setEnvValue("AUTH_BOOTSTRAP_PASSWORD", &c.Auth.BootstrapPassword)

	setEnvIntValue("DISPATCHER_WORKERS", &c.Dispatcher.Workers)
	setEnvIntValue("DISPATCHER_QUEUE_SIZE", &c.Dispatcher.QueueSize)
	setEnvValue("DISPATCHER_NOTIFIER", &c.Dispatcher.Notifier)

	setEnvValue("LOGGER_MODE", &c.Logger.Mode)
	setEnvBoolValue("LOGGER_FILE_ENABLE", &c.Logger.FileEnable)
}

func setEnvValue(name string, val *string) {
	var evalue = os.Getenv(envPrefix + name)
	if evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	var evalue = os.Getenv(envPrefix + name)
	if evalue != "" {
		*val = evalue == "true" || evalue == "1" || evalue == "on"
	}
}

func setEnvIntValue(name string, val *int) {
	var evalue = os.Getenv(envPrefix + name)
	if evalue == "" {
		return
	}
	p, err := strconv.Atoi(evalue)
	if err == nil {
		*val = p
	}
}

package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	HMACSecret  string        `yaml:"hmac_secret"`
	SessionTTL  time.Duration `yaml:"session_ttl"`
	AdminAPIKey string        `yaml:"admin_api_key"`
}

type QRConfig struct {
	SigningSecret  string        `yaml:"signing_secret"`
	DefaultTTL     time.Duration `yaml:"default_ttl"`
	IssueRateLimit int           `yaml:"issue_rate_limit"` // tokens per window per patient
	IssueRateWin   time.Duration `yaml:"issue_rate_window"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type NotificationsConfig struct {
	LowBalanceThreshold int64      `yaml:"low_balance_threshold"`
	ExpiryWarnDays      int        `yaml:"expiry_warn_days"`
	SMTP                SMTPConfig `yaml:"smtp"`
}

type KafkaConfig struct {
	Enabled          bool   `yaml:"enabled"`
	BootstrapServers string `yaml:"bootstrap_servers"`
}

type SchedulerConfig struct {
	ExpiryCheckEvery time.Duration `yaml:"expiry_check_every"`
	NotifyCheckEvery time.Duration `yaml:"notify_check_every"`
}

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Log           LogConfig           `yaml:"log"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Auth          AuthConfig          `yaml:"auth"`
	QR            QRConfig            `yaml:"qr"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

// envOverrides lets secrets come from the environment instead of the
// yaml file.
type envOverrides struct {
	DatabaseURL      string `env:"DATABASE_URL"`
	RedisURL         string `env:"REDIS_URL"`
	RedisPassword    string `env:"REDIS_PASSWORD"`
	QRSigningSecret  string `env:"QR_SIGNING_SECRET"`
	AuthHMACSecret   string `env:"AUTH_HMAC_SECRET"`
	AdminAPIKey      string `env:"ADMIN_API_KEY"`
	SMTPPassword     string `env:"SMTP_PASSWORD"`
	BootstrapServers string `env:"KAFKA_BOOTSTRAP_SERVERS"`
}

func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	applyOverrides(&cfg, ov)
	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.QR.SigningSecret == "" {
		return nil, errors.New("qr.signing_secret is required")
	}
	if cfg.Auth.HMACSecret == "" {
		return nil, errors.New("auth.hmac_secret is required")
	}
	if cfg.Kafka.Enabled && cfg.Kafka.BootstrapServers == "" {
		return nil, errors.New("kafka.bootstrap_servers is required when kafka is enabled")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyOverrides(cfg *Config, ov envOverrides) {
	if ov.DatabaseURL != "" {
		cfg.Database.URL = ov.DatabaseURL
	}
	if ov.RedisURL != "" {
		cfg.Redis.URL = ov.RedisURL
	}
	if ov.RedisPassword != "" {
		cfg.Redis.Password = ov.RedisPassword
	}
	if ov.QRSigningSecret != "" {
		cfg.QR.SigningSecret = ov.QRSigningSecret
	}
	if ov.AuthHMACSecret != "" {
		cfg.Auth.HMACSecret = ov.AuthHMACSecret
	}
	if ov.AdminAPIKey != "" {
		cfg.Auth.AdminAPIKey = ov.AdminAPIKey
	}
	if ov.SMTPPassword != "" {
		cfg.Notifications.SMTP.Password = ov.SMTPPassword
	}
	if ov.BootstrapServers != "" {
		cfg.Kafka.BootstrapServers = ov.BootstrapServers
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Auth.SessionTTL <= 0 {
		cfg.Auth.SessionTTL = 30 * time.Minute
	}
	if cfg.QR.DefaultTTL <= 0 {
		cfg.QR.DefaultTTL = 30 * time.Minute
	}
	if cfg.QR.IssueRateLimit <= 0 {
		cfg.QR.IssueRateLimit = 10
	}
	if cfg.QR.IssueRateWin <= 0 {
		cfg.QR.IssueRateWin = time.Minute
	}
	if cfg.Notifications.LowBalanceThreshold <= 0 {
		cfg.Notifications.LowBalanceThreshold = 2
	}
	if cfg.Notifications.ExpiryWarnDays <= 0 {
		cfg.Notifications.ExpiryWarnDays = 3
	}
	if cfg.Scheduler.ExpiryCheckEvery <= 0 {
		cfg.Scheduler.ExpiryCheckEvery = time.Hour
	}
	if cfg.Scheduler.NotifyCheckEvery <= 0 {
		cfg.Scheduler.NotifyCheckEvery = 6 * time.Hour
	}
}

// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
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
	Bot      BotConfig      `mapstructure:"bot"`
	Database DatabaseConfig `mapstructure:"database"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Log      LogConfig      `mapstructure:"log"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Links    LinksConfig    `mapstructure:"links"`
	OCR      GeminiConfig   `mapstructure:"ocr"`
	AI       GeminiConfig   `mapstructure:"ai"`
	Content  ContentConfig  `mapstructure:"content"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Cleanup  CleanupConfig  `mapstructure:"cleanup"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AdminConfig holds the reviewer (admin) user ids.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// PaymentConfig holds payment verification policy.
type PaymentConfig struct {
	UPIID                string        `mapstructure:"upi_id"`
	PayeeName            string        `mapstructure:"payee_name"`
	AutoApproveThreshold float64       `mapstructure:"auto_approve_threshold"`
	Weights              WeightsConfig `mapstructure:"weights"`
	TempDir              string        `mapstructure:"temp_dir"`
	MaxFileSize          int64         `mapstructure:"max_file_size"`
	// PendingTTL expires undecided reviews. Zero keeps them until decided.
	PendingTTL        time.Duration `mapstructure:"pending_ttl"`
	ReviewLockTimeout time.Duration `mapstructure:"review_lock_timeout"`
}

// WeightsConfig holds the per-field confidence weights.
type WeightsConfig struct {
	UPIID         float64 `mapstructure:"upi_id"`
	Amount        float64 `mapstructure:"amount"`
	TransactionID float64 `mapstructure:"transaction_id"`
}

// LinksConfig holds the public links shown in menus.
type LinksConfig struct {
	Owner         string `mapstructure:"owner"`
	Channel       string `mapstructure:"channel"`
	Group         string `mapstructure:"group"`
	Proofs        string `mapstructure:"proofs"`
	SupportHandle string `mapstructure:"support_handle"`
}

// GeminiConfig holds settings for a Gemini-backed collaborator.
// An empty APIKey disables the integration.
type GeminiConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether credentials are configured.
func (g *GeminiConfig) Enabled() bool {
	return strings.TrimSpace(g.APIKey) != ""
}

// ContentConfig holds the third-party quote/joke/fact endpoints.
type ContentConfig struct {
	QuoteURL string        `mapstructure:"quote_url"`
	JokeURL  string        `mapstructure:"joke_url"`
	FactURL  string        `mapstructure:"fact_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// RedisConfig holds the optional shared key-value store.
// An empty Addr selects the in-process store.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// MetricsConfig holds the liveness/metrics HTTP server settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// CleanupConfig holds the temp file cleanup schedule.
type CleanupConfig struct {
	Schedule string        `mapstructure:"schedule"`
	MaxAge   time.Duration `mapstructure:"max_age"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// e.g. BOT_TOKEN, DATABASE_HOST, OCR_API_KEY, REDIS_ADDR
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.poll_timeout", "10s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "paybot")
	v.SetDefault("database.name", "paybot")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("log.level", "info")

	v.SetDefault("payment.payee_name", "Payments")
	v.SetDefault("payment.auto_approve_threshold", 0.8)
	v.SetDefault("payment.weights.upi_id", 0.4)
	v.SetDefault("payment.weights.amount", 0.3)
	v.SetDefault("payment.weights.transaction_id", 0.3)
	v.SetDefault("payment.temp_dir", "temp")
	v.SetDefault("payment.max_file_size", 10*1024*1024)
	v.SetDefault("payment.review_lock_timeout", "10s")

	v.SetDefault("links.support_handle", "@IIG_DARK_YT")

	v.SetDefault("ocr.model", "gemini-2.0-flash")
	v.SetDefault("ocr.timeout", "60s")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", "30s")

	v.SetDefault("content.quote_url", "https://api.quotable.io/random")
	v.SetDefault("content.joke_url", "https://official-joke-api.appspot.com/jokes/random")
	v.SetDefault("content.fact_url", "https://uselessfacts.jsph.pl/random.json?language=en")
	v.SetDefault("content.timeout", "10s")

	v.SetDefault("redis.key_prefix", "paybot:")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", ":8080")

	v.SetDefault("cleanup.schedule", "@every 1h")
	v.SetDefault("cleanup.max_age", "24h")
}

// Validate checks the settings the process cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.Bot.Token == "" {
		errs = append(errs, errors.New("bot token is required"))
	}
	t := c.Payment.AutoApproveThreshold
	if t <= 0 || t > 1 {
		errs = append(errs, fmt.Errorf("payment.auto_approve_threshold must be in (0,1], got %v", t))
	}
	w := c.Payment.Weights
	if w.UPIID < 0 || w.Amount < 0 || w.TransactionID < 0 {
		errs = append(errs, errors.New("payment weights must not be negative"))
	}
	if c.Payment.MaxFileSize <= 0 {
		errs = append(errs, errors.New("payment.max_file_size must be positive"))
	}
	return errors.Join(errs...)
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

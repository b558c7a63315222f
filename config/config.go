package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Remittance RemittanceConfig `mapstructure:"remittance"`
	Payout     PayoutConfig     `mapstructure:"payout"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
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

// RemittanceConfig controls COD settlement batch building.
type RemittanceConfig struct {
	FeeRate       string `mapstructure:"fee_rate"`        // platform fee as a fraction of gross COD, e.g. "0.005"
	MinNetPayable string `mapstructure:"min_net_payable"` // floor for the computed net payable
	Schedule      string `mapstructure:"schedule"`        // cron expression for the automatic batch run
	Currency      string `mapstructure:"currency"`        // ISO code for new wallet accounts
}

// FeeRateDecimal parses the configured fee rate.
func (r RemittanceConfig) FeeRateDecimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(r.FeeRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing remittance fee rate %q: %w", r.FeeRate, err)
	}
	if d.IsNegative() || d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("remittance fee rate %q out of range [0,1)", r.FeeRate)
	}
	return d, nil
}

// MinNetPayableDecimal parses the configured net payable floor.
func (r RemittanceConfig) MinNetPayableDecimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(r.MinNetPayable)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing remittance min net payable %q: %w", r.MinNetPayable, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("remittance min net payable %q must not be negative", r.MinNetPayable)
	}
	return d, nil
}

// PayoutConfig holds the external payout provider settings.
type PayoutConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	APIKey        string        `mapstructure:"api_key"`
	WebhookSecret string        `mapstructure:"webhook_secret"` // shared secret for inbound webhook HMAC
	Timeout       time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: WRE_ (Wallet Remittance
// Engine). Nested keys use underscore: WRE_DATABASE_HOST, WRE_PAYOUT_API_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "wallet_remittance")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("remittance.fee_rate", "0.005")
	v.SetDefault("remittance.min_net_payable", "0")
	v.SetDefault("remittance.schedule", "0 2 * * *")
	v.SetDefault("remittance.currency", "INR")
	v.SetDefault("payout.base_url", "")
	v.SetDefault("payout.api_key", "")
	v.SetDefault("payout.webhook_secret", "")
	v.SetDefault("payout.timeout", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: WRE_DATABASE_HOST -> database.host
	v.SetEnvPrefix("WRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

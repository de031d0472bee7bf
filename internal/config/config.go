// Package config layers defaults, an optional leadpipe.yaml and LEADPIPE_*
// environment variables into a typed Config.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "LEADPIPE"
	ConfigName = "leadpipe"

	// AIKeySecret is the .secrets/ file consulted when ai.api_key is unset.
	AIKeySecret = "ai-gateway-api-key"
)

type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	AI       AIConfig       `mapstructure:"ai"`
	Lead     LeadConfig     `mapstructure:"lead"`
	Research ResearchConfig `mapstructure:"research"`
	Mail     MailConfig     `mapstructure:"mail"`
	Log      LogConfig      `mapstructure:"log"`
}

type HTTPConfig struct {
	Addr       string        `mapstructure:"addr"`
	RateLimit  int           `mapstructure:"rate_limit"`
	RateWindow time.Duration `mapstructure:"rate_window"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RabbitMQConfig with an empty URL selects the in-process dispatcher.
type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Prefetch int    `mapstructure:"prefetch"`
}

type AIConfig struct {
	URL        string        `mapstructure:"url"`
	Model      string        `mapstructure:"model"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

type LeadConfig struct {
	StatusPolicy string `mapstructure:"status_policy"`
}

type ResearchConfig struct {
	Concurrency  int           `mapstructure:"concurrency"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	StaleAfter   time.Duration `mapstructure:"stale_after"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
}

// MailConfig with an empty Host disables research digests.
type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers every key so that environment overrides apply
// even when no config file mentions them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.rate_limit", 10)
	v.SetDefault("http.rate_window", time.Minute)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.prefetch", 10)

	v.SetDefault("ai.url", "")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.max_retries", 2)

	v.SetDefault("lead.status_policy", "permissive")

	v.SetDefault("research.concurrency", 4)
	v.SetDefault("research.max_attempts", 3)
	v.SetDefault("research.stale_after", 10*time.Minute)
	v.SetDefault("research.tick_interval", time.Minute)
	v.SetDefault("research.batch_size", 50)

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.user", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.to", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// New returns a viper instance bound to LEADPIPE_* variables. cfgFile, when
// set, replaces the leadpipe.yaml lookup in the working directory.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return v, nil
}

// Load decodes v and fills the AI key from secrets when the key is not set
// through config or environment.
func Load(v *viper.Viper, secrets map[string]string) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = secrets[AIKeySecret]
	}

	return &cfg, nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return errors.New("database.url is required (LEADPIPE_DATABASE_URL)")
	}
	if c.Research.Concurrency < 1 {
		return fmt.Errorf("research.concurrency must be positive, got %d", c.Research.Concurrency)
	}
	if c.Mail.Host != "" && c.Mail.To == "" {
		return errors.New("mail.to is required when mail.host is set")
	}
	return nil
}

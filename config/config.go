package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log          Logger          `mapstructure:"logger"`
	DB           Database        `mapstructure:"database"`
	API          API             `mapstructure:"api"`
	Kronos       Kronos          `mapstructure:"kronos"`
	YahooFinance YahooFinance    `mapstructure:"yahoo_finance"`
	Chart        Chart           `mapstructure:"chart"`
	Cache        Cache           `mapstructure:"cache"`
	Scheduler    Scheduler       `mapstructure:"scheduler"`
	Gemini       Gemini          `mapstructure:"gemini"`
	Telegram     TelegramConfig  `mapstructure:"telegram"`
	History      HistoryConfig   `mapstructure:"history"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port int `mapstructure:"port"`
}

// Kronos points at the remote model-serving endpoint.
type Kronos struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	StatusCacheTTL      time.Duration `mapstructure:"status_cache_ttl"`
	ResultCacheTTL      time.Duration `mapstructure:"result_cache_ttl"`
}

type YahooFinance struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

// Chart configures the plot engine bootstrap.
type Chart struct {
	LibraryURL string        `mapstructure:"library_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type Scheduler struct {
	ModelStatusCron    string `mapstructure:"model_status_cron"`
	HistoryCleanupCron string `mapstructure:"history_cleanup_cron"`
}

type Gemini struct {
	APIKey              string        `mapstructure:"api_key"`
	Model               string        `mapstructure:"model"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

type HistoryConfig struct {
	RetentionDays int `mapstructure:"retention_days"`
}

func Load() (*Config, error) {
	// .env is optional, used for local development.
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")

	viper.SetDefault("api.port", 8080)

	viper.SetDefault("kronos.base_url", "http://localhost:8000")
	viper.SetDefault("kronos.timeout", "120s")
	viper.SetDefault("kronos.max_request_per_minute", 30)
	viper.SetDefault("kronos.status_cache_ttl", "30s")
	viper.SetDefault("kronos.result_cache_ttl", "30m")

	viper.SetDefault("yahoo_finance.base_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	viper.SetDefault("yahoo_finance.timeout", "30s")
	viper.SetDefault("yahoo_finance.max_request_per_minute", 60)

	viper.SetDefault("chart.library_url", "https://cdn.plot.ly/plotly-2.27.0.min.js")
	viper.SetDefault("chart.timeout", "30s")

	viper.SetDefault("cache.default_expiration", "5m")
	viper.SetDefault("cache.cleanup_interval", "10m")

	viper.SetDefault("scheduler.model_status_cron", "@every 1m")
	viper.SetDefault("scheduler.history_cleanup_cron", "0 3 * * *")

	viper.SetDefault("gemini.model", "gemini-2.0-flash")
	viper.SetDefault("gemini.timeout", "60s")
	viper.SetDefault("gemini.max_request_per_minute", 10)

	viper.SetDefault("history.retention_days", 90)
}

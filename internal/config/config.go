package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Telegram    TelegramConfig   `mapstructure:"telegram"`
	Forecast    ForecastConfig   `mapstructure:"forecast"`
	Diagnosis   DiagnosisConfig  `mapstructure:"diagnosis"`
	Telemetry   TelemetryConfig  `mapstructure:"telemetry"`
	Security    SecurityConfig   `mapstructure:"security"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	DatabaseURL     string `mapstructure:"database_url"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime string `mapstructure:"conn_max_idle_time"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type TelegramConfig struct {
	BotToken    string `mapstructure:"bot_token"`
	AlertChatID string `mapstructure:"alert_chat_id"`
}

type ForecastConfig struct {
	DefaultHorizon      int     `mapstructure:"default_horizon"`
	MovingAvgWindow     int     `mapstructure:"moving_avg_window"`
	StockoutHistoryDays int     `mapstructure:"stockout_history_days"`
	StockoutDangerDays  int     `mapstructure:"stockout_danger_days"`
	StockoutWarningDays int     `mapstructure:"stockout_warning_days"`
	RevenueWarningRatio float64 `mapstructure:"revenue_warning_ratio"`
}

type DiagnosisConfig struct {
	MaxCandidates    int    `mapstructure:"max_candidates"`
	MaxTreatments    int    `mapstructure:"max_treatments"`
	HistoryDepth     int    `mapstructure:"history_depth"`
	SimilarityWindow int    `mapstructure:"similarity_window"`
	CacheTTL         string `mapstructure:"cache_ttl"`
}

type TelemetryConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

type SecurityConfig struct {
	JWTSecret  string `mapstructure:"jwt_secret" json:"-" yaml:"-"`
	JWTExpiry  string `mapstructure:"jwt_expiry"`
	BcryptCost int    `mapstructure:"bcrypt_cost"`
}

func Load() (*Config, error) {
	// Local development convenience, a missing .env is not an error
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Bind specific environment variables
	if err := viper.BindEnv("security.jwt_secret", "JWT_SECRET"); err != nil {
		return nil, fmt.Errorf("failed to bind JWT_SECRET environment variable: %w", err)
	}
	if err := viper.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind TELEGRAM_BOT_TOKEN environment variable: %w", err)
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Normalize environment to lowercase for consistent comparison
	environment := strings.ToLower(config.Environment)

	// Validate JWT secret in non-development environments
	if environment != "development" && config.Security.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required in non-development environments")
	}

	// Validate JWT expiry duration
	if config.Security.JWTExpiry != "" {
		if _, err := time.ParseDuration(config.Security.JWTExpiry); err != nil {
			return nil, fmt.Errorf("invalid JWT expiry duration: %w", err)
		}
	}

	// Validate diagnosis cache TTL
	if config.Diagnosis.CacheTTL != "" {
		if _, err := time.ParseDuration(config.Diagnosis.CacheTTL); err != nil {
			return nil, fmt.Errorf("invalid diagnosis cache TTL: %w", err)
		}
	}

	// Validate bcrypt cost parameter
	if config.Security.BcryptCost < bcrypt.MinCost || config.Security.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, config.Security.BcryptCost)
	}

	if config.Forecast.DefaultHorizon < 0 {
		return nil, fmt.Errorf("forecast horizon must be non-negative, got %d", config.Forecast.DefaultHorizon)
	}
	if config.Forecast.MovingAvgWindow < 1 {
		return nil, fmt.Errorf("moving average window must be at least 1, got %d", config.Forecast.MovingAvgWindow)
	}

	// Update config with normalized environment
	config.Environment = environment

	return &config, nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Set database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "medisight")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.database_url", "")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "300s")
	viper.SetDefault("database.conn_max_idle_time", "60s")

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Telegram
	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.alert_chat_id", "")

	// Forecast
	viper.SetDefault("forecast.default_horizon", 3)
	viper.SetDefault("forecast.moving_avg_window", 3)
	viper.SetDefault("forecast.stockout_history_days", 90)
	viper.SetDefault("forecast.stockout_danger_days", 7)
	viper.SetDefault("forecast.stockout_warning_days", 30)
	viper.SetDefault("forecast.revenue_warning_ratio", 0.85)

	// Diagnosis
	viper.SetDefault("diagnosis.max_candidates", 10)
	viper.SetDefault("diagnosis.max_treatments", 3)
	viper.SetDefault("diagnosis.history_depth", 10)
	viper.SetDefault("diagnosis.similarity_window", 100)
	viper.SetDefault("diagnosis.cache_ttl", "5m")

	// Telemetry
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.otlp_endpoint", "localhost:4318")
	viper.SetDefault("telemetry.sample_rate", 0.2)

	// Security
	viper.SetDefault("security.jwt_secret", "")
	viper.SetDefault("security.jwt_expiry", "24h")
	viper.SetDefault("security.bcrypt_cost", 12)
}

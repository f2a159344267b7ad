package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret    string
	TokenTTL  time.Duration
	OTPWindow time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
}

type RateLimitConfig struct {
	PerSecond float64
	Burst     int
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "smartbiz")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "smartbiz")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("JWT_SECRET", "jwt-secret-change-in-production")
	viper.SetDefault("JWT_TOKEN_TTL", "24h")
	viper.SetDefault("OTP_WINDOW", "10m")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("RATE_LIMIT_PER_SECOND", 10.0)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("LOG_LEVEL", "info")

	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, err
	}

	tokenTTL, err := time.ParseDuration(viper.GetString("JWT_TOKEN_TTL"))
	if err != nil {
		return nil, err
	}

	otpWindow, err := time.ParseDuration(viper.GetString("OTP_WINDOW"))
	if err != nil {
		return nil, err
	}

	brokers := viper.GetStringSlice("KAFKA_BROKERS")

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		JWT: JWTConfig{
			Secret:    viper.GetString("JWT_SECRET"),
			TokenTTL:  tokenTTL,
			OTPWindow: otpWindow,
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Enabled: len(brokers) > 0 && brokers[0] != "",
		},
		RateLimit: RateLimitConfig{
			PerSecond: viper.GetFloat64("RATE_LIMIT_PER_SECOND"),
			Burst:     viper.GetInt("RATE_LIMIT_BURST"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	return cfg, nil
}

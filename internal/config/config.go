package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Cognito   CognitoConfig
	Database  DatabaseConfig
	Bootstrap BootstrapConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type CognitoConfig struct {
	Region     string
	UserPoolID string
	ClientID   string
}

// Issuer returns the OIDC issuer URL for the configured user pool.
func (c CognitoConfig) Issuer() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.Region, c.UserPoolID)
}

type DatabaseConfig struct {
	Path         string
	MaxOpenConns int
}

type BootstrapConfig struct {
	MaxAttempts int
	Interval    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "3000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("DATABASE_PATH", "auth.db")
	viper.SetDefault("DATABASE_MAX_CONNS", 10)
	viper.SetDefault("BOOTSTRAP_MAX_ATTEMPTS", 10)
	viper.SetDefault("BOOTSTRAP_INTERVAL_SECONDS", 2)
	viper.SetDefault("RATE_LIMIT_RPS", 10.0)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Cognito: CognitoConfig{
			Region:     viper.GetString("AWS_REGION"),
			UserPoolID: getEnvOrPanic("COGNITO_USER_POOL_ID"),
			ClientID:   getEnvOrPanic("COGNITO_CLIENT_ID"),
		},
		Database: DatabaseConfig{
			Path:         viper.GetString("DATABASE_PATH"),
			MaxOpenConns: viper.GetInt("DATABASE_MAX_CONNS"),
		},
		Bootstrap: BootstrapConfig{
			MaxAttempts: viper.GetInt("BOOTSTRAP_MAX_ATTEMPTS"),
			Interval:    time.Duration(viper.GetInt("BOOTSTRAP_INTERVAL_SECONDS")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	return cfg, nil
}

func getEnvOrPanic(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("environment variable %s is required", key)
	}
	return v
}

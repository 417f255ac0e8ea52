package config

import (
	"fmt"
	"strings"
	"time"

	"meal_care_backend/pkg/utils"
)

// Config collects every environment-driven setting of the server.
type Config struct {
	Port            string
	ShutdownTimeout time.Duration

	DB DBConfig

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSAllowedOrigins []string
	PolicyPath         string

	AdminUsername string
	AdminPassword string

	LogLevel  string
	LogFormat string
}

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	SchemaPath  string
	ApplySchema bool
}

// DSN renders the lib/pq keyword/value connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// Load reads the configuration from the environment.
func Load() Config {
	cfg := Config{
		Port:            utils.Getenv("PORT", "8080"),
		ShutdownTimeout: utils.GetenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		DB: DBConfig{
			Host:        utils.Getenv("DB_HOST", "localhost"),
			Port:        utils.Getenv("DB_PORT", "5432"),
			User:        utils.Getenv("DB_USER", "meal_care_user"),
			Password:    utils.Getenv("DB_PASSWORD", "meal_care_password"),
			Name:        utils.Getenv("DB_NAME", "meal_care_db"),
			SSLMode:     utils.Getenv("DB_SSLMODE", "disable"),
			SchemaPath:  utils.Getenv("DB_SCHEMA_PATH", ""),
			ApplySchema: utils.GetenvBool("DB_APPLY_SCHEMA", false),
		},
		JWTSecret:       utils.Getenv("JWT_SECRET", "change-me-meal-care-jwt-secret"),
		AccessTokenTTL:  utils.GetenvDuration("ACCESS_TOKEN_TTL", utils.DefaultAccessTokenTTL),
		RefreshTokenTTL: utils.GetenvDuration("REFRESH_TOKEN_TTL", utils.DefaultRefreshTokenTTL),
		RedisAddr:       strings.TrimSpace(utils.Getenv("REDIS_ADDR", "")),
		RedisPassword:   utils.Getenv("REDIS_PASSWORD", ""),
		RedisDB:         utils.GetenvInt("REDIS_DB", 0),
		PolicyPath:      utils.Getenv("POLICY_PATH", ""),
		AdminUsername:   utils.Getenv("ADMIN_USERNAME", "admin"),
		AdminPassword:   utils.Getenv("ADMIN_PASSWORD", "admin123"),
		LogLevel:        utils.Getenv("LOG_LEVEL", "info"),
		LogFormat:       utils.Getenv("LOG_FORMAT", "console"),
	}

	origins := utils.Getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8081")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}
	return cfg
}

package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application settings.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Verification VerificationConfig
	Email        EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
	CookieSecure bool
	CORSOrigins  []string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings. Addrs takes precedence over
// Addr; a single address keeps the client in single-node mode.
type RedisConfig struct {
	Addrs    []string `mapstructure:"addrs"`
	Addr     string   `mapstructure:"addr"`
	Password string   `mapstructure:"password"`
	DB       int      `mapstructure:"db"`
}

// JWTConfig holds session token settings.
type JWTConfig struct {
	Secret          string        `mapstructure:"secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

// VerificationConfig holds verification code settings.
type VerificationConfig struct {
	CodeTTL        time.Duration `mapstructure:"code_ttl"`
	ResendCooldown time.Duration `mapstructure:"resend_cooldown"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	CodePepper     string        `mapstructure:"code_pepper"`
}

// EmailConfig holds outbound email settings. An empty ResendAPIKey selects
// the noop sender.
type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
}

// PostgresConnectionString builds the PostgreSQL DSN.
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from the given YAML file, with environment
// variables taking precedence over file values.
func Load(configPath string) (*Config, error) {
	vip := viper.New()

	// Defaults
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.readtimeout", 10)
	vip.SetDefault("server.writetimeout", 10)
	vip.SetDefault("server.cookiesecure", false)
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("redis.addr", "localhost:6379")
	vip.SetDefault("jwt.access_token_ttl", 600*time.Minute)
	vip.SetDefault("jwt.refresh_token_ttl", 7*24*time.Hour)
	vip.SetDefault("verification.code_ttl", 10*time.Minute)
	vip.SetDefault("verification.resend_cooldown", 60*time.Second)
	vip.SetDefault("verification.max_attempts", 5)

	// Explicit environment bindings
	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.cookiesecure", "COOKIE_SECURE")
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_NAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("verification.code_pepper", "VERIFICATION_CODE_PEPPER")
	vip.BindEnv("email.resend_api_key", "RESEND_API_KEY")
	vip.BindEnv("email.from", "EMAIL_FROM")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(configPath); statErr == nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
			}
			log.Printf("Config file %s not found, using env and defaults", configPath)
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required (JWT_SECRET)")
	}

	return &cfg, nil
}

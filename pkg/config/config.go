package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Supabase SupabaseConfig
	JWT      JWTConfig
	Email    EmailConfig
	Auth     AuthConfig
	Log      LogConfig
	Metrics  MetricsConfig
	CORS     CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds the hosted store connection settings. Two credential
// pairs target the same endpoint: the restricted user is subject to row-level
// security, the admin user bypasses it.
type DatabaseConfig struct {
	Host            string
	Port            string
	Name            string
	SSLMode         string
	User            string
	Password        string
	AdminUser       string
	AdminPassword   string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
}

// DSN returns the PostgreSQL connection string for the restricted or the
// elevated credential pair.
func (c *DatabaseConfig) DSN(elevated bool) string {
	user, password := c.User, c.Password
	if elevated {
		user, password = c.AdminUser, c.AdminPassword
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, user, password, c.Name, c.SSLMode)
}

// SupabaseConfig holds the identity provider settings
type SupabaseConfig struct {
	URL            string
	ServiceRoleKey string
}

// JWTConfig holds token decoding configuration
type JWTConfig struct {
	Secret     string
	SkipVerify bool
}

// EmailConfig holds the transactional email provider settings
type EmailConfig struct {
	APIKey      string
	FromAddress string
	FromName    string
	FrontendURL string
}

// AuthConfig holds authorization policy settings
type AuthConfig struct {
	StrictOrgMatch bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics-related configuration
type MetricsConfig struct {
	Prefix string
}

// CORSConfig holds the allowed frontend origins
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads the application configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8000"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "postgres"),
			SSLMode:         getEnv("DB_SSL_MODE", "require"),
			User:            getEnv("DB_USER", ""),
			Password:        getEnv("DB_PASSWORD", ""),
			AdminUser:       getEnv("DB_ADMIN_USER", ""),
			AdminPassword:   getEnv("DB_ADMIN_PASSWORD", ""),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
		},
		Supabase: SupabaseConfig{
			URL:            getEnv("SUPABASE_URL", ""),
			ServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		},
		JWT: JWTConfig{
			Secret:     getEnv("SUPABASE_JWT_SECRET", ""),
			SkipVerify: getEnvAsBool("JWT_SKIP_VERIFY", false),
		},
		Email: EmailConfig{
			APIKey:      getEnv("RESEND_API_KEY", ""),
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@divisadero.app"),
			FromName:    getEnv("EMAIL_FROM_NAME", "Divisadero"),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		},
		Auth: AuthConfig{
			StrictOrgMatch: getEnvAsBool("AUTH_STRICT_ORG_MATCH", false),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "divisadero"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports missing required settings. The email API key is optional:
// the invite workflow degrades to logging the invite link when it is absent.
func (c *Config) Validate() error {
	if c.Database.User == "" || c.Database.Password == "" {
		return fmt.Errorf("DB_USER and DB_PASSWORD environment variables are not set")
	}
	if c.Database.AdminUser == "" || c.Database.AdminPassword == "" {
		return fmt.Errorf("DB_ADMIN_USER and DB_ADMIN_PASSWORD environment variables are not set")
	}
	if c.Supabase.URL == "" {
		return fmt.Errorf("SUPABASE_URL environment variable is not set")
	}
	if c.Supabase.ServiceRoleKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY environment variable is not set")
	}
	if c.Server.Env == "production" && c.JWT.SkipVerify {
		return fmt.Errorf("JWT_SKIP_VERIFY must not be enabled in production")
	}
	if !c.JWT.SkipVerify && c.JWT.Secret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET environment variable is not set")
	}
	return nil
}

// Helper functions to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

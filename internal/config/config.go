package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config carries everything read from the environment at process start.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Approval  ApprovalConfig
	Logger    LoggerConfig
	Bootstrap BootstrapConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type AuthConfig struct {
	JWTSecret string
}

// ApprovalConfig holds the two monetary thresholds that decide how many
// approval stages a request must pass. Read once at startup; the workflow
// policy is built from these and never re-reads them.
type ApprovalConfig struct {
	AreaThreshold decimal.Decimal
	ExecThreshold decimal.Decimal
}

type LoggerConfig struct {
	Level      string
	Format     string
	OutputPath string
}

// BootstrapConfig seeds the first admin account. When AdminPassword is empty
// the bootstrap is skipped entirely, so no default credential ever ships.
type BootstrapConfig struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Load reads configs/.env when present and assembles the configuration from
// the environment, applying development defaults for anything unset.
func Load() (*Config, error) {
	godotenv.Load("configs/.env")

	areaThreshold, err := decimal.NewFromString(getEnv("APPROVAL_THRESHOLD_AREA", "5000000"))
	if err != nil {
		return nil, fmt.Errorf("invalid APPROVAL_THRESHOLD_AREA: %w", err)
	}
	execThreshold, err := decimal.NewFromString(getEnv("APPROVAL_THRESHOLD_EXEC", "20000000"))
	if err != nil {
		return nil, fmt.Errorf("invalid APPROVAL_THRESHOLD_EXEC: %w", err)
	}
	if areaThreshold.GreaterThan(execThreshold) {
		return nil, fmt.Errorf("APPROVAL_THRESHOLD_AREA (%s) must not exceed APPROVAL_THRESHOLD_EXEC (%s)", areaThreshold, execThreshold)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "postgres"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			// Same development fallback as middleware.GetJWTSecret so tokens
			// signed here always verify there.
			JWTSecret: getEnv("JWT_SECRET", "default_super_secret_key"),
		},
		Approval: ApprovalConfig{
			AreaThreshold: areaThreshold,
			ExecThreshold: execThreshold,
		},
		Logger: LoggerConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "console"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
		Bootstrap: BootstrapConfig{
			AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
			AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	return cfg, nil
}

// DSN renders the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

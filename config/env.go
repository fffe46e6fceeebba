package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds all environment configuration
type Config struct {
	// Server
	ServerHost string
	ServerPort string

	// Authentication
	JWTSecret           string
	SessionTimeoutHours int

	// Storage
	DataDir   string
	ConfigDir string
	BackupDir string
}

var (
	appConfig *Config
	onceEnv   sync.Once
)

// loadConfig loads and validates all environment variables
func loadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		ServerHost: getEnvWithDefault("SERVER_HOST", "0.0.0.0"),
		ServerPort: getEnvWithDefault("SERVER_PORT", "3000"),

		// JWT - required in production
		JWTSecret:           getEnv("JWT_SECRET"),
		SessionTimeoutHours: getEnvAsInt("SESSION_TIMEOUT_HOURS", 24),

		DataDir:   getEnvWithDefault("DATA_DIR", "data"),
		ConfigDir: getEnvWithDefault("CONFIG_DIR", "config"),
		BackupDir: getEnvWithDefault("BACKUP_DIR", "backups"),
	}
	if config.JWTSecret == "" {
		config.JWTSecret = "dummyjwt"
	}

	appConfig = config
	return config
}

func Env() *Config {
	onceEnv.Do(func() {
		appConfig = loadConfig()
	})
	return appConfig
}

// Helper functions
func getEnv(key string) string {
	value := os.Getenv(key)
	if value == "" && IsProduction() {
		panic(fmt.Sprintf("Required environment variable %s is not set", key))
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// IsProduction returns true if running in production
func IsProduction() bool {
	return getEnvWithDefault("ENVIRONMENT", "development") == "production"
}

// IsDevelopment returns true if running in development
func IsDevelopment() bool {
	return !IsProduction()
}

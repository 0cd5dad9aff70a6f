package config

import (
	"os"
)

// Config holds all runtime configuration. It is loaded once in main and
// passed to the components that need it; no other package reads the
// environment.
type Config struct {
	Port string

	// Database
	DBHost string
	DBUser string
	DBPass string
	DBName string
	DBPort string

	// Auth
	JWTSecret string

	// Object storage (S3-compatible: MinIO, AWS S3, etc.)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // optional, for MinIO and other S3-compatible services
}

// Load reads configuration from the environment, applying development
// defaults where a variable is unset.
func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBUser: getEnv("DB_USER", "postgres"),
		DBPass: getEnv("DB_PASS", "postgres"),
		DBName: getEnv("DB_NAME", "classnotebook"),
		DBPort: getEnv("DB_PORT", "5432"),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key"),

		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", "classnotebook-files"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

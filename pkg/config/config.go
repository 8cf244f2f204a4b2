package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int
	// DevTokenEndpoint enables POST /auth/token for standalone runs.
	DevTokenEndpoint bool

	// CredentialSecret and CredentialSalt derive the AES key that protects
	// stored provider credentials.
	CredentialSecret string
	CredentialSalt   string

	// Platform-default tier of the settings cascade.
	DefaultOllamaEndpoint string
	DefaultOllamaModel    string

	LogJSON  bool
	LogDebug bool
}

// Load reads environment variables, optionally from a .env file if present.
func Load() Config {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	return Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        getEnv("JWT_SECRET", "dev-secret-change"),
		JWTIssuer:        getEnv("JWT_ISSUER", "cvforge"),
		JWTTTLMinutes:    getEnvInt("JWT_TTL_MINUTES", 60),
		DevTokenEndpoint: getEnvBool("DEV_TOKEN_ENDPOINT", false),

		CredentialSecret: getEnv("CREDENTIAL_SECRET", "dev-credential-secret-change"),
		CredentialSalt:   getEnv("CREDENTIAL_SALT", "cvforge-credentials"),

		DefaultOllamaEndpoint: getEnv("OLLAMA_ENDPOINT", "http://127.0.0.1:11434"),
		DefaultOllamaModel:    getEnv("OLLAMA_MODEL", "llama3.1"),

		LogJSON:  getEnvBool("LOG_JSON", false),
		LogDebug: getEnvBool("LOG_DEBUG", false),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

package config

import (
	"os"
	"strconv"
)

type Config struct {
	HTTPPort int

	PostgresHost string
	PostgresPort int
	PostgresUser string
	PostgresPass string
	PostgresDB   string

	RedisHost string
	RedisPort int

	RabbitHost string
	RabbitPort int
	RabbitUser string
	RabbitPass string

	ConsulHost string
	ConsulPort int

	JWTSecret string

	ImageAPIKey  string
	ImageAPIHost string
}

// Load reads configuration from the environment with local defaults.
func Load() Config {
	return Config{
		HTTPPort: getEnvInt("HTTP_PORT", 8080),

		PostgresHost: getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser: getEnv("POSTGRES_USER", "storefront"),
		PostgresPass: getEnv("POSTGRES_PASSWORD", "storefront123"),
		PostgresDB:   getEnv("POSTGRES_DB", "storefront"),

		RedisHost: getEnv("REDIS_HOST", "localhost"),
		RedisPort: getEnvInt("REDIS_PORT", 6379),

		RabbitHost: getEnv("RABBITMQ_HOST", "localhost"),
		RabbitPort: getEnvInt("RABBITMQ_PORT", 5672),
		RabbitUser: getEnv("RABBITMQ_USER", "guest"),
		RabbitPass: getEnv("RABBITMQ_PASSWORD", "guest"),

		ConsulHost: getEnv("CONSUL_HOST", "localhost"),
		ConsulPort: getEnvInt("CONSUL_PORT", 8500),

		JWTSecret: getEnv("JWT_SECRET", "dev-only-secret"),

		ImageAPIKey:  getEnv("IMAGE_API_KEY", ""),
		ImageAPIHost: getEnv("IMAGE_API_HOST", "google-search72.p.rapidapi.com"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

package config

import "os"

// Config holds everything the process reads from the environment.
type Config struct {
	Port        string
	DatabaseDSN string
	RedisAddr   string
	Env         string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// Load reads the configuration from environment variables, falling back to
// defaults that match the local docker-compose setup.
func Load() Config {
	return Config{
		Port:        getenv("APP_PORT", "8080"),
		DatabaseDSN: getenv("DATABASE_DSN", "host=localhost user=user password=password dbname=peerlinkdb port=5432 sslmode=disable"),
		RedisAddr:   getenv("REDIS_ADDR", "localhost:6379"),
		Env:         getenv("APP_ENV", "dev"),
	}
}

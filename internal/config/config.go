package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"quizmaker/internal/lib/slogcustom"
	"quizmaker/pkg/database"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	DefaultEnvFile = ".env"
)

type Config struct {
	DBDriver          string
	DBPath            string
	Postgres          database.Config
	RedisAddr         string
	JWTSecret         string
	HTTPAddr          string
	CORSOrigins       []string
	ShortAnswerPolicy string
	LogLevel          string
	Serve             bool
}

// Load reads envFile into the environment (a missing default file is not
// an error) and builds the config from the environment.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil {
		if envFile != DefaultEnvFile || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	return &Config{
		DBDriver: strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBPath:   getEnv("DB_PATH", "quizmaker.db"),
		Postgres: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", ""),
		},
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		ShortAnswerPolicy: strings.ToLower(getEnv("SHORT_ANSWER_POLICY", "accept")),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}, nil
}

// Validate reports every setting that prevents startup.
func (c *Config) Validate() error {
	var problems []string

	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			problems = append(problems, "DB_PATH is required for sqlite")
		}
	case DriverPostgres:
		if c.Postgres.Host == "" || c.Postgres.User == "" || c.Postgres.DBName == "" {
			problems = append(problems, "DB_HOST, DB_USER and DB_NAME are required for postgres")
		}
	case DriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("unknown DB_DRIVER %q", c.DBDriver))
	}

	switch c.ShortAnswerPolicy {
	case "accept", "review":
	default:
		problems = append(problems, fmt.Sprintf("unknown SHORT_ANSWER_POLICY %q", c.ShortAnswerPolicy))
	}

	if _, err := slogcustom.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("unknown LOG_LEVEL %q", c.LogLevel))
	}

	if c.Serve {
		if c.JWTSecret == "" {
			problems = append(problems, "JWT_SECRET is required to serve HTTP")
		}
		if c.HTTPAddr == "" {
			problems = append(problems, "HTTP_ADDR is required to serve HTTP")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

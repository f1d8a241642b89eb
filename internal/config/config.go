// Package config loads runtime configuration from environment variables.
// Every variable has a default that enables a local out-of-the-box run.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the vacancy loader.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisURL string // optional — empty disables the aggregate cache

	SearchQuery         string
	IngestIntervalHours int // 0 = single run followed by the interactive menu
	EmployerRetention   int // employer cap passed to the retention trim
}

// Load reads environment variables and returns a Config.
func Load() (*Config, error) {
	cfg := &Config{
		DBHost:            getenv("DB_HOST", "localhost"),
		DBPort:            getenv("DB_PORT", "5432"),
		DBUser:            getenv("DB_USER", "postgres"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            getenv("DB_NAME", "hh_vacancies"),
		RedisURL:          os.Getenv("REDIS_URL"),
		SearchQuery:       getenv("SEARCH_QUERY", "Python разработчик"),
		EmployerRetention: 10,
	}

	if s := os.Getenv("INGEST_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("INGEST_INTERVAL_HOURS must be a non-negative integer, got %q", s)
		}
		cfg.IngestIntervalHours = v
	}

	if s := os.Getenv("EMPLOYER_RETENTION"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("EMPLOYER_RETENTION must be a positive integer, got %q", s)
		}
		cfg.EmployerRetention = v
	}

	return cfg, nil
}

// DatabaseURL assembles the pgx connection URL for the target database.
func (c *Config) DatabaseURL() string {
	return c.databaseURL(c.DBName)
}

// AdminDatabaseURL targets the administrative "postgres" database, used only
// to create the target database when it does not exist yet.
func (c *Config) AdminDatabaseURL() string {
	return c.databaseURL("postgres")
}

func (c *Config) databaseURL(dbName string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   c.DBHost + ":" + c.DBPort,
		Path:   dbName,
	}
	q := u.Query()
	q.Set("sslmode", "disable")
	u.RawQuery = q.Encode()
	return u.String()
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

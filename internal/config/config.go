// Package config loads application configuration from environment variables.
package config

import (
	"log"      // log is used to report configuration errors and halt execution
	"os"       // os provides access to environment variables
	"strconv"  // strconv converts strings to other types
	"strings"  // strings normalizes list-valued variables
	"time"     // time parses duration-valued variables
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Database settings are required; lending
// policy and notification settings default to the values the library
// has historically run with.
type Config struct {
	Env    string // application environment (e.g. "dev", "prod")
	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	ReservationPeriodDays  int     // pickup window granted on reservation
	MaxActiveOrdersPerUser int     // borrowing limit per reader
	BaseFinePerDay         float64 // daily overdue rate handed to the fine strategy
	FineStrategy           string  // "simple", "progressive" or "weekend"

	NotifyChannel    string        // "EMAIL" or "SMS"
	NotifyLogging    bool          // trace every dispatch to the log
	NotifyMaxRetries int           // delivery attempts per notification
	NotifyBackoff    time.Duration // pause between delivery attempts
	NotifyCacheTTL   time.Duration // how long a duplicate send is suppressed
	NotifyCacheSize  int           // in-memory sent-cache entry cap
	NotifyPrefix     string        // Redis key prefix for the sent-cache

	SweepInterval time.Duration // how often the overdue sweep runs
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:    must("APP_ENV"),      // environment (dev/test/prod)
		DBUser: must("DB_USER"),      // database user
		DBPass: os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost: must("DB_HOST"),      // database host
		DBPort: must("DB_PORT"),      // database port
		DBName: must("DB_NAME"),      // database name

		ReservationPeriodDays:  atoi(getenv("RESERVATION_PERIOD_DAYS", "14")),
		MaxActiveOrdersPerUser: atoi(getenv("MAX_ACTIVE_ORDERS_PER_USER", "3")),
		BaseFinePerDay:         atof(getenv("BASE_FINE_PER_DAY", "50")),
		FineStrategy:           strings.ToLower(getenv("FINE_STRATEGY", "progressive")),

		NotifyChannel:    strings.ToUpper(getenv("NOTIFY_CHANNEL", "EMAIL")),
		NotifyLogging:    getenv("NOTIFY_LOGGING", "true") == "true",
		NotifyMaxRetries: atoi(getenv("NOTIFY_MAX_RETRIES", "3")),
		NotifyBackoff:    parseDur(getenv("NOTIFY_BACKOFF", "1s")),
		NotifyCacheTTL:   parseDur(getenv("NOTIFY_CACHE_TTL", "1h")),
		NotifyCacheSize:  atoi(getenv("NOTIFY_CACHE_SIZE", "1024")),
		NotifyPrefix:     getenv("NOTIFY_CACHE_PREFIX", "notify:sent"),

		SweepInterval: parseDur(getenv("OVERDUE_SWEEP_INTERVAL", "1h")),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}

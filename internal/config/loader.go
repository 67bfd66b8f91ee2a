package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the calendar service.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	ShutdownTimeout time.Duration
}

// Load parses configuration values from the current process environment.
//
// Every field has a sensible default so the server starts with no
// environment at all; values that are present but unparsable are
// reported together in a single error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:calendar.db?_pragma=journal_mode(WAL)",
		ShutdownTimeout: 10 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("CALENDAR_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "CALENDAR_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("CALENDAR_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("CALENDAR_SHUTDOWN_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "CALENDAR_SHUTDOWN_TIMEOUT")
		} else {
			cfg.ShutdownTimeout = timeout
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

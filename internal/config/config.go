package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultRosterFile is the roster CSV looked up when neither -roster nor
// ROSTER_CSV is given.
const DefaultRosterFile = "studentAbsenceEmailerData.csv"

// DefaultFooter is appended to every outgoing email.
const DefaultFooter = "This email was sent by the Student Absence Emailer (SAE) program. " +
	"Please let the front office know if something looks awry."

// Config holds all application configuration.
type Config struct {
	LogLevel      string
	LogFormat     string
	RosterPath    string
	SubjectPrefix string
	Footer        string
	// DatabaseURL enables the sent-email audit log. Empty disables it.
	DatabaseURL string
	MaxDBConns  int32
	Roster      RosterRules
	Schedule    Schedule
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	rules := DefaultRosterRules()
	if v := parseList(getEnv("SAE_IGNORE_PERIODS", "")); v != nil {
		rules.IgnorePeriods = v
	}
	if v := parseList(getEnv("SAE_IGNORE_PERIOD_TYPES", "")); v != nil {
		rules.IgnorePeriodTypes = v
	}

	return &Config{
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "pretty"),
		RosterPath:    getEnv("ROSTER_CSV", ""),
		SubjectPrefix: getEnv("SAE_SUBJECT_PREFIX", "[SAE] "),
		Footer:        getEnv("SAE_FOOTER", DefaultFooter),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		MaxDBConns:    int32(getEnvInt("MAX_DB_CONNS", 2)),
		Roster:        rules,
		Schedule:      DefaultSchedule(),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseList splits a comma-separated string into a trimmed slice.
// Returns nil if the input is empty.
func parseList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

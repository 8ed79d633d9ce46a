package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DBUrl              string
	JWTSecret          string
	AppEnv             string
	MeetingLinkBaseURL string

	// Scheduling policy knobs. The defaults match the coaching product's
	// working hours and booking granularity.
	DayStartHour      int
	DayEndHour        int
	SlotStepMinutes   int
	WeeklyOccurrences int
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DBUrl:              getEnv("DB_URL", ""),
		JWTSecret:          jwtSecret,
		AppEnv:             normalizeEnv(getEnv("APP_ENV", "production")),
		MeetingLinkBaseURL: getEnv("MEETING_LINK_BASE_URL", "https://meet.fitversal.app"),
		DayStartHour:       getEnvInt("SCHEDULE_DAY_START_HOUR", 6),
		DayEndHour:         getEnvInt("SCHEDULE_DAY_END_HOUR", 22),
		SlotStepMinutes:    getEnvInt("SCHEDULE_SLOT_STEP_MINUTES", 30),
		WeeklyOccurrences:  getEnvInt("SCHEDULE_WEEKLY_OCCURRENCES", 4),
	}

	if cfg.DayStartHour < 0 || cfg.DayEndHour > 24 || cfg.DayStartHour >= cfg.DayEndHour {
		return nil, fmt.Errorf("invalid scheduling window: %d-%d", cfg.DayStartHour, cfg.DayEndHour)
	}
	if cfg.SlotStepMinutes <= 0 {
		return nil, fmt.Errorf("SCHEDULE_SLOT_STEP_MINUTES must be positive")
	}
	if cfg.WeeklyOccurrences <= 0 {
		return nil, fmt.Errorf("SCHEDULE_WEEKLY_OCCURRENCES must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

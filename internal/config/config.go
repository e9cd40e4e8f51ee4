package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Telegram TelegramConfig
	Notion   NotionConfig
	Limits   LimitsConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	SessionBackend     string // "memory" or "redis"
	RedisURL           string
	RecordEventsTopic  string
}

type TelegramConfig struct {
	LinkBotToken   string
	TaskBotToken   string
	APIBaseURL     string
	WebhookSecret  string
	AllowedUserIDs []int64
}

type NotionConfig struct {
	Token            string
	APIBaseURL       string
	Version          string
	LinksDatabaseID  string
	TasksDatabaseID  string
	CategoryProperty string
}

type LimitsConfig struct {
	MaxRequests int
	Window      time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			SessionBackend:     getEnv("SESSION_BACKEND", "memory"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			RecordEventsTopic:  getEnv("RECORD_EVENTS_TOPIC_NAME", "RECORD_EVENTS"),
		},
		Telegram: TelegramConfig{
			LinkBotToken:   getEnv("TELEGRAM_LINK_BOT_TOKEN", ""),
			TaskBotToken:   getEnv("TELEGRAM_TASK_BOT_TOKEN", ""),
			APIBaseURL:     getEnv("TELEGRAM_API_BASE_URL", "https://api.telegram.org"),
			WebhookSecret:  getEnv("TELEGRAM_WEBHOOK_SECRET", ""),
			AllowedUserIDs: getEnvAsInt64List("TELEGRAM_ALLOWED_USER_IDS", nil),
		},
		Notion: NotionConfig{
			Token:            getEnv("NOTION_TOKEN", ""),
			APIBaseURL:       getEnv("NOTION_API_BASE_URL", "https://api.notion.com"),
			Version:          getEnv("NOTION_VERSION", "2022-06-28"),
			LinksDatabaseID:  getEnv("NOTION_LINKS_DATABASE_ID", ""),
			TasksDatabaseID:  getEnv("NOTION_TASKS_DATABASE_ID", ""),
			CategoryProperty: getEnv("NOTION_CATEGORY_PROPERTY", "Category"),
		},
		Limits: LimitsConfig{
			MaxRequests: getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 20),
			Window:      time.Duration(getEnvAsInt("RATE_LIMIT_WINDOW_MS", 60000)) * time.Millisecond,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsInt64List parses a comma-separated list of numeric IDs.
// Malformed entries are skipped so one typo does not lock everyone out.
func getEnvAsInt64List(key string, fallback []int64) []int64 {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var out []int64
	for _, part := range strings.Split(strValue, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			out = append(out, id)
		} else {
			log.Printf("[WARN] Skipping invalid user id in %s: %q", key, part)
		}
	}
	return out
}

package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	// Bot configuration
	DiscordToken string
	AppID        string
	BotOwnerID   string

	// tetr.io API configuration
	TetrBaseURL string
	UserAgent   string

	// Database configuration
	DatabaseType string // "sqlite" or "postgres"
	SqlitePath   string
	PostgresURL  string

	// Reconciliation settings
	MaxConcurrentRequests int
	RefreshInterval       time.Duration

	// Application settings
	Debug bool
)

func Load() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file, falling back to environment variables")
	}

	// Bot configuration
	DiscordToken = os.Getenv("DISCORD_TOKEN")
	AppID = os.Getenv("APP_ID")
	BotOwnerID = os.Getenv("BOT_OWNER_ID")

	if DiscordToken == "" {
		log.Fatal("Missing required DISCORD_TOKEN environment variable")
	}

	// tetr.io API configuration
	TetrBaseURL = os.Getenv("TETR_BASE_URL") // empty selects the default
	UserAgent = os.Getenv("USER_AGENT")
	if UserAgent == "" {
		UserAgent = "vieribot"
	}

	// Database configuration
	DatabaseType = os.Getenv("DB_TYPE")
	if DatabaseType == "" {
		DatabaseType = "sqlite" // Default to SQLite
	}

	SqlitePath = os.Getenv("SQLITE_PATH")
	if SqlitePath == "" && DatabaseType == "sqlite" {
		SqlitePath = "bot.db" // Default path
	}

	PostgresURL = os.Getenv("POSTGRES_URL")
	if PostgresURL == "" && DatabaseType == "postgres" {
		log.Fatal("POSTGRES_URL environment variable required when using postgres")
	}

	// Reconciliation settings
	MaxConcurrentRequests = envInt("MAX_CONCURRENT_REQUESTS", 64)
	RefreshInterval = envDuration("REFRESH_INTERVAL", 30*time.Minute)

	// Application settings
	debugStr := os.Getenv("DEBUG")
	Debug, _ = strconv.ParseBool(debugStr)
}

// GetDatabaseConnectionString returns the DSN matching DatabaseType.
func GetDatabaseConnectionString() string {
	switch DatabaseType {
	case "postgres":
		return PostgresURL
	default:
		return SqlitePath
	}
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		log.Printf("Warning: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Fetch modes accepted by FETCH_MODE.
const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// Lead archive backends accepted by LEADS_STORE.
const (
	LeadStoreNone     = "none"
	LeadStoreCSV      = "csv"
	LeadStorePostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	DealsURL           string
	FeedURL            string
	ListingURLTemplate string
	FetchTimeout       time.Duration
	FetchMode          string
	ChromeBin          string

	BreakerMaxFailures int
	BreakerCooldown    time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	LeadsToEmail string
	MaxRetries   int

	LeadStore    string
	LeadsCSVPath string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DealsURL:           getEnv("DEALS_URL", "https://broker-api.sunhub.com/api/v1/listing/public/deals"),
		FeedURL:            getEnv("FEED_URL", "https://www.sunhub.com/rss-feed/rss.xml"),
		ListingURLTemplate: getEnv("LISTING_URL_TEMPLATE", "https://www.sunhub.com/listing/{id}"),
		FetchTimeout:       getEnvDuration("FETCH_TIMEOUT", 15*time.Second),
		FetchMode:          getEnv("FETCH_MODE", FetchModeHTTP),
		ChromeBin:          getEnv("CHROME_BIN", ""),

		BreakerMaxFailures: getEnvInt("BREAKER_MAX_FAILURES", 5),
		BreakerCooldown:    getEnvDuration("BREAKER_COOLDOWN", 30*time.Second),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASS", ""),
		LeadsToEmail: getEnv("LEADS_TO_EMAIL", ""),
		MaxRetries:   getEnvInt("MAX_RETRIES", 3),

		LeadStore:    getEnv("LEADS_STORE", LeadStoreNone),
		LeadsCSVPath: getEnv("LEADS_CSV_PATH", "./output/leads.csv"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "dealsearch"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "dealsearch"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// SMTPAddr returns host:port for the outbound mail relay.
func (c *Config) SMTPAddr() string {
	return c.SMTPHost + ":" + strconv.Itoa(c.SMTPPort)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("15s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if n, err := strconv.Atoi(val); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

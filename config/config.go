package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	ServerPort string

	StripeWebhookSecret string
	AdminUserIDs        []uint
	PointsToRefill      int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	cfg := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "lingo"),
		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		AdminUserIDs:        getEnvIDList("ADMIN_USER_IDS"),
		PointsToRefill:      getEnvInt("POINTS_TO_REFILL", 50),
	}

	if cfg.JWTSecret == "secret" {
		log.Println("Warning: using default JWT_SECRET, set it in your environment")
	}
	if cfg.StripeWebhookSecret == "" {
		log.Println("Warning: STRIPE_WEBHOOK_SECRET is not set, webhook requests will be rejected")
	}

	return cfg, nil
}

// IsAdmin reports whether the given user id is on the admin allow-list.
func (c *Config) IsAdmin(userID uint) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvIDList parses a comma-separated list of numeric user ids.
func getEnvIDList(key string) []uint {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var ids []uint
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			log.Printf("Error parsing %s entry %q: %v", key, part, err)
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}

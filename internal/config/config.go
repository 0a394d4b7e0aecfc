package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	// Storage: "sqlite" (default), "file", or "memory"
	StorageBackend string
	SQLitePath     string
	DataFilePath   string
	// JWT Configuration (shared secret with the identity provider)
	JWTSecret string
	// Access gate
	ScanQuota int
	// Upstream product database (Open Food Facts)
	ProductAPIURL string
	// Vision API (OCR label scans)
	VisionAPIURL string
	VisionAPIKey string
	// Recipe API (Spoonacular)
	RecipeAPIURL string
	RecipeAPIKey string
	// Redis Configuration (optional - response cache)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	CacheTTL      int // Cache TTL in seconds
	UseCache      bool
	// Kafka Configuration (optional - audit + notification events)
	KafkaBrokers           []string
	KafkaTopicAudit        string
	KafkaTopicNotification string
	UseKafka               bool
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// .env file is optional, continue with environment variables
	}

	// Parse Kafka brokers (comma-separated)
	kafkaBrokersStr := getEnv("KAFKA_BROKERS", "localhost:9093")
	kafkaBrokers := strings.Split(kafkaBrokersStr, ",")
	for i, broker := range kafkaBrokers {
		kafkaBrokers[i] = strings.TrimSpace(broker)
	}

	return &Config{
		Port:        getEnv("PORT", "3000"),
		Environment: getEnv("ENVIRONMENT", "development"),

		StorageBackend: getEnv("STORAGE_BACKEND", "sqlite"),
		SQLitePath:     getEnv("SQLITE_PATH", "./pantry.db"),
		DataFilePath:   getEnv("DATA_FILE", "./data.json"),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production-min-32-chars"),

		ScanQuota: getEnvAsInt("SCAN_QUOTA", 10),

		ProductAPIURL: getEnv("PRODUCT_API_URL", "https://world.openfoodfacts.org"),
		VisionAPIURL:  getEnv("VISION_API_URL", "https://vision.googleapis.com"),
		VisionAPIKey:  getEnv("VISION_API_KEY", ""),
		RecipeAPIURL:  getEnv("RECIPE_API_URL", "https://api.spoonacular.com"),
		RecipeAPIKey:  getEnv("SPOONACULAR_KEY", ""),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		CacheTTL:      getEnvAsInt("CACHE_TTL", 60),
		UseCache:      getEnvAsBool("USE_CACHE", false),

		KafkaBrokers:           kafkaBrokers,
		KafkaTopicAudit:        getEnv("KAFKA_TOPIC_AUDIT", "pantry.audit"),
		KafkaTopicNotification: getEnv("KAFKA_TOPIC_NOTIFICATIONS", "pantry.notifications"),
		UseKafka:               getEnvAsBool("USE_KAFKA", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return result
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.ToLower(value) == "true" || value == "1"
}

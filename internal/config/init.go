package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings is everything the app reads from the environment.
type Settings struct {
	AppPort          string
	AppEnv           string
	DBDSN            string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	JWTSecret        string
	ImageDir         string
	FeedPageSize     int
	CleanupBatchSize int
	CleanupInterval  time.Duration
	AllowedOrigins   []string
}

// Init loads .env (if any) and reads Settings. DB_DSN and JWT_SECRET are mandatory.
func Init() Settings {
	if err := godotenv.Load(); err != nil {
		Logger.Info("No .env file found, using system environment variables")
	}

	s := Settings{
		AppPort:          getEnv("APP_PORT", "8080"),
		AppEnv:           getEnv("APP_ENV", "local"),
		DBDSN:            os.Getenv("DB_DSN"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getInt("REDIS_DB", 0),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		ImageDir:         getEnv("IMAGE_DIR", "images"),
		FeedPageSize:     getInt("FEED_PAGE_SIZE", 2),
		CleanupBatchSize: getInt("CLEANUP_BATCH_SIZE", 100),
		CleanupInterval:  getDuration("CLEANUP_INTERVAL", 30*time.Second),
		AllowedOrigins:   splitList(os.Getenv("WS_ALLOWED_ORIGINS")),
	}

	if s.DBDSN == "" {
		Logger.Fatal("DB_DSN is not set")
	}
	if s.JWTSecret == "" {
		Logger.Fatal("JWT_SECRET is not set")
	}
	if s.RedisAddr == "" {
		Logger.Warn("REDIS_ADDR is not set, feed events stay local to this instance")
	}
	return s
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

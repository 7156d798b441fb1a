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
	Port        string
	Env         string
	DBDSN       string
	BotToken    string
	JWTSecret   string
	FrontendURL string
	MiniAppURL  string
	LogFile     string
	LogLevel    string
	UploadDir   string

	// Telegram ids promoted to admin on login.
	AdminTelegramIDs []int64

	// Anti-spam
	MaxActiveListings int
	PostingCooldown   time.Duration

	// Upload
	MaxImages    int
	MaxFileSize  int
	RateLimitMax int

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool

	NATSURL string
}

func (c Config) IsDevelopment() bool { return c.Env == "development" }

func Load() Config {
	// .env is optional; the environment wins.
	_ = godotenv.Load()

	cfg := Config{
		Port:              getEnv("PORT", "3000"),
		Env:               getEnv("APP_ENV", "development"),
		DBDSN:             getEnv("DB_DSN", "avtosotuv.db"), // sqlite file in project root
		BotToken:          os.Getenv("BOT_TOKEN"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:3001"),
		MiniAppURL:        getEnv("MINI_APP_URL", "https://avto-sotuv.vercel.app"),
		LogFile:           os.Getenv("LOG_FILE"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		AdminTelegramIDs:  parseIDs(os.Getenv("ADMIN_TELEGRAM_IDS")),
		MaxActiveListings: 3,
		PostingCooldown:   24 * time.Hour,
		MaxImages:         5,
		MaxFileSize:       5 << 20,
		RateLimitMax:      getInt("RATE_LIMIT_MAX", 100),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3AccessKey:       os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:       os.Getenv("S3_SECRET_KEY"),
		S3Bucket:          getEnv("S3_BUCKET", "avtosotuv-images"),
		S3UseSSL:          getEnv("S3_USE_SSL", "false") == "true",
		NATSURL:           os.Getenv("NATS_URL"),
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			log.Fatal("[config] JWT_SECRET is required outside development")
		}
		cfg.JWTSecret = "dev-secret"
		log.Printf("[config] JWT_SECRET not set, using an insecure development secret")
	}
	log.Printf("[config] PORT=%s APP_ENV=%s DB_DSN=%s UPLOAD_DIR=%s S3=%t NATS=%t BOT=%t",
		cfg.Port, cfg.Env, cfg.DBDSN, cfg.UploadDir, cfg.S3Endpoint != "", cfg.NATSURL != "", cfg.BotToken != "")
	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func parseIDs(raw string) []int64 {
	var out []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("[config] ignoring bad ADMIN_TELEGRAM_IDS entry %q", part)
			continue
		}
		out = append(out, id)
	}
	return out
}

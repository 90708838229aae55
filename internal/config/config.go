package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	ServerPort string

	LLMAPIKey    string
	LLMAPIURL    string
	LLMModelPool []string
	LLMSiteURL   string

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RateLimitBackend string
	RateLimitStrict  bool

	ChatMaxDuration time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "promptplayground"),

		ServerPort: getEnv("SERVER_PORT", "8080"),

		LLMAPIKey:    getEnv("LLM_API_KEY", ""),
		LLMAPIURL:    getEnv("LLM_API_URL", "https://openrouter.ai/api/v1"),
		LLMModelPool: splitList(getEnv("LLM_MODEL_POOL", "openai/gpt-oss-120b:nitro,minimax/minimax-m2.1:nitro")),
		LLMSiteURL:   getEnv("SITE_URL", "http://localhost:3000"),

		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		RateLimitBackend: getEnv("RATE_LIMIT_BACKEND", "memory"),
		RateLimitStrict:  getEnvBool("RATE_LIMIT_STRICT", false),

		ChatMaxDuration: time.Duration(getEnvInt("CHAT_MAX_DURATION_SECONDS", 30)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr       string
	CORSOrigin string
	// Seed data loaded once at startup. KeyFile is optional; when present the
	// data file is decrypted first and falls back to plaintext JSON.
	DataFile string
	KeyFile  string
	// Gemini Configuration
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	LLMTimeout    time.Duration
	// Redis - empty disables the suggestion cache
	RedisURL           string
	SuggestionCacheTTL time.Duration
	// Meilisearch - empty falls back to the in-process index
	MeiliURL       string
	MeiliMasterKey string
}

func Load() Config {
	return Config{
		Addr:          getenv("API_ADDR", ":5001"),
		CORSOrigin:    getenv("CARELINE_CORS_ORIGIN", "*"),
		DataFile:      getenv("CARELINE_DATA_FILE", "./data/note.json"),
		KeyFile:       getenv("CARELINE_KEY_FILE", "./data/secret.key"),
		GeminiAPIKey:  getenv("GEMINI_API_KEY", ""),
		GeminiModel:   getenv("GEMINI_MODEL", "gemini-flash-latest"),
		GeminiBaseURL: getenv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		LLMTimeout:    time.Duration(getenvInt("CARELINE_LLM_TIMEOUT_SECONDS", 30)) * time.Second,
		// Redis - suggestion cache disabled if not configured
		RedisURL:           getenv("REDIS_URL", ""),
		SuggestionCacheTTL: time.Duration(getenvInt("CARELINE_SUGGESTION_CACHE_TTL_SECONDS", 86400)) * time.Second,
		MeiliURL:           getenv("MEILI_URL", ""),
		MeiliMasterKey:     getenv("MEILI_MASTER_KEY", ""),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

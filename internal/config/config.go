package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port string
	Env  string

	// CORSAllowOrigins is a comma-separated allow list. Empty allows none.
	CORSAllowOrigins []string

	// LocalStoreDir is where uploads and extracted text are persisted.
	LocalStoreDir string

	OpenAIAPIKey string
	OpenAIAPIURL string
	LLMModel     string

	// PromptMode is "single" or "multi".
	PromptMode string

	OCRLanguages []string
	OCRDPI       int
	OCRWorkers   int

	MaxRetries     int
	RetryBackoff   time.Duration
	MaxInFlight    int
	RatePerSecond  float64
	MaxUploadBytes int64

	ConnectTimeout  time.Duration
	ResponseTimeout time.Duration
}

// Load reads configuration from environment variables, after best-effort
// loading of local .env files.
func Load() Config {
	loadEnvFiles(".env.local", ".env")

	env := normalizeEnv(getEnv("ENV", "development"))
	apiKey := os.Getenv("OPENAI_API_KEY")

	if env == "production" && apiKey == "" {
		log.Fatal("OPENAI_API_KEY is required in production")
	}

	return Config{
		Port:             getEnv("PORT", "8080"),
		Env:              env,
		CORSAllowOrigins: splitList(getEnv("CORS_ALLOW_ORIGINS", "")),
		LocalStoreDir:    getEnv("LOCAL_STORE_DIR", "data/uploads"),
		OpenAIAPIKey:     apiKey,
		OpenAIAPIURL:     getEnv("OPENAI_API_URL", "https://api.openai.com/v1/chat/completions"),
		LLMModel:         getEnv("LLM_MODEL", "gpt-4o-mini"),
		PromptMode:       normalizeMode(getEnv("PROMPT_MODE", "single")),
		OCRLanguages:     splitList(getEnv("OCR_LANGUAGES", "kor,eng")),
		OCRDPI:           getEnvInt("OCR_DPI", 300),
		OCRWorkers:       getEnvInt("OCR_WORKERS", 4),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),
		RetryBackoff:     time.Duration(getEnvInt("RETRY_BACKOFF_MS", 1000)) * time.Millisecond,
		MaxInFlight:      getEnvInt("MAX_CONCURRENT_DISPATCHES", 3),
		RatePerSecond:    getEnvFloat("DISPATCH_RATE_PER_SECOND", 5),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		ConnectTimeout:   time.Duration(getEnvInt("CONNECT_TIMEOUT_SECONDS", 10)) * time.Second,
		ResponseTimeout:  time.Duration(getEnvInt("RESPONSE_TIMEOUT_SECONDS", 120)) * time.Second,
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, val, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using %g", key, val, def)
		return def
	}
	return f
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	default:
		return "development"
	}
}

func normalizeMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "multi":
		return "multi"
	default:
		return "single"
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration. It is built once at startup and
// passed by value to everything that needs it.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	DatabaseURL        string
	DatabaseServiceKey string
	AutoMigrate        bool

	LLMAPIKey        string
	LLMBaseURL       string
	LLMModel         string
	LLMTimeout       time.Duration
	LLMMaxTokens     int
	LLMTemperature   float32
	LLMMaxInputChars int

	DownloadTimeout  time.Duration
	MaxDownloadBytes int64
	AWSRegion        string
	LocalStoreDir    string

	AnalyzeRatePerMin float64
	AnalyzeBurst      int
}

// ErrMissingRequired is wrapped by Load when a required variable is absent.
var ErrMissingRequired = errors.New("missing required configuration")

// Load reads configuration from environment variables with sensible defaults.
// Required values that are absent produce an error wrapping ErrMissingRequired.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "*")),

		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DatabaseServiceKey: firstEnv("DATABASE_SERVICE_KEY", "SUPABASE_SERVICE_ROLE_KEY"),
		AutoMigrate:        getBool("AUTO_MIGRATE", true),

		// An empty LLM base URL or model selects the client default.
		LLMAPIKey:        firstEnv("GROQ_API_KEY", "LLM_API_KEY"),
		LLMBaseURL:       getEnv("LLM_BASE_URL", ""),
		LLMModel:         getEnv("LLM_MODEL", ""),
		LLMTimeout:       getDuration("LLM_TIMEOUT", 60*time.Second),
		LLMMaxTokens:     getInt("LLM_MAX_TOKENS", 2000),
		LLMTemperature:   float32(getPositiveFloat("LLM_TEMPERATURE", 0.1)),
		LLMMaxInputChars: getInt("LLM_MAX_INPUT_CHARS", 24000),

		DownloadTimeout:  getDuration("DOWNLOAD_TIMEOUT", 30*time.Second),
		MaxDownloadBytes: int64(getInt("MAX_DOWNLOAD_BYTES", 10<<20)),
		AWSRegion:        getEnv("AWS_REGION", ""),
		LocalStoreDir:    getEnv("LOCAL_STORE_DIR", "./data"),

		AnalyzeRatePerMin: getFloat("ANALYZE_RATE_PER_MIN", 10),
		AnalyzeBurst:      getInt("ANALYZE_BURST", 3),
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports which required values are missing. Values themselves are
// never included in the error.
func (c Config) Validate() error {
	var missing []string
	if c.LLMAPIKey == "" {
		missing = append(missing, "GROQ_API_KEY")
	}
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.DatabaseServiceKey == "" {
		missing = append(missing, "DATABASE_SERVICE_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}
	return nil
}

// IsDev reports whether the process runs in a development-like environment.
func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "local"
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return ""
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return def
	}
	return val
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val < 0 {
		return def
	}
	return val
}

// getPositiveFloat is getFloat for settings where zero cannot be expressed,
// such as a temperature that the API client omits when zero.
func getPositiveFloat(key string, def float64) float64 {
	val := getFloat(key, def)
	if val <= 0 {
		return def
	}
	return val
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return val
}

// getDuration accepts Go durations ("45s") or a bare number of seconds.
func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
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
	case "local":
		return "local"
	default:
		return "dev"
	}
}

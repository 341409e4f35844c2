// README: Config loader with env defaults for HTTP, storage, Gemini, Maps, auth and quota settings.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TransportSDK  = "sdk"
	TransportREST = "rest"
)

// AIConfig holds the Gemini credential and generation parameters.
type AIConfig struct {
	APIKey          string
	Transport       string
	Model           string
	BaseURL         string
	Temperature     float64
	TopK            int
	TopP            float64
	MaxOutputTokens int
	JSONMode        bool
}

type Config struct {
	HTTP struct {
		Addr            string
		PublicURL       string
		GenerateTimeout time.Duration
		// TrustedProxies lists the proxy addresses or CIDRs whose forwarding
		// headers are honoured. Empty means the peer address is the client.
		TrustedProxies  []string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr         string
		ItineraryTTL time.Duration
	}
	AI   AIConfig
	Maps struct {
		APIKey string
	}
	Firebase struct {
		ProjectID       string
		CredentialsFile string
	}
	Limits struct {
		MonthlyQuota int
		RatePerMin   int
	}
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: ignoring .env: %v", err)
	}

	var cfg Config
	cfg.HTTP.Addr = envOrDefault("TRIPGEN_HTTP_ADDR", ":8080")
	cfg.HTTP.PublicURL = strings.TrimRight(envOrDefault("TRIPGEN_PUBLIC_URL", "http://localhost:8080"), "/")
	cfg.HTTP.GenerateTimeout = envOrDefaultDuration("TRIPGEN_GENERATE_TIMEOUT", 90*time.Second)
	cfg.HTTP.TrustedProxies = envList("TRIPGEN_TRUSTED_PROXIES")
	cfg.DB.DSN = os.Getenv("TRIPGEN_DB_DSN")
	cfg.Redis.Addr = envOrDefault("TRIPGEN_REDIS_ADDR", "localhost:6379")
	cfg.Redis.ItineraryTTL = envOrDefaultDuration("TRIPGEN_ITINERARY_TTL", 720*time.Hour)

	cfg.AI = AIConfig{
		APIKey:          os.Getenv("GEMINI_API_KEY"),
		Transport:       strings.ToLower(envOrDefault("TRIPGEN_AI_TRANSPORT", TransportSDK)),
		Model:           envOrDefault("TRIPGEN_AI_MODEL", "gemini-1.5-flash"),
		BaseURL:         envOrDefault("TRIPGEN_AI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		Temperature:     envOrDefaultFloat("TRIPGEN_AI_TEMPERATURE", 0.7),
		TopK:            envOrDefaultInt("TRIPGEN_AI_TOP_K", 40),
		TopP:            envOrDefaultFloat("TRIPGEN_AI_TOP_P", 0.95),
		MaxOutputTokens: envOrDefaultInt("TRIPGEN_AI_MAX_TOKENS", 8192),
		JSONMode:        envOrDefaultBool("TRIPGEN_AI_JSON_MODE", true),
	}

	cfg.Maps.APIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	cfg.Firebase.ProjectID = os.Getenv("TRIPGEN_FIREBASE_PROJECT_ID")
	cfg.Firebase.CredentialsFile = os.Getenv("TRIPGEN_FIREBASE_CREDENTIALS")
	cfg.Limits.MonthlyQuota = envOrDefaultInt("TRIPGEN_MONTHLY_QUOTA", 20)
	cfg.Limits.RatePerMin = envOrDefaultInt("TRIPGEN_RATE_PER_MIN", 5)
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envList splits a comma separated variable, dropping empty entries.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

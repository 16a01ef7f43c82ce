package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Fetch modes.
const (
	FetchModeHTTP          = "http"
	FetchModeBrowser       = "browser"
	FetchModeSharedBrowser = "shared-browser"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Fetch     FetchConfig
	Browser   BrowserConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	CORS      CORSConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: $PORT or 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// CatalogConfig points the lookup at the catalog site.
type CatalogConfig struct {
	// BaseURL is the book site root; detail pages live under it.
	BaseURL string // default: "https://book.douban.com/"

	// SearchURL is the site-wide search endpoint.
	SearchURL string // default: "https://www.douban.com/search"

	// SearchCategory is the "cat" parameter selecting book results.
	SearchCategory string // default: "1001"

	// NormalizeDate coerces publication dates to YYYY-M-1.
	NormalizeDate bool // default: false

	// HalfRating divides the 10-point rating by two.
	HalfRating bool // default: false

	// DelayMin/DelayMax bound the random pause before each detail fetch.
	// Both zero disables the pause.
	DelayMin time.Duration // default: 0
	DelayMax time.Duration // default: 0
}

// FetchConfig selects and tunes the page fetcher.
type FetchConfig struct {
	// Mode is one of "http", "browser", "shared-browser".
	Mode string // default: "http"

	// Timeout is the per-page fetch deadline.
	Timeout time.Duration // default: 10s

	// Proxy is an optional http(s) proxy URL for outbound requests.
	Proxy string
}

// BrowserConfig controls the Rod browser instance(s).
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the shared page pool capacity (max concurrent tabs).
	MaxPages int // default: 4

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Stealth injects anti-automation-detection JS before navigation.
	Stealth bool // default: true

	// BlockedResourceTypes lists resource types the page must not load.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	APIKeys []string
}

// RateLimitConfig controls per-identity rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per identity. Zero disables the limiter.
	RequestsPerSecond float64 // default: 0 (disabled)

	// Burst is the maximum burst size per identity.
	Burst int // default: 5
}

// CacheConfig controls the lookup result cache.
type CacheConfig struct {
	// MaxEntries bounds the in-memory cache. Zero disables caching.
	MaxEntries int // default: 128

	// TTL is how long a cached record stays valid.
	TTL time.Duration // default: 1h

	// RedisURL switches the cache to Redis when set.
	RedisURL string
}

// CORSConfig controls cross-origin access.
type CORSConfig struct {
	// AllowedOrigins lists origins allowed to call the API. "*" allows any.
	AllowedOrigins []string // default: ["*"]
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory, if present, is loaded first and
// never overrides variables already set in the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("config: failed to read .env", "error", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: envOr("BOOKMETA_HOST", "0.0.0.0"),
			Port: envIntOr("BOOKMETA_PORT", envIntOr("PORT", 8080)),
			Mode: envOr("BOOKMETA_MODE", "release"),
		},
		Catalog: CatalogConfig{
			BaseURL:        envOr("BOOKMETA_CATALOG_BASE", "https://book.douban.com/"),
			SearchURL:      envOr("BOOKMETA_SEARCH_URL", "https://www.douban.com/search"),
			SearchCategory: envOr("BOOKMETA_SEARCH_CAT", "1001"),
			NormalizeDate:  envBoolOr("BOOKMETA_NORMALIZE_DATE", false),
			HalfRating:     envBoolOr("BOOKMETA_HALF_RATING", false),
			DelayMin:       envDurationOr("BOOKMETA_DELAY_MIN", 0),
			DelayMax:       envDurationOr("BOOKMETA_DELAY_MAX", 0),
		},
		Fetch: FetchConfig{
			Mode:    envOr("BOOKMETA_FETCH_MODE", FetchModeHTTP),
			Timeout: envDurationOr("BOOKMETA_FETCH_TIMEOUT", 10*time.Second),
			Proxy:   os.Getenv("BOOKMETA_PROXY"),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("BOOKMETA_HEADLESS", true),
			MaxPages:   envIntOr("BOOKMETA_MAX_PAGES", 4),
			NoSandbox:  envBoolOr("BOOKMETA_NO_SANDBOX", false),
			BrowserBin: os.Getenv("BOOKMETA_BROWSER_BIN"),
			Stealth:    envBoolOr("BOOKMETA_STEALTH", true),
			BlockedResourceTypes: envSliceOr("BOOKMETA_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("BOOKMETA_AUTH_ENABLED", false),
			APIKeys: envSliceOr("BOOKMETA_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("BOOKMETA_RATE_RPS", 0),
			Burst:             envIntOr("BOOKMETA_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("BOOKMETA_CACHE_MAX_ENTRIES", 128),
			TTL:        envDurationOr("BOOKMETA_CACHE_TTL", time.Hour),
			RedisURL:   os.Getenv("BOOKMETA_REDIS_URL"),
		},
		CORS: CORSConfig{
			AllowedOrigins: envSliceOr("BOOKMETA_CORS_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level:  envOr("BOOKMETA_LOG_LEVEL", "info"),
			Format: envOr("BOOKMETA_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}

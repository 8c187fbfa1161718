package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Persistence backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout for API routes

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	Backend    string // "redis" | "sqlite" | "memory"
	SQLitePath string // database file for the sqlite backend

	// Offline controller
	OriginURL       *url.URL      // app shell upstream (ex: http://localhost:5173)
	CachePrefix     string        // cache name prefix (ex: link-drvo)
	CacheVersion    string        // cache name version (ex: v1.2.0)
	ShellAssets     []string      // paths precached on install
	FaviconHosts    []string      // cross-origin hosts still served through the caches
	SkipWaiting     bool          // activate right after install
	FetchTimeout    time.Duration // timeout for every upstream fetch
	StartOnline     bool          // initial connectivity state
	DailySync       time.Duration // interval of the daily-sync periodic tag
	CacheGCInterval time.Duration // interval of dynamic cache garbage collection
	CacheMaxAge     time.Duration // dynamic cache entries older than this are evicted

	// Homepage import
	BookmarkFile   string        // Homepage bookmarks.yaml (optional, empty = disabled)
	ServiceFile    string        // Homepage services.yaml (optional, empty = disabled)
	ImportInterval time.Duration // interval between homepage imports

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateLimit    int      // requests per minute per client IP on the API, 0 = disabled
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LINKTREE_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LINKTREE_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("LINKTREE_REQUEST_TIMEOUT", 15*time.Second),

		// Logging
		LogLevel:  getenv("LINKTREE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LINKTREE_PRETTY_LOG", true),

		// Persistence
		Backend:    strings.ToLower(getenv("LINKTREE_BACKEND", BackendSQLite)),
		SQLitePath: getenv("LINKTREE_SQLITE_PATH", "/app/data/linktree.db"),

		// Offline controller
		OriginURL:       mustURL("LINKTREE_ORIGIN_URL", "http://localhost:5173"),
		CachePrefix:     getenv("LINKTREE_CACHE_PREFIX", "link-drvo"),
		CacheVersion:    getenv("LINKTREE_CACHE_VERSION", "v1.2.0"),
		ShellAssets:     getenvSlice("LINKTREE_SHELL_ASSETS", defaultShellAssets()),
		FaviconHosts:    getenvSlice("LINKTREE_FAVICON_HOSTS", []string{"www.google.com", "google.com"}),
		SkipWaiting:     mustBool("LINKTREE_SKIP_WAITING", true),
		FetchTimeout:    mustDuration("LINKTREE_FETCH_TIMEOUT", 10*time.Second),
		StartOnline:     mustBool("LINKTREE_START_ONLINE", true),
		DailySync:       mustPositiveDuration("LINKTREE_DAILY_SYNC_INTERVAL", 24*time.Hour),
		CacheGCInterval: mustPositiveDuration("LINKTREE_CACHE_GC_INTERVAL", 24*time.Hour),
		CacheMaxAge:     mustPositiveDuration("LINKTREE_CACHE_MAX_AGE", 7*24*time.Hour),

		// Homepage import
		BookmarkFile:   getenv("LINKTREE_BOOKMARK_FILE", ""),
		ServiceFile:    getenv("LINKTREE_SERVICE_FILE", ""),
		ImportInterval: mustPositiveDuration("LINKTREE_IMPORT_INTERVAL", 24*time.Hour),

		// Access restrictions
		AllowedHosts: getenvSlice("LINKTREE_ALLOWED_HOSTS", nil),
		AllowedCIDRS: parseAllowedIPs(getenv("LINKTREE_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("LINKTREE_TRUST_PROXY", false),
		RateLimit:    getenvInt("LINKTREE_RATE_LIMIT", 300),
	}

	switch cfg.Backend {
	case BackendMemory, BackendSQLite:
	case BackendRedis:
		loadRedis(cfg)
	default:
		panic(fmt.Sprintf("❌ FATAL: unknown LINKTREE_BACKEND %q (want redis, sqlite or memory)", cfg.Backend))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

func loadRedis(cfg *Config) {
	cfg.RedisAddr = requireEnv("LINKTREE_REDIS_ADDR")
	cfg.RedisUser = getenv("LINKTREE_REDIS_USERNAME", "default")
	cfg.RedisPasswordRequired = mustBool("LINKTREE_REDIS_PASSWORD_REQUIRED", true)
	cfg.RedisPassword = getenv("LINKTREE_REDIS_PASSWORD", "")
	cfg.RedisDB = requireEnvInt("LINKTREE_REDIS_DB")
	cfg.RedisDT = mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.RedisRT = mustDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.RedisWT = mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.RedisMaxWait = mustDuration("REDIS_MAX_WAIT", 10*time.Second)
	cfg.RedisPingTimeout = mustDuration("REDIS_PING_TIMEOUT", 5*time.Second)
	cfg.RedisPoolSize = getenvInt("REDIS_POOL_SIZE", 10)
	cfg.RedisConnectTimeout = mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second)
	cfg.RedisRetryInterval = mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second)
	cfg.RedisWarnThreshold = getenvInt("REDIS_WARN_THRESHOLD", 3)

	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: LINKTREE_REDIS_PASSWORD is required when LINKTREE_REDIS_PASSWORD_REQUIRED=true")
	}
}

func defaultShellAssets() []string {
	return []string{
		"/",
		"/index.html",
		"/src/main.tsx",
		"/src/App.tsx",
		"/src/index.css",
		"/favicon.svg",
		"/apple-touch-icon.png",
		"/site.webmanifest",
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvSlice(key string, def []string) []string {
	if parts := splitAndTrim(os.Getenv(key)); len(parts) > 0 {
		return parts
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// mustPositiveDuration is mustDuration for tickers and ages, which must be > 0.
func mustPositiveDuration(key string, def time.Duration) time.Duration {
	d := mustDuration(key, def)
	if d <= 0 {
		panic(fmt.Sprintf("❌ FATAL: %s must be a positive duration, got %s", key, os.Getenv(key)))
	}
	return d
}

// mustURL parses an absolute http(s) URL and panics on anything else.
func mustURL(key, def string) *url.URL {
	raw := getenv(key, def)
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		panic(fmt.Sprintf("❌ FATAL: Invalid URL for %s: %s", key, raw))
	}
	return u
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

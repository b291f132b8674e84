package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

const (
	// DefaultAPIBase is the eThekwini ArcGIS REST services root.
	DefaultAPIBase = "https://services3.arcgis.com/HO0zfySJshlD6Twu/arcgis/rest/services"

	// DefaultPortalURL is the eThekwini open data portal.
	DefaultPortalURL = "https://gis-ethekwini.opendata.arcgis.com"

	// DefaultLeasesURL is the one service endpoint known up front.
	DefaultLeasesURL = DefaultAPIBase + "/Leases/FeatureServer"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	APIBase   string // ArcGIS REST services root endpoint
	PortalURL string // open data portal (informational)

	ServicesFile string // optional YAML file seeding the known-services registry

	CacheTTL       time.Duration // freshness window for the dataset cache (default: 15m)
	ProbeTimeout   time.Duration // per-call timeout for discovery probes (default: 10s)
	QueryTimeout   time.Duration // per-call timeout for data queries (default: 60s)
	ReloadInterval time.Duration // interval for background catalog refresh (default: 24h)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("ETHEKWINI_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("ETHEKWINI_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("ETHEKWINI_LOG_LEVEL", "info"),
		PrettyLog: mustBool("ETHEKWINI_PRETTY_LOG", false),

		// Remote endpoints
		APIBase:   getenv("ETHEKWINI_API_BASE", DefaultAPIBase),
		PortalURL: getenv("ETHEKWINI_PORTAL_URL", DefaultPortalURL),

		// Known-services seed file (optional)
		ServicesFile: getenv("ETHEKWINI_SERVICES_FILE", ""),

		// Cache and network tuning
		CacheTTL:       mustDuration("ETHEKWINI_CACHE_TTL", 900*time.Second),
		ProbeTimeout:   mustDuration("ETHEKWINI_PROBE_TIMEOUT", 10*time.Second),
		QueryTimeout:   mustDuration("ETHEKWINI_QUERY_TIMEOUT", 60*time.Second),
		ReloadInterval: mustDuration("ETHEKWINI_RELOAD_INTERVAL", 24*time.Hour),
	}

	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", *cfg)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
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

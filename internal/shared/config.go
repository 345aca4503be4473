package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv       string
	HTTPAddr     string
	MetricsAddr  string
	MySQLDSN     string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	HostawayBase string
	HostawayKey  string
	GeminiURL    string
	GeminiKey    string
	UnsplashKey  string
	Workers      int
	ReviewCount  int
	ListingIDs   []int64
	CacheTTL     time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ":9100"),
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/flexreviews?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		HostawayBase: env("HOSTAWAY_BASE_URL", "https://api.hostaway.com/v1"),
		HostawayKey:  env("HOSTAWAY_API_KEY", ""),
		GeminiURL:    env("GEMINI_API_URL", ""),
		GeminiKey:    env("GEMINI_API_KEY", ""),
		UnsplashKey:  env("UNSPLASH_KEY", ""),
		Workers:      atoi("INGEST_WORKERS", 8),
		ReviewCount:  atoi("INGEST_REVIEW_COUNT", 100),
		ListingIDs:   listingIDs(env("INGEST_LISTING_IDS", "")),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.HostawayKey == "" {
		log.Warn().Msg("HOSTAWAY_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// listingIDs parses a comma-separated id list; junk entries are skipped.
func listingIDs(s string) []int64 {
	var out []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			out = append(out, id)
		}
	}
	return out
}

package config

import (
	"strconv"
	"strings"

	"github.com/example/learnhub/internal/platform/config"
)

type ForumConfig struct {
	StoreDSN         string
	StoreKey         string
	Compression      string
	IDStrategy       string
	RateLimitRPS     float64
	RateLimitBurst   int
	AnalyticsEnabled bool
}

// LoadForum reads forum settings. Call after config.Load so .env and
// CONFIG_FILE values are already in the environment.
func LoadForum() ForumConfig {
	cfg := ForumConfig{
		StoreDSN:         config.Get("FORUM_STORE_DSN"),
		StoreKey:         config.Get("FORUM_STORE_KEY"),
		Compression:      strings.ToLower(config.Get("FORUM_STORE_COMPRESS")),
		IDStrategy:       strings.ToLower(config.Get("FORUM_ID_STRATEGY")),
		RateLimitRPS:     envFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:   envInt("RATE_LIMIT_BURST", 20),
		AnalyticsEnabled: envBool("ANALYTICS_ENABLED", false),
	}
	if cfg.StoreKey == "" {
		cfg.StoreKey = "discussionPosts"
	}
	if cfg.Compression == "" {
		cfg.Compression = "none"
	}
	if cfg.IDStrategy == "" {
		cfg.IDStrategy = "uuid"
	}
	return cfg
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(config.Get(key))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(config.Get(key), 64)
	if err != nil || f < 0 {
		return fallback
	}
	return f
}

func envBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(config.Get(key))
	if err != nil {
		return fallback
	}
	return b
}

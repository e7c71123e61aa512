package config

import "time"

// CacheConfig configures the Redis response cache.  Two routes are cached
// with separate lifetimes: the public space list, which only changes
// through the admin space endpoints, and the admin dashboard.  Every
// mutation made through the API drops all keys under Prefix, so the TTLs
// only bound staleness caused by writes that bypass it.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	SpacesTTL    time.Duration
	DashboardTTL time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_*.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      envSet("CACHE_METHODS", "GET"),
		SpacesTTL:    envDur("CACHE_SPACES_TTL", 5*time.Minute),
		DashboardTTL: envDur("CACHE_DASHBOARD_TTL", 30*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "csr:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

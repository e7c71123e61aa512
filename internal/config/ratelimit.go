package config

import "time"

// RateLimitConfig configures the Redis token buckets.  The general bucket
// covers every request; the login endpoints get a smaller per-IP bucket
// derived with ForLogin.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool

	LoginCapacity int
	LoginRefill   time.Duration
}

// LoadRateLimitConfig reads RATE_LIMIT_*.  RATE_LIMIT_BURST and
// RATE_LIMIT_REFILL_EVERY are shorthands that override the capacity and
// the refill schedule of the general bucket.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "csr:rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
		LoginCapacity:  envInt("RATE_LIMIT_LOGIN_CAPACITY", 5),
		LoginRefill:    envDur("RATE_LIMIT_LOGIN_REFILL", 12*time.Second),
	}
	if b := envInt("RATE_LIMIT_BURST", -1); b > 0 {
		cfg.Capacity = b
	}
	if every := envDur("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
		cfg.RefillTokens = 1
		cfg.RefillInterval = every
	}
	cfg.normalize()
	return cfg
}

func (c *RateLimitConfig) normalize() {
	c.Capacity = max(c.Capacity, 1)
	c.RefillTokens = max(c.RefillTokens, 1)
	c.LoginCapacity = max(c.LoginCapacity, 1)
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	if c.LoginRefill <= 0 {
		c.LoginRefill = c.RefillInterval
	}
	// keys must outlive a full refill of either bucket
	c.TTL = max(c.TTL, 5*max(c.RefillInterval, c.LoginRefill))
}

// ForLogin returns the bucket applied to the login endpoints: one token
// per LoginRefill, keyed by client IP only, under its own prefix.
func (c RateLimitConfig) ForLogin() RateLimitConfig {
	c.Capacity = c.LoginCapacity
	c.RefillTokens = 1
	c.RefillInterval = c.LoginRefill
	c.KeyStrategy = "ip"
	c.Prefix += ":login"
	return c
}

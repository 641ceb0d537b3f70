package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is off.
// Only requests whose path starts with one of PathPrefixes are cached, so
// per-user state such as seat-selection sessions never is.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	PathPrefixes []string
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables. All methods are upper-cased.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
		PathPrefixes: envList("CACHE_PATH_PREFIXES", "/api/flight/search-flights,/api/flight/airports,/api/flight/popular-destinations,/api/flight/prices"),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "fsb:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

// Cacheable reports whether method and path qualify for caching.
func (c CacheConfig) Cacheable(method, path string) bool {
	if !c.Methods[strings.ToUpper(method)] {
		return false
	}
	for _, p := range c.PathPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}

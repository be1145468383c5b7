package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Endpoint groups. Endpoints in the same group share one bucket per client.
const (
	GroupHealth     = "health"
	GroupCompletion = "completion"
	GroupFormat     = "format"
	GroupDownload   = "download"
)

// EndpointConfig is the limit applied to requests matching Method and Path.
type EndpointConfig struct {
	Group  string        // Bucket group; empty gives the endpoint its own bucket
	Path   string        // ServeMux style path pattern, e.g. "/api/resumes/{id}/{file}"
	Method string        // HTTP method; empty matches any method
	Limit  int           // Requests per window; 0 means unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// bucketName returns the bucket key suffix for a request matched to c.
func (c *EndpointConfig) bucketName(path, method string) string {
	if c.Group != "" {
		return "group:" + c.Group
	}
	return method + " " + path
}

// LoadConfig builds the rate limiting configuration from RATE_LIMIT_*
// environment variables on top of DefaultEndpointConfigs.
func LoadConfig() *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{
			Enabled: false,
		}
	}

	defaultLimit := getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 1000)
	defaultWindow := getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute)
	cleanupInterval := getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute)

	whitelist := parseIPList(getEnvString("RATE_LIMIT_WHITELIST", ""))
	blacklist := parseIPList(getEnvString("RATE_LIMIT_BLACKLIST", ""))

	endpoints := DefaultEndpointConfigs()
	applyCompletionEnv(endpoints)

	return &Config{
		Enabled:         enabled,
		DefaultLimit:    defaultLimit,
		DefaultWindow:   defaultWindow,
		CleanupInterval: cleanupInterval,
		Whitelist:       whitelist,
		Blacklist:       blacklist,
		EndpointConfigs: endpoints,
	}
}

// DefaultEndpointConfigs returns the limits for the server's routes.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Group: GroupHealth, Path: "/health", Method: "GET"},

		// Every route that makes a completion call, including the HTML form
		{Group: GroupCompletion, Path: "/{$}", Method: "POST", Limit: 10, Window: time.Hour, Burst: 3},
		{Group: GroupCompletion, Path: "/api/resumes", Method: "POST", Limit: 10, Window: time.Hour, Burst: 3},
		{Group: GroupCompletion, Path: "/api/resumes/stream", Method: "POST", Limit: 10, Window: time.Hour, Burst: 3},

		{Group: GroupFormat, Path: "/api/format", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Group: GroupDownload, Path: "/api/resumes/{id}/{file}", Method: "GET", Limit: 120, Window: time.Minute, Burst: 20},

		// Session reads and deletes use the default limit
	}
}

// applyCompletionEnv overrides the completion group limits from
// RATE_LIMIT_COMPLETION_LIMIT, RATE_LIMIT_COMPLETION_WINDOW and
// RATE_LIMIT_COMPLETION_BURST.
func applyCompletionEnv(configs []EndpointConfig) {
	for i := range configs {
		c := &configs[i]
		if c.Group != GroupCompletion {
			continue
		}
		c.Limit = getEnvInt("RATE_LIMIT_COMPLETION_LIMIT", c.Limit)
		c.Window = getEnvDuration("RATE_LIMIT_COMPLETION_WINDOW", c.Window)
		c.Burst = getEnvInt("RATE_LIMIT_COMPLETION_BURST", c.Burst)
		if c.Burst > c.Limit {
			c.Burst = c.Limit
		}
	}
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	if list == "" {
		return result
	}

	ips := strings.Split(list, ",")
	for _, ip := range ips {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}

	return result
}


// Package config loads gateway configuration from the environment into an
// explicit struct that is passed into constructors. Nothing else in the
// codebase reads environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the full gateway configuration.
type Config struct {
	// HTTPPort is the inbound listen port.
	HTTPPort string
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string
	// LogFormat is the log output format (json, text).
	LogFormat string
	// LogSource adds source file and line to logs.
	LogSource bool
	// CORSOrigins is the list of allowed CORS origins.
	CORSOrigins []string
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
	// Roex configures the outbound provider client.
	Roex RoexConfig
}

// RoexConfig holds provider connection settings.
type RoexConfig struct {
	// APIKey is the bearer credential attached to every outbound call.
	APIKey string
	// BaseURL is the provider base URL, without the /v1 path prefix.
	BaseURL string
	// Timeout bounds each outbound HTTP call.
	Timeout time.Duration
}

// Load reads configuration from the environment. It fails when the
// provider credential is absent so a misconfigured gateway never comes up.
func Load() (Config, error) {
	apiKey := strings.TrimSpace(os.Getenv("ROEX_API_KEY"))
	if apiKey == "" {
		return Config{}, fmt.Errorf("ROEX_API_KEY environment variable not set")
	}

	cfg := Config{
		HTTPPort:        env("HTTP_PORT", "8000"),
		LogLevel:        env("LOG_LEVEL", "info"),
		LogFormat:       env("LOG_FORMAT", "json"),
		LogSource:       boolEnv("LOG_SOURCE", false),
		CORSOrigins:     csvEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		ShutdownTimeout: durationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),
		Roex: RoexConfig{
			APIKey:  apiKey,
			BaseURL: env("ROEX_BASE_URL", "https://tonn.roexaudio.com"),
			Timeout: durationEnv("ROEX_TIMEOUT", 60*time.Second),
		},
	}

	return cfg, nil
}

func env(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

// boolEnv reads an env var as bool. If empty or invalid, returns def.
// strconv.ParseBool accepts: 1,t,T,TRUE,true,True,0,f,F,FALSE,false,False.
func boolEnv(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durationEnv(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func csvEnv(k string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(k))
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

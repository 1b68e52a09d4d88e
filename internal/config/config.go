package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	Port string

	MLServiceURL     string
	PredictTimeout   time.Duration
	HealthTimeout    time.Duration
	ModelInfoTimeout time.Duration
	StatusTTL        time.Duration

	// DatabaseURL enables prediction history when set.
	DatabaseURL string

	AllowedOrigins []string
	APIKeys        []string
	LogLevel       slog.Level
}

// Load reads configuration from the environment. Malformed durations and
// levels are reported rather than silently replaced.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		MLServiceURL:   getenv("ML_SERVICE_URL", "http://localhost:8001"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:8501")),
		APIKeys:        splitList(os.Getenv("API_KEYS")),
	}

	durations := []struct {
		env string
		def time.Duration
		dst *time.Duration
	}{
		{"ML_PREDICT_TIMEOUT", 10 * time.Second, &cfg.PredictTimeout},
		{"ML_HEALTH_TIMEOUT", 3 * time.Second, &cfg.HealthTimeout},
		{"ML_MODEL_INFO_TIMEOUT", 5 * time.Second, &cfg.ModelInfoTimeout},
		{"ML_STATUS_TTL", 30 * time.Second, &cfg.StatusTTL},
	}
	for _, d := range durations {
		v, err := durationEnv(d.env, d.def)
		if err != nil {
			return nil, err
		}
		*d.dst = v
	}

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, v)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

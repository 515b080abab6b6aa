// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strings"
	"time"
)

// Serving modes. In resolve mode the server reads tile bytes from the
// store and transmits them itself; in sendfile mode it only resolves
// the storage key and hands transmission to the fronting server via a
// sendfile header.
const (
	ModeResolve  = "resolve"
	ModeSendfile = "sendfile"
)

type InvalidationCfg struct {
	Enabled bool
	Brokers string
	Topic   string
	GroupID string
}

type Config struct {
	Addr              string
	LogLevel          string
	Mode              string
	DataPath          string
	RedisAddr         string
	CacheTTL          time.Duration
	CacheOpTimeout    time.Duration
	ImagePathTemplate string
	InfoPathTemplate  string
	SendfileHeader    string
	Invalidation      InvalidationCfg
}

func FromEnv() Config {
	mode := strings.ToLower(getenv("MODE", ModeResolve))
	if mode != ModeResolve && mode != ModeSendfile {
		mode = ModeResolve
	}

	return Config{
		Addr:              getenv("ADDR", ":8080"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		Mode:              mode,
		DataPath:          getenv("DATA_PATH", "."),
		RedisAddr:         getenv("REDIS_ADDR", ""),
		CacheTTL:          getduration("CACHE_TTL", 10*time.Minute),
		CacheOpTimeout:    getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),
		ImagePathTemplate: getenv("IMAGE_PATH_TEMPLATE", ""),
		InfoPathTemplate:  getenv("INFO_PATH_TEMPLATE", ""),
		SendfileHeader:    getenv("SENDFILE_HEADER", "X-Accel-Redirect"),
		Invalidation: InvalidationCfg{
			Enabled: getbool("INVALIDATION_ENABLED", false),
			Brokers: getenv("KAFKA_BROKERS", "localhost:9092"),
			Topic:   getenv("KAFKA_TOPIC", "tile-invalidation"),
			GroupID: getenv("KAFKA_GROUP_ID", "tilegate"),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

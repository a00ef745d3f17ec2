package config

import (
	"os"
	"strconv"
)

const (
	// DefaultCacheTTLSec is seconds before a cached schedule counts as stale.
	DefaultCacheTTLSec = 300
	// DefaultFetchTimeoutSec is the hard timeout for one upstream request.
	DefaultFetchTimeoutSec = 10
	// DefaultRefreshIntervalSec is seconds between background refreshes.
	DefaultRefreshIntervalSec = 300
	// DefaultWatchIntervalSec is seconds between status change sweeps.
	DefaultWatchIntervalSec = 60
	// DefaultProbeIntervalSec is seconds between upstream reachability pings.
	DefaultProbeIntervalSec = 60
)

type Config struct {
	Port            string
	UpstreamURL     string
	UpstreamToken   string // optional bearer token for the provider API
	CacheTTL        int    // seconds before the cached schedule is stale
	FetchTimeout    int    // seconds per upstream request
	RefreshInterval int    // seconds between background refreshes
	WatchInterval   int    // seconds between status change sweeps
	ProbeInterval   int    // seconds between upstream reachability pings
	LogLevel        string
	RedisURL        string // optional warm-start snapshot store
	RabbitMQURL     string // optional AMQP status change events
	BotToken        string // optional Telegram notifications
	NotifyChatID    int64  // Telegram channel/chat for notifications
}

func Load() *Config {
	return &Config{
		Port:            getEnv("EXPORTER_PORT", "9090"),
		UpstreamURL:     getEnv("UPSTREAM_URL", "https://api.yasno.com.ua/api/v1/electricity-outages-schedule/kyiv"),
		UpstreamToken:   getEnv("UPSTREAM_TOKEN", ""),
		CacheTTL:        getEnvInt("CACHE_TTL", DefaultCacheTTLSec),
		FetchTimeout:    getEnvInt("FETCH_TIMEOUT", DefaultFetchTimeoutSec),
		RefreshInterval: getEnvInt("COLLECTING_INTERVAL", DefaultRefreshIntervalSec),
		WatchInterval:   getEnvInt("WATCH_INTERVAL", DefaultWatchIntervalSec),
		ProbeInterval:   getEnvInt("PROBE_INTERVAL", DefaultProbeIntervalSec),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		RedisURL:        getEnv("REDIS_URL", ""),
		RabbitMQURL:     getEnv("RABBITMQ_URL", ""),
		BotToken:        getEnv("BOT_TOKEN", ""),
		NotifyChatID:    getEnvInt64("NOTIFY_CHAT_ID", 0),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

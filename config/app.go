package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	URL      string
	Username string
	Password string

	PollInterval time.Duration
	StallWait    time.Duration
	StartWait    time.Duration
	ShutdownWait time.Duration

	DB *DBConfig
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		URL:          envString("QB_URL", "http://127.0.0.1:8080"),
		Username:     envString("QB_USERNAME", "admin"),
		Password:     envString("QB_PASSWORD", "adminadmin"),
		PollInterval: envSeconds("POLL_INTERVAL", 2*time.Second),
		StallWait:    envSeconds("STALL_WAIT_TIME", 300*time.Second),
		StartWait:    envSeconds("START_WAIT_TIME", 120*time.Second),
		ShutdownWait: envSeconds("SHUTDOWN_WAIT_TIME", 15*time.Second),
		DB:           NewDBConfig(),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envSeconds reads a whole number of seconds from the environment.
func envSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

var Main *AppConfig

func init() {
	_ = godotenv.Load()
	Main = NewAppConfig()
}

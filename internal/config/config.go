package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	ListenAddr string
	StatusAddr string

	RedisURL    string
	DatabaseURL string

	RoomWaitTTL      time.Duration
	RoomGraceWindow  time.Duration
	RoomFinishLinger time.Duration
	SweepInterval    time.Duration

	MessageOverrideDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:       ":8080",
		StatusAddr:       ":8081",
		RoomWaitTTL:      30 * time.Minute,
		RoomGraceWindow:  5 * time.Minute,
		RoomFinishLinger: 30 * time.Second,
		SweepInterval:    time.Minute,
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("STATUS_ADDR"); ok {
		// Empty value disables the status listener entirely.
		cfg.StatusAddr = strings.TrimSpace(v)
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("ROOM_WAIT_TTL_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RoomWaitTTL = time.Duration(n) * time.Minute
		}
	}
	if v := strings.TrimSpace(os.Getenv("ROOM_GRACE_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RoomGraceWindow = time.Duration(n) * time.Minute
		}
	}
	if v := strings.TrimSpace(os.Getenv("ROOM_FINISH_LINGER_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RoomFinishLinger = time.Duration(n) * time.Second
		}
	}
	if v := strings.TrimSpace(os.Getenv("SWEEP_INTERVAL_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SweepInterval = time.Duration(n) * time.Second
		}
	}

	cfg.MessageOverrideDir = strings.TrimSpace(os.Getenv("MESSAGE_OVERRIDE_DIR"))

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}

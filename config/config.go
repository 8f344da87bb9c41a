package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port             string
	JWTSecret        string
	AWSRegion        string
	SnapshotTable    string
	FrameBudgetBytes int
	HeartbeatTimeout time.Duration
	ChatRetention    time.Duration
	ChatRateCap      int
	MaxTextLen       int
	BannedTerms      []string
	PresenceExpiry   time.Duration
	PresenceRadiusM  float64
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getint(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

// Load reads configuration from the environment with development defaults.
func Load() Config {
	radius, err := strconv.ParseFloat(getenv("PRESENCE_RADIUS_M", "200"), 64)
	if err != nil {
		radius = 200
	}
	var banned []string
	for _, t := range strings.Split(os.Getenv("CHAT_BANNED_TERMS"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			banned = append(banned, t)
		}
	}
	return Config{
		Port:             getenv("PORT", "8080"),
		JWTSecret:        getenv("JWT_SECRET", "dev-secret-change-me"),
		AWSRegion:        getenv("AWS_REGION", "us-east-1"),
		SnapshotTable:    getenv("SNAPSHOT_TABLE", "StateJournal"),
		FrameBudgetBytes: getint("WS_FRAME_BUDGET_BYTES", 2048),
		HeartbeatTimeout: time.Duration(getint("WS_HEARTBEAT_TIMEOUT_MS", 30000)) * time.Millisecond,
		ChatRetention:    time.Duration(getint("CHAT_RETENTION_MS", 3600000)) * time.Millisecond,
		ChatRateCap:      getint("CHAT_RATE_CAP_PER_MIN", 30),
		MaxTextLen:       getint("CHAT_MAX_TEXT_LEN", 1000),
		BannedTerms:      banned,
		PresenceExpiry:   time.Duration(getint("PRESENCE_EXPIRY_MS", 45000)) * time.Millisecond,
		PresenceRadiusM:  radius,
	}
}

// Validate fails fast on values the services cannot be constructed with.
func (c Config) Validate() error {
	if c.FrameBudgetBytes <= 0 {
		return fmt.Errorf("invalid WS_FRAME_BUDGET_BYTES: %d", c.FrameBudgetBytes)
	}
	if c.HeartbeatTimeout <= 0 {
		return fmt.Errorf("invalid WS_HEARTBEAT_TIMEOUT_MS: %s", c.HeartbeatTimeout)
	}
	if c.ChatRetention <= 0 || c.PresenceExpiry <= 0 {
		return fmt.Errorf("retention/expiry windows must be positive")
	}
	if c.ChatRateCap <= 0 || c.MaxTextLen <= 0 {
		return fmt.Errorf("chat caps must be positive")
	}
	if c.PresenceRadiusM < 0 {
		return fmt.Errorf("invalid PRESENCE_RADIUS_M: %f", c.PresenceRadiusM)
	}
	return nil
}

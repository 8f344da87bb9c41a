package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("PORT")
	os.Unsetenv("WS_FRAME_BUDGET_BYTES")
	os.Unsetenv("WS_HEARTBEAT_TIMEOUT_MS")
	os.Unsetenv("CHAT_RETENTION_MS")
	os.Unsetenv("PRESENCE_EXPIRY_MS")
	os.Unsetenv("PRESENCE_RADIUS_M")
	os.Unsetenv("CHAT_BANNED_TERMS")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Load() Port = %v, want 8080", cfg.Port)
	}
	if cfg.FrameBudgetBytes != 2048 {
		t.Errorf("Load() FrameBudgetBytes = %v, want 2048", cfg.FrameBudgetBytes)
	}
	if cfg.PresenceExpiry != 45*time.Second {
		t.Errorf("Load() PresenceExpiry = %v, want 45s", cfg.PresenceExpiry)
	}
	if cfg.PresenceRadiusM != 200 {
		t.Errorf("Load() PresenceRadiusM = %v, want 200", cfg.PresenceRadiusM)
	}
	if len(cfg.BannedTerms) != 0 {
		t.Errorf("Load() BannedTerms = %v, want empty", cfg.BannedTerms)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v, want nil", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	os.Setenv("PORT", "9090")
	os.Setenv("WS_FRAME_BUDGET_BYTES", "4096")
	os.Setenv("CHAT_BANNED_TERMS", "foo, bar ,")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("WS_FRAME_BUDGET_BYTES")
		os.Unsetenv("CHAT_BANNED_TERMS")
	}()

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Load() Port = %v, want 9090", cfg.Port)
	}
	if cfg.FrameBudgetBytes != 4096 {
		t.Errorf("Load() FrameBudgetBytes = %v, want 4096", cfg.FrameBudgetBytes)
	}
	if len(cfg.BannedTerms) != 2 || cfg.BannedTerms[0] != "foo" || cfg.BannedTerms[1] != "bar" {
		t.Errorf("Load() BannedTerms = %v, want [foo bar]", cfg.BannedTerms)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := Load()
	cfg.FrameBudgetBytes = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() with zero frame budget = nil, want error")
	}

	cfg = Load()
	cfg.ChatRateCap = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() with negative rate cap = nil, want error")
	}
}

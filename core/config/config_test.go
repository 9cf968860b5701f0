package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			Token:   "123:abc",
			AdminID: 42,
		},
	}
}

func TestNormalizeDefaultsToLongpoll(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run_mode = %q, expected %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
}

func TestNormalizeRequiresOperator(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.AdminID = 0
	err := Normalize(cfg)
	if err == nil {
		t.Fatal("expected error for missing admin_id")
	}
	if !strings.Contains(err.Error(), "admin_id") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalizeWebhookRequiresURL(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = RunModeWebhook
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for missing webhook settings")
	}

	cfg.Webhook = WebhookConfig{URL: "https://example.com/hook", Listen: "0.0.0.0", Port: 8443}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
}

func TestNormalizeRateLimitExclusions(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{" Callback ", "message"}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.RateLimit.ExcludeUpdates[0] != UpdateCallback {
		t.Fatalf("exclusion not normalized: %q", cfg.RateLimit.ExcludeUpdates[0])
	}

	cfg.RateLimit.ExcludeUpdates = []string{"inline_query"}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for unsupported exclusion")
	}
}

func TestLoadAppliesYAMLAndNormalize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
telegram:
  token: "123:abc"
  admin_id: 77
  run_mode: polling
logging:
  level: debug
  format: kv
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.AdminID != 77 {
		t.Fatalf("admin_id = %d", cfg.Telegram.AdminID)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("polling alias not normalized: %q", cfg.Telegram.RunMode)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging.level = %q", cfg.Logging.Level)
	}
}

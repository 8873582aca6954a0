package config

import (
	"strings"
	"testing"
)

func setCompleteEnv(t *testing.T) {
	t.Helper()

	t.Setenv("RECEIVER_MAIL", "user@example.com")
	t.Setenv("SENDER_MAIL", "assistant@example.com")
	t.Setenv("POSTMARK_SERVER_API_TOKEN", "server-token")
	t.Setenv("MISTRAL_API_KEY", "api-key")
	t.Setenv("MISTRAL_MODEL", "mistral-small-latest")
	t.Setenv("MESSAGE_DB_PATH", "./reminder.db")
	t.Setenv("ENV", "")
}

func TestLoadComplete(t *testing.T) {
	setCompleteEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ReceiverMail != "user@example.com" {
		t.Errorf("unexpected receiver: %q", cfg.ReceiverMail)
	}
	if cfg.Mode != ModeNormal {
		t.Errorf("expected normal mode by default, got %q", cfg.Mode)
	}
}

func TestLoadDevMode(t *testing.T) {
	setCompleteEnv(t)
	t.Setenv("ENV", "DEV")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Mode != ModeDev {
		t.Errorf("expected dev mode, got %q", cfg.Mode)
	}
}

func TestLoadReportsAllMissingVariables(t *testing.T) {
	setCompleteEnv(t)
	t.Setenv("RECEIVER_MAIL", "")
	t.Setenv("MISTRAL_API_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing variables, got nil")
	}
	for _, want := range []string{"RECEIVER_MAIL", "MISTRAL_API_KEY"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not name %s: %v", want, err)
		}
	}
}

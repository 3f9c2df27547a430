package conf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMessages_Defaults(t *testing.T) {
	msgs, err := LoadMessages("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if msgs.Persona == "" || msgs.Help == "" || msgs.NotAllowed == "" {
		t.Error("Expected built-in defaults to be populated")
	}
}

func TestLoadMessages_MissingFileFallsBack(t *testing.T) {
	msgs, err := LoadMessages(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Expected missing file to fall back to defaults, got %v", err)
	}
	if msgs.Greeting != DefaultMessages().Greeting {
		t.Error("Expected default greeting")
	}
}

func TestLoadMessages_OverridesMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.yaml")
	content := "persona: You are a pirate\nnot_allowed: go away\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	msgs, err := LoadMessages(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if msgs.Persona != "You are a pirate" {
		t.Errorf("Expected persona override, got %q", msgs.Persona)
	}
	if msgs.NotAllowed != "go away" {
		t.Errorf("Expected not_allowed override, got %q", msgs.NotAllowed)
	}
	if msgs.Help != DefaultMessages().Help {
		t.Error("Expected unset fields to keep defaults")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("OPENAI_API_KEY", "key")
	t.Setenv("OWNER_USER_ID", "42")

	cfg := LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}
	if cfg.Access.OwnerID != 42 {
		t.Errorf("Expected owner 42, got %d", cfg.Access.OwnerID)
	}
	if cfg.Access.AllowListPath != "allowed_users.txt" {
		t.Errorf("Expected default allow list path, got %q", cfg.Access.AllowListPath)
	}
	if cfg.IdleTimeout.Hours() != 3 {
		t.Errorf("Expected 3h idle timeout, got %v", cfg.IdleTimeout)
	}
}

func TestValidate_MissingCredentials(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OWNER_USER_ID", "")

	cfg := LoadFromEnv()
	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected validation failure without credentials")
	}
}

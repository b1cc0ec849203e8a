package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("Port por defecto = %q, esperaba 8080", cfg.Port)
	}
	if cfg.Env != "dev" {
		t.Fatalf("Env por defecto = %q, esperaba dev", cfg.Env)
	}
	if !cfg.IsDev() {
		t.Fatal("IsDev() = false con ENV vacío")
	}
	if cfg.AssistantModel != "gpt-4o" {
		t.Fatalf("AssistantModel por defecto = %q", cfg.AssistantModel)
	}
	if cfg.AssistantTimeout != 30*time.Second {
		t.Fatalf("AssistantTimeout por defecto = %v", cfg.AssistantTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("ASSISTANT_TIMEOUT", "5s")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.IsDev() {
		t.Fatal("IsDev() = true con ENV=production")
	}
	if cfg.AssistantTimeout != 5*time.Second {
		t.Fatalf("AssistantTimeout = %v", cfg.AssistantTimeout)
	}
}

func TestLoadBadDuration(t *testing.T) {
	t.Setenv("ASSISTANT_TIMEOUT", "nope")

	cfg := Load()
	if cfg.AssistantTimeout != 30*time.Second {
		t.Fatalf("AssistantTimeout con valor inválido = %v, esperaba el default", cfg.AssistantTimeout)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoad_DefaultsWhenNoFilePresent(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	defer os.Chdir(cwd)
	defer viper.Reset()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Receiver.Workers != Default().Receiver.Workers {
		t.Fatalf("expected default worker count, got %d", cfg.Receiver.Workers)
	}
}

func TestLoad_ReadsExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	contents := "receiver:\n  workers: 9\ndefault_timeout: \"2s\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	defer viper.Reset()

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Receiver.Workers != 9 {
		t.Fatalf("expected workers=9, got %d", cfg.Receiver.Workers)
	}
	if cfg.DefaultTimeout != "2s" {
		t.Fatalf("expected default_timeout=2s, got %q", cfg.DefaultTimeout)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	cwd, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(cwd)
	defer viper.Reset()

	t.Setenv("INVOKE_DEMO_RECEIVER_WORKERS", "16")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Receiver.Workers != 16 {
		t.Fatalf("expected workers=16 from env override, got %d", cfg.Receiver.Workers)
	}
}

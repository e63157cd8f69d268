package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Path string `env:"QUESTLINE_TEST_PATH" envDefault:"./data/world.json"`
	Hour int    `env:"QUESTLINE_TEST_HOUR" envDefault:"2"`
}

type envNestedConfig struct {
	Inner envTestConfig
	Flag  bool `env:"QUESTLINE_TEST_FLAG" envDefault:"true"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Path != "./data/world.json" {
		t.Fatalf("expected default path, got %q", cfg.Path)
	}
	if cfg.Hour != 2 {
		t.Fatalf("expected default hour 2, got %d", cfg.Hour)
	}
}

func TestParseEnvNested(t *testing.T) {
	t.Setenv("QUESTLINE_TEST_PATH", "/tmp/state.json")

	var cfg envNestedConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Inner.Path != "/tmp/state.json" {
		t.Fatalf("nested path = %q, want %q", cfg.Inner.Path, "/tmp/state.json")
	}
	if !cfg.Flag {
		t.Fatal("expected default flag true")
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("QUESTLINE_TEST_HOUR", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

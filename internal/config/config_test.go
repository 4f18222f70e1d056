package config

import (
	"os"
	"path/filepath"
	"testing"

	"annoreview/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"corpus_path":"corpus.jsonl"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "annoreview.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.ListenAddr != ":9810" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoad_ExplicitValuesKept(t *testing.T) {
	path := writeConfig(t, `{"corpus_path":"c.jsonl","db_path":"x.db","listen_addr":":7000","log_level":"debug"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "x.db" || cfg.ListenAddr != ":7000" || cfg.LogLevel != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_MissingCorpusPath(t *testing.T) {
	path := writeConfig(t, `{}`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	engErr, ok := err.(*domain.EngineError)
	if !ok {
		t.Fatalf("expected *domain.EngineError, got %T", err)
	}
	if engErr.Code != domain.ErrConfigInvalid.Code {
		t.Errorf("expected code %d, got %d", domain.ErrConfigInvalid.Code, engErr.Code)
	}
}

func TestLoad_BadLogLevel(t *testing.T) {
	path := writeConfig(t, `{"corpus_path":"c.jsonl","log_level":"loud"}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for bad log level")
	}
}

func TestLoad_BadJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("does/not/exist.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

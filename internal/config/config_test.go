package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("missing file should report exists=false")
	}
	if resolved != path {
		t.Errorf("resolved = %q, want %q", resolved, path)
	}
	if cfg.Validation.Mode != "lenient" {
		t.Errorf("default mode = %q, want lenient", cfg.Validation.Mode)
	}
	if cfg.Extraction.MaxEntries != 50 || cfg.Extraction.FirstSeconds != 5 {
		t.Errorf("extraction defaults = %+v", cfg.Extraction)
	}
	if cfg.Validation.FrameTolerance != 0.10 {
		t.Errorf("frame tolerance default = %v", cfg.Validation.FrameTolerance)
	}
	if cfg.Server.Bind == "" || cfg.LLM.BaseURL == "" {
		t.Error("server and llm defaults should be filled")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[validation]
mode = "STRICT"
frame_tolerance = 0.25

[extraction]
max_entries = 20

[logging]
format = "json"
level = "debug"
`)
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("file should be reported as found")
	}
	if cfg.Validation.Mode != "strict" {
		t.Errorf("mode should be lowercased, got %q", cfg.Validation.Mode)
	}
	if cfg.Validation.FrameTolerance != 0.25 {
		t.Errorf("frame tolerance = %v", cfg.Validation.FrameTolerance)
	}
	if cfg.Extraction.MaxEntries != 20 {
		t.Errorf("max entries = %d", cfg.Extraction.MaxEntries)
	}
	if cfg.Extraction.FirstSeconds != 5 {
		t.Errorf("unset first_seconds should default, got %d", cfg.Extraction.FirstSeconds)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadRejectsBadMode(t *testing.T) {
	path := writeConfig(t, `
[validation]
mode = "paranoid"
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("unsupported mode should fail validation")
	}
}

func TestLoadRejectsBadFrameTolerance(t *testing.T) {
	path := writeConfig(t, `
[validation]
frame_tolerance = 1.5
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("frame tolerance above 1 should fail validation")
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := writeConfig(t, `[validation`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("malformed TOML should fail to load")
	}
}

func TestAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("CLIPSIGHT_LLM_API_KEY", "  env-key  ")
	path := writeConfig(t, "")
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Fatalf("APIKey = %q, want trimmed env value", cfg.LLM.APIKey)
	}
}

func TestConfigFileKeyBeatsEnvironment(t *testing.T) {
	t.Setenv("CLIPSIGHT_LLM_API_KEY", "env-key")
	path := writeConfig(t, `
[llm]
api_key = "file-key"
`)
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.APIKey != "file-key" {
		t.Fatalf("APIKey = %q, config file should win", cfg.LLM.APIKey)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	got, err := ExpandPath("~/data/clips.db")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if !strings.HasPrefix(got, home) {
		t.Fatalf("expanded path %q should sit under %q", got, home)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ReportDB = filepath.Join(base, "db", "clipsight.db")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, filepath.Join(base, "db")} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %q not created: %v", dir, err)
		}
	}
}

func TestCreateSampleParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}
